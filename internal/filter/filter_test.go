package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyChainMatchesEverything(t *testing.T) {
	c := NewChain()
	assert.True(t, c.Empty())
	assert.True(t, c.Match("anything.txt"))
}

func TestExcludeWins(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude(`b\.txt`))
	assert.False(t, c.Match("b.txt"))
	assert.True(t, c.Match("a.txt"))
}

func TestIncludeRequiresMatch(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude(`[a-c]\.txt`))
	assert.True(t, c.Match("a.txt"))
	assert.True(t, c.Match("c.txt"))
	assert.False(t, c.Match("d.txt"))
}

func TestExcludeBeatsInclude(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude(`[a-c]\.txt`))
	require.NoError(t, c.AddExclude(`b\.txt`))
	assert.True(t, c.Match("a.txt"))
	assert.False(t, c.Match("b.txt"))
	assert.True(t, c.Match("c.txt"))
}

func TestAddIncludeInvalidPatternErrors(t *testing.T) {
	c := NewChain()
	err := c.AddInclude("[")
	assert.Error(t, err)
}

func TestAddIncludesSkipsInvalidPatterns(t *testing.T) {
	c := NewChain()
	AddIncludes(c, []string{`a\.txt`, "["})
	assert.True(t, c.Match("a.txt"))
	assert.False(t, c.Match("z.txt"))
}

func TestAddExcludesSkipsInvalidPatterns(t *testing.T) {
	c := NewChain()
	AddExcludes(c, []string{`a\.txt`, "["})
	assert.False(t, c.Match("a.txt"))
	assert.True(t, c.Match("z.txt"))
}
