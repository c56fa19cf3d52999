package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.db")

	j, err := Open(path, "/src", "/dst")
	require.NoError(t, err)
	require.NotNil(t, j)

	assert.FileExists(t, j.Path())
	require.NoError(t, j.Close())
}

func TestMarkAndCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.db")

	j, err := Open(path, "/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	assert.False(t, j.IsCompleted("file.txt", 100, 12345))

	require.NoError(t, j.MarkCompleted("file.txt", 100, 0xabc123, 12345))
	require.NoError(t, j.Flush())

	assert.True(t, j.IsCompleted("file.txt", 100, 12345))
	assert.False(t, j.IsCompleted("file.txt", 200, 12345))
	assert.False(t, j.IsCompleted("file.txt", 100, 99999))
	assert.False(t, j.IsCompleted("other.txt", 100, 12345))
}

func TestBatchFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.db")

	j, err := Open(path, "/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	for i := range 150 {
		require.NoError(t, j.MarkCompleted(
			filepath.Join("dir", fmt.Sprintf("file_%d.txt", i)),
			int64(i*100), uint64(i), int64(i*1000),
		))
	}
	require.NoError(t, j.Flush())

	assert.True(t, j.IsCompleted("dir/file_0.txt", 0, 0))
	assert.True(t, j.IsCompleted("dir/file_149.txt", 14900, 149000))
}

func TestDefaultPathDeterministic(t *testing.T) {
	p1 := DefaultPath("/src/a", "/dst/b")
	p2 := DefaultPath("/src/a", "/dst/b")
	p3 := DefaultPath("/src/a", "/dst/c")

	assert.Equal(t, p1, p2)
	assert.NotEqual(t, p1, p3)
}

func TestMetaValidationAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.db")

	j, err := Open(path, "/src/a", "/dst/b")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path, "/src/a", "/dst/b")
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.db")

	j, err := Open(path, "/src", "/dst")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.FileExists(t, path)
	require.NoError(t, j.Remove())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestResumeAcrossSessions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.db")

	j, err := Open(path, "/src", "/dst")
	require.NoError(t, err)
	require.NoError(t, j.MarkCompleted("done.txt", 500, 0x1, 99999))
	require.NoError(t, j.Close())

	j, err = Open(path, "/src", "/dst")
	require.NoError(t, err)
	defer j.Close()

	assert.True(t, j.IsCompleted("done.txt", 500, 99999))
	assert.False(t, j.IsCompleted("new.txt", 100, 12345))
}
