package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclone/cclone/internal/filter"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestEnumerateSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, []byte("hello"))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{src}, root, Config{}, filter.NewChain())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, src, files[0].source)
	assert.Equal(t, filepath.Join(root, "a.txt"), files[0].destination)
	assert.Equal(t, int64(5), files[0].size)
}

func TestEnumerateDirectoryNonRecursiveOnlyImmediateChildren(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "top.txt"), []byte("x"))
	writeFile(t, filepath.Join(src, "nested", "deep.txt"), []byte("y"))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{src}, root, Config{Recursive: false}, filter.NewChain())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(src, "top.txt"), files[0].source)
}

func TestEnumerateDirectoryRecursiveWalksTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "top.txt"), []byte("x"))
	writeFile(t, filepath.Join(src, "nested", "deep.txt"), []byte("yy"))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{src}, root, Config{Recursive: true}, filter.NewChain())
	require.NoError(t, err)
	require.Len(t, files, 2)

	var dests []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f.destination)
		require.NoError(t, err)
		dests = append(dests, rel)
	}
	assert.Contains(t, dests, "top.txt")
	assert.Contains(t, dests, filepath.Join("nested", "deep.txt"))
}

func TestEnumerateRespectsExcludeFilter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "keep.txt"), []byte("x"))
	writeFile(t, filepath.Join(src, "skip.log"), []byte("y"))
	root := filepath.Join(dir, "out")

	chain := filter.NewChain()
	require.NoError(t, chain.AddExclude(`\.log$`))

	files, err := enumerate([]string{src}, root, Config{Recursive: true}, chain)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "keep.txt", filepath.Base(files[0].source))
}

func TestEnumerateSkipsSymlinksWithoutFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	target := filepath.Join(src, "real.txt")
	writeFile(t, target, []byte("content"))
	link := filepath.Join(src, "link.txt")
	require.NoError(t, os.Symlink(target, link))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{src}, root, Config{Recursive: true, FollowSymlinks: false}, filter.NewChain())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "real.txt", filepath.Base(files[0].source))
}

func TestEnumerateFollowsSymlinksWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	target := filepath.Join(src, "real.txt")
	writeFile(t, target, []byte("content"))
	link := filepath.Join(src, "link.txt")
	require.NoError(t, os.Symlink(target, link))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{src}, root, Config{Recursive: true, FollowSymlinks: true}, filter.NewChain())
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestEnumerateNonRecursiveFollowsSymlinksWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	target := filepath.Join(src, "real.txt")
	writeFile(t, target, []byte("content"))
	link := filepath.Join(src, "link.txt")
	require.NoError(t, os.Symlink(target, link))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{src}, root, Config{Recursive: false, FollowSymlinks: false}, filter.NewChain())
	require.NoError(t, err)
	require.Len(t, files, 1, "symlink should be skipped at the top level when FollowSymlinks is off")

	files, err = enumerate([]string{src}, root, Config{Recursive: false, FollowSymlinks: true}, filter.NewChain())
	require.NoError(t, err)
	assert.Len(t, files, 2, "symlink should be resolved and copied at the top level when FollowSymlinks is on")
}

func TestEnumerateMultipleSourcesUsesOwnRootForEach(t *testing.T) {
	dir := t.TempDir()
	srcA := filepath.Join(dir, "a")
	srcB := filepath.Join(dir, "b")
	writeFile(t, filepath.Join(srcA, "one.txt"), []byte("1"))
	writeFile(t, filepath.Join(srcB, "nested", "two.txt"), []byte("22"))
	root := filepath.Join(dir, "out")

	files, err := enumerate([]string{srcA, srcB}, root, Config{Recursive: true}, filter.NewChain())
	require.NoError(t, err)
	require.Len(t, files, 2)
}
