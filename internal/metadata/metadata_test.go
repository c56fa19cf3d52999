package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyReplicatesMtimeAndPerms(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("x"), 0o644))

	mtime := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	Copy(src, dst)

	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, mtime, dstInfo.ModTime())
	assert.Equal(t, os.FileMode(0o600), dstInfo.Mode().Perm())
}

func TestCopyMissingSourceDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	assert.NotPanics(t, func() {
		Copy(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	})
}
