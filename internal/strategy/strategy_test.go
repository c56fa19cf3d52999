package strategy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclone/cclone/internal/ratelimit"
)

func TestSelectThresholds(t *testing.T) {
	assert.Equal(t, Buffered, Select(0))
	assert.Equal(t, Buffered, Select(999_999))
	assert.Equal(t, MMap, Select(1_000_000))
	assert.Equal(t, MMap, Select(99_999_999))
	assert.Equal(t, DirectIO, Select(100_000_000))
	assert.Equal(t, DirectIO, Select(1 << 30))
}

func TestCopyBufferedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	content := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	n, err := Copy(context.Background(), Buffered, src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCopyBufferedHonorsRateLimit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	content := make([]byte, 20*1024)
	require.NoError(t, os.WriteFile(src, content, 0o644))

	limiter := ratelimit.NewLimiter(5 * 1024)
	n, err := Copy(context.Background(), Buffered, src, dst, limiter)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
}

func TestCopyMMapRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	content := make([]byte, 2_000_000)
	for i := range content {
		content[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(src, content, 0o644))

	n, err := Copy(context.Background(), MMap, src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCopyMissingSourceErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Copy(context.Background(), Buffered, filepath.Join(dir, "nope"), filepath.Join(dir, "dst"), nil)
	require.Error(t, err)
}
