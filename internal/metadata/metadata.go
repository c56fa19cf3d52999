// Package metadata replicates mtime and POSIX permission bits from a
// source file onto its destination. Failures here are always logged,
// never propagated — they never change a copy job's outcome.
package metadata

import (
	"log/slog"
	"os"
	"time"
)

// Copy best-effort replicates src's mtime and permission bits onto dst.
func Copy(src, dst string) {
	info, err := os.Stat(src)
	if err != nil {
		slog.Warn("metadata: stat source failed", "src", src, "err", err)
		return
	}

	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		slog.Warn("metadata: set mtime failed", "dst", dst, "err", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		slog.Warn("metadata: set permissions failed", "dst", dst, "err", err)
	}
}
