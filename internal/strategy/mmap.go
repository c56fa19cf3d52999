package strategy

import (
	"context"
	"os"

	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/platform"
)

// copyMMap copies mid-size files through the platform layer's
// zero-copy-first path (copy_file_range/sendfile on Linux, clonefile on
// macOS, pread/pwrite everywhere else), falling back to the buffered
// path on any error the platform layer doesn't already absorb.
func copyMMap(src, dst string) (int64, error) {
	in, err := os.Stat(src)
	if err != nil {
		return 0, openErr(err, "stat source")
	}
	size := in.Size()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, openErr(err, "create destination")
	}
	defer out.Close()

	result, err := platform.CopyFile(platform.CopyFileParams{
		DstFd:   out,
		SrcPath: src,
		SrcSize: size,
	})
	if err != nil {
		return copyBuffered(context.Background(), src, dst, nil)
	}
	if result.BytesWritten != size {
		return result.BytesWritten, errs.New(errs.Unknown, "incomplete platform copy")
	}
	return result.BytesWritten, nil
}
