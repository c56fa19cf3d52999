package strategy

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/interrupt"
	"github.com/cclone/cclone/internal/ratelimit"
)

const bufferedBlockSize = 64 * 1024

// copyBuffered streams src to dst through a 64 KiB buffer, polling the
// interrupt flag between blocks. When limiter is non-nil, reads are
// throttled to the configured aggregate rate.
func copyBuffered(ctx context.Context, src, dst string, limiter *rate.Limiter) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, openErr(err, "open source")
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, openErr(err, "create destination")
	}
	defer out.Close()

	var reader io.Reader = in
	if limiter != nil {
		reader = ratelimit.NewReader(ctx, in, limiter)
	}

	buf := make([]byte, bufferedBlockSize)
	var total int64
	for {
		if interrupt.IsSet() {
			return total, errs.New(errs.Interrupted, "interrupted during buffered copy")
		}
		select {
		case <-ctx.Done():
			return total, errs.New(errs.Interrupted, "context cancelled during buffered copy")
		default:
		}

		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return total, errs.Wrap(errs.Unknown, "buffered write failed", werr)
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, errs.Wrap(errs.Unknown, "buffered read failed", rerr)
		}
	}
	return total, nil
}

func openErr(err error, context string) error {
	switch {
	case os.IsNotExist(err):
		return errs.Wrap(errs.FileNotFound, context, err)
	case os.IsPermission(err):
		return errs.Wrap(errs.PermissionDenied, context, err)
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.ETXTBSY):
		return errs.Wrap(errs.FileLocked, context, err)
	default:
		return errs.Wrap(errs.Unknown, context, err)
	}
}
