package strategy

import (
	"context"

	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/interrupt"
)

type asyncResult struct {
	n   int64
	err error
}

// copyAsync runs the DirectIO path on an independent task runner distinct
// from the caller's pool worker, returning when the detached task
// completes or when ctx is cancelled; cancellation does not stop the
// detached task, which runs to its own end. On Linux with kernel io_uring support it dispatches through
// that facility (see async_iouring_linux.go); elsewhere it just runs
// copyDirect on a fresh goroutine.
func copyAsync(ctx context.Context, src, dst string) (int64, error) {
	if interrupt.IsSet() {
		return 0, errs.New(errs.Interrupted, "cancelled before async dispatch")
	}

	resultCh := make(chan asyncResult, 1)
	go func() {
		if ringAvailable() {
			n, err := copyDirectURing(src, dst)
			resultCh <- asyncResult{n, err}
			return
		}
		n, err := copyDirect(src, dst)
		resultCh <- asyncResult{n, err}
	}()

	select {
	case res := <-resultCh:
		return res.n, res.err
	case <-ctx.Done():
		return 0, errs.New(errs.Interrupted, "context cancelled during async copy")
	}
}
