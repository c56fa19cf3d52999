// Package ratelimit throttles copy throughput to a configured aggregate
// bytes-per-second ceiling, shared across every concurrent copy task.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

const maxBurst = 1 << 20 // 1 MiB

// NewLimiter creates a rate.Limiter capping aggregate throughput to
// bytesPerSec. Burst is 1 MiB, or bytesPerSec itself when smaller, so
// natural read-size chunks pass through without unnecessary blocking.
func NewLimiter(bytesPerSec int64) *rate.Limiter {
	burst := maxBurst
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// Reader wraps an io.Reader and enforces a shared rate limit.
type Reader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// NewReader wraps r so reads are throttled by limiter.
func NewReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) *Reader {
	return &Reader{r: r, limiter: limiter, ctx: ctx}
}

func (rl *Reader) Read(p []byte) (int, error) {
	n, err := rl.r.Read(p)
	if n > 0 {
		if waitErr := waitN(rl.ctx, rl.limiter, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// waitN blocks until n tokens have been taken from limiter, in steps no
// larger than its burst, so a read or write bigger than the burst is
// throttled rather than rejected.
func waitN(ctx context.Context, limiter *rate.Limiter, n int) error {
	for n > 0 {
		step := n
		if b := limiter.Burst(); b > 0 && step > b {
			step = b
		}
		if err := limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// Writer wraps an io.Writer and enforces a shared rate limit.
type Writer struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

// NewWriter wraps w so writes are throttled by limiter.
func NewWriter(ctx context.Context, w io.Writer, limiter *rate.Limiter) *Writer {
	return &Writer{w: w, limiter: limiter, ctx: ctx}
}

func (rw *Writer) Write(p []byte) (int, error) {
	if err := waitN(rw.ctx, rw.limiter, len(p)); err != nil {
		return 0, err
	}
	return rw.w.Write(p)
}
