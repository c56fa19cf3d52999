// Package strategy implements the size-keyed I/O strategy layer:
// buffered, mid-size (the MMap tag, copied through the platform layer's
// zero-copy paths rather than a memory map), direct (unbuffered,
// aligned), and async queued copy paths, each with platform fallback
// baked in.
package strategy

import (
	"context"

	"golang.org/x/time/rate"
)

// Tag identifies a copy strategy. The set is closed; dispatch is a
// single switch, not a vtable.
type Tag int

const (
	Buffered Tag = iota
	MMap
	DirectIO
	Async
)

func (t Tag) String() string {
	switch t {
	case Buffered:
		return "buffered"
	case MMap:
		return "mmap"
	case DirectIO:
		return "direct"
	case Async:
		return "async"
	default:
		return "unknown"
	}
}

const (
	mmapThreshold   = 1_000_000   // 1 MB
	directThreshold = 100_000_000 // 100 MB
)

// Select returns the strategy tag for a file of the given size, per the
// fixed size thresholds: <1MB buffered, 1MB..<100MB mmap, >=100MB direct.
func Select(size int64) Tag {
	switch {
	case size < mmapThreshold:
		return Buffered
	case size < directThreshold:
		return MMap
	default:
		return DirectIO
	}
}

// Copy dispatches to the strategy named by tag, returning the number of
// bytes written. Every arm presumes dst is already writable and that any
// prior destination has been handled by the caller. limiter may be nil,
// in which case the buffered path runs unthrottled; only the buffered
// path (the one that streams through an in-process read/write loop) honors
// a rate limit — mmap and direct I/O move data outside of that loop.
func Copy(ctx context.Context, tag Tag, src, dst string, limiter *rate.Limiter) (int64, error) {
	switch tag {
	case MMap:
		return copyMMap(src, dst)
	case DirectIO:
		return copyDirect(src, dst)
	case Async:
		return copyAsync(ctx, src, dst)
	case Buffered:
		fallthrough
	default:
		return copyBuffered(ctx, src, dst, limiter)
	}
}
