// Package chunked implements the chunked-parallel copy path used for
// files too large to copy in one strategy call: the file is split into
// aligned chunks, copied concurrently on an independent task runner, and
// progress is persisted so an interrupted copy can be resumed.
package chunked

import (
	"context"
	"os"
	"sync"

	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/interrupt"
	"github.com/cclone/cclone/internal/resume"
)

const defaultChunkSize = 4 * 1024 * 1024 // 4 MiB

// Config controls a chunked copy.
type Config struct {
	ChunkSize  int64 // default 4 MiB
	Threads    int   // concurrent chunk tasks; default 4
	Resume     bool
	ResumePath string
}

// Range is a byte range within the file: [Offset, Offset+Length).
type Range struct {
	Index  int
	Offset int64
	Length int64
}

// Copy splits src into chunks and copies them into dst in parallel.
// If cfg.Resume is set and a matching resume record exists, chunks it
// already marks complete are skipped. On failure or interruption, a
// resume record is written (if enabled); the partial destination is
// removed only when resume is disabled, since a chunk restart needs the
// bytes already written to the destination still there to skip over.
func Copy(ctx context.Context, src, dst string, size int64, cfg Config) (int64, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}

	ranges := splitChunks(size, cfg.ChunkSize)

	alreadyDone := map[int]bool{}
	if cfg.Resume {
		if info, ok, _ := resume.Load(cfg.ResumePath); ok &&
			info.Source == src && info.Destination == dst && info.TotalBytes == uint64(size) {
			for _, idx := range info.CompletedChunks {
				alreadyDone[idx] = true
			}
		}
	}

	if err := preallocate(dst, size); err != nil {
		return 0, err
	}

	var mu sync.Mutex
	completed := make([]int, 0, len(ranges))
	for idx := range alreadyDone {
		completed = append(completed, idx)
	}

	sem := make(chan struct{}, cfg.Threads)
	var wg sync.WaitGroup
	errCh := make(chan error, len(ranges))

	for _, r := range ranges {
		if alreadyDone[r.Index] {
			continue
		}
		r := r
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if interrupt.IsSet() {
				errCh <- errs.New(errs.Interrupted, "interrupted before chunk start")
				return
			}
			select {
			case <-ctx.Done():
				errCh <- errs.New(errs.Interrupted, "context cancelled before chunk start")
				return
			default:
			}

			if err := copyChunk(src, dst, r); err != nil {
				errCh <- err
				return
			}

			mu.Lock()
			completed = append(completed, r.Index)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errCh)

	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
		}
	}
	if !interrupt.IsSet() {
		select {
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = errs.New(errs.Interrupted, "context cancelled during chunked copy")
			}
		default:
		}
	}

	if firstErr == nil && interrupt.IsSet() {
		firstErr = errs.New(errs.Interrupted, "interrupted during chunked copy")
	}

	if firstErr != nil {
		var copiedBytes int64
		for range completed {
			copiedBytes += cfg.ChunkSize
		}
		if cfg.Resume {
			info := resume.Info{
				Source:          src,
				Destination:     dst,
				CopiedBytes:     uint64(clampCopied(copiedBytes, size)),
				TotalBytes:      uint64(size),
				CompletedChunks: completed,
			}
			_ = resume.Save(info, cfg.ResumePath)
		} else {
			_ = os.Remove(dst)
		}
		return 0, firstErr
	}

	if cfg.Resume {
		_ = resume.Remove(cfg.ResumePath)
	}
	return size, nil
}

func clampCopied(n, max int64) int64 {
	if n > max {
		return max
	}
	return n
}

// splitChunks partitions size into ChunkSize-aligned ranges; the last
// range's length is size-offset, never larger.
func splitChunks(size, chunkSize int64) []Range {
	if size == 0 {
		return nil
	}
	numChunks := (size + chunkSize - 1) / chunkSize
	ranges := make([]Range, 0, numChunks)
	var offset int64
	idx := 0
	for offset < size {
		length := chunkSize
		if offset+length > size {
			length = size - offset
		}
		ranges = append(ranges, Range{Index: idx, Offset: offset, Length: length})
		offset += length
		idx++
	}
	return ranges
}

// preallocate grows dst to size bytes by seeking to size-1 and writing a
// single zero byte, per the chunked copy algorithm's preallocation step.
func preallocate(dst string, size int64) error {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return errs.Wrap(errs.PermissionDenied, "create destination for preallocation", err)
	}
	defer f.Close()

	if size == 0 {
		return nil
	}
	if _, err := f.Seek(size-1, 0); err != nil {
		return errs.Wrap(errs.Unknown, "seek for preallocation", err)
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return errs.Wrap(errs.DiskFull, "write for preallocation", err)
	}
	return nil
}

// copyChunk opens src read-only and dst write-only and copies exactly
// r.Length bytes at r's offset with position-explicit pread/pwrite
// (ReadAt/WriteAt), so concurrent chunk tasks never share descriptor state.
func copyChunk(src, dst string, r Range) error {
	in, err := os.Open(src)
	if err != nil {
		return errs.Wrap(errs.FileNotFound, "open source chunk", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Wrap(errs.PermissionDenied, "open destination chunk", err)
	}
	defer out.Close()

	buf := make([]byte, r.Length)
	n, err := in.ReadAt(buf, r.Offset)
	if err != nil && int64(n) != r.Length {
		return errs.Wrap(errs.Unknown, "pread-equivalent chunk read", err)
	}
	if int64(n) != r.Length {
		return errs.New(errs.Unknown, "short read on chunk")
	}

	written, err := out.WriteAt(buf[:n], r.Offset)
	if err != nil {
		return errs.Wrap(errs.DiskFull, "pwrite-equivalent chunk write", err)
	}
	if int64(written) != r.Length {
		return errs.New(errs.Unknown, "short write on chunk")
	}
	return nil
}
