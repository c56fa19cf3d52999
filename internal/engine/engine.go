package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/time/rate"

	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/event"
	"github.com/cclone/cclone/internal/filter"
	"github.com/cclone/cclone/internal/interrupt"
	"github.com/cclone/cclone/internal/journal"
	"github.com/cclone/cclone/internal/ratelimit"
	"github.com/cclone/cclone/internal/stats"
	"github.com/cclone/cclone/internal/strategy"
	"github.com/cclone/cclone/internal/workerpool"
)

// Run is the copy engine's main orchestrator (§4.11). It enumerates
// sources, dispatches per-file copies on a worker pool, and returns a
// final stats snapshot. collector and events are borrowed for the run's
// duration; Run closes events when it returns. events may be nil if the
// caller does not want per-file notifications.
func Run(ctx context.Context, sources []string, destination string, cfg Config, collector *stats.Collector, events chan<- event.Event) (stats.Snapshot, error) {
	if events != nil {
		defer close(events)
	}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return stats.Snapshot{}, errs.Wrap(errs.PermissionDenied, "create destination", err)
	}

	chain := filter.NewChain()
	filter.AddIncludes(chain, cfg.IncludePatterns)
	filter.AddExcludes(chain, cfg.ExcludePatterns)

	emit(events, event.Event{Type: event.ScanStarted, Timestamp: now()})
	files, err := enumerate(sources, destination, cfg, chain)
	if err != nil {
		return stats.Snapshot{}, err
	}

	var totalBytes int64
	jobs := make([]CopyJob, len(files))
	for i, f := range files {
		relPath, err := filepath.Rel(destination, f.destination)
		if err != nil {
			relPath = f.destination
		}
		jobs[i] = CopyJob{
			Source:      f.source,
			Destination: f.destination,
			RelPath:     relPath,
			Size:        f.size,
			Strategy:    strategy.Select(f.size),
		}
		totalBytes += f.size
	}
	collector.SetTotal(int64(len(jobs)), totalBytes)
	emit(events, event.Event{Type: event.ScanComplete, Timestamp: now(), Total: int64(len(jobs)), TotalSize: totalBytes})

	var limiter *rate.Limiter
	if cfg.RateLimitBytesPerSec > 0 {
		limiter = ratelimit.NewLimiter(cfg.RateLimitBytesPerSec)
	}

	var jrnl *journal.Journal
	if cfg.JournalPath != "" && len(sources) > 0 {
		jrnl, err = journal.Open(cfg.JournalPath, sources[0], destination)
		if err != nil {
			jrnl = nil
		} else {
			defer jrnl.Close()
		}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	pool := workerpool.New(threads)

	for _, job := range jobs {
		if interrupt.IsSet() {
			break
		}
		job := job
		if err := pool.Submit(func() { runOne(ctx, job, cfg, collector, events, limiter, jrnl) }); err != nil {
			collector.AddErrors(1)
		}
	}

	if interrupt.IsSet() {
		// Discard anything still queued rather than waiting for each
		// task to dequeue and bail out on its own interrupt check.
		pool.Drop()
	} else {
		pool.Wait()
		pool.Close()
	}

	if interrupt.IsSet() {
		emit(events, event.Event{Type: event.RunInterrupted, Timestamp: now()})
		return collector.Snapshot(), errs.New(errs.Interrupted, "run interrupted")
	}

	return collector.Snapshot(), nil
}

func runOne(ctx context.Context, job CopyJob, cfg Config, collector *stats.Collector, events chan<- event.Event, limiter *rate.Limiter, jrnl *journal.Journal) {
	if interrupt.IsSet() {
		return
	}

	emit(events, event.Event{Type: event.FileStarted, Timestamp: now(), Path: job.Source, Size: job.Size})

	if jrnl != nil {
		if srcInfo, err := os.Stat(job.Source); err == nil {
			if jrnl.IsCompleted(job.RelPath, job.Size, srcInfo.ModTime().UnixNano()) {
				collector.AddFilesSkipped(1)
				emit(events, event.Event{Type: event.FileSkipped, Timestamp: now(), Path: job.Source})
				return
			}
		}
	}

	if cfg.Verify {
		emit(events, event.Event{Type: event.FileVerifying, Timestamp: now(), Path: job.Source})
	}

	result := applyPolicy(ctx, job, cfg, limiter)
	switch {
	case result.err != nil:
		collector.AddErrors(1)
		emit(events, event.Event{Type: event.FileFailed, Timestamp: now(), Path: job.Source, Size: job.Size, Error: result.err})
	case !result.copied:
		collector.AddFilesSkipped(1)
		emit(events, event.Event{Type: event.FileSkipped, Timestamp: now(), Path: job.Source})
	default:
		collector.Update(1, result.bytes)
		if jrnl != nil {
			if srcInfo, err := os.Stat(job.Source); err == nil {
				_ = jrnl.MarkCompleted(job.RelPath, job.Size, result.digest, srcInfo.ModTime().UnixNano())
			}
		}
		emit(events, event.Event{Type: event.FileCompleted, Timestamp: now(), Path: job.Source, Size: result.bytes})
	}
}

func emit(events chan<- event.Event, ev event.Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
	}
}

func now() time.Time { return time.Now() }
