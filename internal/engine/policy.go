package engine

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/cclone/cclone/internal/chunked"
	"github.com/cclone/cclone/internal/errs"
	"github.com/cclone/cclone/internal/hash"
	"github.com/cclone/cclone/internal/metadata"
	"github.com/cclone/cclone/internal/resume"
	"github.com/cclone/cclone/internal/retry"
	"github.com/cclone/cclone/internal/strategy"
)

const chunkedThreshold = 100_000_000 // 100 MB, matches strategy.DirectIO's floor

// planResult reports the outcome of applying the per-file policy.
type planResult struct {
	copied bool
	bytes  int64
	digest uint64 // destination content hash, set only when cfg.Verify ran
	err    error
}

// applyPolicy implements §4.12: check the existing destination, pick a
// strategy, copy, optionally verify and copy metadata.
func applyPolicy(ctx context.Context, job CopyJob, cfg Config, limiter *rate.Limiter) planResult {
	if dstInfo, err := os.Stat(job.Destination); err == nil {
		switch {
		case !cfg.Resume:
			if err := os.Remove(job.Destination); err != nil {
				return planResult{err: errs.Wrap(errs.PermissionDenied, "remove existing destination", err)}
			}
		case job.Size >= chunkedThreshold && cfg.Threads > 1:
			// The chunked path preallocates the destination to full size
			// on its first attempt, so a size comparison can't tell
			// in-progress from complete here; only a matching resume
			// record can. No record means the file finished cleanly (or
			// predates chunking) and resume.Remove already cleared it.
			info, ok, _ := resume.Load(jobResumePath(cfg.ResumePath, job.Source, job.Destination))
			matches := ok && info.Source == job.Source && info.Destination == job.Destination && info.TotalBytes == uint64(job.Size)
			if !matches {
				return planResult{copied: false}
			}
			// else: leave the partial destination in place; copyFile
			// re-dispatches into chunked.Copy to finish the remaining
			// chunk indices.
		default:
			resumable, err := resume.ShouldResume(job.Source, job.Destination)
			if err != nil {
				return planResult{err: errs.Wrap(errs.Unknown, "check resume state", err)}
			}
			if !resumable && dstInfo.Size() == job.Size {
				return planResult{copied: false}
			}
			// else: destination is a strictly-smaller partial copy left
			// by an interrupted strategy-layer copy, or is larger than
			// the source; fall through and let copyFile overwrite it
			// from scratch.
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.Destination), 0o755); err != nil {
		return planResult{err: errs.Wrap(errs.PermissionDenied, "create destination directory", err)}
	}

	written, err := copyFile(ctx, job, cfg, limiter)
	if err != nil {
		return planResult{err: err}
	}

	var digest uint64
	if cfg.Verify {
		srcHash, err := hash.File(job.Source)
		if err != nil {
			return planResult{err: errs.Wrap(errs.Unknown, "verify failed", err)}
		}
		dstHash, err := hash.File(job.Destination)
		if err != nil {
			return planResult{err: errs.Wrap(errs.Unknown, "verify failed", err)}
		}
		if srcHash != dstHash {
			return planResult{err: errs.New(errs.ChecksumMismatch, "content digest mismatch")}
		}
		digest = dstHash
	}

	if cfg.PreserveMetadata {
		metadata.Copy(job.Source, job.Destination)
	}

	return planResult{copied: true, bytes: written, digest: digest}
}

// copyFile dispatches to chunked or single-stream strategy copy, retrying
// transient failures (an open refused because the file is busy, which the
// strategy layer reports as FileLocked) with backoff before surfacing the
// error.
func copyFile(ctx context.Context, job CopyJob, cfg Config, limiter *rate.Limiter) (int64, error) {
	return retry.Do(retry.DefaultPolicy(), func() (int64, error) {
		if job.Size >= chunkedThreshold && cfg.Threads > 1 {
			return chunked.Copy(ctx, job.Source, job.Destination, job.Size, chunked.Config{
				ChunkSize:  cfg.BufferSize,
				Threads:    cfg.Threads,
				Resume:     cfg.Resume,
				ResumePath: jobResumePath(cfg.ResumePath, job.Source, job.Destination),
			})
		}
		if job.Size >= chunkedThreshold {
			return strategy.Copy(ctx, strategy.Async, job.Source, job.Destination, limiter)
		}
		return strategy.Copy(ctx, job.Strategy, job.Source, job.Destination, limiter)
	})
}

// jobResumePath namespaces base (the configured --resume-path, or the
// package default if unset) with this job's content-independent
// fingerprint, so two large files chunk-copying concurrently under the
// same run never load or clobber each other's resume record.
func jobResumePath(base, src, dst string) string {
	if base == "" {
		base = resume.DefaultPath()
	}
	return base + "." + hash.JobID(src, dst)
}
