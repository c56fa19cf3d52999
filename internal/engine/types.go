// Package engine implements the copy engine: enumeration, per-file
// scheduling on a worker pool, stats aggregation, and the per-file
// policy that decides overwrite, skip, or resume.
package engine

import "github.com/cclone/cclone/internal/strategy"

// Config describes one run of the copy engine. It is constructed once
// and borrowed for the run's duration.
type Config struct {
	Recursive            bool
	FollowSymlinks       bool
	Verify               bool
	Resume               bool
	Progress             bool
	Quiet                bool
	PreserveMetadata     bool
	Threads              int
	BufferSize           int64
	IncludePatterns      []string
	ExcludePatterns      []string
	ResumePath           string
	RateLimitBytesPerSec int64
	JournalPath          string
}

// CopyJob describes one file's copy, resolved during enumeration.
type CopyJob struct {
	Source      string
	Destination string
	RelPath     string // Destination path relative to the run's destination root.
	Size        int64
	Strategy    strategy.Tag
}
