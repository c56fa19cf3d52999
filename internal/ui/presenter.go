package ui

import (
	"io"

	"github.com/cclone/cclone/internal/stats"
)

// Presenter consumes engine events and renders per-file activity. It is
// distinct from the progress monitor: the monitor owns the single-line
// ANSI progress bar, while a Presenter prints one line per completed,
// skipped, or failed file — the "verbose" view.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     *stats.Collector
	Quiet     bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	return &plainPresenter{
		w:    cfg.Writer,
		errW: cfg.ErrWriter,
		stat: cfg.Stats,
	}
}
