package ui

import "github.com/cclone/cclone/internal/stats"

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Totals and counters are set on the collector directly by the
		// engine; the quiet presenter only drains the channel.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
