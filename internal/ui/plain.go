package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/cclone/cclone/internal/stats"
)

// plainPresenter outputs one line per completed, skipped, or failed
// file, plus a periodic progress line to its error writer.
type plainPresenter struct {
	w    io.Writer
	errW io.Writer
	stat *stats.Collector
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanComplete:
		p.stat.SetTotal(ev.Total, ev.TotalSize)
	case FileCompleted:
		speed := p.stat.RollingSpeed(5)
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), FormatRate(speed))
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), errMsg)
	case FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case FileVerifying:
		fmt.Fprintf(p.w, "%s  verifying\n", ev.Path)
	case RunInterrupted:
		fmt.Fprintln(p.errW, "interrupted")
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stat.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		speed := p.stat.RollingSpeed(10)
		eta := p.stat.ETA()
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s files %s eta %s\n",
			pct,
			FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
			FormatCount(snap.FilesCopied), FormatCount(snap.FilesTotal),
			FormatRate(speed),
			FormatETA(eta),
		)
	} else {
		fmt.Fprintf(p.errW, "progress: %s copied %s files\n",
			FormatBytes(snap.BytesCopied),
			FormatCount(snap.FilesCopied),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return completionSummary(p.stat.Snapshot())
}
