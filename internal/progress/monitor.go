// Package progress implements the Progress Monitor: a thin wrapper
// around the shared stats collector that periodically renders a
// single-line progress display, grounded on the original
// implementation's monitoring thread (100 ms tick, ANSI clear-line,
// fixed-width bar, unit-scaled throughput, derived ETA).
package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cclone/cclone/internal/stats"
)

const (
	renderInterval    = 100 * time.Millisecond
	defaultBarWidth   = 20
	minBarWidth       = 10
	nonBarColumnWidth = 45 // room for "[] 999.9 MB/s | ETA: 00:00:00 | 999/999 files"
)

// Monitor renders stats.Collector state to w on a background ticker.
// When disabled or quiet, counters still update but nothing renders.
type Monitor struct {
	collector *stats.Collector
	w         io.Writer
	enabled   bool
	quiet     bool
	barWidth  int

	shutdown atomic.Bool
	rendered atomic.Bool
	wg       sync.WaitGroup
	once     sync.Once
}

// New creates a Monitor over collector. If enabled is false or quiet is
// true, no rendering thread is started, but SetTotal/Update still work.
// termWidth sizes the bar to fit the terminal, clamped to
// [minBarWidth, defaultBarWidth]; 0 or a too-narrow value falls back to
// defaultBarWidth.
func New(collector *stats.Collector, w io.Writer, enabled, quiet bool, termWidth int) *Monitor {
	m := &Monitor{
		collector: collector,
		w:         w,
		enabled:   enabled && !quiet,
		quiet:     quiet,
		barWidth:  barWidthFor(termWidth),
	}
	if m.enabled {
		m.wg.Add(1)
		go m.renderLoop()
	}
	return m
}

func barWidthFor(termWidth int) int {
	fit := termWidth - nonBarColumnWidth
	if fit >= defaultBarWidth {
		return defaultBarWidth
	}
	if fit >= minBarWidth {
		return fit
	}
	return defaultBarWidth
}

// SetTotal publishes enumeration totals.
func (m *Monitor) SetTotal(files, bytes int64) {
	m.collector.SetTotal(files, bytes)
}

// Update applies delta counters.
func (m *Monitor) Update(deltaFiles, deltaBytes int64) {
	m.collector.Update(deltaFiles, deltaBytes)
}

func (m *Monitor) renderLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()
	// The collector's throughput ring holds one sample per second.
	rendersPerSample := int(time.Second / renderInterval)
	for n := 1; ; n++ {
		if m.shutdown.Load() {
			m.render()
			return
		}
		<-ticker.C
		if n%rendersPerSample == 0 {
			m.collector.Tick()
		}
		m.render()
	}
}

func (m *Monitor) render() {
	if m.quiet || !m.enabled {
		return
	}
	snap := m.collector.Snapshot()
	if snap.FilesTotal == 0 {
		return
	}

	fileProgress := float64(snap.FilesCopied) / float64(snap.FilesTotal)
	filled := int(fileProgress * float64(m.barWidth))
	if filled > m.barWidth {
		filled = m.barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", m.barWidth-filled)

	speed := m.collector.RollingSpeed(5)
	eta := m.collector.ETA()

	fmt.Fprintf(m.w, "\r\033[K[%s] %s | ETA: %s | %d/%d files",
		bar, formatRate(speed), formatETA(eta), snap.FilesCopied, snap.FilesTotal)
	m.rendered.Store(true)
}

// Close stops the rendering thread, performing one final render and,
// when any progress line was rendered, a trailing newline.
func (m *Monitor) Close() {
	m.once.Do(func() {
		if !m.enabled {
			return
		}
		m.shutdown.Store(true)
		m.wg.Wait()
		if m.rendered.Load() {
			fmt.Fprintln(m.w)
		}
	})
}

func formatRate(bytesPerSec float64) string {
	unit := "B/s"
	speed := bytesPerSec
	switch {
	case speed > 1024*1024*1024:
		speed /= 1024 * 1024 * 1024
		unit = "GB/s"
	case speed > 1024*1024:
		speed /= 1024 * 1024
		unit = "MB/s"
	case speed > 1024:
		speed /= 1024
		unit = "KB/s"
	}
	return fmt.Sprintf("%.1f %s", speed, unit)
}

func formatETA(d time.Duration) string {
	sec := d.Seconds()
	if math.IsInf(sec, 0) || math.IsNaN(sec) || sec <= 0 {
		return "inf"
	}
	seconds := int(sec)
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds %= 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
