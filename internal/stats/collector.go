// Package stats holds the copy engine's shared, concurrently-mutated
// counters and the rolling-throughput bookkeeping the progress monitor
// renders from.
package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks the four CopyStats counters plus scan totals and a
// rolling throughput window, all lock-free except the ring buffer.
type Collector struct {
	filesCopied  atomic.Int64
	bytesCopied  atomic.Int64
	filesSkipped atomic.Int64
	errors       atomic.Int64

	filesTotal atomic.Int64
	bytesTotal atomic.Int64

	startTime time.Time

	mu         sync.Mutex
	throughput [ringSize]int64
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// New creates a Collector with startTime set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotal publishes the enumeration totals. Matches the Progress
// collaborator's set_total(files, bytes) contract.
func (c *Collector) SetTotal(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

// Update applies deltas to the processed counters. Matches the Progress
// collaborator's update(delta_files, delta_bytes) contract.
func (c *Collector) Update(deltaFiles, deltaBytes int64) {
	if deltaFiles != 0 {
		c.filesCopied.Add(deltaFiles)
	}
	if deltaBytes != 0 {
		c.bytesCopied.Add(deltaBytes)
	}
}

func (c *Collector) AddFilesCopied(n int64)  { c.filesCopied.Add(n) }
func (c *Collector) AddBytesCopied(n int64)  { c.bytesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64) { c.filesSkipped.Add(n) }
func (c *Collector) AddErrors(n int64)       { c.errors.Add(n) }

// Snapshot is a point-in-time, consistent read of all counters.
type Snapshot struct {
	FilesCopied  int64
	BytesCopied  int64
	FilesSkipped int64
	Errors       int64
	FilesTotal   int64
	BytesTotal   int64
	Elapsed      time.Duration
}

// Snapshot returns a consistent read. Callers should only treat it as
// authoritative after the worker pool has drained.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied:  c.filesCopied.Load(),
		BytesCopied:  c.bytesCopied.Load(),
		FilesSkipped: c.filesSkipped.Load(),
		Errors:       c.errors.Load(),
		FilesTotal:   c.filesTotal.Load(),
		BytesTotal:   c.bytesTotal.Load(),
		Elapsed:      time.Since(c.startTime),
	}
}

// Tick samples the bytes-copied delta into the rolling window. Called
// about once per second by the render loop.
func (c *Collector) Tick() {
	current := c.bytesCopied.Load()
	c.mu.Lock()
	defer c.mu.Unlock()
	delta := current - c.lastBytes
	c.lastBytes = current
	c.throughput[c.ringIdx] = delta
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns the average bytes/sec over the last n seconds of
// ticks.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := seconds
	if count > c.ringCount {
		count = c.ringCount
	}
	if count == 0 {
		return 0
	}
	var sum int64
	for i := 0; i < count; i++ {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time from rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}
