package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cclone/cclone/internal/event"
	"github.com/cclone/cclone/internal/stats"
	"github.com/stretchr/testify/assert"
)

func TestPlainPresenterFileCompleted(t *testing.T) {
	var out, errOut bytes.Buffer
	collector := stats.New()

	p := &plainPresenter{w: &out, errW: &errOut, stat: collector}

	events := make(chan Event, 10)
	events <- Event{Type: event.FileCompleted, Path: "dir/file.txt", Size: 1024}
	events <- Event{Type: event.FileCompleted, Path: "dir/big.bin", Size: 1024 * 1024 * 100}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "dir/file.txt")
	assert.Contains(t, lines[1], "dir/big.bin")
}

func TestPlainPresenterFileFailed(t *testing.T) {
	var out, errOut bytes.Buffer
	collector := stats.New()

	p := &plainPresenter{w: &out, errW: &errOut, stat: collector}

	events := make(chan Event, 5)
	events <- Event{Type: event.FileFailed, Path: "fail.txt", Size: 512, Error: assert.AnError}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	assert.Contains(t, out.String(), "fail.txt")
	assert.Contains(t, out.String(), assert.AnError.Error())
}

func TestPlainPresenterFileSkipped(t *testing.T) {
	var out, errOut bytes.Buffer
	collector := stats.New()

	p := &plainPresenter{w: &out, errW: &errOut, stat: collector}

	events := make(chan Event, 5)
	events <- Event{Type: event.FileSkipped, Path: "skip.txt"}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	assert.Contains(t, out.String(), "skip.txt")
	assert.Contains(t, out.String(), "skipped")
}

func TestPlainPresenterFileVerifying(t *testing.T) {
	var out, errOut bytes.Buffer
	collector := stats.New()

	p := &plainPresenter{w: &out, errW: &errOut, stat: collector}

	events := make(chan Event, 5)
	events <- Event{Type: event.FileVerifying, Path: "big.bin"}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "big.bin  verifying")
}

func TestPlainPresenterRunInterrupted(t *testing.T) {
	var out, errOut bytes.Buffer
	collector := stats.New()

	p := &plainPresenter{w: &out, errW: &errOut, stat: collector}

	events := make(chan Event, 5)
	events <- Event{Type: event.RunInterrupted}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)
	assert.Contains(t, errOut.String(), "interrupted")
}

func TestPlainPresenterSummary(t *testing.T) {
	collector := stats.New()
	collector.AddFilesCopied(100)
	collector.AddBytesCopied(1024 * 1024)

	p := &plainPresenter{stat: collector}
	s := p.Summary()
	assert.Contains(t, s, "files 100")
	assert.Contains(t, s, "errors 0")
}
