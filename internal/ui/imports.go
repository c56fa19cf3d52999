package ui

import "github.com/cclone/cclone/internal/event"

// Event is the presenter-facing alias for the engine's event type.
type Event = event.Event

// Re-export event type constants for presenter code.
const (
	ScanStarted    = event.ScanStarted
	ScanComplete   = event.ScanComplete
	FileStarted    = event.FileStarted
	FileProgress   = event.FileProgress
	FileVerifying  = event.FileVerifying
	FileCompleted  = event.FileCompleted
	FileSkipped    = event.FileSkipped
	FileFailed     = event.FileFailed
	RunInterrupted = event.RunInterrupted
)
