// Package journal implements the transfer journal: a supplementary,
// non-authoritative SQLite record of files completed during a run. It
// is not the resume mechanism — internal/resume owns that contract for
// a single large file's chunk progress — but it lets a caller audit or
// resume-skip whole files across an entire multi-file run without
// re-hashing every destination.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cclone/cclone/internal/hash"
)

// Journal is a batched, SQLite-backed ledger of completed files for one
// source/destination pair (checked on Open), with one row per file keyed
// by its path relative to the destination root.
type Journal struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	batch   []entry
	done    chan struct{}
	stopped bool
}

type entry struct {
	relPath string
	size    int64
	digest  uint64
	mtime   int64
}

const batchFlushSize = 100

// DefaultPath returns the journal path for a source/destination pair
// under XDG_RUNTIME_DIR, falling back to the system temp directory.
func DefaultPath(source, destination string) string {
	jobID := hash.JobID(source, destination)
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "cclone", jobID+".db")
	}
	return filepath.Join(os.TempDir(), "cclone-"+jobID+".db")
}

// Open opens (or creates) the journal database at path, validating that
// any existing journal was recorded for the same source/destination
// pair. A background flusher batches writes every 500ms.
func Open(path, source, destination string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	j := &Journal{db: db, path: path, done: make(chan struct{})}
	if err := j.init(source, destination); err != nil {
		db.Close()
		return nil, err
	}

	go j.flushLoop()
	return j, nil
}

func (j *Journal) init(source, destination string) error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS completed (
			path  TEXT PRIMARY KEY,
			size  INTEGER NOT NULL,
			hash  INTEGER NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	var storedSrc string
	row := j.db.QueryRow("SELECT value FROM meta WHERE key = 'source'")
	if err := row.Scan(&storedSrc); err == nil {
		var storedDst string
		row2 := j.db.QueryRow("SELECT value FROM meta WHERE key = 'destination'")
		if err := row2.Scan(&storedDst); err == nil {
			if storedSrc != source || storedDst != destination {
				return fmt.Errorf("journal roots mismatch: stored %s->%s, got %s->%s",
					storedSrc, storedDst, source, destination)
			}
		}
		return nil
	}

	_, err = j.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('source', ?), ('destination', ?)",
		source, destination)
	if err != nil {
		return fmt.Errorf("store meta: %w", err)
	}
	return nil
}

// IsCompleted reports whether relPath is already recorded with a
// matching size and mtime, meaning this run can skip it entirely.
func (j *Journal) IsCompleted(relPath string, size, mtimeNano int64) bool {
	var storedSize, storedMtime int64
	err := j.db.QueryRow("SELECT size, mtime FROM completed WHERE path = ?", relPath).
		Scan(&storedSize, &storedMtime)
	if err != nil {
		return false
	}
	return storedSize == size && storedMtime == mtimeNano
}

// MarkCompleted records relPath as copied. Writes are batched.
func (j *Journal) MarkCompleted(relPath string, size int64, digest uint64, mtimeNano int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.batch = append(j.batch, entry{relPath: relPath, size: size, digest: digest, mtime: mtimeNano})
	if len(j.batch) >= batchFlushSize {
		return j.flushLocked()
	}
	return nil
}

// Flush writes any pending batch entries immediately.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	if len(j.batch) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO completed (path, size, hash, mtime) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range j.batch {
		if _, err := stmt.Exec(e.relPath, e.size, e.digest, e.mtime); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.relPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	j.batch = j.batch[:0]
	return nil
}

func (j *Journal) flushLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.mu.Lock()
			_ = j.flushLocked()
			j.mu.Unlock()
		}
	}
}

// Close flushes pending writes and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if !j.stopped {
		j.stopped = true
		close(j.done)
	}
	_ = j.flushLocked()
	j.mu.Unlock()
	return j.db.Close()
}

// Remove deletes the journal database file.
func (j *Journal) Remove() error {
	return os.Remove(j.path)
}

// Path returns the filesystem path of the journal database.
func (j *Journal) Path() string {
	return j.path
}
