// Package resume implements the per-file progress record the chunked
// copy path persists when interrupted or failed: a small key-value text
// document written atomically (temp file + rename), so a restart can
// discover where a large copy left off.
package resume

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cclone/cclone/internal/errs"
)

// Info is a persisted resume record.
type Info struct {
	Source          string
	Destination     string
	CopiedBytes     uint64
	TotalBytes      uint64
	CompletedChunks []int
}

const defaultPath = ".cclone.resume"

// DefaultPath returns the default resume record location.
func DefaultPath() string { return defaultPath }

// Load reads a resume record from path. A missing file is not an error;
// it reports (zero, false, nil) meaning "no resume state."
func Load(path string) (Info, bool, error) {
	if path == "" {
		path = defaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, false, nil
		}
		return Info{}, false, errs.Wrap(errs.Unknown, "open resume record", err)
	}
	defer f.Close()

	info := Info{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "source":
			info.Source = value
		case "destination":
			info.Destination = value
		case "copied_bytes":
			n, _ := strconv.ParseUint(value, 10, 64)
			info.CopiedBytes = n
		case "total_bytes":
			n, _ := strconv.ParseUint(value, 10, 64)
			info.TotalBytes = n
		case "completed_chunks":
			info.CompletedChunks = parseChunkList(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return Info{}, false, errs.Wrap(errs.Unknown, "read resume record", err)
	}
	return info, true, nil
}

func parseChunkList(value string) []int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Save writes info to path atomically: a temp file in the same
// directory is written and fsynced, then renamed over the destination.
func Save(info Info, path string) error {
	if path == "" {
		path = defaultPath
	}
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()[:8]))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.Wrap(errs.PermissionDenied, "create resume temp file", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "source=%s\n", info.Source)
	fmt.Fprintf(&b, "destination=%s\n", info.Destination)
	fmt.Fprintf(&b, "copied_bytes=%d\n", info.CopiedBytes)
	fmt.Fprintf(&b, "total_bytes=%d\n", info.TotalBytes)
	fmt.Fprintf(&b, "completed_chunks=%s\n", joinChunkList(info.CompletedChunks))

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(tmp)
		return errs.Wrap(errs.Unknown, "write resume temp file", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errs.Wrap(errs.Unknown, "sync resume temp file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errs.Wrap(errs.Unknown, "close resume temp file", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errs.Wrap(errs.Unknown, "rename resume temp file", err)
	}
	return nil
}

func joinChunkList(chunks []int) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// Remove deletes the resume record at path, if present. Called on
// successful completion of the file it describes.
func Remove(path string) error {
	if path == "" {
		path = defaultPath
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.Unknown, "remove resume record", err)
	}
	return nil
}

// ShouldResume reports whether dst exists and is strictly smaller than
// src, the signal that a partial copy can be resumed.
func ShouldResume(src, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errs.Wrap(errs.Unknown, "stat destination", err)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, errs.Wrap(errs.FileNotFound, "stat source", err)
	}
	return dstInfo.Size() < srcInfo.Size(), nil
}
