package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cclone/cclone/internal/filter"
	"github.com/cclone/cclone/internal/interrupt"
)

// enumeratedFile is one filesystem entry surviving enumeration and
// filtering, paired with the destination path computed from its own
// originating source root.
type enumeratedFile struct {
	source      string
	destination string
	size        int64
}

// enumerate walks every source and returns the eligible files beneath
// it, mapped onto destination paths under root. When a source is a
// single file (not a directory), its destination is root/filename; when
// it is a directory, destinations are computed relative to that source.
func enumerate(sources []string, root string, cfg Config, chain *filter.Chain) ([]enumeratedFile, error) {
	var out []enumeratedFile

	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			slog.Warn("enumerate: stat source failed", "path", source, "err", err)
			continue
		}

		if !info.IsDir() {
			if !chain.Match(filepath.Base(source)) {
				continue
			}
			out = append(out, enumeratedFile{
				source:      source,
				destination: filepath.Join(root, filepath.Base(source)),
				size:        info.Size(),
			})
			continue
		}

		if !cfg.Recursive {
			files, err := listImmediateChildren(source, root, cfg, chain)
			if err != nil {
				slog.Warn("enumerate: list source failed", "path", source, "err", err)
				continue
			}
			out = append(out, files...)
			continue
		}

		files, err := walkTree(source, root, cfg, chain)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}

	return out, nil
}

func listImmediateChildren(source, root string, cfg Config, chain *filter.Chain) ([]enumeratedFile, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", source, err)
	}

	var out []enumeratedFile
	for _, entry := range entries {
		if interrupt.IsSet() {
			return out, nil
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(source, entry.Name())
		info, err := entry.Info()
		if err != nil {
			slog.Warn("enumerate: stat entry failed", "path", entry.Name(), "err", err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if !cfg.FollowSymlinks {
				continue
			}
			resolved, err := os.Stat(path)
			if err != nil {
				slog.Warn("enumerate: resolve symlink failed", "path", path, "err", err)
				continue
			}
			info = resolved
		}
		if !eligible(info) {
			continue
		}
		if !chain.Match(entry.Name()) {
			continue
		}
		out = append(out, enumeratedFile{
			source:      path,
			destination: filepath.Join(root, entry.Name()),
			size:        info.Size(),
		})
	}
	return out, nil
}

func walkTree(source, root string, cfg Config, chain *filter.Chain) ([]enumeratedFile, error) {
	var out []enumeratedFile

	err := filepath.WalkDir(source, func(path string, d os.DirEntry, err error) error {
		if interrupt.IsSet() {
			return filepath.SkipAll
		}
		if err != nil {
			slog.Warn("enumerate: walk entry failed", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("enumerate: stat entry failed", "path", path, "err", err)
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if !cfg.FollowSymlinks {
				return nil
			}
			resolved, err := os.Stat(path)
			if err != nil {
				slog.Warn("enumerate: resolve symlink failed", "path", path, "err", err)
				return nil
			}
			info = resolved
		}
		if !eligible(info) {
			return nil
		}

		relPath, err := filepath.Rel(source, path)
		if err != nil {
			slog.Warn("enumerate: relative path failed", "path", path, "err", err)
			return nil
		}
		if !chain.Match(filepath.Base(path)) {
			return nil
		}

		out = append(out, enumeratedFile{
			source:      path,
			destination: filepath.Join(root, relPath),
			size:        info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", source, err)
	}
	return out, nil
}

func eligible(info os.FileInfo) bool {
	return info.Mode().IsRegular()
}
