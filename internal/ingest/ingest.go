package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
)

// ErrNoRoot means the folder to scan was not given.
var ErrNoRoot = errors.New("ingest: folder path is required")

// CardFile is a candidate card image found at the top level of a folder.
type CardFile struct {
	Path    string // root joined with the entry name
	Ext     string // lowercase, no dot
	Size    int64
	ModTime time.Time
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32 // entries listed
	Matched uint32 // regular files with an allowed extension
	Hidden  uint32 // matched entries dropped by SkipHidden
}

// ScanOptions tunes ScanDirectory.
type ScanOptions struct {
	SkipHidden bool
	Logger     *slog.Logger
}

// ScanDirectory lists root without descending into subfolders and returns the
// regular files whose extension is allowed, in listing order (by name).
func ScanDirectory(root string, opts ScanOptions) ([]CardFile, DirStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, ErrNoRoot
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Error("ingest.scan.failed", "root", root, "error", err)
		return nil, stats, fmt.Errorf("read dir %s: %w", root, err)
	}

	var files []CardFile
	for _, e := range entries {
		stats.Scanned++
		if !constants.IsAllowed(e.Name()) {
			continue
		}
		path := filepath.Join(root, e.Name())
		// Follow symlinks; directories named like images are skipped.
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("ingest.scan.stat_failed", "path", path, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if opts.SkipHidden && IsHidden(path) {
			stats.Hidden++
			continue
		}
		stats.Matched++
		files = append(files, CardFile{
			Path:    path,
			Ext:     constants.NormalizeExt(filepath.Ext(path)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	logger.Debug("ingest.scan.ok", "root", root, "scanned", stats.Scanned, "matched", stats.Matched)
	return files, stats, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
