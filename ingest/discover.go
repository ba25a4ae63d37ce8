package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jshaughn618/story-search/extract"
)

// SourceFile is one discovered candidate for indexing.
type SourceFile struct {
	Path string
	Ext  string // lowercase, with dot
	Size int64
}

// Discover recursively walks root for files with accepted extensions.
// Results are sorted by path so runs are deterministic. Files larger
// than maxFileSize (when positive) are skipped with a warning.
func Discover(root string, maxFileSize int64, logger *slog.Logger) ([]SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoInputDir, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoInputDir, root)
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !extract.Supported(ext) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if maxFileSize > 0 && fi.Size() > maxFileSize {
			logger.Warn("skipping oversized file", "path", path, "size", fi.Size(), "limit", maxFileSize)
			return nil
		}
		files = append(files, SourceFile{Path: path, Ext: ext, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
