package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// PackStats summarizes a Pack run.
type PackStats struct {
	Dirs  int
	Files int
	Bytes int64
}

// Pack copies the tree under root in fsys into w. Archive paths are the
// slash-separated paths relative to root; entries are added in lexical
// order, which becomes the archive's child order.
func Pack(fsys afero.Fs, root string, w *SQLiteWriter) (PackStats, error) {
	var stats PackStats
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			stats.Dirs++
			return w.AddDir(rel, info.ModTime())
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		stats.Files++
		stats.Bytes += int64(len(data))
		return w.AddFile(rel, data, info.ModTime())
	})
	if err != nil {
		return stats, fmt.Errorf("pack %s: %w", root, err)
	}
	return stats, nil
}
