package archive

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
)

// Open opens the archive at p: a directory is served as an extracted tree
// through osfs, a regular file is treated as a packed SQLite archive.
// Release it with Close.
func Open(p string) (Archive, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if info.IsDir() {
		return NewBillyArchive(osfs.New(p)), nil
	}
	return OpenSQLite(p)
}
