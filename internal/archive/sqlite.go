package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	_ "modernc.org/sqlite"
)

// entriesSchema is the on-disk layout shared by SQLiteArchive and SQLiteWriter.
// The archive root is implicit: top-level nodes have parent = ''.
const entriesSchema = `
	CREATE TABLE IF NOT EXISTS entries (
		path TEXT PRIMARY KEY,
		parent TEXT NOT NULL,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		size INTEGER DEFAULT 0,
		mtime INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		data BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_entries_parent ON entries(parent, seq);
`

const (
	kindFile = 0
	kindDir  = 1
)

// DefaultCacheSize is the number of file contents SQLiteArchive keeps hot.
const DefaultCacheSize = 256

// SQLiteArchive implements Archive over a packed SQLite database.
// The database is opened read-only; build one with SQLiteWriter or Pack.
type SQLiteArchive struct {
	db     *sql.DB
	dbPath string
	cache  *blobCache
}

// OpenSQLite opens a packed archive database read-only.
func OpenSQLite(dbPath string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(4)

	// sql.Open is lazy; probe the table so a wrong file fails here, not on first read.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries WHERE parent = ''").Scan(&n); err != nil {
		_ = db.Close() // ignore close error
		return nil, fmt.Errorf("open archive %s: %w", dbPath, err)
	}

	return &SQLiteArchive{
		db:     db,
		dbPath: dbPath,
		cache:  newBlobCache(DefaultCacheSize),
	}, nil
}

// Path returns the database file backing the archive.
func (a *SQLiteArchive) Path() string { return a.dbPath }

// Root implements Reader.
func (a *SQLiteArchive) Root() Handle { return Handle{} }

// Resolve implements Reader.
func (a *SQLiteArchive) Resolve(base Handle, rel string) (Handle, error) {
	id := Join(base, rel)
	if id == "" {
		return Handle{}, nil
	}
	if _, err := a.kind(id); err != nil {
		return Handle{}, err
	}
	return Handle{id: id}, nil
}

// Children implements Reader.
func (a *SQLiteArchive) Children(dir Handle) ([]Handle, error) {
	if !dir.IsRoot() {
		k, err := a.kind(dir.id)
		if err != nil {
			return nil, err
		}
		if k != kindDir {
			return nil, fmt.Errorf("list %s: not a directory", dir.id)
		}
	}

	rows, err := a.db.Query("SELECT path FROM entries WHERE parent = ? ORDER BY seq", dir.id)
	if err != nil {
		return nil, fmt.Errorf("query children of %q: %w", dir.id, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []Handle
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		out = append(out, Handle{id: p})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children of %q: %w", dir.id, err)
	}
	return out, nil
}

// Name implements Reader.
func (a *SQLiteArchive) Name(h Handle) (string, error) {
	if h.IsRoot() {
		return "", nil
	}
	var name string
	err := a.db.QueryRow("SELECT name FROM entries WHERE path = ?", h.id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query name of %s: %w", h.id, err)
	}
	return name, nil
}

// ReadAll implements Reader.
func (a *SQLiteArchive) ReadAll(file Handle) ([]byte, error) {
	if data, ok := a.cache.get(file.id); ok {
		return data, nil
	}

	var (
		kind int
		data []byte
	)
	err := a.db.QueryRow("SELECT kind, data FROM entries WHERE path = ?", file.id).Scan(&kind, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.id, err)
	}
	if kind == kindDir {
		return nil, fmt.Errorf("read %s: is a directory", file.id)
	}

	a.cache.put(file.id, append([]byte(nil), data...))
	return data, nil
}

// Stat implements Archive.
func (a *SQLiteArchive) Stat(h Handle) (Entry, error) {
	if h.IsRoot() {
		return Entry{Name: "/", Mode: fs.ModeDir}, nil
	}
	var (
		name  string
		kind  int
		size  int64
		mtime int64
	)
	err := a.db.QueryRow("SELECT name, kind, size, mtime FROM entries WHERE path = ?", h.id).
		Scan(&name, &kind, &size, &mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", h.id, err)
	}
	e := Entry{Name: name, Size: size, ModTime: time.Unix(0, mtime)}
	if kind == kindDir {
		e.Mode = fs.ModeDir
		e.Size = 0
	}
	return e, nil
}

// Close closes the database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

func (a *SQLiteArchive) kind(id string) (int, error) {
	var k int
	err := a.db.QueryRow("SELECT kind FROM entries WHERE path = ?", id).Scan(&k)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", id, err)
	}
	return k, nil
}

var _ Archive = (*SQLiteArchive)(nil)
