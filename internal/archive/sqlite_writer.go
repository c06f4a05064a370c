package archive

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteWriter builds a packed archive database. Parent directories are
// created on demand; children keep the order in which they were added.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	batchSize int
	count     int
	mu        sync.Mutex

	dirs map[string]bool // directories already written
	seq  map[string]int  // parent path → next child sequence number
}

// NewSQLiteWriter creates a new writer and initializes the schema.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(entriesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		db:        db,
		batchSize: 10000,
		dirs:      make(map[string]bool),
		seq:       make(map[string]int),
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmt, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO entries (path, parent, name, kind, size, mtime, seq, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

func (w *SQLiteWriter) commitTx() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
	}
	return w.tx.Commit()
}

// AddDir writes a directory entry (and any missing parents).
func (w *SQLiteWriter) AddDir(p string, mtime time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ensureDir(cleanID(p), mtime)
}

// AddFile writes a file entry, creating missing parent directories.
func (w *SQLiteWriter) AddFile(p string, data []byte, mtime time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := cleanID(p)
	if id == "" {
		return fmt.Errorf("add file: empty path")
	}
	parent := parentID(id)
	if err := w.ensureDir(parent, mtime); err != nil {
		return err
	}
	return w.insert(id, parent, kindFile, data, mtime)
}

// ensureDir must be called with w.mu held.
func (w *SQLiteWriter) ensureDir(id string, mtime time.Time) error {
	if id == "" || w.dirs[id] {
		return nil
	}
	parent := parentID(id)
	if err := w.ensureDir(parent, mtime); err != nil {
		return err
	}
	if err := w.insert(id, parent, kindDir, nil, mtime); err != nil {
		return err
	}
	w.dirs[id] = true
	return nil
}

// insert must be called with w.mu held.
func (w *SQLiteWriter) insert(id, parent string, kind int, data []byte, mtime time.Time) error {
	seq := w.seq[parent]
	w.seq[parent] = seq + 1

	if _, err := w.stmt.Exec(id, parent, baseName(id), kind, len(data), mtime.UnixNano(), seq, data); err != nil {
		return fmt.Errorf("insert %s: %w", id, err)
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		if err := w.beginTx(); err != nil {
			return fmt.Errorf("begin batch: %w", err)
		}
		w.count = 0
	}
	return nil
}

// Close commits pending entries and closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}
