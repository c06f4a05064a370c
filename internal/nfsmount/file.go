package nfsmount

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

// archiveFile implements billy.File over one archive node. Content is
// fetched on the first read and kept until Close.
type archiveFile struct {
	name    string
	handle  archive.Handle
	size    int64
	archive archive.Reader

	once sync.Once
	data []byte
	err  error
	pos  int64
}

func (f *archiveFile) Name() string { return f.name }

func (f *archiveFile) load() ([]byte, error) {
	f.once.Do(func() {
		f.data, f.err = f.archive.ReadAll(f.handle)
	})
	return f.data, f.err
}

func (f *archiveFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *archiveFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &os.PathError{Op: "readat", Path: f.name, Err: os.ErrInvalid}
	}
	data, err := f.load()
	if err != nil {
		return 0, err
	}
	if off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *archiveFile) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = f.size + offset
	default:
		return f.pos, &os.PathError{Op: "seek", Path: f.name, Err: fmt.Errorf("%w: whence %d", os.ErrInvalid, whence)}
	}
	if newPos < 0 {
		return f.pos, &os.PathError{Op: "seek", Path: f.name, Err: fmt.Errorf("%w: negative position", os.ErrInvalid)}
	}
	f.pos = newPos
	return f.pos, nil
}

func (f *archiveFile) Write([]byte) (int, error) { return 0, errReadOnly }
func (f *archiveFile) Truncate(int64) error      { return errReadOnly }
func (f *archiveFile) Lock() error               { return nil }
func (f *archiveFile) Unlock() error             { return nil }

func (f *archiveFile) Close() error {
	f.data = nil
	return nil
}
