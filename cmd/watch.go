package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

// reloadDelay coalesces the burst of events a pack or copy produces.
const reloadDelay = 500 * time.Millisecond

// archiveWatcher reopens an archive when it changes on disk and swaps it
// into a HotSwap.
type archiveWatcher struct {
	path    string
	isFile  bool
	hs      *archive.HotSwap
	log     zerolog.Logger
	watcher *fsnotify.Watcher
	open    func(string) (archive.Archive, error)

	done chan struct{}
	wg   sync.WaitGroup
}

// watchArchive starts watching p. A packed file is watched through its
// directory so that replacing the file is seen; an extracted tree is watched
// at its root and at DATA/Characters (fsnotify is not recursive).
func watchArchive(p string, hs *archive.HotSwap, log zerolog.Logger) (*archiveWatcher, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", p, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", p, err)
	}

	w := &archiveWatcher{
		path:    filepath.Clean(p),
		isFile:  !info.IsDir(),
		hs:      hs,
		log:     log,
		watcher: fw,
		open:    archive.Open,
		done:    make(chan struct{}),
	}

	dirs := []string{w.path}
	if w.isFile {
		dirs = []string{filepath.Dir(w.path)}
	} else if chars := filepath.Join(w.path, "DATA", "Characters"); isDir(chars) {
		dirs = append(dirs, chars)
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}

	w.wg.Add(1)
	go w.loop()
	log.Info().Str("archive", w.path).Msg("watching archive for changes")
	return w, nil
}

func (w *archiveWatcher) loop() {
	defer w.wg.Done()
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug().Str("file", ev.Name).Stringer("op", ev.Op).Msg("archive changed")
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			timerCh = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		case <-timerCh:
			timerCh = nil
			w.reload()
		}
	}
}

func (w *archiveWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if w.isFile {
		return filepath.Clean(ev.Name) == w.path
	}
	return true
}

// reload opens a fresh archive and swaps it in. A failed open keeps the
// current archive serving.
func (w *archiveWatcher) reload() {
	next, err := w.open(w.path)
	if err != nil {
		w.log.Error().Err(err).Str("archive", w.path).Msg("reload failed, keeping current archive")
		return
	}
	if err := w.hs.Swap(next); err != nil {
		w.log.Warn().Err(err).Msg("closing previous archive")
	}
	w.log.Info().Str("archive", w.path).Msg("archive reloaded")
}

// Close stops watching. It does not close the HotSwap.
func (w *archiveWatcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
