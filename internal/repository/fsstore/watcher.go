package fsstore

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/repository/events"
)

// watcher translates fsnotify events under the vault root into workspace events.
// inotify is not recursive, so every directory gets its own watch.
type watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	emitter *events.Emitter
	logger  *slog.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

// Watch starts reporting changes made to the vault by other programs.
// Calling it twice is a no-op.
func (s *Store) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w := &watcher{
		root:    s.root,
		fsw:     fsw,
		emitter: s.emitter,
		logger:  s.logger,
		done:    make(chan struct{}),
	}
	if err := w.addTree(s.root, false); err != nil {
		fsw.Close()
		return err
	}

	w.wg.Add(1)
	go w.loop()
	s.watcher = w

	s.logger.Info("watching vault", "path", s.root)
	return nil
}

// addTree adds a watch on dir and every visible directory beneath it.
// With announce set, entries found beneath dir are reported as created:
// they may have appeared before the watch on their parent was in place.
func (w *watcher) addTree(dir string, announce bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directory vanished mid-walk
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if p != w.root && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if announce && p != dir {
			w.announce(p, d)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *watcher) announce(p string, d fs.DirEntry) {
	rel, ok := w.relative(p)
	if !ok {
		return
	}
	kind := models.KindDocument
	if d.IsDir() {
		kind = models.KindContainer
	}
	w.emit(models.Event{Op: models.OpCreated, Path: rel, Kind: kind})
}

func (w *watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("vault watcher error", "error", err)
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	rel, ok := w.relative(ev.Name)
	if !ok {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.IsDir() {
			w.emit(models.Event{Op: models.OpCreated, Path: rel, Kind: models.KindDocument})
			return
		}
		w.emit(models.Event{Op: models.OpCreated, Path: rel, Kind: models.KindContainer})
		if err := w.addTree(ev.Name, true); err != nil {
			w.logger.Warn("failed to watch new directory", "path", rel, "error", err)
		}
	case ev.Has(fsnotify.Write):
		w.emit(models.Event{Op: models.OpModified, Path: rel, Kind: models.KindDocument})
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// The path is gone, its kind can no longer be determined
		w.emit(models.Event{Op: models.OpDeleted, Path: rel})
	}
}

func (w *watcher) emit(ev models.Event) {
	if !w.emitter.Emit(ev) {
		w.logger.Debug("dropped vault event", "path", ev.Path)
	}
}

// relative maps an absolute file name to a workspace path.
// Hidden files and anything below a hidden directory are ignored.
func (w *watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, seg := range strings.Split(rel, "/") {
		if hidden(seg) {
			return "", false
		}
	}
	return rel, true
}

func (w *watcher) stop() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
