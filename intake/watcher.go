package intake

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher emits image files dropped into a directory. A file is emitted
// once it has settled: copies in progress fire repeated write events, each
// of which restarts the per-file timer, so only the final write triggers
// delivery.
type Watcher struct {
	dir    string
	settle time.Duration
	log    *zap.Logger

	fs    *fsnotify.Watcher
	paths chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewWatcher starts watching dir for new image files. settle defaults to
// 500 ms when zero; log may be nil.
func NewWatcher(dir string, settle time.Duration, log *zap.Logger) (*Watcher, error) {
	if settle == 0 {
		settle = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		dir:    dir,
		settle: settle,
		log:    log,
		fs:     fs,
		paths:  make(chan string, 16),
		timers: make(map[string]*time.Timer),
	}
	go w.run()
	return w, nil
}

// Paths returns the channel of settled image paths. It is closed when the
// watcher shuts down.
func (w *Watcher) Paths() <-chan string { return w.paths }

// Close stops watching and closes the Paths channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) run() {
	defer func() {
		// Mark closed under the lock before closing the channel so a
		// settle callback holding the lock can never send afterwards.
		w.mu.Lock()
		w.closed = true
		close(w.paths)
		w.mu.Unlock()
	}()
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if !IsImageFile(ev.Name) {
				continue
			}
			w.arm(ev.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("drop folder watch error", zap.Error(err))
		}
	}
}

// arm starts or restarts the settle timer for path.
func (w *Watcher) arm(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		// The send happens under the lock so it is ordered against the
		// close in run.
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.timers, path)
		if w.closed {
			return
		}
		select {
		case w.paths <- path:
		default:
			w.log.Warn("drop folder backlog full, discarding", zap.String("path", path))
		}
	})
}
