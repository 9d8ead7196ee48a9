// Package watch re-runs analysis when the corpus data files change on disk.
// Events are debounced so a save burst from an editor or a bulk fix pass
// triggers one re-analysis, not dozens.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a data directory tree for JSON changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	onChange func(changed []string)

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	closed  bool
}

// Start watches dataDir and its subdirectories. onChange receives the sorted
// set of changed JSON paths after the debounce window closes.
func Start(dataDir string, debounce time.Duration, onChange func(changed []string)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fs:       fs,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]bool),
	}

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fs.Add(path)
		}
		return nil
	})
	if err != nil {
		fs.Close()
		return nil, err
	}

	go w.run()
	log.Printf("watching data dir=%s debounce=%s", dataDir, debounce)
	return w, nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New subdirectories join the watch so nested corpus families stay
	// covered.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(event.Name); err != nil {
				log.Printf("watch add dir=%s error: %v", event.Name, err)
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	sort.Strings(changed)
	w.onChange(changed)
}
