package blueprint

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-parses a Loader's YAML template files as they change on
// disk: one fsnotify.Watcher, a per-path last-seen timestamp, and a
// 100ms coalescing window per path.
type Watcher struct {
	fs      *fsnotify.Watcher
	loader  *Loader
	Reloads chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch starts watching dirs for .yaml/.yml changes and reloads them into
// loader as they occur.
func Watch(loader *Loader, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		loader:  loader,
		Reloads: make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and releases its underlying OS resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
		close(w.Reloads)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isYAML(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			if err := w.loader.Load(event.Name); err != nil {
				w.Errors <- err
				continue
			}
			w.Reloads <- event.Name
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.Errors <- err
		case <-w.closeCh:
			return
		}
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
