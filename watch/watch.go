// Package watch regenerates schemas whenever Go sources change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/logger"
	"github.com/teranos/zorsh-gen/source"
)

// DefaultDebounce collapses the bursts of events editors and formatters produce.
const DefaultDebounce = 500 * time.Millisecond

// ChangeCallback runs a full regeneration. Errors are logged and watching
// continues.
type ChangeCallback func(ctx context.Context) error

// Watcher watches every input directory for changes to Go files.
type Watcher struct {
	root           string
	opts           source.Options
	watcher        *fsnotify.Watcher
	onChange       ChangeCallback
	log            *zap.SugaredLogger
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	fire           chan struct{}
}

// New creates a watcher over root and all directories below it that the
// source loader would read.
func New(root string, opts source.Options, onChange ChangeCallback) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to resolve %s", root)
	}

	w := &Watcher{
		root:           abs,
		opts:           opts,
		watcher:        fw,
		onChange:       onChange,
		log:            logger.ComponentLogger("watch"),
		debouncePeriod: DefaultDebounce,
		fire:           make(chan struct{}, 1),
	}
	if err := w.addTree(abs); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce changes the quiet period before a regeneration runs.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debouncePeriod = d
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return w.watcher.WatchList()
}

// addTree watches dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return err
		}
		if w.opts.Ignored(rel, true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Wrapf(err, "failed to watch %s", p)
		}
		w.log.Debugw("Watching directory", logger.FieldDir, rel)
		return nil
	})
}

// Run processes file system events until ctx is done. Regenerations run on
// the calling goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)

		case <-w.fire:
			if err := w.onChange(ctx); err != nil {
				w.log.Errorw("Regeneration failed", logger.FieldError, err)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.opts.Ignored(rel, true) {
				return
			}
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnw("Failed to watch new directory", logger.FieldDir, rel, logger.FieldError, err)
				return
			}
			// Files may have landed before the directory was watched.
			w.scheduleRegeneration(rel, event.Op)
			return
		}
	}

	// A removed directory takes its module with it.
	if (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) &&
		filepath.Ext(rel) == "" && !w.opts.Ignored(rel, true) {
		w.scheduleRegeneration(rel, event.Op)
		return
	}

	if w.opts.Ignored(rel, false) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.scheduleRegeneration(rel, event.Op)
	}
}

// scheduleRegeneration debounces rapid changes into one regeneration.
func (w *Watcher) scheduleRegeneration(rel string, op fsnotify.Op) {
	w.log.Infow("Detected change", logger.FieldFile, rel, "op", op.String())

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
