package genesys

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces the burst of events an editor or a scraper produces
// when it rewrites the file.
const reloadDelay = 200 * time.Millisecond

// ReloadFunc is called with the new list and index after a successful reload.
type ReloadFunc func(list *PointList, idx *Index)

// Watcher keeps the active point index in sync with a point list file.
type Watcher struct {
	path    string
	logger  *zap.Logger
	current atomic.Pointer[Index]

	mu        sync.Mutex
	listeners []ReloadFunc
}

// NewWatcher loads the point list at path and returns a watcher serving it.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{path: path, logger: logger}
	if _, err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Current returns the active index.
func (w *Watcher) Current() *Index {
	return w.current.Load()
}

// OnReload registers fn to be called after every successful reload.
func (w *Watcher) OnReload(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Reload re-reads the file and swaps the active index. On error the
// previous index stays active.
func (w *Watcher) Reload() (*Index, error) {
	list, err := LoadPointList(w.path)
	if err != nil {
		return nil, err
	}

	idx := NewIndex(list)
	w.current.Store(idx)

	w.logger.Info("Point list loaded",
		zap.String("path", w.path),
		zap.String("source", list.Source),
		zap.Time("updated", list.Updated),
		zap.Int("cards", idx.Len()))
	for _, c := range idx.Collisions() {
		w.logger.Warn("Point list has duplicate normalized name",
			zap.String("key", c.Key),
			zap.String("kept", c.Kept.Name),
			zap.Int("kept_points", c.Kept.Points),
			zap.String("replaced", c.Replaced.Name),
			zap.Int("replaced_points", c.Replaced.Points))
	}

	w.mu.Lock()
	listeners := append([]ReloadFunc(nil), w.listeners...)
	w.mu.Unlock()
	for _, fn := range listeners {
		fn(list, idx)
	}
	return idx, nil
}

// Run watches the file's directory until ctx is cancelled. The directory is
// watched rather than the file so that atomic replace-by-rename is seen.
func (w *Watcher) Run(ctx context.Context) (err error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(reloadDelay)
			}
		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Point list watcher error", zap.Error(werr))
		case <-timer.C:
			if _, err := w.Reload(); err != nil {
				w.logger.Warn("Point list reload failed, keeping previous list",
					zap.String("path", w.path), zap.Error(err))
			}
		}
	}
}
