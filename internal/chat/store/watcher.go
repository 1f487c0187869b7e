package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
)

// ReloadFunc 在语料文件变化后被调用。
type ReloadFunc func(ctx context.Context) error

// Watcher 监听语料文件变化，合并抖动窗口内的事件后触发一次重新加载。
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc
}

// NewWatcher creates a watcher for the corpus file at path.
func NewWatcher(path string, debounce time.Duration, reload ReloadFunc) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		reload:   reload,
	}
}

// Run 阻塞直到 ctx 结束。监听所在目录，以便覆盖写入和重命名替换都能被捕获。
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create corpus watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Infow("Corpus watcher started", "path", w.path, "debounce", w.debounce.String())

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infow("Corpus watcher stopped", "path", w.path)
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debugw("Corpus file event", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Corpus watcher error", "error", err.Error())

		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				logger.Warnw("Corpus reload after file change failed", "path", w.path, "error", err.Error())
			}
		}
	}
}
