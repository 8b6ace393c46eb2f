package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

var errClosed = errors.New("watcher channel closed")

type implWatcher struct {
	filter        source.Filter
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	sem           *semaphore
	// settle is how long a new file is left alone before it is handed off.
	settle time.Duration
	wg     sync.WaitGroup
}

// Start blocks until ctx is done, dispatching matching files as they are created
// or moved into the directory. In-flight handlers are awaited before it returns.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.filter.Dir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return errClosed
			}
			if !event.Has(fsnotify.Create) {
				continue
			}

			if !w.filter.Match(filepath.Base(event.Name)) {
				w.logger.Debug(ctx, "Ignoring file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New file detected: %s", event.Name)
			if err := w.sem.acquire(ctx); err != nil {
				continue
			}
			w.wg.Add(1)
			go w.handle(ctx, source.NewInputFile(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return errClosed
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handle(ctx context.Context, file source.InputFile) {
	defer w.wg.Done()
	defer w.sem.release()

	// The writer may still be flushing the file.
	select {
	case <-time.After(w.settle):
	case <-ctx.Done():
		return
	}
	w.handler(ctx, file)
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
