package file

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/logger"
)

// FeedWatcher reloads the YAML feed list when the file changes, so a
// long-running poll loop picks up feed edits without a restart.
type FeedWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	onLoad  func([]domain.FeedConfig)
	done    chan struct{}
}

// NewFeedWatcher watches the feeds file and calls onLoad with the new feed
// list after every successful reload. onLoad runs on the watcher goroutine.
func NewFeedWatcher(path string, onLoad func([]domain.FeedConfig)) (*FeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors that replace the file
	// (rename-over-write) would otherwise drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &FeedWatcher{
		watcher: watcher,
		path:    path,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *FeedWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			feeds, err := LoadFeeds(w.path)
			if err != nil {
				logger.Warn("feed reload failed: %v", err)
				continue
			}
			logger.Info("reloaded %d feeds from %s", len(feeds), w.path)
			w.onLoad(feeds)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("feed watcher error: %v", err)
		}
	}
}

// Close stops watching and waits for the watcher goroutine to exit.
func (w *FeedWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
