// Package watch re-runs a callback when a file changes, backing nub's
// --watch flag. An fsnotify.Watcher feeds a select loop over
// Events/Errors/stop for a single watched path.
package watch

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// File watches a single path for writes, invoking onChange once per
// write event until ctx is done.
type File struct {
	path     string
	watcher  *fsnotify.Watcher
	stop     chan struct{}
}

// NewFile builds a watcher for path.
func NewFile(path string) (*File, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	return &File{path: path, watcher: watcher, stop: make(chan struct{})}, nil
}

// Run blocks, calling onChange after every write to the watched file,
// until ctx is canceled or Stop is called. onChange errors are passed
// through to onError rather than stopping the loop, so a transient
// compression failure doesn't end the watch.
func (f *File) Run(ctx context.Context, onChange func() error, onError func(error)) {
	for {
		select {
		case <-f.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := onChange(); err != nil {
					onError(err)
				}
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			onError(err)
		}
	}
}

// Stop closes the watcher and unblocks Run.
func (f *File) Stop() {
	select {
	case <-f.stop:
		return
	default:
		close(f.stop)
		_ = f.watcher.Close()
	}
}
