package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 16
)

// FileEvent reports that a watched file changed on disk.
type FileEvent struct {
	Path      string
	Removed   bool
	Timestamp time.Time
}

// FileWatcher watches a single file by watching its parent directory, so
// atomic tmp+rename writes are observed.
type FileWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu          sync.Mutex
	subscribers []chan<- FileEvent
	timer       *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileWatcher starts watching path. The parent directory is created if it
// doesn't exist.
func NewFileWatcher(path string) (*FileWatcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		ctx:     ctx,
		cancel:  cancel,
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Watch returns a channel receiving debounced change events. The channel is
// closed when ctx is done or the watcher is closed.
func (fw *FileWatcher) Watch(ctx context.Context) <-chan FileEvent {
	ch := make(chan FileEvent, eventBufferSize)

	fw.mu.Lock()
	fw.subscribers = append(fw.subscribers, ch)
	fw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			fw.unsubscribe(ch)
		case <-fw.ctx.Done():
		}
	}()

	return ch
}

// Close stops watching and closes all subscriber channels.
func (fw *FileWatcher) Close() error {
	fw.cancel()

	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	for _, ch := range fw.subscribers {
		close(ch)
	}
	fw.subscribers = nil
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) unsubscribe(ch chan<- FileEvent) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for i, sub := range fw.subscribers {
		if sub == ch {
			fw.subscribers = append(fw.subscribers[:i], fw.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(debounceDelay, fw.notify)
}

func (fw *FileWatcher) notify() {
	_, err := os.Stat(fw.path)
	event := FileEvent{
		Path:      fw.path,
		Removed:   os.IsNotExist(err),
		Timestamp: time.Now(),
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, ch := range fw.subscribers {
		select {
		case ch <- event:
		default:
			// full, drop
		}
	}
	fw.timer = nil
}
