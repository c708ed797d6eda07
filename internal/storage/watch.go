package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// coalesceDelay groups the burst of events produced by one atomic write.
const coalesceDelay = 100 * time.Millisecond

// WatchFile signals whenever the file called name inside dir is written,
// created, renamed into place, or removed. Bursts are coalesced into one
// signal. The channel is closed when ctx is done or the watcher fails.
func WatchFile(ctx context.Context, dir, name string) (<-chan struct{}, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure watch dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: atomic renames replace the inode.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	target := filepath.Clean(filepath.Join(dir, name))

	go func() {
		defer close(out)
		defer watcher.Close()

		c := newCoalescer(coalesceDelay, func() {
			select {
			case out <- struct{}{}:
			default:
			}
		})
		defer c.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.poke()
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				c.poke()
			}
		}
	}()

	return out, nil
}

type coalescer struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	fire    func()
	stopped bool
}

func newCoalescer(delay time.Duration, fire func()) *coalescer {
	return &coalescer{delay: delay, fire: fire}
}

func (c *coalescer) poke() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil || c.stopped {
		return
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.timer = nil
		if !c.stopped {
			c.fire()
		}
	})
}

func (c *coalescer) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
