// Package imagecleaner removes superseded image files in the background.
// Deletion is best-effort: enqueueing never blocks the request path and
// failures are reported on an error channel instead of to the caller.
package imagecleaner

import (
	"context"
	"time"

	funk "github.com/thoas/go-funk"

	"github.com/dkhodos/postshare/internal/logger"
)

type fileRemover interface {
	Remove(storedPath string) error
}

// Cleaner batches removal requests and flushes them on a fixed interval.
type Cleaner struct {
	queue         chan string
	files         fileRemover
	flushInterval time.Duration
	errorChannel  chan error
}

// New creates a Cleaner with the given queue capacity and flush interval.
func New(files fileRemover, queueCapacity int, flushInterval time.Duration) *Cleaner {
	return &Cleaner{
		queue:         make(chan string, queueCapacity),
		files:         files,
		flushInterval: flushInterval,
		errorChannel:  make(chan error, queueCapacity),
	}
}

// ListenErrors invokes callback for every removal failure until the error
// channel is drained and closed.
func (c *Cleaner) ListenErrors(callback func(error)) {
	go func() {
		for err := range c.errorChannel {
			callback(err)
		}
	}()
}

// Run starts the background worker. It stops, after a final flush of the
// pending paths, when ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		var pending []string

		for {
			select {
			case <-ctx.Done():
				c.flush(pending)
				close(c.errorChannel)
				return

			case storedPath := <-c.queue:
				pending = append(pending, storedPath)

			case <-ticker.C:
				if len(pending) == 0 {
					continue
				}
				c.flush(pending)
				pending = nil
			}
		}
	}()
}

// Enqueue schedules the removal of a stored file. When the queue is full
// the path is dropped; a superseded image left on disk is acceptable, a
// blocked request handler is not.
func (c *Cleaner) Enqueue(storedPath string) {
	if storedPath == "" {
		return
	}

	select {
	case c.queue <- storedPath:
	default:
		logger.Log.Debugln("image cleaner queue is full, dropping", storedPath)
	}
}

func (c *Cleaner) flush(paths []string) {
	paths = funk.UniqString(paths)
	removed := 0
	for _, storedPath := range paths {
		if err := c.files.Remove(storedPath); err != nil {
			select {
			case c.errorChannel <- err:
			default:
			}
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Log.Infof("removed %d superseded images", removed)
	}
}
