// Package cache provides the in-process caches used by the API layer.
// Month reports are cheap to rebuild but are requested on every dashboard
// refresh, so they sit behind a small TTL'd LRU.
package cache

import "time"

// Cache is the read/write surface handed to services.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	// Clear drops every entry. Used when a write invalidates all months.
	Clear()
	Size() int
}

// Sweeper is implemented by caches that can evict expired entries.
type Sweeper interface {
	SweepExpired() int
}

// Janitor periodically sweeps registered caches.
type Janitor struct {
	caches []Sweeper
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor() *Janitor {
	return &Janitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (j *Janitor) Register(c Sweeper) {
	j.caches = append(j.caches, c)
}

// Start begins sweeping on the given interval until Stop is called.
func (j *Janitor) Start(interval time.Duration) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, c := range j.caches {
					c.SweepExpired()
				}
			case <-j.stop:
				return
			}
		}
	}()
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
