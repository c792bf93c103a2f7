// Package debounce provides a generic coalescing write-behind queue.
//
// A Writer accepts (key, value) updates where later values for the same key
// overwrite earlier ones, and flushes the accumulated batch through a single
// callback after a quiet period. The timer is re-armed, not accumulated, on
// every update, so the persisted-write frequency stays bounded regardless of
// event burst size. The same Writer type serves any debounced counter in the
// system.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a flush when none is configured.
const DefaultDelay = 2 * time.Second

// Writer batches keyed updates and flushes them after a quiet period.
// Put never blocks on the flush callback; the callback runs on the timer
// goroutine with the batch already detached from the pending map.
type Writer[K comparable, V any] struct {
	delay time.Duration
	flush func(map[K]V)

	mu      sync.Mutex
	pending map[K]V
	timer   *time.Timer
	closed  bool
}

// NewWriter creates a Writer that calls flush with the drained batch after
// delay has elapsed without new updates. A non-positive delay falls back to
// DefaultDelay.
func NewWriter[K comparable, V any](delay time.Duration, flush func(map[K]V)) *Writer[K, V] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Writer[K, V]{
		delay:   delay,
		flush:   flush,
		pending: make(map[K]V),
	}
}

// Put queues an update, overwriting any pending value for the same key, and
// re-arms the flush timer. Updates after Close are dropped.
func (w *Writer[K, V]) Put(key K, value V) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[key] = value
	if w.timer == nil {
		w.timer = time.AfterFunc(w.delay, w.fire)
	} else {
		w.timer.Reset(w.delay)
	}
}

// Pending reports the number of queued, not yet flushed entries.
func (w *Writer[K, V]) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush drains all pending entries immediately, regardless of the timer.
func (w *Writer[K, V]) Flush() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	batch := w.detachLocked()
	w.mu.Unlock()

	if len(batch) > 0 {
		w.flush(batch)
	}
}

// Close drains pending entries and stops the Writer. Idempotent; subsequent
// Put calls are no-ops.
func (w *Writer[K, V]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	batch := w.detachLocked()
	w.mu.Unlock()

	if len(batch) > 0 {
		w.flush(batch)
	}
}

// fire runs on the timer goroutine when the quiet period elapses.
func (w *Writer[K, V]) fire() {
	w.mu.Lock()
	w.timer = nil
	batch := w.detachLocked()
	w.mu.Unlock()

	if len(batch) > 0 {
		w.flush(batch)
	}
}

func (w *Writer[K, V]) detachLocked() map[K]V {
	batch := w.pending
	w.pending = make(map[K]V)
	return batch
}
