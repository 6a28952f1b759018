// Package watch reloads files when they change on disk.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one callback that receives
// the value of the last trigger.
type Debouncer[T any] struct {
	window   time.Duration
	callback func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	running sync.WaitGroup
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer[T any](window time.Duration, callback func(T)) *Debouncer[T] {
	return &Debouncer[T]{window: window, callback: callback}
}

// Trigger records value and restarts the window. The callback runs once the
// window elapses with no further triggers.
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = value
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.running.Add(1)
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer[T]) fire() {
	defer d.running.Done()
	d.mu.Lock()
	value := d.pending
	d.mu.Unlock()
	d.callback(value)
}

// Stop cancels a pending callback and waits for one already running.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	if d.timer != nil && d.timer.Stop() {
		d.running.Done()
	}
	d.timer = nil
	d.mu.Unlock()
	d.running.Wait()
}
