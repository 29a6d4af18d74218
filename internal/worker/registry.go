// Package worker runs named cancellable background tasks. Workers never
// touch the microphone; their only cross-goroutine state is the stop
// signal the registry hands them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrAlreadyRunning = errors.New("worker: already running")
	ErrNotRunning     = errors.New("worker: not running")
)

// Task is one background loop. It must return promptly once ctx is
// cancelled, within one of its own sleep increments.
type Task func(ctx context.Context)

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry enforces one live worker per name.
type Registry struct {
	mu      sync.Mutex
	workers map[string]*handle
}

func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]*handle)}
}

// Start spawns task under name. A second start under the same name
// without an intervening stop is rejected.
func (r *Registry) Start(name string, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.workers[name]; ok {
		select {
		case <-h.done:
			// Finished on its own; the slot is free again.
			delete(r.workers, name)
		default:
			return fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}
	r.workers[name] = h

	go func() {
		defer close(h.done)
		task(ctx)
	}()

	slog.Info("worker: started", "name", name)
	return nil
}

// Stop cancels the named worker and waits for its loop to return.
// Stopping a worker that is not running reports ErrNotRunning.
func (r *Registry) Stop(name string) error {
	r.mu.Lock()
	h, ok := r.workers[name]
	if ok {
		delete(r.workers, name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}

	h.cancel()
	<-h.done
	slog.Info("worker: stopped", "name", name)
	return nil
}

// Running reports whether the named worker has a live loop.
func (r *Registry) Running(name string) bool {
	r.mu.Lock()
	h, ok := r.workers[name]
	r.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// StopAll cancels every worker, for process teardown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	handles := make([]*handle, 0, len(r.workers))
	for name, h := range r.workers {
		handles = append(handles, h)
		delete(r.workers, name)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		<-h.done
	}
}
