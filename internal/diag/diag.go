// Package diag is a small registry of health checks run on demand, so a
// "run diagnostics" request can report which subsystems are usable.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

type Result struct {
	ID      string
	Status  Status
	Message string
	Elapsed time.Duration
}

// CheckFunc probes one subsystem. It should be quick and must not hold
// the microphone or speaker.
type CheckFunc func(ctx context.Context) Result

type check struct {
	id          string
	description string
	fn          CheckFunc
}

// Registry holds named checks in registration order.
type Registry struct {
	mu     sync.Mutex
	checks []check
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(id, description string, fn CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, check{id: id, description: description, fn: fn})
}

// RunAll executes every registered check. A panicking check becomes an
// error result; it never takes the process down.
func (r *Registry) RunAll(ctx context.Context) []Result {
	r.mu.Lock()
	checks := append([]check(nil), r.checks...)
	r.mu.Unlock()

	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		res := runOne(ctx, c)
		slog.Info("diag: check finished",
			"id", res.ID, "status", string(res.Status), "elapsed", res.Elapsed)
		results = append(results, res)
	}
	return results
}

func runOne(ctx context.Context, c check) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				ID:      c.id,
				Status:  StatusError,
				Message: fmt.Sprintf("check panicked: %v", r),
			}
		}
		res.ID = c.id
		res.Elapsed = time.Since(start)
	}()
	return c.fn(ctx)
}

// Summary folds results into one speakable sentence.
func Summary(results []Result) string {
	if len(results) == 0 {
		return "No diagnostics are registered."
	}
	var ok, warn, bad int
	for _, r := range results {
		switch r.Status {
		case StatusOK, StatusInfo:
			ok++
		case StatusWarning:
			warn++
		case StatusError:
			bad++
		}
	}
	if bad == 0 && warn == 0 {
		return fmt.Sprintf("All %d checks passed.", len(results))
	}
	return fmt.Sprintf("%d checks passed, %d warnings, %d errors.", ok, warn, bad)
}
