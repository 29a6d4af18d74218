package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ScrollName is the registry slot for the auto-scroll worker.
const ScrollName = "auto-scroll"

// Scroller moves the focused window's viewport by a signed number of
// scroll steps; positive is up.
type Scroller interface {
	Scroll(steps int) error
}

type scrollSpeed struct {
	step  int
	delay time.Duration
}

var scrollSpeeds = map[string]scrollSpeed{
	"slow": {step: 80, delay: 350 * time.Millisecond},
	"fast": {step: 160, delay: 250 * time.Millisecond},
}

// AutoScroll builds a Task that keeps scrolling until cancelled. A stop
// request is honored within one delay increment.
func AutoScroll(scroller Scroller, direction, speed string) (Task, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction == "" {
		direction = "down"
	}
	if direction != "up" && direction != "down" {
		return nil, fmt.Errorf("worker: invalid scroll direction %q", direction)
	}

	sp, ok := scrollSpeeds[strings.ToLower(strings.TrimSpace(speed))]
	if !ok {
		sp = scrollSpeeds["slow"]
	}

	sign := -1
	if direction == "up" {
		sign = 1
	}

	return func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(sp.delay):
			}
			if err := scroller.Scroll(sign * sp.step); err != nil {
				slog.Warn("worker: scroll failed", "err", err)
			}
		}
	}, nil
}
