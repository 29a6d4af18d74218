package voice

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	// Cooldown after speech output before the mic may open again,
	// long enough for acoustic echo to decay.
	defaultCooldown = 400 * time.Millisecond
	defaultPoll     = 50 * time.Millisecond
)

// Gate arbitrates exclusive access to the microphone and tracks whether
// speech output is currently playing. At most one holder of the listen
// token exists at any instant, and the token is never handed out while
// the speaking signal is set.
type Gate struct {
	listen   chan struct{}
	speaking atomic.Bool
	cooldown time.Duration
	poll     time.Duration
}

func NewGate() *Gate {
	return &Gate{
		listen:   make(chan struct{}, 1),
		cooldown: defaultCooldown,
		poll:     defaultPoll,
	}
}

// NewGateWithTiming exists for tests that cannot afford real cooldowns.
func NewGateWithTiming(cooldown, poll time.Duration) *Gate {
	g := NewGate()
	g.cooldown = cooldown
	g.poll = poll
	return g
}

// AcquireListen blocks until the listen token is free and the speaking
// signal is clear, then waits the cooldown if it had to wait for speech
// to finish. Cancelling ctx releases any partial acquisition.
func (g *Gate) AcquireListen(ctx context.Context) error {
	select {
	case g.listen <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		waited := false
		for g.speaking.Load() {
			waited = true
			select {
			case <-time.After(g.poll):
			case <-ctx.Done():
				<-g.listen
				return ctx.Err()
			}
		}

		if !waited {
			return nil
		}

		select {
		case <-time.After(g.cooldown):
		case <-ctx.Done():
			<-g.listen
			return ctx.Err()
		}

		// Speech may have started again during the cooldown.
		if !g.speaking.Load() {
			return nil
		}
	}
}

// ReleaseListen returns the listen token. No other side effects.
func (g *Gate) ReleaseListen() {
	select {
	case <-g.listen:
	default:
	}
}

// BeginSpeaking sets the speaking signal and returns the function that
// clears it. Callers must defer the release so the signal clears on
// every exit path.
func (g *Gate) BeginSpeaking() func() {
	g.speaking.Store(true)
	return func() { g.speaking.Store(false) }
}

func (g *Gate) Speaking() bool {
	return g.speaking.Load()
}

// Cooldown reports the configured post-speech silence window.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}
