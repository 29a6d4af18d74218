package voice

import (
	"context"
	"time"
)

// Listener is one bounded recognition attempt: wait up to timeout for
// speech to start, capture at most phraseLimit of it.
type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// GatedListener funnels every recognition attempt through the gate's
// listen token. All microphone consumers share one of these, so no two
// attempts overlap and none starts while speech output is playing.
// Dictation and messaging sub-sessions listen through the same wrapper
// as the main loop.
type GatedListener struct {
	gate  *Gate
	inner Listener
}

func NewGatedListener(gate *Gate, inner Listener) *GatedListener {
	return &GatedListener{gate: gate, inner: inner}
}

func (g *GatedListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	if err := g.gate.AcquireListen(ctx); err != nil {
		return "", err
	}
	defer g.gate.ReleaseListen()
	return g.inner.Listen(ctx, timeout, phraseLimit)
}
