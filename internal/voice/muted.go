package voice

import (
	"context"
	"sync/atomic"
)

// Speaker is what the rest of the assistant talks through.
type Speaker interface {
	Say(ctx context.Context, text string) error
	Cancel()
}

// Muted wraps a Speaker with a mute toggle. Muting is composition over
// the inner channel, not a runtime method swap, so the inner channel's
// serialization and flag guarantees stay intact.
type Muted struct {
	inner   Speaker
	enabled atomic.Bool
}

func NewMuted(inner Speaker) *Muted {
	m := &Muted{inner: inner}
	m.enabled.Store(true)
	return m
}

func (m *Muted) Say(ctx context.Context, text string) error {
	if !m.enabled.Load() {
		return nil
	}
	return m.inner.Say(ctx, text)
}

func (m *Muted) Cancel() {
	m.inner.Cancel()
}

func (m *Muted) SetEnabled(on bool) {
	m.enabled.Store(on)
	if !on {
		m.inner.Cancel()
	}
}

func (m *Muted) Enabled() bool {
	return m.enabled.Load()
}
