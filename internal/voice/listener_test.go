package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overlapListener struct {
	mu     sync.Mutex
	active int
	peak   int
	hold   time.Duration
}

func (l *overlapListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	l.mu.Lock()
	l.active++
	if l.active > l.peak {
		l.peak = l.active
	}
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	}()

	select {
	case <-time.After(l.hold):
		return "heard", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *overlapListener) maxConcurrent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

func TestGatedListenerSerializesAttempts(t *testing.T) {
	inner := &overlapListener{hold: 20 * time.Millisecond}
	gated := NewGatedListener(NewGateWithTiming(time.Millisecond, time.Millisecond), inner)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gated.Listen(ctx, 10*time.Millisecond, 10*time.Millisecond)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner.maxConcurrent(), "one microphone holder at a time")
}

func TestGatedListenerWaitsOutSpeech(t *testing.T) {
	inner := &overlapListener{}
	gate := NewGateWithTiming(time.Millisecond, time.Millisecond)
	gated := NewGatedListener(gate, inner)

	release := gate.BeginSpeaking()
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := gated.Listen(ctx, 10*time.Millisecond, 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, inner.maxConcurrent(), "the mic must not open while speech plays")
}
