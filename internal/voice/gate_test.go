package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenWaitsForSpeechPlusCooldown(t *testing.T) {
	g := NewGateWithTiming(50*time.Millisecond, 5*time.Millisecond)

	clear := g.BeginSpeaking()

	acquired := make(chan time.Time, 1)
	go func() {
		if err := g.AcquireListen(context.Background()); err != nil {
			t.Error(err)
			return
		}
		acquired <- time.Now()
		g.ReleaseListen()
	}()

	time.Sleep(30 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("listen started while speaking flag was set")
	default:
	}

	cleared := time.Now()
	clear()

	at := <-acquired
	assert.GreaterOrEqual(t, at.Sub(cleared), g.Cooldown(),
		"listen must start only after the speaking flag clears plus the cooldown")
}

func TestListenTokenMutualExclusion(t *testing.T) {
	g := NewGateWithTiming(time.Millisecond, time.Millisecond)

	require.NoError(t, g.AcquireListen(context.Background()))

	second := make(chan struct{})
	go func() {
		if err := g.AcquireListen(context.Background()); err != nil {
			t.Error(err)
			return
		}
		close(second)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-second:
		t.Fatal("second caller acquired the listen token while the first held it")
	default:
	}

	g.ReleaseListen()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second caller never acquired the token after release")
	}
	g.ReleaseListen()
}

func TestConcurrentSpeakAndListenNeverOverlap(t *testing.T) {
	g := NewGateWithTiming(10*time.Millisecond, 2*time.Millisecond)

	const rounds = 10

	cleared := make(chan time.Time, rounds)
	var wg sync.WaitGroup

	// Speaker side: repeated speak windows of a few milliseconds each.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			clear := g.BeginSpeaking()
			time.Sleep(5 * time.Millisecond)
			clear()
			cleared <- time.Now()
			time.Sleep(5 * time.Millisecond)
		}
	}()

	// Listener side: acquire while the speaker is mid-utterance. Every
	// acquisition must land after that utterance's clear plus cooldown.
	for i := 0; i < rounds; i++ {
		for !g.Speaking() {
			time.Sleep(time.Millisecond)
		}
		err := g.AcquireListen(context.Background())
		require.NoError(t, err)
		at := time.Now()
		g.ReleaseListen()

		clearedAt := <-cleared
		assert.GreaterOrEqual(t, at.Sub(clearedAt), g.Cooldown(),
			"round %d: listen window opened before speech cleared plus cooldown", i)
	}

	wg.Wait()
}

func TestAcquireListenCancellable(t *testing.T) {
	g := NewGateWithTiming(time.Hour, 10*time.Millisecond)

	clear := g.BeginSpeaking()
	defer clear()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- g.AcquireListen(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("AcquireListen did not unblock within two polling intervals of cancellation")
	}

	// The token must have been returned on the error path.
	clear()
	require.NoError(t, g.AcquireListen(context.Background()))
	g.ReleaseListen()
}
