package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockingTask(started chan<- struct{}) Task {
	return func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	}
}

func TestStartSecondWorkerSameNameRejected(t *testing.T) {
	r := NewRegistry()

	started := make(chan struct{})
	require.NoError(t, r.Start("scroll", blockingTask(started)))
	<-started

	var spawned atomic.Bool
	err := r.Start("scroll", func(ctx context.Context) { spawned.Store(true) })
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, spawned.Load(), "rejected start must not spawn a second loop")

	require.NoError(t, r.Stop("scroll"))
}

func TestStopUnknownWorkerReportsNotRunning(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Stop("scroll"), ErrNotRunning)
}

func TestRestartAfterStop(t *testing.T) {
	r := NewRegistry()

	s1 := make(chan struct{})
	require.NoError(t, r.Start("scroll", blockingTask(s1)))
	<-s1
	require.NoError(t, r.Stop("scroll"))

	s2 := make(chan struct{})
	require.NoError(t, r.Start("scroll", blockingTask(s2)))
	<-s2
	require.NoError(t, r.Stop("scroll"))
}

func TestSlotFreesWhenTaskReturnsOnItsOwn(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Start("oneshot", func(ctx context.Context) {}))
	assert.Eventually(t, func() bool { return !r.Running("oneshot") },
		time.Second, 5*time.Millisecond)

	s := make(chan struct{})
	require.NoError(t, r.Start("oneshot", blockingTask(s)))
	<-s
	require.NoError(t, r.Stop("oneshot"))
}

type countScroller struct {
	mu    sync.Mutex
	steps []int
}

func (c *countScroller) Scroll(steps int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, steps)
	return nil
}

func (c *countScroller) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

func TestAutoScrollStopsWithinOneIncrement(t *testing.T) {
	r := NewRegistry()
	sc := &countScroller{}

	task, err := AutoScroll(sc, "down", "fast")
	require.NoError(t, err)
	require.NoError(t, r.Start(ScrollName, task))

	assert.Eventually(t, func() bool { return sc.count() > 0 },
		2*time.Second, 10*time.Millisecond)

	stopStart := time.Now()
	require.NoError(t, r.Stop(ScrollName))
	assert.Less(t, time.Since(stopStart), 350*time.Millisecond,
		"stop must land within one sleep increment")

	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, s := range sc.steps {
		assert.Equal(t, -160, s, "fast downward scrolling moves 160 steps at a time")
	}
}

func TestAutoScrollRejectsBadDirection(t *testing.T) {
	_, err := AutoScroll(&countScroller{}, "sideways", "slow")
	assert.Error(t, err)
}
