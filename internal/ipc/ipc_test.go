package ipc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeAndSendRoundtrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan ControlMessage, 1)
	require.NoError(t, Serve(ctx, func(msg ControlMessage) Reply {
		got <- msg
		return Reply{Ok: true, Message: "dispatched"}
	}))

	var reply Reply
	var err error
	require.Eventually(t, func() bool {
		reply, err = Send("dispatch", "open chrome")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, reply.Ok)
	assert.Equal(t, "dispatched", reply.Message)
	assert.Equal(t, ControlMessage{Cmd: "dispatch", Arg: "open chrome"}, <-got)
}

func TestSendWithoutDaemonFails(t *testing.T) {
	// No server on the socket after cancellation removes it.
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, Serve(ctx, func(ControlMessage) Reply { return Reply{} }))
	cancel()

	assert.Eventually(t, func() bool {
		_, err := Send("stop", "")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}
