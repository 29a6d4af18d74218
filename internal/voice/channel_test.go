package voice

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axylo/internal/audio"
)

type fakeSynth struct {
	name  string
	data  []byte
	err   error
	calls int
}

func (f *fakeSynth) Name() string { return f.name }

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type fakePlayer struct {
	plays int
	last  audio.PCM
}

func (f *fakePlayer) Play(ctx context.Context, pcm audio.PCM, stop *atomic.Bool) {
	f.plays++
	f.last = pcm
}

// A minimal but valid 16-bit mono wav: "RIFF" header plus a couple of
// samples, enough for the decoder to accept it.
func wavFixture(t *testing.T) []byte {
	t.Helper()
	return []byte{
		'R', 'I', 'F', 'F', 0x2a, 0x00, 0x00, 0x00, 'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ', 0x10, 0x00, 0x00, 0x00,
		0x01, 0x00, // PCM
		0x01, 0x00, // mono
		0x80, 0x3e, 0x00, 0x00, // 16000 Hz
		0x00, 0x7d, 0x00, 0x00, // byte rate
		0x02, 0x00, // block align
		0x10, 0x00, // 16 bit
		'd', 'a', 't', 'a', 0x06, 0x00, 0x00, 0x00,
		0x00, 0x00, 0xff, 0x3f, 0x00, 0xc0,
	}
}

func TestSayUsesFallbackWhenPrimaryFails(t *testing.T) {
	gate := NewGate()
	primary := &fakeSynth{name: "primary", err: errors.New("synthesis refused")}
	fallback := &fakeSynth{name: "fallback", data: wavFixture(t)}
	player := &fakePlayer{}

	ch := NewChannel(gate, primary, fallback, player)
	require.NoError(t, ch.Say(context.Background(), "hello"))

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, 1, player.plays)
	assert.Equal(t, 16000, player.last.Rate)
	assert.False(t, gate.Speaking(), "speaking flag must clear after playback")
}

func TestSayDropsUtteranceWhenBothBackendsFail(t *testing.T) {
	gate := NewGate()
	primary := &fakeSynth{name: "primary", err: errors.New("down")}
	fallback := &fakeSynth{name: "fallback", err: errors.New("also down")}
	player := &fakePlayer{}

	ch := NewChannel(gate, primary, fallback, player)
	err := ch.Say(context.Background(), "hello")

	require.NoError(t, err, "a dropped utterance is not a turn failure")
	assert.Zero(t, player.plays)
	assert.False(t, gate.Speaking(), "flag must clear even when synthesis fails")
}

func TestSayEmptyTextIsNoop(t *testing.T) {
	gate := NewGate()
	primary := &fakeSynth{name: "primary", data: wavFixture(t)}
	player := &fakePlayer{}

	ch := NewChannel(gate, primary, nil, player)
	require.NoError(t, ch.Say(context.Background(), ""))
	assert.Zero(t, primary.calls)
	assert.Zero(t, player.plays)
}

func TestCancelWithoutActiveSpeechIsSafe(t *testing.T) {
	ch := NewChannel(NewGate(), &fakeSynth{name: "p", data: []byte("x")}, nil, &fakePlayer{})
	ch.Cancel()
	ch.Cancel()
}

func TestMutedSpeakerSkipsInner(t *testing.T) {
	gate := NewGate()
	primary := &fakeSynth{name: "primary", data: wavFixture(t)}
	player := &fakePlayer{}
	m := NewMuted(NewChannel(gate, primary, nil, player))

	m.SetEnabled(false)
	require.NoError(t, m.Say(context.Background(), "hello"))
	assert.Zero(t, player.plays)

	m.SetEnabled(true)
	require.NoError(t, m.Say(context.Background(), "hello"))
	assert.Equal(t, 1, player.plays)
}
