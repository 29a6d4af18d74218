package typing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptListener struct {
	mu     sync.Mutex
	script []string
}

func (l *scriptListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.script) == 0 {
		return "", nil
	}
	next := l.script[0]
	l.script = l.script[1:]
	return next, nil
}

type nopSpeaker struct{}

func (nopSpeaker) Say(ctx context.Context, text string) error { return nil }
func (nopSpeaker) Cancel()                                    {}

type fakeKeyboard struct {
	typed []string
	keys  []string
}

func (k *fakeKeyboard) Type(ctx context.Context, text string) error {
	k.typed = append(k.typed, text)
	return nil
}

func (k *fakeKeyboard) Key(ctx context.Context, name string) error {
	k.keys = append(k.keys, name)
	return nil
}

func newTestSession(listener Listener, kb *fakeKeyboard) *Session {
	return &Session{
		listener: listener,
		speaker:  nopSpeaker{},
		keyboard: kb,
		baseDir:  "/tmp",
	}
}

func TestDictationTypesAndStops(t *testing.T) {
	kb := &fakeKeyboard{}
	s := newTestSession(&scriptListener{script: []string{
		"hello world",
		"", // silence is skipped
		"next line",
		"end voice typing",
	}}, kb)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"hello world "}, kb.typed)
	assert.Equal(t, []string{"Return"}, kb.keys)
	assert.Equal(t, "hello world \n", s.buffer)
}

func TestDeleteLastWordPressesBackspaces(t *testing.T) {
	kb := &fakeKeyboard{}
	s := newTestSession(&scriptListener{script: []string{
		"hello world",
		"delete last word",
		"stop voice typing",
	}}, kb)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "hello ", s.buffer)
	assert.Len(t, kb.keys, len("world ")) // one backspace per deleted character
}

func TestBackspaceErasesOneCharacter(t *testing.T) {
	kb := &fakeKeyboard{}
	s := newTestSession(&scriptListener{script: []string{
		"привет",
		"backspace", // trailing space
		"backspace", // final multi-byte letter
		"delete last word",
		"end voice typing",
	}}, kb)

	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, s.buffer)
	// Two spoken backspaces plus one per remaining character of "приве".
	assert.Len(t, kb.keys, 7)
}

func TestSaveMisrecognitionNormalized(t *testing.T) {
	kb := &fakeKeyboard{}
	dir := t.TempDir()
	s := newTestSession(&scriptListener{script: []string{
		"remember the milk",
		"safe this file", // recognizer heard "safe"
		"in my notes folder",
		"end voice typing",
	}}, kb)
	s.baseDir = dir

	require.NoError(t, s.Run(context.Background()))
	require.NotEmpty(t, s.lastSaved)
	assert.FileExists(t, s.lastSaved)
}

func TestCancellationStopsDictation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestSession(&scriptListener{}, &fakeKeyboard{})
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}
