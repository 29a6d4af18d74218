package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailFor(t *testing.T) {
	c := Contacts{Emails: map[string]string{"ram": "ram@gmail.com"}}

	assert.Equal(t, "ram@gmail.com", c.EmailFor("Ram"))
	assert.Equal(t, "ram@gmail.com", c.EmailFor("ram please"))
	assert.Equal(t, "someone@example.com", c.EmailFor("someone @example.com"),
		"spoken addresses lose their spaces")
	assert.Equal(t, "priyash@gmail.com", c.EmailFor("Priyash"),
		"unknown names become gmail usernames")
	assert.Empty(t, c.EmailFor("   "))
}

func TestWhatsAppFor(t *testing.T) {
	c := Contacts{WhatsApp: map[string]string{"mom": "Mom"}}
	assert.Equal(t, "Mom", c.WhatsAppFor("mom"))
	assert.Equal(t, "Uncle Bob", c.WhatsAppFor(" Uncle Bob "))
}

type scriptListener struct {
	script []string
}

func (l *scriptListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	if len(l.script) == 0 {
		return "", nil
	}
	next := l.script[0]
	l.script = l.script[1:]
	return next, nil
}

type recSpeaker struct{ said []string }

func (s *recSpeaker) Say(ctx context.Context, text string) error {
	s.said = append(s.said, text)
	return nil
}

func (s *recSpeaker) Cancel() {}

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

type recOpener struct{ urls []string }

func (o *recOpener) OpenApp(ctx context.Context, name string) error { return nil }
func (o *recOpener) OpenFile(ctx context.Context, path string) error { return nil }

func (o *recOpener) OpenURL(ctx context.Context, url string) error {
	o.urls = append(o.urls, url)
	return nil
}

func newTestSession(listener Listener, kb *fakeKeyboard, op *recOpener, sp *recSpeaker) *Session {
	s := NewSession(listener, sp, kb, op, Contacts{
		Emails: map[string]string{"ram": "ram@gmail.com"},
	})
	s.settle = 0
	return s
}

func TestEmailFlowEndToEnd(t *testing.T) {
	kb := &fakeKeyboard{}
	op := &recOpener{}
	sp := &recSpeaker{}
	s := newTestSession(&scriptListener{script: []string{
		"email",
		"Ram",
		"see you at eight",
		"send",
	}}, kb, op, sp)

	require.NoError(t, s.Run(context.Background(), ""))

	require.Len(t, op.urls, 1)
	assert.Equal(t, gmailComposeURL, op.urls[0])
	assert.Equal(t, []string{"ram@gmail.com", emailSubject, "see you at eight"}, kb.typed)
	assert.Equal(t, []string{"Tab", "Tab", "ctrl+Return"}, kb.keys)
	assert.Contains(t, sp.said, "Your email should be sent now.")
}

func TestEmailFlowUsesRecipientFromUtterance(t *testing.T) {
	kb := &fakeKeyboard{}
	s := newTestSession(&scriptListener{script: []string{
		"use email",
		"hello there",
		"send it",
	}}, kb, &recOpener{}, &recSpeaker{})

	require.NoError(t, s.Run(context.Background(), "ram"))
	require.NotEmpty(t, kb.typed)
	assert.Equal(t, "ram@gmail.com", kb.typed[0])
}

func TestCancelNeverPressesSend(t *testing.T) {
	kb := &fakeKeyboard{}
	sp := &recSpeaker{}
	s := newTestSession(&scriptListener{script: []string{
		"email",
		"ram",
		"secret plans",
		"cancel",
	}}, kb, &recOpener{}, sp)

	require.NoError(t, s.Run(context.Background(), ""))

	assert.NotContains(t, kb.keys, "ctrl+Return")
	assert.Contains(t, sp.said, "Okay, I cancelled the message.")
}

func TestUnknownChannelCancels(t *testing.T) {
	sp := &recSpeaker{}
	s := newTestSession(&scriptListener{script: []string{
		"carrier pigeon", "smoke signals", "morse code",
	}}, &fakeKeyboard{}, &recOpener{}, sp)

	require.NoError(t, s.Run(context.Background(), ""))
	assert.Contains(t, sp.said, "I couldn't understand the channel. Cancelling sending.")
}

func TestWhatsAppFlowWaitsForReady(t *testing.T) {
	kb := &fakeKeyboard{}
	sp := &recSpeaker{}
	s := newTestSession(&scriptListener{script: []string{
		"whatsapp",
		"ready",
		"on my way",
		"send",
	}}, kb, &recOpener{}, sp)

	require.NoError(t, s.Run(context.Background(), "mom"))

	assert.Equal(t, []string{"on my way"}, kb.typed)
	assert.Equal(t, []string{"Return"}, kb.keys)
}
