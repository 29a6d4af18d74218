// Package messaging is the voice-only message sending sub-session:
// choose a channel, resolve the recipient, dictate the body, confirm,
// send. Nothing leaves the machine without an explicit "send".
package messaging

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"axylo/internal/automate"
	"axylo/internal/voice"
)

const (
	gmailComposeURL = "https://mail.google.com/mail/u/0/#inbox?compose=new"
	whatsappURL     = "https://web.whatsapp.com/"

	emailSubject = "Voice message from Axylo"

	askRetries    = 3
	listenTimeout = 8 * time.Second
	phraseLimit   = 8 * time.Second

	// Web apps need time to render before keystrokes land anywhere.
	composeSettle = 7 * time.Second
)

type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// Session owns one messaging run. Not reusable.
type Session struct {
	listener Listener
	speaker  voice.Speaker
	keyboard automate.Keyboard
	opener   automate.Opener
	contacts Contacts
	settle   time.Duration
}

func NewSession(listener Listener, speaker voice.Speaker, keyboard automate.Keyboard, opener automate.Opener, contacts Contacts) *Session {
	return &Session{
		listener: listener,
		speaker:  speaker,
		keyboard: keyboard,
		opener:   opener,
		contacts: contacts,
		settle:   composeSettle,
	}
}

// Run drives the flow. recipient may carry the name already extracted
// from the triggering utterance; empty means ask.
func (s *Session) Run(ctx context.Context, recipient string) error {
	s.say(ctx, "Okay, I will help you send a message. Should I use email or WhatsApp?")

	channel, err := s.chooseChannel(ctx)
	if err != nil {
		return err
	}

	switch channel {
	case "email":
		return s.emailFlow(ctx, recipient)
	case "whatsapp":
		return s.whatsappFlow(ctx, recipient)
	default:
		s.say(ctx, "I couldn't understand the channel. Cancelling sending.")
		return nil
	}
}

func (s *Session) chooseChannel(ctx context.Context) (string, error) {
	for i := 0; i < askRetries; i++ {
		text, err := s.listenOnce(ctx)
		if err != nil {
			return "", err
		}
		if text == "" {
			s.say(ctx, "Please say 'email' or 'WhatsApp'.")
			continue
		}
		t := strings.ToLower(text)
		switch {
		case strings.Contains(t, "email"), strings.Contains(t, "gmail"), strings.Contains(t, "mail"):
			return "email", nil
		case strings.Contains(t, "whatsapp"), strings.Contains(t, "whats app"):
			return "whatsapp", nil
		}
		s.say(ctx, "I heard something else. Please say 'email' or 'WhatsApp'.")
	}
	return "", nil
}

func (s *Session) emailFlow(ctx context.Context, recipient string) error {
	s.say(ctx, "Alright, I will send an email using Gmail.")

	if err := s.opener.OpenURL(ctx, gmailComposeURL); err != nil {
		slog.Error("messaging: cannot open gmail", "err", err)
		s.say(ctx, "I could not open Gmail in the browser.")
		return nil
	}
	if err := sleepCtx(ctx, s.settle); err != nil {
		return err
	}

	if recipient == "" {
		var err error
		recipient, err = s.askAndListen(ctx,
			"Who is the recipient? You can say a name like Ram, or say the full email address.")
		if err != nil {
			return err
		}
		if recipient == "" {
			s.say(ctx, "I couldn't get the recipient. Cancelling email.")
			return nil
		}
	}

	address := s.contacts.EmailFor(recipient)
	s.say(ctx, "Sending to "+address+". What is your message?")

	body, err := s.askAndListen(ctx, "Please speak the message.")
	if err != nil {
		return err
	}
	if body == "" {
		s.say(ctx, "I couldn't hear the message. Cancelling email.")
		return nil
	}

	s.say(ctx, "You said: "+body+". I will prepare the email.")

	if err := s.fillCompose(ctx, address, body); err != nil {
		slog.Error("messaging: typing into compose failed", "err", err)
		s.say(ctx, "I had trouble typing the email into Gmail.")
		return nil
	}

	confirmed, err := s.confirmSend(ctx)
	if err != nil || !confirmed {
		return err
	}

	if err := s.keyboard.Key(ctx, "ctrl+Return"); err != nil {
		slog.Error("messaging: send hotkey failed", "err", err)
		s.say(ctx, "I tried to send the email but something went wrong.")
		return nil
	}
	slog.Info("messaging: email sent", "to", address)
	s.say(ctx, "Your email should be sent now.")
	return nil
}

func (s *Session) fillCompose(ctx context.Context, address, body string) error {
	if err := s.keyboard.Type(ctx, address); err != nil {
		return err
	}
	if err := s.keyboard.Key(ctx, "Tab"); err != nil {
		return err
	}
	if err := s.keyboard.Type(ctx, emailSubject); err != nil {
		return err
	}
	if err := s.keyboard.Key(ctx, "Tab"); err != nil {
		return err
	}
	return s.keyboard.Type(ctx, body)
}

// whatsappFlow opens WhatsApp Web and lets the user pick the chat by
// hand before dictating; robot-clicking inside the chat list is too
// fragile to trust with someone else's messages.
func (s *Session) whatsappFlow(ctx context.Context, recipient string) error {
	s.say(ctx, "Okay, I will send a WhatsApp message.")

	if err := s.opener.OpenURL(ctx, whatsappURL); err != nil {
		slog.Error("messaging: cannot open whatsapp web", "err", err)
		s.say(ctx, "I could not open WhatsApp Web.")
		return nil
	}
	if err := sleepCtx(ctx, s.settle); err != nil {
		return err
	}

	chat := s.contacts.WhatsAppFor(recipient)
	if chat != "" {
		s.say(ctx, "Please click the chat with "+chat+", then say 'ready'.")
	} else {
		s.say(ctx, "Please click the chat you want, then say 'ready'.")
	}

	ready := false
	for i := 0; i < askRetries; i++ {
		text, err := s.listenOnce(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(strings.ToLower(text), "ready") {
			ready = true
			break
		}
		s.say(ctx, "Say 'ready' when the chat is open, or stay silent to cancel.")
	}
	if !ready {
		s.say(ctx, "Cancelling the WhatsApp message.")
		return nil
	}

	body, err := s.askAndListen(ctx, "Please speak the message.")
	if err != nil {
		return err
	}
	if body == "" {
		s.say(ctx, "I couldn't hear the message. Cancelling.")
		return nil
	}

	if err := s.keyboard.Type(ctx, body); err != nil {
		slog.Error("messaging: typing into whatsapp failed", "err", err)
		s.say(ctx, "I had trouble typing the message.")
		return nil
	}

	confirmed, err := s.confirmSend(ctx)
	if err != nil || !confirmed {
		return err
	}

	if err := s.keyboard.Key(ctx, "Return"); err != nil {
		slog.Error("messaging: send key failed", "err", err)
		s.say(ctx, "I tried to send the message but something went wrong.")
		return nil
	}
	slog.Info("messaging: whatsapp message sent", "chat", chat)
	s.say(ctx, "Your message should be sent now.")
	return nil
}

// confirmSend waits for an explicit 'send' or 'cancel'.
func (s *Session) confirmSend(ctx context.Context) (bool, error) {
	s.say(ctx, "Say 'send' to send the message, or 'cancel' to cancel.")

	for i := 0; i < askRetries; i++ {
		text, err := s.listenOnce(ctx)
		if err != nil {
			return false, err
		}
		if text == "" {
			s.say(ctx, "I didn't hear anything. Say 'send' or 'cancel'.")
			continue
		}
		cmd := strings.ToLower(text)
		switch {
		case strings.Contains(cmd, "send"):
			s.say(ctx, "Sending now.")
			return true, nil
		case strings.Contains(cmd, "cancel"), strings.Contains(cmd, "stop"):
			s.say(ctx, "Okay, I cancelled the message.")
			return false, nil
		}
		s.say(ctx, "Please say clearly 'send' or 'cancel'.")
	}

	s.say(ctx, "No confirmation heard. Cancelling the message.")
	return false, nil
}

func (s *Session) askAndListen(ctx context.Context, prompt string) (string, error) {
	for i := 0; i < askRetries; i++ {
		s.say(ctx, prompt)
		text, err := s.listenOnce(ctx)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
		s.say(ctx, "Sorry, I didn't catch that.")
	}
	return "", nil
}

func (s *Session) listenOnce(ctx context.Context) (string, error) {
	text, err := s.listener.Listen(ctx, listenTimeout, phraseLimit)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("messaging: recognition failed", "err", err)
		return "", nil
	}
	return strings.TrimSpace(text), nil
}

func (s *Session) say(ctx context.Context, text string) {
	if err := s.speaker.Say(ctx, text); err != nil {
		slog.Warn("messaging: speak failed", "err", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
