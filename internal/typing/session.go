// Package typing is the dictation sub-session: continuous recognition
// typed into the focused editor, with spoken editing and file commands.
package typing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"axylo/internal/automate"
	"axylo/internal/voice"
)

const (
	listenTimeout = 8 * time.Second
	phraseLimit   = 8 * time.Second

	// How much of a saved note gets read back aloud.
	readBackLimit = 600

	saveAttempts = 3
)

var (
	endCmds      = phraseSet("end voice typing", "stop voice typing")
	nextLineCmds = phraseSet("go next line", "go to next line", "next line")
	bkspCmds     = phraseSet("back press", "backspace")
	delWordCmds  = phraseSet("delete last word")
	delSentCmds  = phraseSet("delete last sentence")
	saveCmds     = phraseSet(
		"save file", "save this file", "save this note", "save file now", "save this",
	)
	openLastCmds = phraseSet(
		"open last saved file", "open last file", "open last note",
		"open saved file", "open note", "open last safe file",
	)
	readLastCmds = phraseSet(
		"read last saved note", "read last note", "read saved note", "read my last note",
	)
)

func phraseSet(phrases ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		m[p] = struct{}{}
	}
	return m
}

// Listener is one bounded recognition attempt, shared with the session
// controller's contract: silence is empty, not an error.
type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// Session owns one dictation run. Not reusable.
type Session struct {
	listener  Listener
	speaker   voice.Speaker
	keyboard  automate.Keyboard
	opener    automate.Opener
	editorApp string
	baseDir   string

	buffer    string
	lastSaved string
}

func NewSession(listener Listener, speaker voice.Speaker, keyboard automate.Keyboard, opener automate.Opener) *Session {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Session{
		listener:  listener,
		speaker:   speaker,
		keyboard:  keyboard,
		opener:    opener,
		editorApp: "text editor",
		baseDir:   home,
	}
}

// Run drives the dictation loop until a stop phrase or cancellation.
func (s *Session) Run(ctx context.Context) error {
	if s.opener != nil {
		if err := s.opener.OpenApp(ctx, s.editorApp); err != nil {
			slog.Error("typing: cannot open editor", "err", err)
			s.say(ctx, "I could not open a text editor. Cancelling voice typing.")
			return nil
		}
		// Give the editor a moment to take focus.
		if err := sleepCtx(ctx, time.Second); err != nil {
			return err
		}
	}

	s.say(ctx, "Voice typing is active. Say 'end voice typing' to stop.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := s.listener.Listen(ctx, listenTimeout, phraseLimit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("typing: recognition failed", "err", err)
			continue
		}

		raw := strings.TrimSpace(text)
		if raw == "" {
			continue
		}

		// Recognition regularly hears "safe" for "save".
		cmd := strings.ToLower(raw)
		cmd = strings.ReplaceAll(cmd, "safed", "saved")
		cmd = strings.ReplaceAll(cmd, "safe", "save")

		slog.Info("typing: heard", "text", raw)

		switch {
		case in(endCmds, cmd):
			s.say(ctx, "Stopping voice typing.")
			return nil

		case in(nextLineCmds, cmd):
			s.press(ctx, "Return")
			s.buffer += "\n"

		case in(bkspCmds, cmd):
			s.press(ctx, "BackSpace")
			if s.buffer != "" {
				// The editor erases a character, so the buffer drops a
				// rune, not a byte.
				_, size := utf8.DecodeLastRuneInString(s.buffer)
				s.buffer = s.buffer[:len(s.buffer)-size]
			}

		case in(delWordCmds, cmd):
			var n int
			s.buffer, n = DeleteLastWord(s.buffer)
			s.pressBackspaces(ctx, n)

		case in(delSentCmds, cmd):
			var n int
			s.buffer, n = DeleteLastSentence(s.buffer)
			s.pressBackspaces(ctx, n)

		case in(saveCmds, cmd):
			if err := s.askAndSave(ctx); err != nil {
				return err
			}

		case in(openLastCmds, cmd):
			s.openLastSaved(ctx)

		case in(readLastCmds, cmd):
			s.readLastSaved(ctx)

		default:
			toType := raw + " "
			if err := s.keyboard.Type(ctx, toType); err != nil {
				slog.Error("typing: keystroke injection failed", "err", err)
				continue
			}
			s.buffer += toType
		}
	}
}

func (s *Session) askAndSave(ctx context.Context) error {
	if strings.TrimSpace(s.buffer) == "" {
		s.say(ctx, "There is no text to save yet.")
		return nil
	}

	s.say(ctx, "Where should I save this file? For example, say 'in my notes folder'.")

	for attempt := 0; attempt < saveAttempts; attempt++ {
		answer, err := s.listener.Listen(ctx, listenTimeout, phraseLimit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			continue
		}

		dir := ParseSaveLocation(answer, s.baseDir)
		if dir == "" {
			s.say(ctx, "I did not understand the folder. Please say something like 'in my notes folder'.")
			continue
		}

		path, err := s.writeNote(dir)
		if err != nil {
			slog.Error("typing: save failed", "dir", dir, "err", err)
			s.say(ctx, "Saving failed. Please try again.")
			continue
		}

		s.lastSaved = path
		slog.Info("typing: note saved", "path", path)
		s.say(ctx, "File saved successfully.")
		return nil
	}

	s.say(ctx, "I could not understand where to save the file. Cancelling save.")
	return nil
}

func (s *Session) writeNote(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("typing: create %s: %w", dir, err)
	}
	name := time.Now().Format("VoiceNotes_20060102_150405.txt")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(s.buffer), 0o644); err != nil {
		return "", fmt.Errorf("typing: write %s: %w", path, err)
	}
	return path, nil
}

func (s *Session) openLastSaved(ctx context.Context) {
	if s.lastSaved == "" {
		s.say(ctx, "No saved file found yet. Please say 'save this file' first.")
		return
	}
	if _, err := os.Stat(s.lastSaved); err != nil {
		s.say(ctx, "I can't find the last saved file on disk.")
		return
	}
	if err := s.opener.OpenFile(ctx, s.lastSaved); err != nil {
		slog.Error("typing: open last saved failed", "err", err)
		s.say(ctx, "I could not open the last saved file.")
		return
	}
	s.say(ctx, "Opening your last saved note.")
}

func (s *Session) readLastSaved(ctx context.Context) {
	if s.lastSaved == "" {
		s.say(ctx, "I don't have any saved note yet in this session.")
		return
	}
	data, err := os.ReadFile(s.lastSaved)
	if err != nil {
		slog.Error("typing: read last saved failed", "err", err)
		s.say(ctx, "I could not read the last saved note.")
		return
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		s.say(ctx, "The last saved note is empty.")
		return
	}
	if len(content) > readBackLimit {
		content = content[:readBackLimit]
	}
	s.say(ctx, "Here is your last saved note.")
	s.say(ctx, content)
}

func (s *Session) press(ctx context.Context, key string) {
	if err := s.keyboard.Key(ctx, key); err != nil {
		slog.Error("typing: key press failed", "key", key, "err", err)
	}
}

func (s *Session) pressBackspaces(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		s.press(ctx, "BackSpace")
	}
}

func (s *Session) say(ctx context.Context, text string) {
	if err := s.speaker.Say(ctx, text); err != nil {
		slog.Warn("typing: speak failed", "err", err)
	}
}

func in(set map[string]struct{}, cmd string) bool {
	_, ok := set[cmd]
	return ok
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
