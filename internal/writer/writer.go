// Package writer handles "write ..." requests: generate a document with
// the reasoning backend and open it in the user's editor.
package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"axylo/internal/agent"
	"axylo/internal/automate"
	"axylo/internal/voice"
)

const (
	maxAttempts    = 3
	defaultBackoff = 2 * time.Second
)

// Writer generates text through an agent.Runner and hands the result to
// the desktop as a freshly written temp file.
type Writer struct {
	runner  agent.Runner
	speaker voice.Speaker
	opener  automate.Opener
	tempDir string
	backoff time.Duration
}

func New(runner agent.Runner, speaker voice.Speaker, opener automate.Opener) *Writer {
	return &Writer{
		runner:  runner,
		speaker: speaker,
		opener:  opener,
		tempDir: os.TempDir(),
		backoff: defaultBackoff,
	}
}

// Handle fulfils one smart-write task end to end. Generation problems
// are spoken, not returned; only cancellation comes back as an error.
func (w *Writer) Handle(ctx context.Context, task string) error {
	task = strings.TrimSpace(task)
	if task == "" {
		w.say(ctx, "I didn't hear what to write. Please say it again.")
		return nil
	}

	slog.Info("writer: task accepted", "task", task)
	w.say(ctx, "Okay. Processing your request.")

	text, err := w.generate(ctx, task)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		slog.Error("writer: generation failed", "err", err)
		w.say(ctx, "I could not get a response from the writing backend. Please try again.")
		return nil
	}

	path, err := w.writeDocument(text)
	if err != nil {
		slog.Error("writer: cannot write document", "err", err)
		w.say(ctx, "I generated the content, but I could not create a document to show it.")
		return nil
	}

	if err := w.opener.OpenFile(ctx, path); err != nil {
		slog.Error("writer: cannot open document", "path", path, "err", err)
		w.say(ctx, "I generated the content, but I could not open a document to show it.")
		return nil
	}

	slog.Info("writer: document opened", "path", path, "chars", len(text))
	w.say(ctx, "I have put the generated content into a new document for you.")
	return nil
}

// generate retries the backend a few times with a flat backoff; empty
// responses count as failures.
func (w *Writer) generate(ctx context.Context, task string) (string, error) {
	prompt := "Write the following for the user. Output only the document text.\n\n" + task

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slog.Debug("writer: calling backend", "attempt", attempt, "max", maxAttempts)

		res, err := w.runner.Run(ctx, prompt)
		if err == nil {
			if text := strings.TrimSpace(res.FinalText()); text != "" {
				return text, nil
			}
			err = errors.New("backend returned an empty response")
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		slog.Warn("writer: attempt failed", "attempt", attempt, "err", err)
		if attempt < maxAttempts {
			select {
			case <-time.After(w.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("writer: failed after %d attempts: %w", maxAttempts, lastErr)
}

func (w *Writer) writeDocument(text string) (string, error) {
	name := fmt.Sprintf("smart_writer_%d.txt", time.Now().Unix())
	path := filepath.Join(w.tempDir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) say(ctx context.Context, text string) {
	if err := w.speaker.Say(ctx, text); err != nil {
		slog.Warn("writer: speak failed", "err", err)
	}
}
