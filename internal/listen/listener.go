package listen

import (
	"context"
	"log/slog"
	"time"
)

// PhraseRecorder captures one endpointed phrase from the microphone.
type PhraseRecorder interface {
	RecordPhrase(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error)
}

// Recognizer turns mono 16 kHz samples into text.
type Recognizer interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

// Listener wires recording and recognition into the session
// controller's one-shot listen contract.
type Listener struct {
	rec   PhraseRecorder
	stt   Recognizer
	chime func()

	// When set, every captured phrase is also written here as a wav
	// file for debugging recognition quality.
	debugDir string
}

// Option configures optional Listener behavior.
type Option func(*Listener)

// WithChime plays a short prompt sound right before the mic opens.
func WithChime(chime func()) Option {
	return func(l *Listener) { l.chime = chime }
}

// WithDebugCapture saves each captured phrase as a wav under dir.
func WithDebugCapture(dir string) Option {
	return func(l *Listener) { l.debugDir = dir }
}

func NewListener(rec PhraseRecorder, stt Recognizer, opts ...Option) *Listener {
	l := &Listener{rec: rec, stt: stt}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Listen performs one bounded recognition attempt. Silence is "", nil.
func (l *Listener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	if l.chime != nil {
		l.chime()
	}

	samples, err := l.rec.RecordPhrase(ctx, timeout, phraseLimit)
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", nil
	}

	if l.debugDir != "" {
		if path, err := saveCapture(l.debugDir, samples); err != nil {
			slog.Warn("listen: debug capture failed", "err", err)
		} else {
			slog.Debug("listen: phrase captured", "path", path)
		}
	}

	start := time.Now()
	text, err := l.stt.Transcribe(ctx, samples)
	if err != nil {
		return "", err
	}
	slog.Debug("listen: transcribed",
		"chars", len(text), "audio", time.Duration(len(samples))*time.Second/SampleRate,
		"took", time.Since(start))
	return text, nil
}
