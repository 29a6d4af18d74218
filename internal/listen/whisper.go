package listen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Transcriber runs a local whisper.cpp model over captured phrases.
type Transcriber struct {
	model    whisper.Model
	language string
}

func NewTranscriber(modelPath, language string) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("listen: empty model path")
	}
	if language == "" {
		language = "en"
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("listen: load model: %w", err)
	}
	return &Transcriber{model: m, language: language}, nil
}

func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

// Transcribe expects mono 16 kHz float32 samples in [-1, 1].
func (t *Transcriber) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if t.model == nil {
		return "", errors.New("listen: nil model")
	}
	if len(pcm) == 0 {
		return "", nil
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("listen: new context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("listen: set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("listen: process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("listen: next segment: %w", err)
		}
		parts = append(parts, strings.TrimSpace(s.Text))
	}

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}
