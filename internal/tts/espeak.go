package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Espeak is the offline fallback backend. It shells out to espeak-ng and
// captures the synthesized wav from stdout instead of letting espeak play
// it, so fallback speech goes through the same cancellable playback path
// as the primary backend.
type Espeak struct {
	bin   string
	voice string
}

func NewEspeak(voice string) *Espeak {
	if voice == "" {
		voice = "en"
	}
	return &Espeak{bin: "espeak-ng", voice: voice}
}

func (e *Espeak) Name() string { return "espeak" }

func (e *Espeak) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	cmd := exec.CommandContext(ctx, e.bin, "--stdout", "-v", e.voice, text)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", e.bin, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced no audio", e.bin)
	}

	return out.Bytes(), nil
}
