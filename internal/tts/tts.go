package tts

import "context"

// Synthesizer turns text into encoded audio (mp3, wav or ogg). The
// speech channel decodes whatever comes back, so backends are free to
// pick their native container.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Name() string
}
