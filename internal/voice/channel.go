package voice

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"axylo/internal/audio"
	"axylo/internal/tts"
)

// Player renders mono PCM. The stop flag is shared with the channel so a
// cancel request reaches an in-flight playback.
type Player interface {
	Play(ctx context.Context, pcm audio.PCM, stop *atomic.Bool)
}

// Channel serializes all spoken utterances and owns the speaking signal
// on the gate for their whole synthesis+playback span. Synthesis failures
// fall back to the secondary backend; if both backends fail the utterance
// is dropped and the speaking signal still clears, so the assistant can
// never end up stuck muted.
type Channel struct {
	mu       sync.Mutex
	gate     *Gate
	primary  tts.Synthesizer
	fallback tts.Synthesizer
	player   Player
	stop     atomic.Bool
}

func NewChannel(gate *Gate, primary, fallback tts.Synthesizer, player Player) *Channel {
	return &Channel{
		gate:     gate,
		primary:  primary,
		fallback: fallback,
		player:   player,
	}
}

// Say synthesizes and plays one utterance. It returns only when playback
// has finished, been cancelled, or the utterance was dropped.
func (c *Channel) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	clear := c.gate.BeginSpeaking()
	defer clear()

	c.stop.Store(false)

	data, err := c.synthesize(ctx, text)
	if err != nil {
		slog.Error("tts: all backends failed, dropping utterance", "err", err)
		return nil
	}

	pcm, err := audio.Decode(data)
	if err != nil {
		slog.Error("tts: cannot decode synthesized audio", "err", err)
		return nil
	}

	if c.stop.Load() {
		return nil
	}
	c.player.Play(ctx, pcm, &c.stop)
	return nil
}

func (c *Channel) synthesize(ctx context.Context, text string) ([]byte, error) {
	data, err := c.primary.Synthesize(ctx, text)
	if err == nil {
		return data, nil
	}
	if c.fallback == nil {
		return nil, err
	}

	slog.Warn("tts: primary backend failed, trying fallback",
		"primary", c.primary.Name(), "fallback", c.fallback.Name(), "err", err)
	return c.fallback.Synthesize(ctx, text)
}

// Cancel requests immediate termination of the current playback. Safe to
// call when nothing is playing.
func (c *Channel) Cancel() {
	c.stop.Store(true)
}
