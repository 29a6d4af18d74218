// Package notify plays short sound assets, like the listen prompt chime.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"axylo/internal/audio"
	"axylo/internal/voice"
)

// Chime is one preloaded sound asset. Decoding happens once at load;
// mp3, wav and ogg files all work.
type Chime struct {
	pcm    audio.PCM
	player voice.Player
}

func LoadChime(path string, player voice.Player) (*Chime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("notify: read %s: %w", path, err)
	}
	pcm, err := audio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("notify: decode %s: %w", path, err)
	}
	return &Chime{pcm: pcm, player: player}, nil
}

// Play renders the chime and waits for it to finish. Errors are logged,
// never returned; a missing chime must not break a turn.
func (c *Chime) Play() {
	if c == nil {
		return
	}
	var stop atomic.Bool
	c.player.Play(context.Background(), c.pcm, &stop)
}

// MaybeLoadChime is LoadChime with a soft failure mode for optional
// assets: a missing or broken file logs a warning and returns nil, and
// the nil Chime plays nothing.
func MaybeLoadChime(path string, player voice.Player) *Chime {
	if path == "" {
		return nil
	}
	c, err := LoadChime(path, player)
	if err != nil {
		slog.Warn("notify: chime unavailable", "path", path, "err", err)
		return nil
	}
	return c
}
