package voice

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"axylo/internal/audio"
)

// playbackRate is the rate the speaker is initialized at; streams at
// other rates are resampled on the fly.
const playbackRate = 24000

// BeepPlayer plays PCM through the default output device. The speaker
// buffer is a tenth of a second, which bounds how long a cancel request
// can go unnoticed.
type BeepPlayer struct{}

func NewBeepPlayer() (*BeepPlayer, error) {
	sr := beep.SampleRate(playbackRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &BeepPlayer{}, nil
}

func (p *BeepPlayer) Play(ctx context.Context, pcm audio.PCM, stop *atomic.Bool) {
	src := &pcmStreamer{samples: pcm.Samples, stop: stop}

	var stream beep.Streamer = src
	if pcm.Rate != playbackRate {
		stream = beep.Resample(4, beep.SampleRate(pcm.Rate), beep.SampleRate(playbackRate), src)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
	case <-ctx.Done():
		stop.Store(true)
		<-done
	}
}

// pcmStreamer adapts mono float32 samples to beep and bails out as soon
// as the shared stop flag is set.
type pcmStreamer struct {
	samples []float32
	pos     int
	stop    *atomic.Bool
}

func (s *pcmStreamer) Stream(out [][2]float64) (int, bool) {
	if s.stop.Load() || s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for i := range out {
		if s.pos >= len(s.samples) {
			break
		}
		v := float64(s.samples[s.pos])
		out[i][0] = v
		out[i][1] = v
		s.pos++
		n++
	}
	return n, n > 0
}

func (s *pcmStreamer) Err() error { return nil }
