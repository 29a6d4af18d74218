// Package listen captures one phrase from the microphone and turns it
// into text with a local whisper model.
package listen

import (
	"context"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	// Whisper wants mono 16 kHz input, so everything records at that.
	SampleRate = 16000

	frameSize = 320 // 20ms

	silenceThreshRMS = 0.015
	trailingSilence  = 600 * time.Millisecond
	frameDur         = 20 * time.Millisecond
)

// Recorder owns the portaudio runtime. One per process.
type Recorder struct{}

func NewRecorder() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	return &Recorder{}, nil
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// RecordPhrase waits up to timeout for speech to begin, then records
// until the speaker pauses or phraseLimit is reached. Silence within the
// window comes back as nil samples with no error; cancellation aborts
// the capture immediately.
func (r *Recorder) RecordPhrase(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		out           []float32
		speaking      bool
		silenceFrames int
		speechStart   time.Time
	)
	waitStart := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !speaking && time.Since(waitStart) >= timeout {
			return nil, nil
		}
		if speaking && time.Since(speechStart) >= phraseLimit {
			return out, nil
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > silenceThreshRMS {
			if !speaking {
				speaking = true
				speechStart = time.Now()
			}
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}

		if speaking {
			silenceFrames++
			if time.Duration(silenceFrames)*frameDur >= trailingSilence {
				return out, nil
			}
			out = append(out, buf...)
		}
	}
}

func frameRMS(frame []float32) float32 {
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(frame))))
}
