// Package audio decodes the containers our speech backends and sound
// assets come in (wav from espeak, mp3 from the OpenAI speech API,
// ogg vorbis/opus chimes) into mono float32 PCM for playback.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

// PCM is decoded mono audio at its native sample rate. Playback is
// responsible for any resampling.
type PCM struct {
	Samples []float32
	Rate    int
}

// Decode sniffs the container from the leading bytes. Ogg streams are
// tried as vorbis first, then opus.
func Decode(data []byte) (PCM, error) {
	if len(data) < 4 {
		return PCM{}, errors.New("audio: data too short")
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return decodeWAV(data)
	case bytes.HasPrefix(data, []byte("OggS")):
		if pcm, err := decodeOggVorbis(data); err == nil {
			return pcm, nil
		}
		return decodeOggOpus(data)
	default:
		return decodeMP3(data)
	}
}

func decodeWAV(data []byte) (PCM, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return PCM{}, errors.New("audio: invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("audio: wav pcm: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return PCM{}, errors.New("audio: empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	samples := intsToFloat32(buf.Data, depth)

	channels, rate := 1, 44100
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}

	return PCM{Samples: downmix(samples, channels), Rate: rate}, nil
}

func decodeMP3(data []byte) (PCM, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("audio: mp3: %w", err)
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return PCM{}, fmt.Errorf("audio: mp3 read: %w", err)
	}

	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return PCM{}, err
	}

	// go-mp3 always emits interleaved stereo.
	samples := downmix(int16sToFloat32(ints), 2)

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}

	return PCM{Samples: samples, Rate: rate}, nil
}

func decodeOggVorbis(data []byte) (PCM, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("audio: ogg vorbis: %w", err)
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return PCM{}, errors.New("audio: invalid vorbis stream")
	}

	return PCM{Samples: downmix(pcm, format.Channels), Rate: format.SampleRate}, nil
}

func decodeOggOpus(data []byte) (PCM, error) {
	dec, err := popus.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("audio: ogg opus: %w", err)
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var out []float32
	buf := make([]int16, 48_000*channels/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			out = append(out, int16sToFloat32(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("audio: opus read: %w", err)
		}
	}
	if len(out) == 0 {
		return PCM{}, errors.New("audio: empty opus stream")
	}

	// Opus always decodes at 48 kHz.
	return PCM{Samples: downmix(out, channels), Rate: 48000}, nil
}

func intsToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		f := float64(v) * scale
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		out[i] = float32(f)
	}
	return out
}

func int16sToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v) / 32768.0
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}
