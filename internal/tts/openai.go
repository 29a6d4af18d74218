package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"
)

// OpenAI synthesizes speech through the OpenAI audio API and returns
// mp3 bytes. It is the primary backend.
type OpenAI struct {
	client openai.Client
	voice  openai.AudioSpeechNewParamsVoice
}

func NewOpenAI(client openai.Client, voice string) *OpenAI {
	v := openai.AudioSpeechNewParamsVoice(voice)
	if voice == "" {
		v = openai.AudioSpeechNewParamsVoiceAlloy
	}
	return &OpenAI{client: client, voice: v}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          o.voice,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty speech response")
	}

	return audio, nil
}
