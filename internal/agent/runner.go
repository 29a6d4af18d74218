package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go/v3"
)

// Spoken when the backend answered but nothing usable could be extracted,
// and when the call itself failed. The turn always produces speech.
const (
	fallbackUnparsable = "I couldn't parse the agent's response. Check logs."
	fallbackError      = "I encountered an error executing that command."
)

// Runner is the opaque reasoning backend. Implementations decide the
// transport and any retries of their own.
type Runner interface {
	Run(ctx context.Context, prompt string) (RawResult, error)
}

// Agent wraps a Runner with shape normalization, latency measurement and
// the fixed fallback answers. It never fails a turn: the only error it
// returns is context cancellation, which must reach the session loop.
type Agent struct {
	runner Runner
}

func New(runner Runner) *Agent {
	return &Agent{runner: runner}
}

// Answer runs one reasoning call and returns the text to speak.
func (a *Agent) Answer(ctx context.Context, rid, prompt string) (string, error) {
	start := time.Now()
	res, err := a.runner.Run(ctx, prompt)
	latency := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		slog.Error("agent: reasoning call failed", "rid", rid, "latency", latency, "err", err)
		return fallbackError, nil
	}

	text := res.FinalText()
	if text == "" {
		slog.Warn("agent: empty or unparsable result", "rid", rid, "latency", latency)
		return fallbackUnparsable, nil
	}

	slog.Info("agent: answered", "rid", rid, "latency", latency, "chars", len(text))
	return text, nil
}

const systemPrompt = `You are Axylo, a personal desktop voice assistant.
Answer briefly and conversationally; your replies are spoken aloud.
When asked to open an application or perform a desktop action, describe
exactly what you did or why you could not.`

// OpenAI is the production Runner, backed by the chat completions API.
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAI(client openai.Client, model openai.ChatModel) *OpenAI {
	if model == "" {
		model = openai.ChatModelGPT5Nano
	}
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Run(ctx context.Context, prompt string) (RawResult, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model: o.model,
	})
	if err != nil {
		return RawResult{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return RawResult{}, errors.New("no choices in response")
	}
	return RawResult{Text: resp.Choices[0].Message.Content}, nil
}
