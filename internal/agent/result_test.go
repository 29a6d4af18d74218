package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalEvent(text string) Event {
	return Event{Final: true, Content: Content{Parts: []Part{{Text: text}}}}
}

func TestFinalTextPlainString(t *testing.T) {
	assert.Equal(t, "hello", RawResult{Text: "hello"}.FinalText())
}

func TestFinalTextSingleEvent(t *testing.T) {
	ev := finalEvent("the answer")
	assert.Equal(t, "the answer", RawResult{Event: &ev}.FinalText())
}

func TestFinalTextLastFinalEventWins(t *testing.T) {
	res := RawResult{Events: []Event{
		{Final: false, Content: Content{Parts: []Part{{Text: "partial"}}}},
		finalEvent("first final"),
		{Final: true}, // final but empty, must not clobber
		finalEvent("second final"),
	}}
	assert.Equal(t, "second final", res.FinalText())
}

func TestFinalTextEmptyStream(t *testing.T) {
	res := RawResult{Events: []Event{
		{Final: false, Content: Content{Parts: []Part{{Text: "draft"}}}},
	}}
	assert.Empty(t, res.FinalText())
}

func TestFinalTextNothing(t *testing.T) {
	assert.Empty(t, RawResult{}.FinalText())
}

type fakeRunner struct {
	res RawResult
	err error
}

func (f *fakeRunner) Run(ctx context.Context, prompt string) (RawResult, error) {
	return f.res, f.err
}

func TestAnswerReturnsNormalizedText(t *testing.T) {
	a := New(&fakeRunner{res: RawResult{Text: "42"}})
	text, err := a.Answer(context.Background(), "abcd1234", "meaning of life")
	require.NoError(t, err)
	assert.Equal(t, "42", text)
}

func TestAnswerFallsBackOnEmptyResult(t *testing.T) {
	a := New(&fakeRunner{})
	text, err := a.Answer(context.Background(), "abcd1234", "anything")
	require.NoError(t, err)
	assert.Equal(t, fallbackUnparsable, text)
}

func TestAnswerFallsBackOnError(t *testing.T) {
	a := New(&fakeRunner{err: errors.New("connection reset")})
	text, err := a.Answer(context.Background(), "abcd1234", "anything")
	require.NoError(t, err, "backend failures must not fail the turn")
	assert.Equal(t, fallbackError, text)
}

func TestAnswerPropagatesCancellation(t *testing.T) {
	a := New(&fakeRunner{err: context.Canceled})
	_, err := a.Answer(context.Background(), "abcd1234", "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
