package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyShutdown(t *testing.T) {
	cases := []string{
		"bye",
		"bye bye",
		"byebye",
		"Bye-Bye",
		"shut down",
		"SHUTDOWN",
		"please shut-down now",
		"okay bye see you",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, Shutdown, Classify(in).Kind)
		})
	}
}

func TestShutdownWinsOverOtherRules(t *testing.T) {
	// Substring shutdown check runs before every prefix rule.
	cases := []string{
		"write until you shut down",
		"send a message to bye",
		"voice typing bye",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, Shutdown, Classify(in).Kind)
		})
	}
}

func TestClassifySmartWrite(t *testing.T) {
	cmd := Classify("write a haiku about the sea")
	assert.Equal(t, SmartWrite, cmd.Kind)
	assert.Equal(t, "a haiku about the sea", cmd.Task)

	cmd = Classify("Write  an   essay")
	assert.Equal(t, SmartWrite, cmd.Kind)
	assert.Equal(t, " an   essay", cmd.Task, "task is passed through unchanged")

	assert.Equal(t, GenericQuery, Classify("write").Kind, "bare 'write' has no task")
}

func TestClassifyVoiceTyping(t *testing.T) {
	assert.Equal(t, VoiceTyping, Classify("voice typing").Kind)
	assert.Equal(t, VoiceTyping, Classify("Start Voice Typing").Kind)
	assert.Equal(t, VoiceTyping, Classify("  voice typing  ").Kind)
	assert.Equal(t, GenericQuery, Classify("voice typing please").Kind, "exact match only")
}

func TestClassifyMessaging(t *testing.T) {
	cmd := Classify("send a message to Ram")
	assert.Equal(t, Messaging, cmd.Kind)
	assert.Equal(t, "ram", cmd.Recipient)

	cmd = Classify("send message to  mom ")
	assert.Equal(t, Messaging, cmd.Kind)
	assert.Equal(t, "mom", cmd.Recipient)

	cmd = Classify("send a message")
	assert.Equal(t, Messaging, cmd.Kind)
	assert.Empty(t, cmd.Recipient)
}

func TestClassifyGenericQuery(t *testing.T) {
	cmd := Classify("open chrome")
	assert.Equal(t, GenericQuery, cmd.Kind)
	assert.Equal(t, "open chrome", cmd.Text)

	assert.Equal(t, GenericQuery, Classify("what's the weather like").Kind)
	assert.Equal(t, GenericQuery, Classify("").Kind)
}
