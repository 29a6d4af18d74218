package intent

import "strings"

// Kind is the category an utterance is routed to.
type Kind int

const (
	GenericQuery Kind = iota
	Shutdown
	SmartWrite
	VoiceTyping
	Messaging
)

func (k Kind) String() string {
	switch k {
	case Shutdown:
		return "shutdown"
	case SmartWrite:
		return "smart_write"
	case VoiceTyping:
		return "voice_typing"
	case Messaging:
		return "messaging"
	default:
		return "generic_query"
	}
}

// Command is the result of classifying one utterance.
// Task is the text after "write " for SmartWrite; Recipient is the
// trimmed remainder after the first " to " for Messaging, empty when
// no recipient was spoken.
type Command struct {
	Kind      Kind
	Text      string
	Task      string
	Recipient string
}

// Shutdown keywords are matched as substrings, not on word boundaries.
// That can in principle misfire on words containing "bye"; the behavior
// is kept for compatibility with how users already talk to the assistant.
var shutdownWords = []string{
	"bye",
	"bye bye",
	"byebye",
	"bye-bye",
	"shut down",
	"shutdown",
	"shut-down",
}

// Classify routes an utterance to an intent. Rules run in fixed priority
// order and the first match wins: shutdown substrings come before the
// prefix rules so "write until you shut down" does not reach the writer.
func Classify(text string) Command {
	cleaned := strings.TrimSpace(text)
	lower := strings.ToLower(cleaned)

	for _, w := range shutdownWords {
		if strings.Contains(lower, w) {
			return Command{Kind: Shutdown, Text: cleaned}
		}
	}

	if strings.HasPrefix(lower, "write ") {
		return Command{
			Kind: SmartWrite,
			Text: cleaned,
			Task: cleaned[len("write "):],
		}
	}

	if lower == "voice typing" || lower == "start voice typing" {
		return Command{Kind: VoiceTyping, Text: cleaned}
	}

	if strings.HasPrefix(lower, "send a message") || strings.HasPrefix(lower, "send message") {
		cmd := Command{Kind: Messaging, Text: cleaned}
		if _, rest, ok := strings.Cut(lower, " to "); ok {
			cmd.Recipient = strings.TrimSpace(rest)
		}
		return cmd
	}

	return Command{Kind: GenericQuery, Text: cleaned}
}
