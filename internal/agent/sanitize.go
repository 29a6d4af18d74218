package agent

import (
	"html"
	"regexp"
	"strings"
)

const maxSpeechLen = 450

var (
	codeFenceRe   = regexp.MustCompile("(?s)```.*?```")
	indentedRe    = regexp.MustCompile(`(?m)^ {4,}.*$`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	fenceReplaced = " I've put the full code in your chat window. "
)

// SpeechFriendly prepares agent text for the speech channel: code fences
// are replaced with a spoken pointer to the chat window, indented code
// blocks and HTML markup are dropped, whitespace collapses, and the
// result is shortened to a speakable length.
func SpeechFriendly(text string) string {
	if text == "" {
		return ""
	}
	cleaned := codeFenceRe.ReplaceAllString(text, fenceReplaced)
	cleaned = indentedRe.ReplaceAllString(cleaned, "")
	cleaned = sanitize(cleaned)
	return strings.TrimSpace(Shorten(cleaned, maxSpeechLen))
}

func sanitize(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(s)
	text = htmlTagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Shorten truncates s to at most max characters, cutting on a word
// boundary when one lands in the back half of the window. Counting is
// per rune, so multi-byte text is never split mid-character.
func Shorten(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	cut := runes[:max-3]
	for i := len(cut) - 1; i > max/2; i-- {
		if cut[i] == ' ' {
			return string(cut[:i]) + "..."
		}
	}
	return string(cut) + "..."
}
