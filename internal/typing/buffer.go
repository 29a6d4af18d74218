package typing

import (
	"strings"
	"unicode/utf8"
)

// DeleteLastWord trims the final word from the dictation buffer and
// reports how many backspaces reproduce the edit on screen. Backspaces
// erase characters, so the count is in runes.
func DeleteLastWord(buffer string) (string, int) {
	if strings.TrimSpace(buffer) == "" {
		return buffer, 0
	}

	stripped := strings.TrimRight(buffer, " \t\n")

	idx := strings.LastIndex(stripped, " ")
	if idx == -1 {
		return "", utf8.RuneCountInString(buffer)
	}

	next := stripped[:idx+1]
	return next, utf8.RuneCountInString(buffer[len(next):])
}

// DeleteLastSentence trims everything after the final '.', '!' or '?'.
// With no sentence delimiter the whole buffer goes.
func DeleteLastSentence(buffer string) (string, int) {
	if strings.TrimSpace(buffer) == "" {
		return buffer, 0
	}

	stripped := strings.TrimRight(buffer, " \t\n")

	last := -1
	for _, d := range []string{".", "?", "!"} {
		if i := strings.LastIndex(stripped, d); i > last {
			last = i
		}
	}
	if last == -1 {
		return "", utf8.RuneCountInString(buffer)
	}

	next := stripped[:last+1]
	return next, utf8.RuneCountInString(buffer[len(next):])
}
