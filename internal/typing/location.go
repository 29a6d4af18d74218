package typing

import (
	"path/filepath"
	"strings"
)

const defaultNotesFolder = "VoiceNotes"

var locationStopwords = map[string]struct{}{
	"in": {}, "on": {}, "the": {}, "a": {}, "an": {},
	"my": {}, "folder": {}, "directory": {}, "please": {},
	"save": {}, "it": {}, "to": {}, "file": {}, "this": {},
}

// ParseSaveLocation turns a spoken answer like "in my notes folder" into
// a directory under base. With no usable folder words the default notes
// folder is used. Answers that would escape base are rejected with "".
func ParseSaveLocation(answer, base string) string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(answer)) {
		if _, skip := locationStopwords[t]; skip {
			continue
		}
		if strings.Contains(t, "..") || strings.ContainsAny(t, `/\`) {
			return ""
		}
		tokens = append(tokens, t)
	}

	folder := defaultNotesFolder
	if len(tokens) > 0 {
		folder = strings.Join(tokens, " ")
	}
	return filepath.Join(base, folder)
}
