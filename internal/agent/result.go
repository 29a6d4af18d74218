package agent

// Part is one content fragment of an agent event.
type Part struct {
	Text string
}

// Content groups the parts attached to an event.
type Content struct {
	Parts []Part
}

// Event is one element of a streamed agent response. Only events marked
// Final carry the answer text.
type Event struct {
	Final   bool
	Content Content
}

// RawResult is the unnormalized shape a reasoning backend may hand back:
// a plain string, a single event, or a whole event stream. Exactly one
// field is expected to be populated.
type RawResult struct {
	Text   string
	Event  *Event
	Events []Event
}

func (e *Event) text() string {
	if e == nil || len(e.Content.Parts) == 0 {
		return ""
	}
	return e.Content.Parts[0].Text
}

// FinalText collapses a RawResult to the answer string. For an event
// stream every final event is inspected and the last one carrying
// non-empty text wins. Returns "" when nothing usable is found.
func (r RawResult) FinalText() string {
	if r.Events != nil {
		var final string
		for i := range r.Events {
			if !r.Events[i].Final {
				continue
			}
			if t := r.Events[i].text(); t != "" {
				final = t
			}
		}
		return final
	}
	if r.Event != nil {
		return r.Event.text()
	}
	return r.Text
}
