package session

// State is the session controller's position in the turn cycle. Exactly
// one controller exists per running assistant and only the controller
// mutates its state.
type State int

const (
	StateIdle State = iota
	StateListening
	StateRouting
	StateInExclusiveSession
	StateSpeaking
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateRouting:
		return "routing"
	case StateInExclusiveSession:
		return "in_exclusive_session"
	case StateSpeaking:
		return "speaking"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}
