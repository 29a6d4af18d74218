package session

// Events receives turn lifecycle notifications. Implementations must not
// block: they are called inline from the main loop.
type Events interface {
	TurnStarted(rid string)
	TurnCompleted(rid string, outcome string)
	StateChanged(s State)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) TurnStarted(string)           {}
func (NopEvents) TurnCompleted(string, string) {}
func (NopEvents) StateChanged(State)           {}
