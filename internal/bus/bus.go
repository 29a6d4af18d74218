// Package bus publishes turn lifecycle events to a websocket endpoint so
// presentation layers (tray widget, dashboards) can follow the session.
package bus

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"axylo/internal/session"
)

type Event struct {
	Kind    string    `json:"kind"`
	RID     string    `json:"rid,omitempty"`
	Outcome string    `json:"outcome,omitempty"`
	State   string    `json:"state,omitempty"`
	At      time.Time `json:"at"`
}

// Bus is a best-effort publisher: a dead connection drops events with a
// log line instead of slowing the main loop down. A nil *Bus is valid
// and publishes nothing.
type Bus struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func Dial(wsURL string) (*Bus, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	slog.Info("bus: connected", "url", wsURL)
	return &Bus{conn: conn}, nil
}

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.Close()
}

func (b *Bus) publish(ev Event) {
	if b == nil {
		return
	}
	ev.At = time.Now()

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("bus: marshal failed", "err", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Warn("bus: publish failed", "kind", ev.Kind, "err", err)
	}
}

// TurnStarted, TurnCompleted and StateChanged satisfy session.Events.

func (b *Bus) TurnStarted(rid string) {
	b.publish(Event{Kind: "turn_started", RID: rid})
}

func (b *Bus) TurnCompleted(rid, outcome string) {
	b.publish(Event{Kind: "turn_completed", RID: rid, Outcome: outcome})
}

func (b *Bus) StateChanged(s session.State) {
	b.publish(Event{Kind: "state_changed", State: s.String()})
}
