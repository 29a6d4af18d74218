package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"axylo/internal/intent"
	"axylo/internal/voice"
)

// ErrSessionActive is returned when a dictation or messaging session is
// requested while another exclusive session is running. Requests are
// rejected, never queued.
var ErrSessionActive = errors.New("session: exclusive session already active")

// Listener is one bounded recognition attempt: wait up to timeout for
// speech to start, capture at most phraseLimit of it. Silence and noise
// come back as an empty string, not an error. The wiring hands the
// controller and every sub-session the same voice.GatedListener, which
// serializes attempts against each other and against speech output.
type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// Handlers are the intent endpoints the controller dispatches into.
// VoiceTyping and Messaging run as exclusive sessions; SmartWrite and
// Query complete synchronously within the turn.
type Handlers struct {
	SmartWrite  func(ctx context.Context, task string) error
	VoiceTyping func(ctx context.Context) error
	Messaging   func(ctx context.Context, recipient string) error
	Query       func(ctx context.Context, rid, text string) (string, error)
}

type Config struct {
	ListenTimeout       time.Duration
	PhraseLimit         time.Duration
	MaxEmptyBeforeSleep int
	EmptyBackoff        time.Duration
	SessionPoll         time.Duration
	MicPoll             time.Duration
	Greeting            string
	Goodbye             string
}

func DefaultConfig() Config {
	return Config{
		ListenTimeout:       5 * time.Second,
		PhraseLimit:         10 * time.Second,
		MaxEmptyBeforeSleep: 20,
		EmptyBackoff:        time.Second,
		SessionPoll:         200 * time.Millisecond,
		MicPoll:             200 * time.Millisecond,
		Greeting:            "Hello, I am listening.",
		Goodbye:             "Goodbye.",
	}
}

// Controller drives the listen, route, handle cycle. One turn at a time:
// injected text (DispatchText) and recognized speech go through the same
// serialized routing stage.
type Controller struct {
	cfg      Config
	listener Listener
	speaker  voice.Speaker
	handlers Handlers
	events   Events

	mic atomic.Bool

	stateMu sync.Mutex
	state   State

	turnMu sync.Mutex

	sessMu      sync.Mutex
	sessionKind intent.Kind
	sessionOn   bool

	stopOnce sync.Once
	stopped  chan struct{}
}

func NewController(cfg Config, listener Listener, speaker voice.Speaker, handlers Handlers, events Events) *Controller {
	if cfg.ListenTimeout <= 0 {
		cfg = DefaultConfig()
	}
	if events == nil {
		events = NopEvents{}
	}
	c := &Controller{
		cfg:      cfg,
		listener: listener,
		speaker:  speaker,
		handlers: handlers,
		events:   events,
		state:    StateIdle,
		stopped:  make(chan struct{}),
	}
	c.mic.Store(true)
	return c
}

func (c *Controller) setState(s State) {
	c.stateMu.Lock()
	changed := c.state != s
	c.state = s
	c.stateMu.Unlock()
	if changed {
		slog.Debug("session: state", "state", s.String())
		c.events.StateChanged(s)
	}
}

// CurrentState reports the state for diagnostics and the event bus.
func (c *Controller) CurrentState() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// SetMicEnabled toggles the user-facing mic switch. While an exclusive
// session is active the toggle is recorded but has no effect until the
// session exits, since the session owns audio.
func (c *Controller) SetMicEnabled(on bool) {
	c.mic.Store(on)
	slog.Info("session: mic toggled", "enabled", on)
}

func (c *Controller) MicEnabled() bool {
	return c.mic.Load()
}

// Shutdown asks the main loop to exit after the current turn. Safe to
// call multiple times and from any goroutine.
func (c *Controller) Shutdown() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

// Run is the main loop. It returns nil after a shutdown intent and
// ctx.Err() on external cancellation; nothing else ends it.
func (c *Controller) Run(ctx context.Context) error {
	if c.cfg.Greeting != "" {
		if err := c.speaker.Say(ctx, c.cfg.Greeting); err != nil {
			slog.Warn("session: greeting failed", "err", err)
		}
	}
	c.setState(StateListening)

	empties := 0
	for {
		select {
		case <-ctx.Done():
			c.speaker.Cancel()
			return ctx.Err()
		case <-c.stopped:
			return nil
		default:
		}

		if !c.mic.Load() {
			if err := sleepCtx(ctx, c.cfg.MicPoll); err != nil {
				return err
			}
			continue
		}
		if c.exclusiveActive() {
			if err := sleepCtx(ctx, c.cfg.SessionPoll); err != nil {
				return err
			}
			continue
		}

		text, err := c.listenOnce(ctx)
		if err != nil {
			return err
		}
		if text == "" {
			empties++
			if empties >= c.cfg.MaxEmptyBeforeSleep {
				slog.Debug("session: repeated silence, backing off", "count", empties)
				if err := sleepCtx(ctx, c.cfg.EmptyBackoff); err != nil {
					return err
				}
				empties = 0
			}
			continue
		}
		empties = 0

		done, err := c.handleTurn(ctx, text)
		if err != nil {
			return err
		}
		if done {
			c.Shutdown()
			return nil
		}
	}
}

func (c *Controller) listenOnce(ctx context.Context) (string, error) {
	text, err := c.listener.Listen(ctx, c.cfg.ListenTimeout, c.cfg.PhraseLimit)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Recognition failures are silence, never loop-fatal.
		slog.Warn("session: recognition failed", "err", err)
		return "", nil
	}
	return strings.TrimSpace(text), nil
}

// DispatchText injects text into the routing stage as if it had been
// spoken, bypassing recognition. It shares the turn lock with the main
// loop, so injected and spoken turns never interleave.
func (c *Controller) DispatchText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	done, err := c.handleTurn(ctx, text)
	if err != nil {
		return err
	}
	if done {
		c.Shutdown()
	}
	return nil
}

func correlationID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:4])
}

// handleTurn routes one utterance. The returned bool is true when the
// turn asked for shutdown. The only error it returns is cancellation.
func (c *Controller) handleTurn(ctx context.Context, text string) (bool, error) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	rid := correlationID()
	log := slog.With("rid", rid)
	log.Info("session: turn started", "text", text)
	c.events.TurnStarted(rid)
	c.setState(StateRouting)

	outcome := "ok"
	shutdown := false
	defer func() {
		c.events.TurnCompleted(rid, outcome)
		log.Info("session: turn completed", "outcome", outcome)
		if !shutdown {
			c.setState(StateListening)
		}
	}()

	cmd := intent.Classify(text)
	log.Debug("session: routed", "intent", cmd.Kind.String())

	switch cmd.Kind {
	case intent.Shutdown:
		shutdown = true
		outcome = "shutdown"
		c.setState(StateShuttingDown)
		if c.cfg.Goodbye != "" {
			if err := c.speaker.Say(ctx, c.cfg.Goodbye); err != nil {
				log.Warn("session: goodbye failed", "err", err)
			}
		}
		return true, nil

	case intent.SmartWrite:
		if err := c.handlers.SmartWrite(ctx, cmd.Task); err != nil {
			if isCancel(err) {
				outcome = "cancelled"
				return false, err
			}
			outcome = "error"
			log.Error("session: smart write failed", "err", err)
			c.apologize(ctx, "Writing failed because of an internal error.")
		}
		return false, nil

	case intent.VoiceTyping:
		return false, c.runExclusive(ctx, log, cmd.Kind, &outcome, func(ctx context.Context) error {
			return c.handlers.VoiceTyping(ctx)
		})

	case intent.Messaging:
		return false, c.runExclusive(ctx, log, cmd.Kind, &outcome, func(ctx context.Context) error {
			return c.handlers.Messaging(ctx, cmd.Recipient)
		})

	default:
		answer, err := c.handlers.Query(ctx, rid, cmd.Text)
		if err != nil {
			outcome = "cancelled"
			return false, err
		}
		c.setState(StateSpeaking)
		if err := c.speaker.Say(ctx, answer); err != nil {
			// The answer is already logged; audio failure does not
			// un-deliver it.
			log.Warn("session: speak failed", "err", err)
		}
		return false, nil
	}
}

// runExclusive enters the exclusive session guard, runs fn, and restores
// the listening state however fn returns.
func (c *Controller) runExclusive(ctx context.Context, log *slog.Logger, kind intent.Kind, outcome *string, fn func(context.Context) error) error {
	exit, err := c.enterExclusive(kind)
	if err != nil {
		*outcome = "rejected"
		log.Warn("session: exclusive session rejected", "kind", kind.String(), "err", err)
		c.apologize(ctx, "I am already in another session. Finish it first.")
		return nil
	}
	defer exit()

	if err := fn(ctx); err != nil {
		if isCancel(err) {
			*outcome = "cancelled"
			return err
		}
		*outcome = "error"
		log.Error("session: sub-session failed", "kind", kind.String(), "err", err)
		c.apologize(ctx, "That session ended because of an internal error.")
	}
	return nil
}

// enterExclusive claims the single exclusive session slot. The returned
// function releases it and must run on every exit path.
func (c *Controller) enterExclusive(kind intent.Kind) (func(), error) {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	if c.sessionOn {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, c.sessionKind)
	}
	c.sessionOn = true
	c.sessionKind = kind
	c.setState(StateInExclusiveSession)
	return func() {
		c.sessMu.Lock()
		c.sessionOn = false
		c.sessMu.Unlock()
	}, nil
}

func (c *Controller) exclusiveActive() bool {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.sessionOn
}

func (c *Controller) apologize(ctx context.Context, text string) {
	if err := c.speaker.Say(ctx, text); err != nil {
		slog.Warn("session: apology failed", "err", err)
	}
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
