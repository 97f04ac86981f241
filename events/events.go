package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWagerPlaced    EventType = "wager-placed"
	EventTypeRoundSettled   EventType = "round-settled"
	EventTypeCreditsChanged EventType = "credits-changed"
	EventTypeUserJoined     EventType = "user-joined"
	EventTypeGameReset      EventType = "game-reset"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WagerPlacedEvent is emitted after a bet is committed
type WagerPlacedEvent struct {
	UserID   int64
	UserName string
	Round    int
	SubRound int
	Amount   int64
	Choice   string
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// RoundSettledEvent is emitted after a (round, subRound) settlement commits
type RoundSettledEvent struct {
	Round       int
	SubRound    int
	Answer      string
	Winners     int
	Losers      int
	TotalPayout int64
}

func (e RoundSettledEvent) Type() EventType {
	return EventTypeRoundSettled
}

// CreditsChangedEvent is emitted whenever a user's balance changes
type CreditsChangedEvent struct {
	UserID     int64
	OldCredits int64
	NewCredits int64
	Reason     string
}

func (e CreditsChangedEvent) Type() EventType {
	return EventTypeCreditsChanged
}

// UserJoinedEvent is emitted when a new player account is created
type UserJoinedEvent struct {
	UserID  int64
	Name    string
	Credits int64
}

func (e UserJoinedEvent) Type() EventType {
	return EventTypeUserJoined
}

// GameResetEvent is emitted after a full game reset
type GameResetEvent struct{}

func (e GameResetEvent) Type() EventType {
	return EventTypeGameReset
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously; a handler failure never reaches the caller.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events raised during a unit of work and flushes
// them to the underlying bus only after a successful commit, so notification
// side effects never fire for rolled-back mutations.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful DB commit.
// Events are emitted on a background context so they outlive the request.
func (b *TransactionalBus) Flush(ctx context.Context) {
	if len(b.pending) == 0 {
		return
	}
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
