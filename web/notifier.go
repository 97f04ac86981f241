package web

import (
	"context"

	"rocketbet/events"
)

// Notifier bridges domain events onto the WebSocket hub. Events only
// reach the bus after their transaction commits, so every broadcast
// reflects durable state.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a notifier and wires it to the event bus
func NewNotifier(hub *Hub, bus *events.Bus) *Notifier {
	n := &Notifier{hub: hub}

	bus.Subscribe(events.EventTypeWagerPlaced, n.onWagerPlaced)
	bus.Subscribe(events.EventTypeRoundSettled, n.onRoundSettled)
	bus.Subscribe(events.EventTypeCreditsChanged, n.onCreditsChanged)
	bus.Subscribe(events.EventTypeUserJoined, n.onUserJoined)
	bus.Subscribe(events.EventTypeGameReset, n.onGameReset)

	return n
}

func (n *Notifier) onWagerPlaced(_ context.Context, event events.Event) {
	e, ok := event.(events.WagerPlacedEvent)
	if !ok {
		return
	}
	n.hub.Broadcast(Message{
		Type:     string(events.EventTypeWagerPlaced),
		Round:    e.Round,
		SubRound: e.SubRound,
		UserID:   e.UserID,
		UserName: e.UserName,
		Amount:   e.Amount,
		Choice:   e.Choice,
	})
}

func (n *Notifier) onRoundSettled(_ context.Context, event events.Event) {
	e, ok := event.(events.RoundSettledEvent)
	if !ok {
		return
	}
	n.hub.Broadcast(Message{
		Type:     string(events.EventTypeRoundSettled),
		Round:    e.Round,
		SubRound: e.SubRound,
		Answer:   e.Answer,
		Winners:  e.Winners,
		Losers:   e.Losers,
		Payout:   e.TotalPayout,
	})
}

func (n *Notifier) onCreditsChanged(_ context.Context, event events.Event) {
	e, ok := event.(events.CreditsChangedEvent)
	if !ok {
		return
	}
	n.hub.Broadcast(Message{
		Type:    string(events.EventTypeCreditsChanged),
		UserID:  e.UserID,
		Credits: e.NewCredits,
	})
}

func (n *Notifier) onUserJoined(_ context.Context, event events.Event) {
	e, ok := event.(events.UserJoinedEvent)
	if !ok {
		return
	}
	n.hub.Broadcast(Message{
		Type:     string(events.EventTypeUserJoined),
		UserID:   e.UserID,
		UserName: e.Name,
		Credits:  e.Credits,
	})
}

func (n *Notifier) onGameReset(_ context.Context, event events.Event) {
	if _, ok := event.(events.GameResetEvent); !ok {
		return
	}
	n.hub.Broadcast(Message{Type: string(events.EventTypeGameReset)})
}
