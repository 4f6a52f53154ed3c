// Package events is the in-process pub/sub glue between score mutations
// and the denormalization engine. Delivery is synchronous: every handler
// is attempted, and a failing handler is logged without blocking its
// siblings.
package events

import (
	"context"
	"log"
	"sync"
)

type Type string

const (
	ScoreChanged          Type = "score_changed"
	TeamSessionStarted    Type = "team_session_started"
	SyncStartStateChanged Type = "sync_start_state_changed"
	SyncStartGameStarting Type = "sync_start_game_starting"
	SyncStartGameStarted  Type = "sync_start_game_started"
)

// Event carries the identifiers a handler needs to reload state from the
// store. Payload state is deliberately absent: handlers re-read, they do
// not trust the event.
type Event struct {
	Type        Type
	GameID      string
	TeamID      string
	ChallengeID string
	PlayerID    string
}

type Handler func(ctx context.Context, ev Event) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for an event type. Handlers run in
// registration order on the publisher's goroutine.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	b.handlers[t] = append(b.handlers[t], h)
	b.mu.Unlock()
}

// Publish invokes every handler registered for the event's type. Handler
// errors are logged individually and never propagated.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[ev.Type]))
	copy(handlers, b.handlers[ev.Type])
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			log.Printf("event handler failed for %s (game=%s team=%s): %v", ev.Type, ev.GameID, ev.TeamID, err)
		}
	}
}
