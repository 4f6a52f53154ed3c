package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRoutesByType(t *testing.T) {
	bus := NewBus()

	var scoreEvents, sessionEvents []Event
	bus.Subscribe(ScoreChanged, func(ctx context.Context, ev Event) error {
		scoreEvents = append(scoreEvents, ev)
		return nil
	})
	bus.Subscribe(TeamSessionStarted, func(ctx context.Context, ev Event) error {
		sessionEvents = append(sessionEvents, ev)
		return nil
	})

	bus.Publish(context.Background(), Event{Type: ScoreChanged, TeamID: "team-1"})
	bus.Publish(context.Background(), Event{Type: ScoreChanged, TeamID: "team-2"})
	bus.Publish(context.Background(), Event{Type: TeamSessionStarted, TeamID: "team-1"})

	assert.Len(t, scoreEvents, 2)
	assert.Len(t, sessionEvents, 1)
	assert.Equal(t, "team-2", scoreEvents[1].TeamID)
}

func TestFailingHandlerDoesNotBlockSiblings(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(ScoreChanged, func(ctx context.Context, ev Event) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	bus.Subscribe(ScoreChanged, func(ctx context.Context, ev Event) error {
		order = append(order, "second")
		return nil
	})

	bus.Publish(context.Background(), Event{Type: ScoreChanged, TeamID: "team-1"})

	// Every handler is attempted even when an earlier one fails.
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishWithNoHandlersIsANoOp(t *testing.T) {
	bus := NewBus()
	bus.Publish(context.Background(), Event{Type: SyncStartGameStarted, GameID: "game-1"})
}
