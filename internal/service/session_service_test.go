package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmu-sei/Gameboard-sub002/internal/events"
	"github.com/cmu-sei/Gameboard-sub002/internal/lock"
	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

var testNow = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

func captain(id, teamID, userID, gameID string) *model.Player {
	return &model.Player{
		ID:     id,
		TeamID: teamID,
		UserID: userID,
		GameID: gameID,
		Name:   "team " + teamID,
		Role:   model.RoleManager,
	}
}

type sessionFixture struct {
	svc        *SessionService
	players    *fakePlayerRepo
	games      *fakeGameRepo
	challenges *fakeChallengeRepo
	engine     *fakeGameEngine
	bus        *events.Bus
}

func newSessionFixture(t *testing.T, game *model.Game, players []*model.Player, challenges []*model.Challenge) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		players:    newFakePlayerRepo(players...),
		games:      newFakeGameRepo(game),
		challenges: newFakeChallengeRepo(challenges...),
		engine:     newFakeGameEngine(),
		bus:        events.NewBus(),
	}
	f.svc = NewSessionService(f.players, f.games, f.challenges, lock.NewRegistry(), f.engine, f.bus, 480)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestStartSessionsComputesAndPersistsWindow(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60, GameEnd: testNow.Add(4 * time.Hour)}
	cap1 := captain("p1", "t1", "u1", "g1")
	member := &model.Player{ID: "p2", TeamID: "t1", UserID: "u2", GameID: "g1", Role: model.RoleMember}
	ch := &model.Challenge{ID: "c1", TeamID: "t1", GameID: "g1", Engine: "topo"}
	f := newSessionFixture(t, game, []*model.Player{cap1, member}, []*model.Challenge{ch})

	results, err := f.svc.StartSessions(context.Background(), Actor{UserID: "u1"}, []string{"t1"})
	require.NoError(t, err)
	require.Contains(t, results, "t1")
	assert.False(t, results["t1"].AlreadyActive)
	assert.Equal(t, testNow.Add(60*time.Minute), results["t1"].Window.End)

	// The window lands on every member, not just the captain.
	for _, id := range []string{"p1", "p2"} {
		p, _ := f.players.GetByID(context.Background(), id)
		assert.Equal(t, testNow, p.SessionBegin)
		assert.Equal(t, testNow.Add(60*time.Minute), p.SessionEnd)
	}

	// Challenge end times mirror the window and the engine heard about it.
	updated, _ := f.challenges.GetByID(context.Background(), "c1")
	assert.Equal(t, testNow.Add(60*time.Minute), updated.EndTime)
	assert.Equal(t, 1, f.engine.callCount())
}

func TestStartSessionsDuplicateStartIsANoOp(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60, GameEnd: testNow.Add(4 * time.Hour)}
	f := newSessionFixture(t, game, []*model.Player{captain("p1", "t1", "u1", "g1")}, nil)

	_, err := f.svc.StartSessions(context.Background(), Actor{UserID: "u1"}, []string{"t1"})
	require.NoError(t, err)

	results, err := f.svc.StartSessions(context.Background(), Actor{UserID: "u1"}, []string{"t1"})
	require.NoError(t, err)
	assert.True(t, results["t1"].AlreadyActive)
	assert.Equal(t, 1, f.players.sessionUpdateCount("t1"))
}

func TestStartSessionsEngineFailureIsNotRolledBack(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60, GameEnd: testNow.Add(4 * time.Hour)}
	ch := &model.Challenge{ID: "c1", TeamID: "t1", GameID: "g1"}
	f := newSessionFixture(t, game, []*model.Player{captain("p1", "t1", "u1", "g1")}, []*model.Challenge{ch})
	f.engine.err = errors.New("gamespace unreachable")

	results, err := f.svc.StartSessions(context.Background(), Actor{UserID: "u1"}, []string{"t1"})
	require.NoError(t, err)
	assert.False(t, results["t1"].AlreadyActive)

	// The session is started at the data-model level despite the failure.
	p, _ := f.players.GetByID(context.Background(), "p1")
	assert.True(t, p.HasStartedSession())
}

func TestStartSessionsRejectsTeamsSpanningGames(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60}
	f := newSessionFixture(t, game, []*model.Player{
		captain("p1", "t1", "u1", "g1"),
		captain("p2", "t2", "u2", "g2"),
	}, nil)

	_, err := f.svc.StartSessions(context.Background(), Actor{IsAdmin: true}, []string{"t1", "t2"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, f.players.sessionUpdateCount("t1"))
	assert.Equal(t, 0, f.players.sessionUpdateCount("t2"))
}

func TestStartSessionsForbiddenForNonCaptain(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60}
	f := newSessionFixture(t, game, []*model.Player{captain("p1", "t1", "u1", "g1")}, nil)

	_, err := f.svc.StartSessions(context.Background(), Actor{UserID: "someone-else"}, []string{"t1"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStartSessionsLateStartDisallowed(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60, GameEnd: testNow.Add(10 * time.Minute), AllowLateStart: false}
	f := newSessionFixture(t, game, []*model.Player{captain("p1", "t1", "u1", "g1")}, nil)

	_, err := f.svc.StartSessions(context.Background(), Actor{UserID: "u1"}, []string{"t1"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, f.players.sessionUpdateCount("t1"))
}

func TestExtendSessionFailsWhenNeverStarted(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60}
	f := newSessionFixture(t, game, []*model.Player{captain("p1", "t1", "u1", "g1")}, nil)

	_, err := f.svc.ExtendSession(context.Background(), Actor{UserID: "u1"}, "t1", testNow.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrCantExtendUnstartedSession)
}

func TestExtendSessionCapsPracticeMode(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60, PlayerMode: model.ModePractice, GameEnd: testNow.Add(24 * time.Hour)}
	f := newSessionFixture(t, game, []*model.Player{captain("p1", "t1", "u1", "g1")}, nil)

	_, err := f.svc.StartSessions(context.Background(), Actor{UserID: "u1"}, []string{"t1"})
	require.NoError(t, err)

	// Cap is 480 minutes from the original start.
	player, err := f.svc.ExtendSession(context.Background(), Actor{UserID: "u1"}, "t1", testNow.Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(480*time.Minute), player.SessionEnd)
}

func TestExtendSessionRepushesOnlyChangedChallenges(t *testing.T) {
	newEnd := testNow.Add(90 * time.Minute)
	game := &model.Game{ID: "g1", SessionMinutes: 60, GameEnd: testNow.Add(4 * time.Hour)}
	chStale := &model.Challenge{ID: "c1", TeamID: "t1", GameID: "g1", EndTime: testNow.Add(60 * time.Minute)}
	chCurrent := &model.Challenge{ID: "c2", TeamID: "t1", GameID: "g1", EndTime: newEnd}
	cap1 := captain("p1", "t1", "u1", "g1")
	cap1.SessionBegin = testNow
	cap1.SessionEnd = testNow.Add(60 * time.Minute)
	f := newSessionFixture(t, game, []*model.Player{cap1}, []*model.Challenge{chStale, chCurrent})

	_, err := f.svc.ExtendSession(context.Background(), Actor{UserID: "u1"}, "t1", newEnd)
	require.NoError(t, err)

	called := f.engine.calledChallenges()
	assert.True(t, called["c1"])
	assert.False(t, called["c2"])
}

func TestEndSessionSetsEndToNow(t *testing.T) {
	game := &model.Game{ID: "g1", SessionMinutes: 60, GameEnd: testNow.Add(4 * time.Hour)}
	cap1 := captain("p1", "t1", "u1", "g1")
	cap1.SessionBegin = testNow.Add(-30 * time.Minute)
	cap1.SessionEnd = testNow.Add(30 * time.Minute)
	f := newSessionFixture(t, game, []*model.Player{cap1}, nil)

	player, err := f.svc.EndSession(context.Background(), Actor{UserID: "u1"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, testNow, player.SessionEnd)
}
