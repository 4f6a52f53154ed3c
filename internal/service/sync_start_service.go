package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cmu-sei/Gameboard-sub002/internal/events"
	"github.com/cmu-sei/Gameboard-sub002/internal/lock"
	"github.com/cmu-sei/Gameboard-sub002/internal/model"
	"github.com/cmu-sei/Gameboard-sub002/internal/repository"
)

// syncStartPhase tracks where a synchronized-start game is in its single
// start attempt. Started is terminal; a game only leaves it through
// external re-enrollment changes, never automatically.
type syncStartPhase int

const (
	phaseNotReady syncStartPhase = iota
	phaseStarting
	phaseStarted
)

// SyncStartService aggregates player readiness for synchronized-start
// games and triggers the one shared start when every team is ready.
// Readiness is always recomputed from Player rows; the in-memory phase
// map only guards the start side effect.
type SyncStartService struct {
	playerRepo  repository.PlayerRepo
	gameRepo    repository.GameRepo
	sessionSvc  *SessionService
	locks       *lock.Registry
	bus         *events.Bus
	broadcaster Broadcaster

	mu     sync.Mutex
	phases map[string]syncStartPhase
}

func NewSyncStartService(
	playerRepo repository.PlayerRepo,
	gameRepo repository.GameRepo,
	sessionSvc *SessionService,
	locks *lock.Registry,
	bus *events.Bus,
) *SyncStartService {
	return &SyncStartService{
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		sessionSvc: sessionSvc,
		locks:      locks,
		bus:        bus,
		phases:     make(map[string]syncStartPhase),
	}
}

// SetBroadcaster sets the notification gateway for readiness events.
func (s *SyncStartService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// UpdatePlayerReady toggles one player's readiness, publishes the
// recomputed game state, and synchronously triggers the game start when
// the toggle completes readiness for a synchronized-start game.
func (s *SyncStartService) UpdatePlayerReady(ctx context.Context, actor Actor, playerID string, ready bool) (*model.SyncStartState, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", playerID, err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	if !actor.IsAdmin && player.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	if err := s.playerRepo.SetReady(ctx, playerID, ready); err != nil {
		return nil, fmt.Errorf("failed to update readiness for player %s: %w", playerID, err)
	}

	state, err := s.GetSyncStartState(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	// Clients poll and subscribe to this regardless of outcome.
	s.bus.Publish(ctx, events.Event{Type: events.SyncStartStateChanged, GameID: player.GameID, PlayerID: playerID})
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToGame(player.GameID, MsgSyncStartStateChanged, state)
	}

	if !state.IsReady {
		return state, nil
	}

	game, err := s.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", player.GameID, err)
	}
	if game == nil || !game.RequireSynchronizedStart {
		return state, nil
	}

	// Optimistic all-ready observation; the real decision happens under
	// the locks.
	if err := s.tryStartGame(ctx, game); err != nil {
		return state, err
	}
	return state, nil
}

// GetSyncStartState recomputes the readiness view for a game from Player
// rows. A team is ready iff every member is ready; the game is ready iff
// every team is ready and at least one team is enrolled.
func (s *SyncStartService) GetSyncStartState(ctx context.Context, gameID string) (*model.SyncStartState, error) {
	players, err := s.playerRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players for game %s: %w", gameID, err)
	}

	byTeam := make(map[string][]model.Player)
	var teamOrder []string
	for _, p := range players {
		if _, ok := byTeam[p.TeamID]; !ok {
			teamOrder = append(teamOrder, p.TeamID)
		}
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
	}

	state := &model.SyncStartState{GameID: gameID, IsReady: len(teamOrder) > 0}
	for _, teamID := range teamOrder {
		team := model.SyncStartTeam{TeamID: teamID, IsReady: true}
		for _, p := range byTeam[teamID] {
			team.Players = append(team.Players, model.SyncStartPlayer{ID: p.ID, Name: p.Name, IsReady: p.IsReady})
			if !p.IsReady {
				team.IsReady = false
			}
		}
		if !team.IsReady {
			state.IsReady = false
		}
		state.Teams = append(state.Teams, team)
	}
	return state, nil
}

// tryStartGame performs the double-checked synchronized start. Lock order
// is fixed: the game's start-session lock, then its sync-start lock.
// Readiness is re-verified inside the locks; only the caller that wins
// the locks and still observes all-ready triggers the start, exactly once.
func (s *SyncStartService) tryStartGame(ctx context.Context, game *model.Game) error {
	startLk := s.locks.Get(lock.CategoryStartSession, game.ID)
	syncLk := s.locks.Get(lock.CategorySyncStart, game.ID)

	startLk.Lock()
	defer startLk.Unlock()
	syncLk.Lock()
	defer syncLk.Unlock()

	if s.phase(game.ID) >= phaseStarting {
		// Another last-ready-up request already triggered the start.
		return nil
	}

	// Mandatory re-check: a player may have un-readied or a team may have
	// been removed between the optimistic check and lock acquisition.
	state, err := s.GetSyncStartState(ctx, game.ID)
	if err != nil {
		return err
	}
	if !state.IsReady {
		log.Printf("sync start aborted for game %s: readiness lost before lock acquisition", game.ID)
		return nil
	}

	s.setPhase(game.ID, phaseStarting)
	s.bus.Publish(ctx, events.Event{Type: events.SyncStartGameStarting, GameID: game.ID})
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToGame(game.ID, MsgSyncStartGameStarting, state)
	}

	teamIDs := make([]string, 0, len(state.Teams))
	for _, t := range state.Teams {
		teamIDs = append(teamIDs, t.TeamID)
	}

	// The batch runs with an administrative actor so elevation falls back
	// to each team captain's own flag.
	actor := Actor{UserID: "sync-start", IsAdmin: true}
	if _, err := s.sessionSvc.startSessions(ctx, actor, game, teamIDs); err != nil {
		// Leave the game eligible for another attempt.
		s.setPhase(game.ID, phaseNotReady)
		return fmt.Errorf("synchronized start failed for game %s: %w", game.ID, err)
	}

	s.setPhase(game.ID, phaseStarted)
	s.bus.Publish(ctx, events.Event{Type: events.SyncStartGameStarted, GameID: game.ID})
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToGame(game.ID, MsgSyncStartGameStarted, state)
	}
	return nil
}

func (s *SyncStartService) phase(gameID string) syncStartPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[gameID]
}

func (s *SyncStartService) setPhase(gameID string, p syncStartPhase) {
	s.mu.Lock()
	s.phases[gameID] = p
	s.mu.Unlock()
}
