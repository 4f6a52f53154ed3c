package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cmu-sei/Gameboard-sub002/internal/events"
	"github.com/cmu-sei/Gameboard-sub002/internal/lock"
	"github.com/cmu-sei/Gameboard-sub002/internal/model"
	"github.com/cmu-sei/Gameboard-sub002/internal/repository"
)

// Actor identifies the user performing a session mutation. IsElevated
// bypasses clamping the session window to the game end.
type Actor struct {
	UserID     string
	IsAdmin    bool
	IsElevated bool
}

// SessionService starts, extends and ends team sessions. Every mutation
// runs under the game's start-session lock; the store is re-read after
// acquiring it so duplicate starts degrade into no-ops.
type SessionService struct {
	playerRepo    repository.PlayerRepo
	gameRepo      repository.GameRepo
	challengeRepo repository.ChallengeRepo
	locks         *lock.Registry
	engine        GameEngine
	bus           *events.Bus
	broadcaster   Broadcaster

	// practiceMaxMinutes caps extensions of practice-mode sessions,
	// measured from the original session start. Zero disables the cap.
	practiceMaxMinutes int

	now func() time.Time
}

func NewSessionService(
	playerRepo repository.PlayerRepo,
	gameRepo repository.GameRepo,
	challengeRepo repository.ChallengeRepo,
	locks *lock.Registry,
	engine GameEngine,
	bus *events.Bus,
	practiceMaxMinutes int,
) *SessionService {
	return &SessionService{
		playerRepo:         playerRepo,
		gameRepo:           gameRepo,
		challengeRepo:      challengeRepo,
		locks:              locks,
		engine:             engine,
		bus:                bus,
		practiceMaxMinutes: practiceMaxMinutes,
		now:                time.Now,
	}
}

// SetBroadcaster sets the notification gateway for session events.
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartSessions starts a session for each team, all of which must belong
// to the same game. The per-game start-session lock serializes the whole
// batch against concurrent starts.
func (s *SessionService) StartSessions(ctx context.Context, actor Actor, teamIDs []string) (map[string]model.SessionStartResult, error) {
	game, err := s.resolveGame(ctx, actor, teamIDs)
	if err != nil {
		return nil, err
	}

	lk := s.locks.Get(lock.CategoryStartSession, game.ID)
	lk.Lock()
	defer lk.Unlock()

	return s.startSessions(ctx, actor, game, teamIDs)
}

// resolveGame loads each team's captain, verifies the actor may act for
// every team, and checks that the teams share a single game. All
// violations are collected before returning.
func (s *SessionService) resolveGame(ctx context.Context, actor Actor, teamIDs []string) (*model.Game, error) {
	verr := &ValidationError{}
	if len(teamIDs) == 0 {
		verr.Add("at least one team is required")
		return nil, verr
	}

	var gameID string
	for _, teamID := range teamIDs {
		captain, err := s.playerRepo.GetCaptain(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load captain for team %s: %w", teamID, err)
		}
		if captain == nil {
			verr.Add("team %s has no captain", teamID)
			continue
		}
		if !actor.IsAdmin && captain.UserID != actor.UserID {
			return nil, ErrForbidden
		}
		if gameID == "" {
			gameID = captain.GameID
		} else if captain.GameID != gameID {
			verr.Add("teams span multiple games (%s and %s)", gameID, captain.GameID)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if game.SessionMinutes <= 0 {
		verr.Add("game %s has no session length configured", gameID)
	}
	return game, verr.OrNil()
}

type pendingStart struct {
	teamID     string
	window     model.SessionWindow
	challenges []model.Challenge
}

// startSessions does the actual start work. The caller must hold the
// game's start-session lock.
func (s *SessionService) startSessions(ctx context.Context, actor Actor, game *model.Game, teamIDs []string) (map[string]model.SessionStartResult, error) {
	now := s.now()
	results := make(map[string]model.SessionStartResult, len(teamIDs))
	verr := &ValidationError{}
	var toStart []pendingStart

	// First pass: re-read inside the lock, compute windows, collect every
	// violation. Nothing is mutated until the batch validates.
	for _, teamID := range teamIDs {
		captain, err := s.playerRepo.GetCaptain(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load captain for team %s: %w", teamID, err)
		}
		if captain == nil {
			verr.Add("team %s has no captain", teamID)
			continue
		}
		if captain.HasStartedSession() {
			// A concurrent request won the race. Expected outcome, not an error.
			log.Printf("team %s already has a session; skipping duplicate start", teamID)
			results[teamID] = model.SessionStartResult{
				TeamID:        teamID,
				AlreadyActive: true,
				Window: model.SessionWindow{
					Start:           captain.SessionBegin,
					End:             captain.SessionEnd,
					LengthInMinutes: captain.SessionMinutes,
					IsLateStart:     captain.IsLateStart,
				},
			}
			continue
		}

		elevated := actor.IsElevated || captain.IsElevated
		window := CalculateSessionWindow(game.SessionMinutes, game.GameEnd, elevated, now)
		if window.IsLateStart && !game.AllowLateStart {
			verr.Add("game %s does not allow late starts (team %s)", game.ID, teamID)
			continue
		}
		if window.LengthInMinutes <= 0 {
			verr.Add("game %s has already ended (team %s)", game.ID, teamID)
			continue
		}

		challenges, err := s.challengeRepo.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load challenges for team %s: %w", teamID, err)
		}
		toStart = append(toStart, pendingStart{teamID: teamID, window: window, challenges: challenges})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// Second pass: persist each team's window and fan out gamespace
	// expiration updates. Engine failures after the window is persisted
	// are logged, not rolled back.
	for _, p := range toStart {
		if err := s.playerRepo.UpdateTeamSession(ctx, p.teamID, p.window); err != nil {
			return results, fmt.Errorf("failed to persist session for team %s: %w", p.teamID, err)
		}
		if err := s.challengeRepo.SetTeamEndTime(ctx, p.teamID, p.window.End); err != nil {
			return results, fmt.Errorf("failed to update challenge end times for team %s: %w", p.teamID, err)
		}

		s.extendGamespaces(ctx, p.challenges, p.window.End)

		result := model.SessionStartResult{TeamID: p.teamID, Window: p.window}
		results[p.teamID] = result

		s.bus.Publish(ctx, events.Event{Type: events.TeamSessionStarted, GameID: game.ID, TeamID: p.teamID})
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToTeam(game.ID, p.teamID, MsgTeamSessionStarted, result)
		}
	}
	return results, nil
}

// ExtendSession moves the team's session end to newEnd. Fails if the
// session never started. Practice-mode sessions are capped at the
// configured maximum measured from the original start.
func (s *SessionService) ExtendSession(ctx context.Context, actor Actor, teamID string, newEnd time.Time) (*model.Player, error) {
	captain, err := s.playerRepo.GetCaptain(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load captain for team %s: %w", teamID, err)
	}
	if captain == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if !actor.IsAdmin && captain.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	game, err := s.gameRepo.GetByID(ctx, captain.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", captain.GameID, err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", captain.GameID, ErrNotFound)
	}

	lk := s.locks.Get(lock.CategoryStartSession, game.ID)
	lk.Lock()
	defer lk.Unlock()

	// Re-read inside the lock; the optimistic copy above only gated authz.
	captain, err = s.playerRepo.GetCaptain(ctx, teamID)
	if err != nil || captain == nil {
		return nil, fmt.Errorf("failed to reload captain for team %s: %w", teamID, err)
	}
	if !captain.HasStartedSession() {
		return nil, ErrCantExtendUnstartedSession
	}

	if game.IsPractice() && s.practiceMaxMinutes > 0 {
		max := captain.SessionBegin.Add(time.Duration(s.practiceMaxMinutes) * time.Minute)
		if newEnd.After(max) {
			newEnd = max
		}
	}
	if newEnd.Before(captain.SessionBegin) {
		verr := &ValidationError{}
		verr.Add("session end %s precedes session start %s", newEnd, captain.SessionBegin)
		return nil, verr
	}

	window := model.SessionWindow{
		Start:           captain.SessionBegin,
		End:             newEnd,
		LengthInMinutes: newEnd.Sub(captain.SessionBegin).Minutes(),
		IsLateStart:     captain.IsLateStart,
	}

	challenges, err := s.challengeRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenges for team %s: %w", teamID, err)
	}

	if err := s.playerRepo.UpdateTeamSession(ctx, teamID, window); err != nil {
		return nil, fmt.Errorf("failed to persist session for team %s: %w", teamID, err)
	}
	if err := s.challengeRepo.SetTeamEndTime(ctx, teamID, window.End); err != nil {
		return nil, fmt.Errorf("failed to update challenge end times for team %s: %w", teamID, err)
	}

	// Re-push expirations only for challenges whose end actually moved.
	var changed []model.Challenge
	for _, ch := range challenges {
		if !ch.EndTime.Equal(newEnd) {
			changed = append(changed, ch)
		}
	}
	s.extendGamespaces(ctx, changed, newEnd)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToTeam(game.ID, teamID, MsgTeamSessionChanged, window)
	}

	captain.SessionEnd = window.End
	captain.SessionMinutes = window.LengthInMinutes
	return captain, nil
}

// EndSession closes the team's session immediately.
func (s *SessionService) EndSession(ctx context.Context, actor Actor, teamID string) (*model.Player, error) {
	return s.ExtendSession(ctx, actor, teamID, s.now())
}

// extendGamespaces fans out expiration updates to the engine and waits
// for all of them. A failure here is logged and the persisted session is
// left in place: a partially-extended set of gamespaces is an accepted
// degraded state.
func (s *SessionService) extendGamespaces(ctx context.Context, challenges []model.Challenge, end time.Time) {
	var wg sync.WaitGroup
	for _, ch := range challenges {
		wg.Add(1)
		go func(ch model.Challenge) {
			defer wg.Done()
			if err := s.engine.ExtendSession(ctx, ch.ID, end, ch.Engine); err != nil {
				log.Printf("gamespace expiration update failed for challenge %s (team %s): %v", ch.ID, ch.TeamID, err)
			}
		}(ch)
	}
	wg.Wait()
}
