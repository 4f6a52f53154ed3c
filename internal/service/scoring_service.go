package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmu-sei/Gameboard-sub002/internal/cache"
	"github.com/cmu-sei/Gameboard-sub002/internal/events"
	"github.com/cmu-sei/Gameboard-sub002/internal/model"
	"github.com/cmu-sei/Gameboard-sub002/internal/repository"
)

// ScoringService recomputes denormalized team score snapshots and keeps
// the game's rank table current. Recomputes for different teams in the
// same game may run concurrently; the final rerank write is last-writer
// wins and converges as score-changed events keep arriving.
type ScoringService struct {
	playerRepo    repository.PlayerRepo
	challengeRepo repository.ChallengeRepo
	bonusRepo     repository.ManualBonusRepo
	scoreRepo     repository.TeamScoreRepo
	scoreboard    cache.ScoreboardCache
	broadcaster   Broadcaster

	now func() time.Time
}

func NewScoringService(
	playerRepo repository.PlayerRepo,
	challengeRepo repository.ChallengeRepo,
	bonusRepo repository.ManualBonusRepo,
	scoreRepo repository.TeamScoreRepo,
	scoreboard cache.ScoreboardCache,
) *ScoringService {
	return &ScoringService{
		playerRepo:    playerRepo,
		challengeRepo: challengeRepo,
		bonusRepo:     bonusRepo,
		scoreRepo:     scoreRepo,
		scoreboard:    scoreboard,
		now:           time.Now,
	}
}

// SetBroadcaster sets the notification gateway for scoreboard updates.
func (s *ScoringService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// HandleScoreChanged is the event-bus subscriber for score mutations.
func (s *ScoringService) HandleScoreChanged(ctx context.Context, ev events.Event) error {
	return s.DenormalizeTeam(ctx, ev.TeamID)
}

// DenormalizeTeam rebuilds the team's snapshot row from raw challenge and
// bonus data, replaces it whole, and reranks the game.
func (s *ScoringService) DenormalizeTeam(ctx context.Context, teamID string) error {
	row, err := s.computeTeamScore(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.scoreRepo.Replace(ctx, row); err != nil {
		return fmt.Errorf("failed to replace score row for team %s: %w", teamID, err)
	}
	return s.rerankGame(ctx, row.GameID)
}

// DenormalizeGame wipes and rebuilds every team's snapshot for a game.
// Used for bulk and administrative recomputes.
func (s *ScoringService) DenormalizeGame(ctx context.Context, gameID string) error {
	players, err := s.playerRepo.ListByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load players for game %s: %w", gameID, err)
	}

	teamIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range players {
		if !seen[p.TeamID] {
			seen[p.TeamID] = true
			teamIDs = append(teamIDs, p.TeamID)
		}
	}

	if err := s.scoreRepo.DeleteByGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to clear score rows for game %s: %w", gameID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, teamID := range teamIDs {
		teamID := teamID
		g.Go(func() error {
			row, err := s.computeTeamScore(gctx, teamID)
			if err != nil {
				return err
			}
			return s.scoreRepo.Replace(gctx, row)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return s.rerankGame(ctx, gameID)
}

// GetScoreboard serves the ranked snapshot for a game, preferring the
// cache and falling back to the store.
func (s *ScoringService) GetScoreboard(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error) {
	rows, err := s.scoreboard.Get(ctx, gameID)
	if err != nil {
		log.Printf("scoreboard cache read failed for game %s: %v", gameID, err)
	}
	if rows != nil {
		return rows, nil
	}

	rows, err = s.scoreRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoreboard for game %s: %w", gameID, err)
	}
	if err := s.scoreboard.Set(ctx, gameID, rows); err != nil {
		log.Printf("scoreboard cache write failed for game %s: %v", gameID, err)
	}
	return rows, nil
}

// computeTeamScore derives the team's snapshot from challenges and
// bonuses. Identical inputs produce an identical row.
func (s *ScoringService) computeTeamScore(ctx context.Context, teamID string) (*model.DenormalizedTeamScore, error) {
	captain, err := s.playerRepo.GetCaptain(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load captain for team %s: %w", teamID, err)
	}
	if captain == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	challenges, err := s.challengeRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenges for team %s: %w", teamID, err)
	}
	bonuses, err := s.bonusRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bonuses for team %s: %w", teamID, err)
	}

	row := &model.DenormalizedTeamScore{
		TeamID:       teamID,
		GameID:       captain.GameID,
		TeamName:     captain.Name,
		SessionBegin: captain.SessionBegin,
	}

	for _, ch := range challenges {
		row.ScoreChallenge += ch.Score
		for _, b := range ch.Bonuses {
			row.ScoreAutoBonus += b.PointValue
		}

		switch {
		case ch.Score <= 0:
			row.SolveCountNone++
		case ch.Points > 0 && ch.Score >= ch.Points:
			row.SolveCountComplete++
		default:
			row.SolveCountPartial++
		}

		if d := ch.LastScoreTime.Sub(ch.StartTime); d > 0 {
			row.CumulativeTimeMs += d.Milliseconds()
		}
	}

	for _, b := range bonuses {
		row.ScoreManualBonus += b.PointValue
	}

	row.ScoreOverall = row.ScoreChallenge + row.ScoreAutoBonus + row.ScoreManualBonus

	if remaining := captain.SessionEnd.Sub(s.now()); remaining > 0 {
		row.TimeRemainingMs = remaining.Milliseconds()
	}
	return row, nil
}

// rerankGame assigns dense ordinal ranks (1, 2, 3, ...) over all teams in
// the game: descending overall score, ties broken by earlier session
// start. Equal scores still get distinct consecutive ranks. Deliberately
// runs without a cross-team lock; see the package concurrency notes.
func (s *ScoringService) rerankGame(ctx context.Context, gameID string) error {
	rows, err := s.scoreRepo.ListByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load score rows for game %s: %w", gameID, err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ScoreOverall != rows[j].ScoreOverall {
			return rows[i].ScoreOverall > rows[j].ScoreOverall
		}
		if !rows[i].SessionBegin.Equal(rows[j].SessionBegin) {
			return rows[i].SessionBegin.Before(rows[j].SessionBegin)
		}
		return rows[i].TeamID < rows[j].TeamID
	})

	ranks := make(map[string]int, len(rows))
	for i := range rows {
		rows[i].Rank = i + 1
		ranks[rows[i].TeamID] = i + 1
	}

	if err := s.scoreRepo.UpdateRanks(ctx, gameID, ranks); err != nil {
		return fmt.Errorf("failed to persist ranks for game %s: %w", gameID, err)
	}

	if err := s.scoreboard.Set(ctx, gameID, rows); err != nil {
		log.Printf("scoreboard cache refresh failed for game %s: %v", gameID, err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToGame(gameID, MsgScoreUpdated, rows)
	}
	return nil
}
