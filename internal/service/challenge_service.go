package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmu-sei/Gameboard-sub002/internal/events"
	"github.com/cmu-sei/Gameboard-sub002/internal/lock"
	"github.com/cmu-sei/Gameboard-sub002/internal/model"
	"github.com/cmu-sei/Gameboard-sub002/internal/repository"
)

// ChallengeService applies score mutations. It is the producer side of
// the score-changed event flow: every successful mutation publishes an
// event and the denormalization engine takes it from there.
type ChallengeService struct {
	challengeRepo repository.ChallengeRepo
	bonusRepo     repository.ManualBonusRepo
	locks         *lock.Registry
	bus           *events.Bus

	now func() time.Time
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepo,
	bonusRepo repository.ManualBonusRepo,
	locks *lock.Registry,
	bus *events.Bus,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo: challengeRepo,
		bonusRepo:     bonusRepo,
		locks:         locks,
		bus:           bus,
		now:           time.Now,
	}
}

// GradeChallenge sets a challenge's score under the per-challenge lock
// and publishes the score change.
func (s *ChallengeService) GradeChallenge(ctx context.Context, actor Actor, challengeID string, score float64) (*model.Challenge, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	lk := s.locks.Get(lock.CategoryChallenge, challengeID)
	lk.Lock()
	defer lk.Unlock()

	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge %s: %w", challengeID, err)
	}
	if challenge == nil {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
	}

	verr := &ValidationError{}
	if score < 0 {
		verr.Add("score %.2f is negative", score)
	}
	if score > challenge.Points {
		verr.Add("score %.2f exceeds the challenge maximum %.2f", score, challenge.Points)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	scoredAt := s.now()
	if err := s.challengeRepo.UpdateScore(ctx, challengeID, score, scoredAt); err != nil {
		return nil, fmt.Errorf("failed to update score for challenge %s: %w", challengeID, err)
	}

	challenge.Score = score
	challenge.LastScoreTime = scoredAt

	s.bus.Publish(ctx, events.Event{
		Type:        events.ScoreChanged,
		GameID:      challenge.GameID,
		TeamID:      challenge.TeamID,
		ChallengeID: challenge.ID,
	})
	return challenge, nil
}

// AwardManualBonus records an operator-entered bonus for a team and
// publishes the score change.
func (s *ChallengeService) AwardManualBonus(ctx context.Context, actor Actor, bonus *model.ManualBonus) (*model.ManualBonus, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	if bonus.TeamID == "" {
		verr.Add("a team is required")
	}
	if bonus.GameID == "" {
		verr.Add("a game is required")
	}
	if bonus.PointValue == 0 {
		verr.Add("a non-zero point value is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	bonus.ID = uuid.New().String()
	bonus.EnteredBy = actor.UserID
	bonus.EnteredOn = s.now()

	if err := s.bonusRepo.Create(ctx, bonus); err != nil {
		return nil, fmt.Errorf("failed to record manual bonus for team %s: %w", bonus.TeamID, err)
	}

	s.bus.Publish(ctx, events.Event{
		Type:        events.ScoreChanged,
		GameID:      bonus.GameID,
		TeamID:      bonus.TeamID,
		ChallengeID: bonus.ChallengeID,
	})
	return bonus, nil
}
