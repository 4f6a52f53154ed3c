package service

import (
	"context"
	"sync"
	"time"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

// In-memory fakes for the repository and gateway interfaces. All fakes
// are safe for concurrent use; the sync-start tests hammer them from
// many goroutines.

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*model.Player

	// sessionUpdates counts UpdateTeamSession calls per team.
	sessionUpdates map[string]int

	// beforeList, when set, runs before each ListByGame builds its
	// result; n is the 1-based call number.
	beforeList    func(n int)
	listCallCount int
}

func newFakePlayerRepo(players ...*model.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{
		players:        make(map[string]*model.Player),
		sessionUpdates: make(map[string]int),
	}
	for _, p := range players {
		cp := *p
		r.players[p.ID] = &cp
	}
	return r
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *player
	r.players[player.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) GetCaptain(ctx context.Context, teamID string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.TeamID == teamID && p.Role == model.RoleManager {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Player
	for _, p := range r.players {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListByGame(ctx context.Context, gameID string) ([]model.Player, error) {
	r.mu.Lock()
	r.listCallCount++
	n := r.listCallCount
	hook := r.beforeList
	r.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Player
	for _, p := range r.players {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) SetReady(ctx context.Context, playerID string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok {
		p.IsReady = ready
	}
	return nil
}

func (r *fakePlayerRepo) UpdateTeamSession(ctx context.Context, teamID string, window model.SessionWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionUpdates[teamID]++
	for _, p := range r.players {
		if p.TeamID == teamID {
			p.SessionBegin = window.Start
			p.SessionEnd = window.End
			p.SessionMinutes = window.LengthInMinutes
			p.IsLateStart = window.IsLateStart
		}
	}
	return nil
}

func (r *fakePlayerRepo) sessionUpdateCount(teamID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionUpdates[teamID]
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func newFakeGameRepo(games ...*model.Game) *fakeGameRepo {
	r := &fakeGameRepo{games: make(map[string]*model.Game)}
	for _, g := range games {
		cp := *g
		r.games[g.ID] = &cp
	}
	return r
}

func (r *fakeGameRepo) Create(ctx context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *game
	r.games[game.ID] = &cp
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id string) (*model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

type fakeChallengeRepo struct {
	mu         sync.Mutex
	challenges map[string]*model.Challenge
}

func newFakeChallengeRepo(challenges ...*model.Challenge) *fakeChallengeRepo {
	r := &fakeChallengeRepo{challenges: make(map[string]*model.Challenge)}
	for _, ch := range challenges {
		cp := *ch
		r.challenges[ch.ID] = &cp
	}
	return r
}

func (r *fakeChallengeRepo) Create(ctx context.Context, challenge *model.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *challenge
	r.challenges[challenge.ID] = &cp
	return nil
}

func (r *fakeChallengeRepo) GetByID(ctx context.Context, id string) (*model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeChallengeRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Challenge
	for _, ch := range r.challenges {
		if ch.TeamID == teamID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) SetTeamEndTime(ctx context.Context, teamID string, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.challenges {
		if ch.TeamID == teamID {
			ch.EndTime = end
		}
	}
	return nil
}

func (r *fakeChallengeRepo) UpdateScore(ctx context.Context, id string, score float64, scoredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.challenges[id]; ok {
		ch.Score = score
		ch.LastScoreTime = scoredAt
	}
	return nil
}

type fakeBonusRepo struct {
	mu      sync.Mutex
	bonuses []model.ManualBonus
}

func newFakeBonusRepo(bonuses ...model.ManualBonus) *fakeBonusRepo {
	return &fakeBonusRepo{bonuses: bonuses}
}

func (r *fakeBonusRepo) Create(ctx context.Context, bonus *model.ManualBonus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bonuses = append(r.bonuses, *bonus)
	return nil
}

func (r *fakeBonusRepo) ListByTeam(ctx context.Context, teamID string) ([]model.ManualBonus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ManualBonus
	for _, b := range r.bonuses {
		if b.TeamID == teamID {
			out = append(out, b)
		}
	}
	return out, nil
}

type scoreKey struct {
	teamID string
	gameID string
}

type fakeScoreRepo struct {
	mu   sync.Mutex
	rows map[scoreKey]model.DenormalizedTeamScore
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{rows: make(map[scoreKey]model.DenormalizedTeamScore)}
}

func (r *fakeScoreRepo) Replace(ctx context.Context, row *model.DenormalizedTeamScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[scoreKey{row.TeamID, row.GameID}] = *row
	return nil
}

func (r *fakeScoreRepo) ListByGame(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.DenormalizedTeamScore
	for k, row := range r.rows {
		if k.gameID == gameID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeScoreRepo) UpdateRanks(ctx context.Context, gameID string, ranks map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for teamID, rank := range ranks {
		k := scoreKey{teamID, gameID}
		if row, ok := r.rows[k]; ok {
			row.Rank = rank
			r.rows[k] = row
		}
	}
	return nil
}

func (r *fakeScoreRepo) DeleteByGame(ctx context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.rows {
		if k.gameID == gameID {
			delete(r.rows, k)
		}
	}
	return nil
}

func (r *fakeScoreRepo) DeleteByTeam(ctx context.Context, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.rows {
		if k.teamID == teamID {
			delete(r.rows, k)
		}
	}
	return nil
}

func (r *fakeScoreRepo) get(teamID, gameID string) (model.DenormalizedTeamScore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[scoreKey{teamID, gameID}]
	return row, ok
}

type fakeScoreboardCache struct {
	mu      sync.Mutex
	entries map[string][]model.DenormalizedTeamScore
}

func newFakeScoreboardCache() *fakeScoreboardCache {
	return &fakeScoreboardCache{entries: make(map[string][]model.DenormalizedTeamScore)}
}

func (c *fakeScoreboardCache) Set(ctx context.Context, gameID string, rows []model.DenormalizedTeamScore) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]model.DenormalizedTeamScore, len(rows))
	copy(cp, rows)
	c.entries[gameID] = cp
	return nil
}

func (c *fakeScoreboardCache) Get(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[gameID], nil
}

func (c *fakeScoreboardCache) Invalidate(ctx context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, gameID)
	return nil
}

type engineCall struct {
	ChallengeID string
	NewEnd      time.Time
}

type fakeGameEngine struct {
	mu    sync.Mutex
	calls []engineCall
	err   error
}

func newFakeGameEngine() *fakeGameEngine {
	return &fakeGameEngine{}
}

func (e *fakeGameEngine) ExtendSession(ctx context.Context, challengeID string, newEnd time.Time, engine string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, engineCall{ChallengeID: challengeID, NewEnd: newEnd})
	return e.err
}

func (e *fakeGameEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *fakeGameEngine) calledChallenges() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]bool, len(e.calls))
	for _, c := range e.calls {
		out[c.ChallengeID] = true
	}
	return out
}
