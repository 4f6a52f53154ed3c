package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

const scoreboardTTL = 30 * time.Second

// ScoreboardCache holds the latest ranked snapshot per game for fast
// scoreboard reads. The store remains authoritative; a miss or a stale
// read here is always recoverable from Mongo.
type ScoreboardCache interface {
	Set(ctx context.Context, gameID string, rows []model.DenormalizedTeamScore) error
	Get(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error)
	Invalidate(ctx context.Context, gameID string) error
}

type scoreboardCache struct {
	client *redis.Client
}

func NewScoreboardCache(client *redis.Client) ScoreboardCache {
	return &scoreboardCache{client: client}
}

func (c *scoreboardCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:scoreboard", gameID)
}

func (c *scoreboardCache) Set(ctx context.Context, gameID string, rows []model.DenormalizedTeamScore) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(gameID), data, scoreboardTTL).Err()
}

// Get returns nil, nil on a cache miss.
func (c *scoreboardCache) Get(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error) {
	data, err := c.client.Get(ctx, c.key(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []model.DenormalizedTeamScore
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *scoreboardCache) Invalidate(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, c.key(gameID)).Err()
}
