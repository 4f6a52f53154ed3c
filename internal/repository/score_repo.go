package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

type TeamScoreRepo interface {
	// Replace removes any existing row for the (team, game) pair and
	// inserts the fresh snapshot. Rows are never partially updated.
	Replace(ctx context.Context, row *model.DenormalizedTeamScore) error
	ListByGame(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error)
	UpdateRanks(ctx context.Context, gameID string, ranks map[string]int) error
	DeleteByGame(ctx context.Context, gameID string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

type teamScoreRepo struct {
	collection *mongo.Collection
}

func NewTeamScoreRepo(db *mongo.Database) TeamScoreRepo {
	return &teamScoreRepo{collection: db.Collection("team_scores")}
}

func (r *teamScoreRepo) Replace(ctx context.Context, row *model.DenormalizedTeamScore) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"teamId": row.TeamID, "gameId": row.GameID}); err != nil {
		return err
	}
	_, err := r.collection.InsertOne(ctx, row)
	return err
}

func (r *teamScoreRepo) ListByGame(ctx context.Context, gameID string) ([]model.DenormalizedTeamScore, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"gameId": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []model.DenormalizedTeamScore
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateRanks writes the recomputed rank ordinals for a game in one bulk
// call. Last writer wins across concurrent reranks of the same game.
func (r *teamScoreRepo) UpdateRanks(ctx context.Context, gameID string, ranks map[string]int) error {
	if len(ranks) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(ranks))
	for teamID, rank := range ranks {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"teamId": teamID, "gameId": gameID}).
			SetUpdate(bson.M{"$set": bson.M{"rank": rank}}))
	}
	_, err := r.collection.BulkWrite(ctx, writes)
	return err
}

func (r *teamScoreRepo) DeleteByGame(ctx context.Context, gameID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"gameId": gameID})
	return err
}

func (r *teamScoreRepo) DeleteByTeam(ctx context.Context, teamID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"teamId": teamID})
	return err
}
