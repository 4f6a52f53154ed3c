package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

type PlayerRepo interface {
	Create(ctx context.Context, player *model.Player) error
	GetByID(ctx context.Context, id string) (*model.Player, error)
	GetCaptain(ctx context.Context, teamID string) (*model.Player, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.Player, error)
	ListByGame(ctx context.Context, gameID string) ([]model.Player, error)
	SetReady(ctx context.Context, playerID string, ready bool) error
	UpdateTeamSession(ctx context.Context, teamID string, window model.SessionWindow) error
}

type playerRepo struct {
	collection *mongo.Collection
}

func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{collection: db.Collection("players")}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	_, err := r.collection.InsertOne(ctx, player)
	return err
}

func (r *playerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // player not found
		}
		return nil, err
	}
	return &player, nil
}

// GetCaptain returns the team's single manager-role player.
func (r *playerRepo) GetCaptain(ctx context.Context, teamID string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, bson.M{"teamId": teamID, "role": model.RoleManager}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Player, error) {
	return r.list(ctx, bson.M{"teamId": teamID})
}

func (r *playerRepo) ListByGame(ctx context.Context, gameID string) ([]model.Player, error) {
	return r.list(ctx, bson.M{"gameId": gameID})
}

func (r *playerRepo) list(ctx context.Context, filter bson.M) ([]model.Player, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepo) SetReady(ctx context.Context, playerID string, ready bool) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": playerID},
		bson.M{"$set": bson.M{"isReady": ready}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateTeamSession writes the session window onto every member of the
// team in a single atomic bulk statement.
func (r *playerRepo) UpdateTeamSession(ctx context.Context, teamID string, window model.SessionWindow) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"teamId": teamID},
		bson.M{"$set": bson.M{
			"sessionBegin":   window.Start,
			"sessionEnd":     window.End,
			"sessionMinutes": window.LengthInMinutes,
			"isLateStart":    window.IsLateStart,
		}},
	)
	return err
}
