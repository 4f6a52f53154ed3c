package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

type ManualBonusRepo interface {
	Create(ctx context.Context, bonus *model.ManualBonus) error
	ListByTeam(ctx context.Context, teamID string) ([]model.ManualBonus, error)
}

type manualBonusRepo struct {
	collection *mongo.Collection
}

func NewManualBonusRepo(db *mongo.Database) ManualBonusRepo {
	return &manualBonusRepo{collection: db.Collection("manual_bonuses")}
}

func (r *manualBonusRepo) Create(ctx context.Context, bonus *model.ManualBonus) error {
	_, err := r.collection.InsertOne(ctx, bonus)
	return err
}

func (r *manualBonusRepo) ListByTeam(ctx context.Context, teamID string) ([]model.ManualBonus, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"teamId": teamID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bonuses []model.ManualBonus
	if err := cursor.All(ctx, &bonuses); err != nil {
		return nil, err
	}
	return bonuses, nil
}
