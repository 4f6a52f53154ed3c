package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

type ChallengeRepo interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	GetByID(ctx context.Context, id string) (*model.Challenge, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.Challenge, error)
	SetTeamEndTime(ctx context.Context, teamID string, end time.Time) error
	UpdateScore(ctx context.Context, id string, score float64, scoredAt time.Time) error
}

type challengeRepo struct {
	collection *mongo.Collection
}

func NewChallengeRepo(db *mongo.Database) ChallengeRepo {
	return &challengeRepo{collection: db.Collection("challenges")}
}

func (r *challengeRepo) Create(ctx context.Context, challenge *model.Challenge) error {
	_, err := r.collection.InsertOne(ctx, challenge)
	return err
}

func (r *challengeRepo) GetByID(ctx context.Context, id string) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // challenge not found
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Challenge, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"teamId": teamID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var challenges []model.Challenge
	if err := cursor.All(ctx, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

// SetTeamEndTime mirrors the team's session end onto every challenge the
// team owns, as a single atomic bulk statement (never read-then-write).
func (r *challengeRepo) SetTeamEndTime(ctx context.Context, teamID string, end time.Time) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"teamId": teamID},
		bson.M{"$set": bson.M{"endTime": end}},
	)
	return err
}

func (r *challengeRepo) UpdateScore(ctx context.Context, id string, score float64, scoredAt time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"score": score, "lastScoreTime": scoredAt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
