package model

import "time"

// AwardedBonus is an automatic bonus a team has claimed on a challenge
// (e.g. first blood). Embedded on the challenge document.
type AwardedBonus struct {
	ID          string  `json:"id" bson:"id"`
	Description string  `json:"description" bson:"description"`
	PointValue  float64 `json:"pointValue" bson:"pointValue"`
}

// Challenge is a deployed challenge instance owned by one team. EndTime
// mirrors the team's session window and is rewritten transactionally
// whenever the window changes.
type Challenge struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	SpecID        string         `json:"specId" bson:"specId"`
	TeamID        string         `json:"teamId" bson:"teamId"`
	GameID        string         `json:"gameId" bson:"gameId"`
	Name          string         `json:"name" bson:"name"`
	Points        float64        `json:"points" bson:"points"`
	Score         float64        `json:"score" bson:"score"`
	Bonuses       []AwardedBonus `json:"bonuses" bson:"bonuses"`
	StartTime     time.Time      `json:"startTime" bson:"startTime"`
	EndTime       time.Time      `json:"endTime" bson:"endTime"`
	LastScoreTime time.Time      `json:"lastScoreTime" bson:"lastScoreTime"`
	Engine        string         `json:"engine" bson:"engine"`
}

// ManualBonus is an operator-entered score adjustment for a team,
// optionally tied to a specific challenge.
type ManualBonus struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	TeamID      string    `json:"teamId" bson:"teamId"`
	GameID      string    `json:"gameId" bson:"gameId"`
	ChallengeID string    `json:"challengeId,omitempty" bson:"challengeId,omitempty"`
	PointValue  float64   `json:"pointValue" bson:"pointValue"`
	Description string    `json:"description" bson:"description"`
	EnteredBy   string    `json:"enteredBy" bson:"enteredBy"`
	EnteredOn   time.Time `json:"enteredOn" bson:"enteredOn"`
}
