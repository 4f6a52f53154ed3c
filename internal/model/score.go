package model

import "time"

// DenormalizedTeamScore is the precomputed scoreboard row for one team in
// one game. At most one row exists per (team, game); recomputation always
// deletes and re-inserts the row as a unit so readers never observe a
// half-updated snapshot.
type DenormalizedTeamScore struct {
	TeamID             string    `json:"teamId" bson:"teamId"`
	GameID             string    `json:"gameId" bson:"gameId"`
	TeamName           string    `json:"teamName" bson:"teamName"`
	Rank               int       `json:"rank" bson:"rank"`
	ScoreOverall       float64   `json:"scoreOverall" bson:"scoreOverall"`
	ScoreChallenge     float64   `json:"scoreChallenge" bson:"scoreChallenge"`
	ScoreAutoBonus     float64   `json:"scoreAutoBonus" bson:"scoreAutoBonus"`
	ScoreManualBonus   float64   `json:"scoreManualBonus" bson:"scoreManualBonus"`
	SolveCountNone     int       `json:"solveCountNone" bson:"solveCountNone"`
	SolveCountPartial  int       `json:"solveCountPartial" bson:"solveCountPartial"`
	SolveCountComplete int       `json:"solveCountComplete" bson:"solveCountComplete"`
	CumulativeTimeMs   int64     `json:"cumulativeTimeMs" bson:"cumulativeTimeMs"`
	TimeRemainingMs    int64     `json:"timeRemainingMs" bson:"timeRemainingMs"`
	SessionBegin       time.Time `json:"sessionBegin" bson:"sessionBegin"`
}
