package model

import "time"

type PlayerMode string

const (
	ModeCompetition PlayerMode = "competition"
	ModePractice    PlayerMode = "practice"
)

// Game holds the session-related configuration for one game. It is owned
// by game administration and read-only to the session core.
type Game struct {
	ID                       string     `json:"id" bson:"_id,omitempty"`
	Name                     string     `json:"name" bson:"name"`
	SessionMinutes           int        `json:"sessionMinutes" bson:"sessionMinutes"`
	GameEnd                  time.Time  `json:"gameEnd" bson:"gameEnd"`
	RequireSynchronizedStart bool       `json:"requireSynchronizedStart" bson:"requireSynchronizedStart"`
	AllowLateStart           bool       `json:"allowLateStart" bson:"allowLateStart"`
	PlayerMode               PlayerMode `json:"playerMode" bson:"playerMode"`
}

func (g *Game) IsPractice() bool {
	return g.PlayerMode == ModePractice
}
