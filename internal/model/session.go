package model

import "time"

// SessionWindow is the derived (start, end, length, late-start) tuple
// governing how long a team may interact with its deployed challenges.
// It is never persisted on its own; it is written back onto Player and
// Challenge rows as a unit.
type SessionWindow struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	LengthInMinutes float64   `json:"lengthInMinutes"`
	IsLateStart     bool      `json:"isLateStart"`
}

// SessionStartResult reports the outcome of a session start for one team.
// AlreadyActive marks the benign no-op taken when a duplicate start
// request loses the race.
type SessionStartResult struct {
	TeamID        string        `json:"teamId"`
	AlreadyActive bool          `json:"alreadyActive"`
	Window        SessionWindow `json:"window"`
}

// SyncStartPlayer is one player's readiness as seen by the sync-start view.
type SyncStartPlayer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsReady bool   `json:"isReady"`
}

// SyncStartTeam aggregates readiness for one team: ready iff every member
// is ready.
type SyncStartTeam struct {
	TeamID  string            `json:"teamId"`
	IsReady bool              `json:"isReady"`
	Players []SyncStartPlayer `json:"players"`
}

// SyncStartState is the derived readiness view for a game. It is
// recomputed from Player rows on demand and never cached across a lock
// boundary.
type SyncStartState struct {
	GameID  string          `json:"gameId"`
	IsReady bool            `json:"isReady"`
	Teams   []SyncStartTeam `json:"teams"`
}
