package model

import "time"

type PlayerRole string

const (
	RoleManager PlayerRole = "manager"
	RoleMember  PlayerRole = "member"
)

// Player is one user's membership on a team within a game. Exactly one
// player per team holds RoleManager (the captain); only the captain's
// session fields are authoritative for the team's session window, but the
// window is written onto every member so reads never need a join.
type Player struct {
	ID             string     `json:"id" bson:"_id,omitempty"`
	TeamID         string     `json:"teamId" bson:"teamId"`
	UserID         string     `json:"userId" bson:"userId"`
	GameID         string     `json:"gameId" bson:"gameId"`
	Name           string     `json:"name" bson:"name"`
	Role           PlayerRole `json:"role" bson:"role"`
	IsElevated     bool       `json:"isElevated" bson:"isElevated"`
	IsReady        bool       `json:"isReady" bson:"isReady"`
	SessionBegin   time.Time  `json:"sessionBegin" bson:"sessionBegin"`
	SessionEnd     time.Time  `json:"sessionEnd" bson:"sessionEnd"`
	SessionMinutes float64    `json:"sessionMinutes" bson:"sessionMinutes"`
	IsLateStart    bool       `json:"isLateStart" bson:"isLateStart"`
}

// HasStartedSession reports whether the player's team session has begun.
// Session fields are unset (zero) until StartSessions runs for the team.
func (p *Player) HasStartedSession() bool {
	return !p.SessionEnd.IsZero()
}
