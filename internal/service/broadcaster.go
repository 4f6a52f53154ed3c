package service

// Broadcaster pushes named events to connected clients. Fire-and-forget:
// no delivery guarantee and no back-pressure into the core. The interface
// lives here so services don't import the transport package (avoids
// import cycle).
type Broadcaster interface {
	BroadcastToGame(gameID string, msgType string, payload interface{})
	BroadcastToTeam(gameID, teamID string, msgType string, payload interface{})
}

// Message types pushed through the broadcaster.
const (
	MsgTeamSessionStarted    = "team_session_started"
	MsgTeamSessionChanged    = "team_session_changed"
	MsgSyncStartStateChanged = "sync_start_state_changed"
	MsgSyncStartGameStarting = "sync_start_game_starting"
	MsgSyncStartGameStarted  = "sync_start_game_started"
	MsgScoreUpdated          = "score_updated"
)
