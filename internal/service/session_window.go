package service

import (
	"time"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

// CalculateSessionWindow derives a team's session window from the game's
// configured session length and end. Non-elevated users are clamped to
// the game end; a clamped window is a late start. Pure and deterministic:
// callers validate sessionMinutes > 0 before invoking.
func CalculateSessionWindow(sessionMinutes int, gameEnd time.Time, isElevated bool, sessionStart time.Time) model.SessionWindow {
	normalEnd := sessionStart.Add(time.Duration(sessionMinutes) * time.Minute)

	finalEnd := normalEnd
	if !isElevated && !gameEnd.IsZero() && gameEnd.Before(normalEnd) {
		finalEnd = gameEnd
	}

	return model.SessionWindow{
		Start:           sessionStart,
		End:             finalEnd,
		LengthInMinutes: finalEnd.Sub(sessionStart).Minutes(),
		IsLateStart:     finalEnd.Before(normalEnd),
	}
}
