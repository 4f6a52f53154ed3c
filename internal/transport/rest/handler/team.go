package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cmu-sei/Gameboard-sub002/internal/service"
)

// TeamHandler handles team session endpoints.
type TeamHandler struct {
	sessionSvc *service.SessionService
}

func NewTeamHandler(sessionSvc *service.SessionService) *TeamHandler {
	return &TeamHandler{sessionSvc: sessionSvc}
}

type sessionRequest struct {
	// Action is one of "start", "extend" or "end".
	Action     string    `json:"action"`
	SessionEnd time.Time `json:"sessionEnd,omitempty"`
}

// Session handles PUT /v1/teams/{id}/session.
func (h *TeamHandler) Session(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["id"]

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := actorFrom(r)
	switch req.Action {
	case "start":
		results, err := h.sessionSvc.StartSessions(r.Context(), actor, []string{teamID})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results[teamID])

	case "extend":
		if req.SessionEnd.IsZero() {
			writeError(w, http.StatusBadRequest, "sessionEnd is required to extend")
			return
		}
		player, err := h.sessionSvc.ExtendSession(r.Context(), actor, teamID, req.SessionEnd)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)

	case "end":
		player, err := h.sessionSvc.EndSession(r.Context(), actor, teamID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)

	default:
		writeError(w, http.StatusBadRequest, "action must be start, extend or end")
	}
}
