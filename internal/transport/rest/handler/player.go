package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cmu-sei/Gameboard-sub002/internal/service"
	"github.com/cmu-sei/Gameboard-sub002/internal/transport/rest/middleware"
)

// PlayerHandler handles player readiness endpoints.
type PlayerHandler struct {
	syncStartSvc *service.SyncStartService
}

func NewPlayerHandler(syncStartSvc *service.SyncStartService) *PlayerHandler {
	return &PlayerHandler{syncStartSvc: syncStartSvc}
}

type readyRequest struct {
	IsReady bool `json:"isReady"`
}

// Ready handles PUT /v1/players/{id}/ready. Toggling the last missing
// player ready may synchronously trigger the game start.
func (h *PlayerHandler) Ready(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["id"]

	var req readyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.syncStartSvc.UpdatePlayerReady(r.Context(), actorFrom(r), playerID, req.IsReady)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// actorFrom builds the service actor from the request's claims.
func actorFrom(r *http.Request) service.Actor {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{
		UserID:     claims.UserID,
		IsAdmin:    claims.IsAdmin,
		IsElevated: claims.IsElevated,
	}
}
