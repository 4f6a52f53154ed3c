package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cmu-sei/Gameboard-sub002/internal/service"
)

// GameHandler handles game readiness and scoreboard endpoints.
type GameHandler struct {
	syncStartSvc *service.SyncStartService
	scoringSvc   *service.ScoringService
}

func NewGameHandler(syncStartSvc *service.SyncStartService, scoringSvc *service.ScoringService) *GameHandler {
	return &GameHandler{
		syncStartSvc: syncStartSvc,
		scoringSvc:   scoringSvc,
	}
}

// Ready handles GET /v1/games/{id}/ready (poll aggregate readiness).
func (h *GameHandler) Ready(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	state, err := h.syncStartSvc.GetSyncStartState(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Scoreboard handles GET /v1/games/{id}/scoreboard.
func (h *GameHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	rows, err := h.scoringSvc.GetScoreboard(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Rerank handles POST /v1/games/{id}/rerank (admin bulk recompute).
func (h *GameHandler) Rerank(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := h.scoringSvc.DenormalizeGame(r.Context(), gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
