package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
	"github.com/cmu-sei/Gameboard-sub002/internal/service"
)

// ChallengeHandler handles score-mutating admin endpoints.
type ChallengeHandler struct {
	challengeSvc *service.ChallengeService
}

func NewChallengeHandler(challengeSvc *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeSvc: challengeSvc}
}

type gradeRequest struct {
	Score float64 `json:"score"`
}

// Grade handles PUT /v1/challenges/{id}/score.
func (h *ChallengeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["id"]

	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	challenge, err := h.challengeSvc.GradeChallenge(r.Context(), actorFrom(r), challengeID, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

// AwardBonus handles POST /v1/bonuses.
func (h *ChallengeHandler) AwardBonus(w http.ResponseWriter, r *http.Request) {
	var bonus model.ManualBonus
	if err := json.NewDecoder(r.Body).Decode(&bonus); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.challengeSvc.AwardManualBonus(r.Context(), actorFrom(r), &bonus)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
