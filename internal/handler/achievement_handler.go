package handler

import (
	"log/slog"
	"net/http"

	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/service"
)

type AchievementHandler struct {
	svc    *service.AchievementService
	logger *slog.Logger
}

type achievementsResponse struct {
	Achievements []model.UserAchievement `json:"achievements"`
	Unlocked     int                     `json:"unlocked"`
	Total        int                     `json:"total"`
}

// List re-evaluates the caller's progress before returning it.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if _, err := h.svc.CheckAndGrant(r.Context(), actor.UID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list, err := h.svc.List(r.Context(), actor.UID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	unlocked := 0
	for _, a := range list {
		if a.Unlocked() {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Achievements: list, Unlocked: unlocked, Total: len(list)})
}
