package handler

import (
	"log/slog"
	"net/http"

	"campusmarket/trading/internal/service"
)

type RecommendationHandler struct {
	svc    *service.RecommendationService
	logger *slog.Logger
}

// Textbooks expects ?student_id= and optionally ?month=1..12.
func (h *RecommendationHandler) Textbooks(w http.ResponseWriter, r *http.Request) {
	month, err := queryInt(r, "month", 0)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	recs, err := h.svc.Textbooks(r.Context(), actorFrom(r.Context()), r.URL.Query().Get("student_id"), month)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// ByImage takes the raw photo as the request body.
func (h *RecommendationHandler) ByImage(w http.ResponseWriter, r *http.Request) {
	image, err := readBody(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	rec, err := h.svc.ByImage(r.Context(), actorFrom(r.Context()), image)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
