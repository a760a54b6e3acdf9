package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusmarket/trading/internal/match"
	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/service"
)

type WishlistHandler struct {
	svc    *service.WishlistService
	logger *slog.Logger
}

type addWishRequest struct {
	Title            string  `json:"title"`
	Category         string  `json:"category"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	TargetPrice      float64 `json:"target_price"`
	ItemID           string  `json:"item_id"`
	EnablePriceAlert bool    `json:"enable_price_alert"`
	Description      string  `json:"description"`
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.svc.ListMine(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wishes)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addWishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	wish, err := h.svc.Add(r.Context(), actorFrom(r.Context()), model.WishlistItem{
		Title:            req.Title,
		Category:         req.Category,
		MinPrice:         req.MinPrice,
		MaxPrice:         req.MaxPrice,
		TargetPrice:      req.TargetPrice,
		ItemID:           req.ItemID,
		EnablePriceAlert: req.EnablePriceAlert,
		Description:      req.Description,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, wish)
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wish, err := h.svc.Get(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wish)
}

func (h *WishlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.WishlistPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	wish, err := h.svc.Update(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wish)
}

func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WishlistHandler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.CheckPriceAlerts(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *WishlistHandler) Matches(w http.ResponseWriter, r *http.Request) {
	minScore, err := queryInt(r, "min_score", match.DefaultMinScore)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	limit, err := queryInt(r, "limit", match.DefaultMaxResults)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	matches, err := h.svc.Matches(r.Context(), actorFrom(r.Context()), match.Options{
		MinScore:   float64(minScore),
		MaxResults: limit,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *WishlistHandler) WishMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.svc.WishMatches(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
