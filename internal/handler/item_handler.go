package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/service"
)

const (
	defaultItemLimit = 100
	maxItemLimit     = 500
)

type ItemHandler struct {
	svc    *service.ItemService
	logger *slog.Logger
}

type createItemRequest struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Story       string  `json:"story"`
	ImageURL    string  `json:"image_url"`
	PhoneNumber string  `json:"phone_number"`
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultItemLimit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if limit <= 0 || limit > maxItemLimit {
		limit = maxItemLimit
	}

	items, err := h.svc.List(r.Context(), service.ItemQuery{
		Limit:    limit,
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListMine(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	item, err := h.svc.Create(r.Context(), actorFrom(r.Context()), model.Item{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Story:       req.Story,
		ImageURL:    req.ImageURL,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	item, err := h.svc.Update(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage takes the raw image as the request body.
func (h *ItemHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBody)
	item, err := h.svc.UploadImage(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
