package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusmarket/trading/internal/service"
)

type ChatHandler struct {
	svc    *service.ChatService
	logger *slog.Logger
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessage
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	msg, err := h.svc.Send(r.Context(), actorFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.List(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) With(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.With(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.Conversations(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}
