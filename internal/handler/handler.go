// Package handler exposes the services over a chi JSON API.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusmarket/trading/internal/auth"
	"campusmarket/trading/internal/service"
)

// Services bundles everything the routes call.
type Services struct {
	Auth            *service.AuthService
	Items           *service.ItemService
	Wishlist        *service.WishlistService
	Chat            *service.ChatService
	Recommendations *service.RecommendationService
	Achievements    *service.AchievementService
}

type Handler struct {
	router *chi.Mux
	tokens *auth.JWTManager
	logger *slog.Logger

	auth            *AuthHandler
	items           *ItemHandler
	wishlist        *WishlistHandler
	chat            *ChatHandler
	recommendations *RecommendationHandler
	achievements    *AchievementHandler
}

func NewHandler(svcs Services, tokens *auth.JWTManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(countRequests)

	h := &Handler{
		router: router,
		tokens: tokens,
		logger: logger,

		auth:            &AuthHandler{svc: svcs.Auth, logger: logger},
		items:           &ItemHandler{svc: svcs.Items, logger: logger},
		wishlist:        &WishlistHandler{svc: svcs.Wishlist, logger: logger},
		chat:            &ChatHandler{svc: svcs.Chat, logger: logger},
		recommendations: &RecommendationHandler{svc: svcs.Recommendations, logger: logger},
		achievements:    &AchievementHandler{svc: svcs.Achievements, logger: logger},
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.router.Handle("/metrics", promhttp.Handler())

	h.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)

		r.Post("/auth/register", h.auth.Register)
		r.Post("/auth/verify", h.auth.Verify)
		r.Post("/auth/login", h.auth.Login)
		r.Post("/auth/resend", h.auth.Resend)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(h.tokens))

			r.Get("/auth/me", h.auth.Me)
			r.Post("/auth/password", h.auth.ChangePassword)
			r.Patch("/auth/profile", h.auth.UpdateProfile)
			r.Delete("/auth/account", h.auth.DeleteAccount)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", h.items.List)
				r.Post("/", h.items.Create)
				r.Get("/mine", h.items.ListMine)
				r.Get("/{id}", h.items.Get)
				r.Patch("/{id}", h.items.Update)
				r.Delete("/{id}", h.items.Delete)
				r.Post("/{id}/image", h.items.UploadImage)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", h.wishlist.List)
				r.Post("/", h.wishlist.Add)
				r.Post("/alerts/check", h.wishlist.CheckAlerts)
				r.Get("/{id}", h.wishlist.Get)
				r.Patch("/{id}", h.wishlist.Update)
				r.Delete("/{id}", h.wishlist.Delete)
				r.Get("/{id}/matches", h.wishlist.WishMatches)
			})
			r.Get("/matches", h.wishlist.Matches)

			r.Get("/recommendations/textbooks", h.recommendations.Textbooks)
			r.Post("/recommendations/image", h.recommendations.ByImage)

			r.Post("/messages", h.chat.Send)
			r.Get("/messages", h.chat.List)
			r.Get("/messages/{uid}", h.chat.With)
			r.Get("/conversations", h.chat.Conversations)

			r.Get("/achievements", h.achievements.List)
		})
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
