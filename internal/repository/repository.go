// Package repository combines the remote store with the local mirror.
// Reads try the remote first and mirror what they get back; when the remote
// fails the mirror answers instead. Writes go to both. Rows created while the
// remote is down stay marked unsynced and are pushed once it answers again.
package repository

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"campusmarket/trading/internal/model"
)

// Remote is the hosted database. Implemented by the PostgREST client and by
// the direct Postgres store.
type Remote interface {
	ListItems(ctx context.Context, limit int) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, item model.Item) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user model.User) error
	UpdateUser(ctx context.Context, email string, patch model.UserPatch) error
	DeleteUser(ctx context.Context, email string) error

	ListWishlist(ctx context.Context, limit int) ([]model.WishlistItem, error)
	ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error)
	GetWishlistItem(ctx context.Context, id string) (*model.WishlistItem, error)
	CreateWishlistItem(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error)
	UpdateWishlistItem(ctx context.Context, id string, patch model.WishlistPatch) (*model.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, msg model.ChatMessage) error
	ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error)
}

// WishlistUpserter is implemented by remotes that can coalesce a wishlist
// entry by (user, linked item) atomically.
type WishlistUpserter interface {
	UpsertWishlistByItem(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error)
}

// Mirror is the local cache. Implemented by sqlite.Store.
type Mirror interface {
	UpsertItems(ctx context.Context, items []model.Item) error
	ListItems(ctx context.Context, limit int) ([]model.Item, error)
	ListItemsByOwner(ctx context.Context, ownerUID string) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	UpsertWishlist(ctx context.Context, wishes []model.WishlistItem) error
	ListWishlist(ctx context.Context, limit int) ([]model.WishlistItem, error)
	ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error)
	GetWishlistItem(ctx context.Context, id string) (*model.WishlistItem, error)
	FindWishlistByItem(ctx context.Context, userID, itemID string) (*model.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, id string) error

	UpsertUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, email, hash string) error
	DeleteUser(ctx context.Context, email string) error
	SavePendingRegistration(ctx context.Context, p model.PendingRegistration) error
	GetPendingRegistration(ctx context.Context, email string) (*model.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, email string) error

	UpsertMessages(ctx context.Context, msgs []model.ChatMessage) error
	ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error)

	MarkUnsynced(ctx context.Context, entity, id string) error
	MarkSynced(ctx context.Context, entity, id string) error
	IsUnsynced(ctx context.Context, entity, id string) (bool, error)
	ListUnsynced(ctx context.Context, entity string) ([]string, error)
}

var remoteFallbacks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "remote_fallback_total",
		Help: "Reads served from the local mirror because the remote store failed",
	},
	[]string{"entity"},
)

// fallback records that a read for entity is being served locally.
func fallback(logger *slog.Logger, entity string, err error) {
	remoteFallbacks.WithLabelValues(entity).Inc()
	logger.Warn("remote read failed, using local mirror", "entity", entity, "error", err)
}

// remoteWriteFailed logs a write that reached the mirror but not the remote.
func remoteWriteFailed(logger *slog.Logger, entity, op string, err error) {
	logger.Warn("remote write failed, kept local copy", "entity", entity, "op", op, "error", err)
}

// isUnsynced reports whether entity/id was written locally but never
// reached the remote. Lookup errors count as synced.
func isUnsynced(ctx context.Context, mirror Mirror, logger *slog.Logger, entity, id string) bool {
	ok, err := mirror.IsUnsynced(ctx, entity, id)
	if err != nil {
		logger.Error("failed to check sync state", "entity", entity, "id", id, "error", err)
		return false
	}
	return ok
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
