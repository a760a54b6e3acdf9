package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusmarket/trading/internal/model"
)

const entityWishlist = "wishlist"

type WishlistRepository struct {
	remote Remote
	mirror Mirror
	logger *slog.Logger
}

func NewWishlistRepository(remote Remote, mirror Mirror, logger *slog.Logger) *WishlistRepository {
	return &WishlistRepository{remote: remote, mirror: mirror, logger: orDefault(logger)}
}

// List returns every user's wishes, newest first. limit <= 0 means all.
func (r *WishlistRepository) List(ctx context.Context, limit int) ([]model.WishlistItem, error) {
	r.resync(ctx)

	wishes, err := r.remote.ListWishlist(ctx, limit)
	if err != nil {
		fallback(r.logger, entityWishlist, err)
		return r.mirror.ListWishlist(ctx, limit)
	}
	r.store(ctx, wishes...)
	return wishes, nil
}

func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	r.resync(ctx)

	wishes, err := r.remote.ListWishlistByUser(ctx, userID)
	if err != nil {
		fallback(r.logger, entityWishlist, err)
		return r.mirror.ListWishlistByUser(ctx, userID)
	}
	r.store(ctx, wishes...)
	return wishes, nil
}

func (r *WishlistRepository) Get(ctx context.Context, id string) (*model.WishlistItem, error) {
	w, err := r.remote.GetWishlistItem(ctx, id)
	if errors.Is(err, model.ErrWishNotFound) {
		if isUnsynced(ctx, r.mirror, r.logger, entityWishlist, id) {
			local, _, perr := r.push(ctx, id)
			return local, perr
		}
		_ = r.mirror.DeleteWishlistItem(ctx, id)
		return nil, err
	}
	if err != nil {
		fallback(r.logger, entityWishlist, err)
		return r.mirror.GetWishlistItem(ctx, id)
	}
	r.store(ctx, *w)
	return w, nil
}

// Add creates w, or, when w links an item the user already has an entry
// for, overwrites that entry keeping its id and creation time.
func (r *WishlistRepository) Add(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error) {
	if w.ItemID != "" {
		// Entries still waiting to be pushed must be visible to the
		// coalescing lookups below.
		r.resync(ctx)

		if up, ok := r.remote.(WishlistUpserter); ok {
			saved, err := up.UpsertWishlistByItem(ctx, w)
			if err == nil {
				r.store(ctx, *saved)
				return saved, nil
			}
			remoteWriteFailed(r.logger, entityWishlist, "upsert", err)
		}

		existing, err := r.findByItem(ctx, w.UserID, w.ItemID)
		if err != nil && !errors.Is(err, model.ErrWishNotFound) {
			return nil, err
		}
		if existing != nil {
			return r.Update(ctx, existing.ID, replacePatch(w))
		}
	}

	if err := r.mirror.UpsertWishlist(ctx, []model.WishlistItem{w}); err != nil {
		return nil, err
	}
	if err := r.mirror.MarkUnsynced(ctx, entityWishlist, w.ID); err != nil {
		return nil, err
	}
	created, err := r.remote.CreateWishlistItem(ctx, w)
	if err != nil {
		remoteWriteFailed(r.logger, entityWishlist, "create", err)
		return &w, nil
	}
	r.synced(ctx, *created)
	return created, nil
}

func (r *WishlistRepository) Update(ctx context.Context, id string, patch model.WishlistPatch) (*model.WishlistItem, error) {
	updated, err := r.remote.UpdateWishlistItem(ctx, id, patch)
	if errors.Is(err, model.ErrWishNotFound) && !isUnsynced(ctx, r.mirror, r.logger, entityWishlist, id) {
		return nil, err
	}
	if err != nil {
		remoteWriteFailed(r.logger, entityWishlist, "update", err)

		local, lerr := r.mirror.GetWishlistItem(ctx, id)
		if lerr != nil {
			return nil, lerr
		}
		patch.Apply(local)
		local.UpdatedAt = time.Now().UTC()
		updated = local
	}

	if err := r.mirror.UpsertWishlist(ctx, []model.WishlistItem{*updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *WishlistRepository) Delete(ctx context.Context, id string) error {
	if err := r.remote.DeleteWishlistItem(ctx, id); err != nil {
		remoteWriteFailed(r.logger, entityWishlist, "delete", err)
	}
	if err := r.mirror.DeleteWishlistItem(ctx, id); err != nil {
		return err
	}
	return r.mirror.MarkSynced(ctx, entityWishlist, id)
}

// resync pushes entries created during an outage, stopping at the first one
// the remote still refuses.
func (r *WishlistRepository) resync(ctx context.Context) {
	ids, err := r.mirror.ListUnsynced(ctx, entityWishlist)
	if err != nil {
		r.logger.Error("failed to list unsynced wishlist entries", "error", err)
		return
	}
	for _, id := range ids {
		if _, ok, err := r.push(ctx, id); err == nil && !ok {
			return
		}
	}
}

// push sends the local copy of id to the remote and reports whether the
// remote now holds it.
func (r *WishlistRepository) push(ctx context.Context, id string) (*model.WishlistItem, bool, error) {
	local, err := r.mirror.GetWishlistItem(ctx, id)
	if errors.Is(err, model.ErrWishNotFound) {
		_ = r.mirror.MarkSynced(ctx, entityWishlist, id)
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	created, err := r.remote.CreateWishlistItem(ctx, *local)
	if err != nil {
		if existing, gerr := r.remote.GetWishlistItem(ctx, id); gerr == nil {
			r.synced(ctx, *existing)
			return existing, true, nil
		}
		remoteWriteFailed(r.logger, entityWishlist, "resync", err)
		return local, false, nil
	}
	r.synced(ctx, *created)
	r.logger.Info("pushed wishlist entry created offline", "id", id)
	return created, true, nil
}

func (r *WishlistRepository) synced(ctx context.Context, w model.WishlistItem) {
	r.store(ctx, w)
	if err := r.mirror.MarkSynced(ctx, entityWishlist, w.ID); err != nil {
		r.logger.Error("failed to mark wishlist entry synced", "id", w.ID, "error", err)
	}
}

func (r *WishlistRepository) findByItem(ctx context.Context, userID, itemID string) (*model.WishlistItem, error) {
	wishes, err := r.remote.ListWishlistByUser(ctx, userID)
	if err != nil {
		fallback(r.logger, entityWishlist, err)
		return r.mirror.FindWishlistByItem(ctx, userID, itemID)
	}
	r.store(ctx, wishes...)

	// Oldest entry wins if duplicates slipped in before coalescing existed.
	var found *model.WishlistItem
	for i := range wishes {
		if wishes[i].ItemID != itemID {
			continue
		}
		if found == nil || wishes[i].CreatedAt.Before(found.CreatedAt) {
			found = &wishes[i]
		}
	}
	if found == nil {
		return nil, model.ErrWishNotFound
	}
	return found, nil
}

func (r *WishlistRepository) store(ctx context.Context, wishes ...model.WishlistItem) {
	if len(wishes) == 0 {
		return
	}
	if err := r.mirror.UpsertWishlist(ctx, wishes); err != nil {
		r.logger.Error("failed to mirror wishlist", "error", err)
	}
}

// replacePatch overwrites every mutable field with w's values.
func replacePatch(w model.WishlistItem) model.WishlistPatch {
	return model.WishlistPatch{
		Title:            &w.Title,
		Category:         &w.Category,
		MinPrice:         &w.MinPrice,
		MaxPrice:         &w.MaxPrice,
		TargetPrice:      &w.TargetPrice,
		ItemID:           &w.ItemID,
		EnablePriceAlert: &w.EnablePriceAlert,
		Description:      &w.Description,
	}
}
