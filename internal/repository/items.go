package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusmarket/trading/internal/model"
)

const entityItems = "items"

type ItemRepository struct {
	remote Remote
	mirror Mirror
	logger *slog.Logger
}

func NewItemRepository(remote Remote, mirror Mirror, logger *slog.Logger) *ItemRepository {
	return &ItemRepository{remote: remote, mirror: mirror, logger: orDefault(logger)}
}

// List returns up to limit items, newest first. limit <= 0 means all.
func (r *ItemRepository) List(ctx context.Context, limit int) ([]model.Item, error) {
	r.resync(ctx)

	items, err := r.remote.ListItems(ctx, limit)
	if err != nil {
		fallback(r.logger, entityItems, err)
		return r.mirror.ListItems(ctx, limit)
	}
	if err := r.mirror.UpsertItems(ctx, items); err != nil {
		r.logger.Error("failed to mirror items", "error", err)
	}
	return items, nil
}

// Get treats a remote not-found as final unless the item was created while
// the remote was down, in which case the local copy is pushed and returned.
func (r *ItemRepository) Get(ctx context.Context, id string) (*model.Item, error) {
	item, err := r.remote.GetItem(ctx, id)
	if errors.Is(err, model.ErrItemNotFound) {
		if isUnsynced(ctx, r.mirror, r.logger, entityItems, id) {
			local, _, perr := r.push(ctx, id)
			return local, perr
		}
		_ = r.mirror.DeleteItem(ctx, id)
		return nil, err
	}
	if err != nil {
		fallback(r.logger, entityItems, err)
		return r.mirror.GetItem(ctx, id)
	}
	if err := r.mirror.UpsertItems(ctx, []model.Item{*item}); err != nil {
		r.logger.Error("failed to mirror item", "id", id, "error", err)
	}
	return item, nil
}

// ListByOwner answers from the mirror; callers wanting fresh data call List
// first.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerUID string) ([]model.Item, error) {
	return r.mirror.ListItemsByOwner(ctx, ownerUID)
}

// Create stores item locally first so it survives a remote outage. Until the
// remote accepts it the item stays marked unsynced.
func (r *ItemRepository) Create(ctx context.Context, item model.Item) (*model.Item, error) {
	if err := r.mirror.UpsertItems(ctx, []model.Item{item}); err != nil {
		return nil, err
	}
	if err := r.mirror.MarkUnsynced(ctx, entityItems, item.ID); err != nil {
		return nil, err
	}

	created, err := r.remote.CreateItem(ctx, item)
	if err != nil {
		remoteWriteFailed(r.logger, entityItems, "create", err)
		return &item, nil
	}
	r.synced(ctx, *created)
	return created, nil
}

func (r *ItemRepository) Update(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	updated, err := r.remote.UpdateItem(ctx, id, patch)
	if errors.Is(err, model.ErrItemNotFound) && !isUnsynced(ctx, r.mirror, r.logger, entityItems, id) {
		return nil, err
	}
	if err != nil {
		remoteWriteFailed(r.logger, entityItems, "update", err)

		local, lerr := r.mirror.GetItem(ctx, id)
		if lerr != nil {
			return nil, lerr
		}
		patch.Apply(local)
		local.UpdatedAt = time.Now().UTC()
		updated = local
	}

	if err := r.mirror.UpsertItems(ctx, []model.Item{*updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if err := r.remote.DeleteItem(ctx, id); err != nil {
		remoteWriteFailed(r.logger, entityItems, "delete", err)
	}
	if err := r.mirror.DeleteItem(ctx, id); err != nil {
		return err
	}
	return r.mirror.MarkSynced(ctx, entityItems, id)
}

// resync pushes items created during an outage, oldest first, stopping at
// the first one the remote still refuses.
func (r *ItemRepository) resync(ctx context.Context) {
	ids, err := r.mirror.ListUnsynced(ctx, entityItems)
	if err != nil {
		r.logger.Error("failed to list unsynced items", "error", err)
		return
	}
	for _, id := range ids {
		if _, ok, err := r.push(ctx, id); err == nil && !ok {
			return
		}
	}
}

// push sends the local copy of id to the remote. It reports whether the
// remote now holds the item; on refusal the local copy is returned.
func (r *ItemRepository) push(ctx context.Context, id string) (*model.Item, bool, error) {
	local, err := r.mirror.GetItem(ctx, id)
	if errors.Is(err, model.ErrItemNotFound) {
		_ = r.mirror.MarkSynced(ctx, entityItems, id)
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	created, err := r.remote.CreateItem(ctx, *local)
	if err != nil {
		// The create may have landed before the response was lost.
		if existing, gerr := r.remote.GetItem(ctx, id); gerr == nil {
			r.synced(ctx, *existing)
			return existing, true, nil
		}
		remoteWriteFailed(r.logger, entityItems, "resync", err)
		return local, false, nil
	}
	r.synced(ctx, *created)
	r.logger.Info("pushed item created offline", "id", id)
	return created, true, nil
}

func (r *ItemRepository) synced(ctx context.Context, item model.Item) {
	if err := r.mirror.UpsertItems(ctx, []model.Item{item}); err != nil {
		r.logger.Error("failed to mirror item", "id", item.ID, "error", err)
	}
	if err := r.mirror.MarkSynced(ctx, entityItems, item.ID); err != nil {
		r.logger.Error("failed to mark item synced", "id", item.ID, "error", err)
	}
}
