package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/repository"
)

// ImageStore keeps uploaded item photos and returns a public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

type ItemService struct {
	items  *repository.ItemRepository
	images ImageStore
	logger *slog.Logger
}

// NewItemService builds the item service. images may be nil when the remote
// has no object storage.
func NewItemService(items *repository.ItemRepository, images ImageStore, logger *slog.Logger) *ItemService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemService{items: items, images: images, logger: logger}
}

type ItemQuery struct {
	Limit    int
	Query    string
	Category string
}

// List returns items newest first. Query matches title or description
// case-insensitively; Category must match exactly.
func (s *ItemService) List(ctx context.Context, q ItemQuery) ([]model.Item, error) {
	q.Query = strings.ToLower(strings.TrimSpace(q.Query))
	if q.Query == "" && q.Category == "" {
		return s.items.List(ctx, q.Limit)
	}

	all, err := s.items.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := make([]model.Item, 0, len(all))
	for _, it := range all {
		if q.Category != "" && it.Category != q.Category {
			continue
		}
		if q.Query != "" &&
			!strings.Contains(strings.ToLower(it.Title), q.Query) &&
			!strings.Contains(strings.ToLower(it.Description), q.Query) {
			continue
		}
		out = append(out, it)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *ItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	return s.items.Get(ctx, id)
}

// ListMine returns the caller's own listings.
func (s *ItemService) ListMine(ctx context.Context, actor Actor) ([]model.Item, error) {
	if _, err := s.items.List(ctx, 0); err != nil {
		return nil, err
	}
	return s.items.ListByOwner(ctx, actor.UID)
}

func validateItem(title string, price float64, category string) error {
	if title == "" {
		return model.ErrInvalidTitle
	}
	if price < 0 {
		return model.ErrInvalidPrice
	}
	if category != "" && !model.IsValidCategory(category) {
		return model.ErrInvalidCategory
	}
	return nil
}

// Create posts a new listing owned by actor.
func (s *ItemService) Create(ctx context.Context, actor Actor, in model.Item) (*model.Item, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateItem(in.Title, in.Price, in.Category); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	in.ID = uuid.NewString()
	in.OwnerUID = actor.UID
	in.OwnerEmail = actor.Email
	in.CreatedAt = now
	in.UpdatedAt = now

	item, err := s.items.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "item created", "id", item.ID, "owner", actor.UID)
	return item, nil
}

func (s *ItemService) owned(ctx context.Context, actor Actor, id string) (*model.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(item) {
		return nil, model.ErrForbidden
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, actor Actor, id string, patch model.ItemPatch) (*model.Item, error) {
	item, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}

	merged := *item
	patch.Apply(&merged)
	if err := validateItem(merged.Title, merged.Price, merged.Category); err != nil {
		return nil, err
	}
	return s.items.Update(ctx, id, patch)
}

func (s *ItemService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadImage stores a photo for the item and points the item at it.
func (s *ItemService) UploadImage(ctx context.Context, actor Actor, id, contentType string, body io.Reader) (*model.Item, error) {
	if s.images == nil {
		return nil, ErrImagesUnavailable
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s_%s%s", id, uuid.NewString(), ext)

	imageURL, err := s.images.UploadImage(ctx, name, contentType, body)
	if err != nil {
		return nil, err
	}
	return s.items.Update(ctx, id, model.ItemPatch{ImageURL: &imageURL})
}
