package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"campusmarket/trading/internal/email"
	"campusmarket/trading/internal/match"
	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/repository"
)

type WishlistService struct {
	wishes       *repository.WishlistRepository
	items        *repository.ItemRepository
	mailer       email.Service
	achievements *AchievementService
	logger       *slog.Logger

	// notified remembers the price each (wish, item) alert was last mailed
	// at, so repeated checks only mail again after a further drop.
	notifiedMu sync.Mutex
	notified   map[string]float64
}

func NewWishlistService(
	wishes *repository.WishlistRepository,
	items *repository.ItemRepository,
	mailer email.Service,
	achievements *AchievementService,
	logger *slog.Logger,
) *WishlistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WishlistService{
		wishes:       wishes,
		items:        items,
		mailer:       mailer,
		achievements: achievements,
		logger:       logger,
		notified:     make(map[string]float64),
	}
}

func validateWish(w model.WishlistItem) error {
	if w.Title == "" {
		return model.ErrInvalidTitle
	}
	if w.MinPrice < 0 || w.MaxPrice < 0 || w.TargetPrice < 0 {
		return model.ErrInvalidPrice
	}
	if w.MinPrice > 0 && w.MaxPrice > 0 && w.MaxPrice < w.MinPrice {
		return model.ErrInvalidRange
	}
	if w.Category != "" && !model.IsValidCategory(w.Category) {
		return model.ErrInvalidCategory
	}
	return nil
}

// Add creates a wishlist entry for actor. An entry linking an item the actor
// already wishes for replaces the earlier one.
func (s *WishlistService) Add(ctx context.Context, actor Actor, in model.WishlistItem) (*model.WishlistItem, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ItemID = strings.TrimSpace(in.ItemID)
	if err := validateWish(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	in.ID = uuid.NewString()
	in.UserID = actor.UID
	in.UserEmail = actor.Email
	in.CreatedAt = now
	in.UpdatedAt = now
	return s.wishes.Add(ctx, in)
}

func (s *WishlistService) Get(ctx context.Context, actor Actor, id string) (*model.WishlistItem, error) {
	w, err := s.wishes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != actor.UID {
		return nil, model.ErrForbidden
	}
	return w, nil
}

func (s *WishlistService) ListMine(ctx context.Context, actor Actor) ([]model.WishlistItem, error) {
	return s.wishes.ListByUser(ctx, actor.UID)
}

func (s *WishlistService) Update(ctx context.Context, actor Actor, id string, patch model.WishlistPatch) (*model.WishlistItem, error) {
	w, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}

	merged := *w
	patch.Apply(&merged)
	if err := validateWish(merged); err != nil {
		return nil, err
	}
	if merged.ItemID != "" && merged.ItemID != w.ItemID {
		if err := s.checkLinkFree(ctx, actor, id, merged.ItemID); err != nil {
			return nil, err
		}
	}
	return s.wishes.Update(ctx, id, patch)
}

// checkLinkFree rejects relinking entry id to itemID when another of the
// actor's entries already links it. Add coalesces instead.
func (s *WishlistService) checkLinkFree(ctx context.Context, actor Actor, id, itemID string) error {
	mine, err := s.wishes.ListByUser(ctx, actor.UID)
	if err != nil {
		return err
	}
	for _, other := range mine {
		if other.ID != id && other.ItemID == itemID {
			return fmt.Errorf("%w: %s", ErrWishExists, other.ID)
		}
	}
	return nil
}

func (s *WishlistService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.wishes.Delete(ctx, id)
}

// catalog fetches every wishlist entry and every item concurrently.
func (s *WishlistService) catalog(ctx context.Context) ([]model.WishlistItem, []model.Item, error) {
	var (
		wishes []model.WishlistItem
		items  []model.Item
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wishes, err = s.wishes.List(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to fetch wishlist: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.items.List(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to fetch items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return wishes, items, nil
}

// Matches finds exchange matches for actor in both directions.
func (s *WishlistService) Matches(ctx context.Context, actor Actor, opts match.Options) ([]model.ExchangeMatch, error) {
	wishes, items, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return match.FindMatches(actor.UID, wishes, items, opts), nil
}

// WishMatches ranks other users' items against one of actor's entries.
func (s *WishlistService) WishMatches(ctx context.Context, actor Actor, id string) ([]model.ExchangeMatch, error) {
	var (
		wish  *model.WishlistItem
		items []model.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wish, err = s.Get(gctx, actor, id)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.items.List(gctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return match.MatchWish(*wish, items, match.Options{
		MinScore:   match.DefaultMinScore,
		MaxResults: match.DefaultWishMaxResults,
	}), nil
}

// PriceAlerts returns, for each alert-enabled entry with a target, the items
// at or below that target. A linked entry only watches its item; others
// watch any item whose title contains or is contained in theirs, in the same
// category and inside the price band. Items owned by the wisher are skipped.
func PriceAlerts(wishes []model.WishlistItem, items []model.Item) []model.PriceAlert {
	byID := make(map[string]model.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	alerts := []model.PriceAlert{}
	for _, w := range wishes {
		if !w.EnablePriceAlert || w.TargetPrice <= 0 {
			continue
		}
		if w.ItemID != "" {
			if it, ok := byID[w.ItemID]; ok && !ownedBy(it, w) && it.Price <= w.TargetPrice {
				alerts = append(alerts, model.PriceAlert{Wish: w, Item: it})
			}
			continue
		}

		title := strings.ToLower(strings.TrimSpace(w.Title))
		for _, it := range items {
			if ownedBy(it, w) || it.Price > w.TargetPrice {
				continue
			}
			if w.MinPrice > 0 && it.Price < w.MinPrice {
				continue
			}
			if w.MaxPrice > 0 && it.Price > w.MaxPrice {
				continue
			}
			if w.Category != "" && it.Category != w.Category {
				continue
			}
			itemTitle := strings.ToLower(it.Title)
			if title == "" || itemTitle == "" {
				continue
			}
			if strings.Contains(itemTitle, title) || strings.Contains(title, itemTitle) {
				alerts = append(alerts, model.PriceAlert{Wish: w, Item: it})
			}
		}
	}
	return alerts
}

func ownedBy(it model.Item, w model.WishlistItem) bool {
	return it.OwnerUID != "" && it.OwnerUID == w.UserID
}

// CheckPriceAlerts evaluates actor's entries, mails any new alerts and
// returns every alert currently triggered.
func (s *WishlistService) CheckPriceAlerts(ctx context.Context, actor Actor) ([]model.PriceAlert, error) {
	var (
		wishes []model.WishlistItem
		items  []model.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wishes, err = s.wishes.ListByUser(gctx, actor.UID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.items.List(gctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := PriceAlerts(wishes, items)
	s.deliver(ctx, alerts)
	return alerts, nil
}

// CheckAllPriceAlerts runs the alert check for every user and returns how
// many alerts were mailed.
func (s *WishlistService) CheckAllPriceAlerts(ctx context.Context) (int, error) {
	wishes, items, err := s.catalog(ctx)
	if err != nil {
		return 0, err
	}
	return s.deliver(ctx, PriceAlerts(wishes, items)), nil
}

func (s *WishlistService) deliver(ctx context.Context, alerts []model.PriceAlert) int {
	sentByUser := make(map[string]int)
	sent := 0
	for _, a := range alerts {
		key := a.Wish.ID + "|" + a.Item.ID

		s.notifiedMu.Lock()
		last, seen := s.notified[key]
		s.notifiedMu.Unlock()
		if seen && a.Item.Price >= last {
			continue
		}

		if a.Wish.UserEmail == "" {
			continue
		}
		mail := email.PriceAlertMail(a.Wish.UserEmail, a.Item.Title, a.Item.Price, a.Wish.TargetPrice)
		if err := s.mailer.SendMail(ctx, mail); err != nil {
			s.logger.WarnContext(ctx, "failed to send price alert", "wish", a.Wish.ID, "item", a.Item.ID, "error", err)
			continue
		}

		s.notifiedMu.Lock()
		s.notified[key] = a.Item.Price
		s.notifiedMu.Unlock()

		sent++
		sentByUser[a.Wish.UserID]++
	}

	if s.achievements != nil {
		for uid, n := range sentByUser {
			if err := s.achievements.RecordPriceAlertSuccess(ctx, uid, n); err != nil {
				s.logger.WarnContext(ctx, "failed to record price alert achievement", "user", uid, "error", err)
			}
		}
	}
	return sent
}
