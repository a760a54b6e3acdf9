package service

import (
	"context"
	"log/slog"
	"time"

	"campusmarket/trading/internal/model"
)

// AchievementStore is the local data achievements are computed from.
type AchievementStore interface {
	ListAchievements(ctx context.Context, userID string) ([]model.UserAchievement, error)
	SaveAchievement(ctx context.Context, a model.UserAchievement) error
	ListItemsByOwner(ctx context.Context, ownerUID string) ([]model.Item, error)
	ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error)
	ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error)
}

type userStats struct {
	posts, messages, wishes, exchanges int
	alertsEnabled, alertsDelivered     int
	stories, categories                int
}

type achievementDef struct {
	kind   model.AchievementType
	target int
	stat   func(userStats) int
}

var achievementDefs = []achievementDef{
	{model.AchievementFirstPost, 1, func(s userStats) int { return s.posts }},
	{model.AchievementPost5, 5, func(s userStats) int { return s.posts }},
	{model.AchievementPost10, 10, func(s userStats) int { return s.posts }},
	{model.AchievementPost20, 20, func(s userStats) int { return s.posts }},
	{model.AchievementFirstMessage, 1, func(s userStats) int { return s.messages }},
	{model.AchievementMessage10, 10, func(s userStats) int { return s.messages }},
	{model.AchievementMessage50, 50, func(s userStats) int { return s.messages }},
	{model.AchievementFirstWishlist, 1, func(s userStats) int { return s.wishes }},
	{model.AchievementWishlist5, 5, func(s userStats) int { return s.wishes }},
	{model.AchievementWishlist10, 10, func(s userStats) int { return s.wishes }},
	{model.AchievementFirstExchange, 1, func(s userStats) int { return s.exchanges }},
	{model.AchievementExchange5, 5, func(s userStats) int { return s.exchanges }},
	{model.AchievementExchange10, 10, func(s userStats) int { return s.exchanges }},
	{model.AchievementPriceAlert, 1, func(s userStats) int { return s.alertsEnabled }},
	{model.AchievementPriceAlertSuccess, 1, func(s userStats) int { return s.alertsDelivered }},
	{model.AchievementStoryTeller, 1, func(s userStats) int { return s.stories }},
	{model.AchievementStory5, 5, func(s userStats) int { return s.stories }},
	{model.AchievementCategoryExpert, 5, func(s userStats) int { return s.categories }},
}

type AchievementService struct {
	store  AchievementStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAchievementService(store AchievementStore, logger *slog.Logger) *AchievementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementService{store: store, logger: logger, now: time.Now}
}

func (s *AchievementService) stats(ctx context.Context, uid string, saved map[model.AchievementType]model.UserAchievement) (userStats, error) {
	var st userStats

	items, err := s.store.ListItemsByOwner(ctx, uid)
	if err != nil {
		return st, err
	}
	st.posts = len(items)
	categories := make(map[string]struct{})
	for _, it := range items {
		if it.Story != "" {
			st.stories++
		}
		if it.Category != "" {
			categories[it.Category] = struct{}{}
		}
	}
	st.categories = len(categories)

	wishes, err := s.store.ListWishlistByUser(ctx, uid)
	if err != nil {
		return st, err
	}
	st.wishes = len(wishes)
	for _, w := range wishes {
		if w.EnablePriceAlert {
			st.alertsEnabled++
		}
	}

	msgs, err := s.store.ListMessagesForUser(ctx, uid)
	if err != nil {
		return st, err
	}
	// An exchange is a listing the user has talked about with someone.
	exchanged := make(map[string]struct{})
	for _, m := range msgs {
		if m.SenderUID == uid {
			st.messages++
		}
		if m.ItemID != "" {
			exchanged[m.ItemID] = struct{}{}
		}
	}
	st.exchanges = len(exchanged)

	st.alertsDelivered = saved[model.AchievementPriceAlertSuccess].Progress
	return st, nil
}

func (s *AchievementService) saved(ctx context.Context, uid string) (map[model.AchievementType]model.UserAchievement, error) {
	list, err := s.store.ListAchievements(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make(map[model.AchievementType]model.UserAchievement, len(list))
	for _, a := range list {
		out[a.Type] = a
	}
	return out, nil
}

// CheckAndGrant records current progress for uid and returns the
// achievements unlocked by this call.
func (s *AchievementService) CheckAndGrant(ctx context.Context, uid string) ([]model.UserAchievement, error) {
	saved, err := s.saved(ctx, uid)
	if err != nil {
		return nil, err
	}
	st, err := s.stats(ctx, uid, saved)
	if err != nil {
		return nil, err
	}

	unlocked := []model.UserAchievement{}
	now := s.now().UTC()
	for _, def := range achievementDefs {
		progress := def.stat(st)
		prev, ok := saved[def.kind]
		if ok && (prev.UnlockedAt != nil || prev.Progress == progress) {
			continue
		}
		if !ok && progress == 0 {
			continue
		}

		a := model.UserAchievement{UserID: uid, Type: def.kind, Progress: progress, Target: def.target}
		if progress >= def.target {
			a.UnlockedAt = &now
		}
		if err := s.store.SaveAchievement(ctx, a); err != nil {
			return nil, err
		}
		if a.UnlockedAt != nil {
			unlocked = append(unlocked, a)
			s.logger.InfoContext(ctx, "achievement unlocked", "user", uid, "type", def.kind)
		}
	}
	return unlocked, nil
}

// RecordPriceAlertSuccess adds n delivered alerts to uid's tally.
func (s *AchievementService) RecordPriceAlertSuccess(ctx context.Context, uid string, n int) error {
	saved, err := s.saved(ctx, uid)
	if err != nil {
		return err
	}
	a := saved[model.AchievementPriceAlertSuccess]
	a.UserID = uid
	a.Type = model.AchievementPriceAlertSuccess
	a.Target = 1
	a.Progress += n
	if a.UnlockedAt == nil && a.Progress >= a.Target {
		now := s.now().UTC()
		a.UnlockedAt = &now
	}
	return s.store.SaveAchievement(ctx, a)
}

// List refreshes and returns every achievement for uid, locked ones
// included, in a fixed order.
func (s *AchievementService) List(ctx context.Context, uid string) ([]model.UserAchievement, error) {
	if _, err := s.CheckAndGrant(ctx, uid); err != nil {
		return nil, err
	}
	saved, err := s.saved(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := make([]model.UserAchievement, 0, len(achievementDefs))
	for _, def := range achievementDefs {
		a, ok := saved[def.kind]
		if !ok {
			a = model.UserAchievement{UserID: uid, Type: def.kind, Target: def.target}
		}
		out = append(out, a)
	}
	return out, nil
}
