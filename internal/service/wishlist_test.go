package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/trading/internal/match"
	"campusmarket/trading/internal/model"
)

func newWishlistService(env *testEnv) *WishlistService {
	return NewWishlistService(env.wishes, env.items, env.mailer, env.achieves, nil)
}

func TestWishlistService_AddValidates(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	ctx := context.Background()

	_, err := svc.Add(ctx, alice, model.WishlistItem{})
	assert.ErrorIs(t, err, model.ErrInvalidTitle)

	_, err = svc.Add(ctx, alice, model.WishlistItem{Title: "Bike", MinPrice: 50, MaxPrice: 20})
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	_, err = svc.Add(ctx, alice, model.WishlistItem{Title: "Bike", TargetPrice: -1})
	assert.ErrorIs(t, err, model.ErrInvalidPrice)

	w, err := svc.Add(ctx, alice, model.WishlistItem{Title: "Bike", MaxPrice: 80})
	require.NoError(t, err)
	assert.Equal(t, "alice", w.UserID)
	assert.Equal(t, "alice@ucdconnect.ie", w.UserEmail)
}

func TestWishlistService_LinkedItemCoalesces(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	ctx := context.Background()

	first, err := svc.Add(ctx, alice, model.WishlistItem{Title: "Lamp", ItemID: "item-1", TargetPrice: 10})
	require.NoError(t, err)
	second, err := svc.Add(ctx, alice, model.WishlistItem{Title: "Desk lamp", ItemID: "item-1", TargetPrice: 8})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Desk lamp", second.Title)

	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 8.0, mine[0].TargetPrice)
}

func TestWishlistService_RelinkToLinkedItemRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	ctx := context.Background()

	first, err := svc.Add(ctx, alice, model.WishlistItem{Title: "Lamp", ItemID: "item-1"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, alice, model.WishlistItem{Title: "Desk", ItemID: "item-2"})
	require.NoError(t, err)

	relink := "item-1"
	_, err = svc.Update(ctx, alice, second.ID, model.WishlistPatch{ItemID: &relink})
	assert.ErrorIs(t, err, ErrWishExists)

	// Re-sending the entry's own link is fine.
	title := "Lamp, any colour"
	_, err = svc.Update(ctx, alice, first.ID, model.WishlistPatch{ItemID: &relink, Title: &title})
	require.NoError(t, err)

	// Bob linking the same item is unaffected by Alice's entry.
	bobs, err := svc.Add(ctx, bob, model.WishlistItem{Title: "Chair", ItemID: "item-3"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, bob, bobs.ID, model.WishlistPatch{ItemID: &relink})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	linked := 0
	for _, w := range mine {
		if w.ItemID == "item-1" {
			linked++
		}
	}
	assert.Equal(t, 1, linked)
}

func TestWishlistService_Ownership(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	ctx := context.Background()

	w, err := svc.Add(ctx, alice, model.WishlistItem{Title: "Bike"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, w.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, bob, w.ID), model.ErrForbidden)

	max := 10.0
	min := 20.0
	_, err = svc.Update(ctx, alice, w.ID, model.WishlistPatch{MinPrice: &min, MaxPrice: &max})
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	require.NoError(t, svc.Delete(ctx, alice, w.ID))
	_, err = svc.Get(ctx, alice, w.ID)
	assert.ErrorIs(t, err, model.ErrWishNotFound)
}

func TestPriceAlerts(t *testing.T) {
	items := []model.Item{
		{ID: "lamp", OwnerUID: "bob", Title: "Desk Lamp", Category: "家具家电", Price: 9},
		{ID: "lamp2", OwnerUID: "bob", Title: "Floor lamp", Category: "家具家电", Price: 30},
		{ID: "mine", OwnerUID: "alice", Title: "Desk lamp", Category: "家具家电", Price: 5},
		{ID: "bike", OwnerUID: "bob", Title: "Bike", Price: 40},
	}
	wishes := []model.WishlistItem{
		{ID: "w1", UserID: "alice", Title: "lamp", Category: "家具家电", TargetPrice: 10, EnablePriceAlert: true},
		{ID: "w2", UserID: "alice", Title: "bike", ItemID: "bike", TargetPrice: 45, EnablePriceAlert: true},
		{ID: "w3", UserID: "alice", Title: "bike", TargetPrice: 45},
		{ID: "w4", UserID: "alice", Title: "lamp", EnablePriceAlert: true},
		{ID: "w5", UserID: "alice", Title: "lamp", MinPrice: 10, TargetPrice: 20, EnablePriceAlert: true},
		{ID: "w6", UserID: "alice", Title: "gone", ItemID: "deleted", TargetPrice: 45, EnablePriceAlert: true},
		{ID: "w7", UserID: "alice", Title: "my lamp", ItemID: "mine", TargetPrice: 10, EnablePriceAlert: true},
	}

	alerts := PriceAlerts(wishes, items)
	require.Len(t, alerts, 2)
	assert.Equal(t, "w1", alerts[0].Wish.ID)
	assert.Equal(t, "lamp", alerts[0].Item.ID)
	assert.Equal(t, "w2", alerts[1].Wish.ID)
	assert.Equal(t, "bike", alerts[1].Item.ID)
}

func TestWishlistService_CheckPriceAlerts(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	items := NewItemService(env.items, nil, nil)
	ctx := context.Background()

	lamp, err := items.Create(ctx, bob, model.Item{Title: "Desk lamp", Price: 15})
	require.NoError(t, err)
	_, err = svc.Add(ctx, alice, model.WishlistItem{Title: "lamp", TargetPrice: 12, EnablePriceAlert: true})
	require.NoError(t, err)

	alerts, err := svc.CheckPriceAlerts(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Empty(t, env.mailer.all())

	price := 11.0
	_, err = items.Update(ctx, bob, lamp.ID, model.ItemPatch{Price: &price})
	require.NoError(t, err)

	alerts, err = svc.CheckPriceAlerts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	sent := env.mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@ucdconnect.ie", sent[0].To)
	assert.Equal(t, "Price alert: Desk lamp", sent[0].Subject)

	// Same price again: still reported, not mailed twice.
	alerts, err = svc.CheckPriceAlerts(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Len(t, env.mailer.all(), 1)

	achievements, err := env.achieves.List(ctx, "alice")
	require.NoError(t, err)
	for _, a := range achievements {
		if a.Type == model.AchievementPriceAlertSuccess {
			assert.True(t, a.Unlocked())
			assert.NotNil(t, a.UnlockedAt)
		}
	}
}

func TestWishlistService_CheckAllPriceAlertsMailFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	ctx := context.Background()

	_, err := NewItemService(env.items, nil, nil).Create(ctx, bob, model.Item{Title: "Bike", Price: 30})
	require.NoError(t, err)
	_, err = svc.Add(ctx, alice, model.WishlistItem{Title: "bike", TargetPrice: 40, EnablePriceAlert: true})
	require.NoError(t, err)

	env.mailer.err = errors.New("smtp down")
	n, err := svc.CheckAllPriceAlerts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.mailer.err = nil
	n, err = svc.CheckAllPriceAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWishlistService_Matches(t *testing.T) {
	env := newTestEnv(t)
	svc := newWishlistService(env)
	items := NewItemService(env.items, nil, nil)
	ctx := context.Background()

	bike, err := items.Create(ctx, bob, model.Item{Title: "bike", Price: 50})
	require.NoError(t, err)
	_, err = items.Create(ctx, alice, model.Item{Title: "desk lamp", Price: 10})
	require.NoError(t, err)
	wish, err := svc.Add(ctx, alice, model.WishlistItem{Title: "bike"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, bob, model.WishlistItem{Title: "lamp"})
	require.NoError(t, err)

	got, err := svc.Matches(ctx, alice, match.Options{MinScore: match.DefaultMinScore, MaxResults: match.DefaultMaxResults})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bike.ID, got[0].Item.ID)
	assert.False(t, got[0].Reverse)
	assert.True(t, got[1].Reverse)

	single, err := svc.WishMatches(ctx, alice, wish.ID)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, bike.ID, single[0].Item.ID)

	_, err = svc.WishMatches(ctx, bob, wish.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)
}
