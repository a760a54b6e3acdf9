package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/repository"
	"campusmarket/trading/internal/repository/postgres"
)

var (
	_ repository.Remote           = (*postgres.Store)(nil)
	_ repository.WishlistUpserter = (*postgres.Store)(nil)
)

func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := postgres.NewStore(pool)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestItemsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	created, err := store.CreateItem(ctx, model.Item{ID: id, Title: "Test lamp", Price: 12, OwnerUID: "u-test"})
	require.NoError(t, err)
	t.Cleanup(func() { store.DeleteItem(context.Background(), id) })
	assert.Equal(t, "", created.Category)
	assert.False(t, created.CreatedAt.IsZero())

	price := 10.0
	updated, err := store.UpdateItem(ctx, id, model.ItemPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.Price)
	assert.Equal(t, "Test lamp", updated.Title)

	require.NoError(t, store.DeleteItem(ctx, id))
	_, err = store.GetItem(ctx, id)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestUpsertWishlistByItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "u-" + uuid.NewString()
	itemID := uuid.NewString()

	first, err := store.UpsertWishlistByItem(ctx, model.WishlistItem{
		ID: uuid.NewString(), UserID: userID, Title: "Bike", ItemID: itemID, TargetPrice: 50,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.DeleteWishlistItem(context.Background(), first.ID) })

	second, err := store.UpsertWishlistByItem(ctx, model.WishlistItem{
		ID: uuid.NewString(), UserID: userID, Title: "Road bike", ItemID: itemID, TargetPrice: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Road bike", second.Title)
	assert.Equal(t, 40.0, second.TargetPrice)

	mine, err := store.ListWishlistByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestUpsertWishlistByItem_Concurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := "u-" + uuid.NewString()
	itemID := uuid.NewString()
	t.Cleanup(func() {
		mine, _ := store.ListWishlistByUser(context.Background(), userID)
		for _, w := range mine {
			store.DeleteWishlistItem(context.Background(), w.ID)
		}
	})

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := store.UpsertWishlistByItem(ctx, model.WishlistItem{
				ID: uuid.NewString(), UserID: userID, Title: "Desk", ItemID: itemID, TargetPrice: 30,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	mine, err := store.ListWishlistByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRunAtomic_RollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	err := store.RunAtomic(ctx, func(ctx context.Context) error {
		if _, err := store.CreateItem(ctx, model.Item{ID: id, Title: "Ghost", Price: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = store.GetItem(ctx, id)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}
