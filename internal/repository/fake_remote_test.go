package repository_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"campusmarket/trading/internal/model"
)

var errRemoteDown = errors.New("connection refused")

// fakeRemote is an in-memory Remote that can be switched off.
type fakeRemote struct {
	mu       sync.Mutex
	down     bool
	items    map[string]model.Item
	users    map[string]model.User
	wishlist map[string]model.WishlistItem
	messages []model.ChatMessage
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		items:    map[string]model.Item{},
		users:    map[string]model.User{},
		wishlist: map[string]model.WishlistItem{},
	}
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeRemote) ListItems(ctx context.Context, limit int) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := make([]model.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRemote) GetItem(ctx context.Context, id string) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	it, ok := f.items[id]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	return &it, nil
}

func (f *fakeRemote) CreateItem(ctx context.Context, item model.Item) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	f.items[item.ID] = item
	return &item, nil
}

func (f *fakeRemote) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	it, ok := f.items[id]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	patch.Apply(&it)
	f.items[id] = it
	return &it, nil
}

func (f *fakeRemote) DeleteItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRemote) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	u, ok := f.users[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeRemote) CreateUser(ctx context.Context, user model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	user.PasswordHash = ""
	f.users[user.Email] = user
	return nil
}

func (f *fakeRemote) UpdateUser(ctx context.Context, email string, patch model.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	u := f.users[email]
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.EmailVerified != nil {
		u.EmailVerified = *patch.EmailVerified
	}
	f.users[email] = u
	return nil
}

func (f *fakeRemote) DeleteUser(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	delete(f.users, email)
	return nil
}

func (f *fakeRemote) ListWishlist(ctx context.Context, limit int) ([]model.WishlistItem, error) {
	return f.filterWishlist(func(model.WishlistItem) bool { return true })
}

func (f *fakeRemote) ListWishlistByUser(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	return f.filterWishlist(func(w model.WishlistItem) bool { return w.UserID == userID })
}

func (f *fakeRemote) filterWishlist(keep func(model.WishlistItem) bool) ([]model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := []model.WishlistItem{}
	for _, w := range f.wishlist {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeRemote) GetWishlistItem(ctx context.Context, id string) (*model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	w, ok := f.wishlist[id]
	if !ok {
		return nil, model.ErrWishNotFound
	}
	return &w, nil
}

func (f *fakeRemote) CreateWishlistItem(ctx context.Context, w model.WishlistItem) (*model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	f.wishlist[w.ID] = w
	return &w, nil
}

func (f *fakeRemote) UpdateWishlistItem(ctx context.Context, id string, patch model.WishlistPatch) (*model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	w, ok := f.wishlist[id]
	if !ok {
		return nil, model.ErrWishNotFound
	}
	patch.Apply(&w)
	f.wishlist[id] = w
	return &w, nil
}

func (f *fakeRemote) DeleteWishlistItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	delete(f.wishlist, id)
	return nil
}

func (f *fakeRemote) CreateMessage(ctx context.Context, msg model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeRemote) ListMessagesForUser(ctx context.Context, uid string) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := []model.ChatMessage{}
	for _, m := range f.messages {
		if m.SenderUID == uid || m.ReceiverUID == uid {
			out = append(out, m)
		}
	}
	return out, nil
}
