package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"campusmarket/trading/internal/email"
	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/repository"
	"campusmarket/trading/internal/repository/sqlite"
)

var errRemoteDown = errors.New("remote unavailable")

// downRemote fails every call, so repositories serve from the mirror.
type downRemote struct{}

func (downRemote) ListItems(context.Context, int) ([]model.Item, error) { return nil, errRemoteDown }
func (downRemote) GetItem(context.Context, string) (*model.Item, error) { return nil, errRemoteDown }
func (downRemote) CreateItem(context.Context, model.Item) (*model.Item, error) {
	return nil, errRemoteDown
}
func (downRemote) UpdateItem(context.Context, string, model.ItemPatch) (*model.Item, error) {
	return nil, errRemoteDown
}
func (downRemote) DeleteItem(context.Context, string) error { return errRemoteDown }
func (downRemote) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, errRemoteDown
}
func (downRemote) CreateUser(context.Context, model.User) error              { return errRemoteDown }
func (downRemote) UpdateUser(context.Context, string, model.UserPatch) error { return errRemoteDown }
func (downRemote) DeleteUser(context.Context, string) error                  { return errRemoteDown }
func (downRemote) ListWishlist(context.Context, int) ([]model.WishlistItem, error) {
	return nil, errRemoteDown
}
func (downRemote) ListWishlistByUser(context.Context, string) ([]model.WishlistItem, error) {
	return nil, errRemoteDown
}
func (downRemote) GetWishlistItem(context.Context, string) (*model.WishlistItem, error) {
	return nil, errRemoteDown
}
func (downRemote) CreateWishlistItem(context.Context, model.WishlistItem) (*model.WishlistItem, error) {
	return nil, errRemoteDown
}
func (downRemote) UpdateWishlistItem(context.Context, string, model.WishlistPatch) (*model.WishlistItem, error) {
	return nil, errRemoteDown
}
func (downRemote) DeleteWishlistItem(context.Context, string) error       { return errRemoteDown }
func (downRemote) CreateMessage(context.Context, model.ChatMessage) error { return errRemoteDown }
func (downRemote) ListMessagesForUser(context.Context, string) ([]model.ChatMessage, error) {
	return nil, errRemoteDown
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Mail
	err  error
}

func (m *recordingMailer) SendMail(_ context.Context, mail email.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *recordingMailer) all() []email.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Mail(nil), m.sent...)
}

type testEnv struct {
	store    *sqlite.Store
	items    *repository.ItemRepository
	wishes   *repository.WishlistRepository
	users    *repository.UserRepository
	chat     *repository.ChatRepository
	mailer   *recordingMailer
	achieves *AchievementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	remote := downRemote{}
	return &testEnv{
		store:    store,
		items:    repository.NewItemRepository(remote, store, nil),
		wishes:   repository.NewWishlistRepository(remote, store, nil),
		users:    repository.NewUserRepository(remote, store, nil),
		chat:     repository.NewChatRepository(remote, store, nil),
		mailer:   &recordingMailer{},
		achieves: NewAchievementService(store, nil),
	}
}

var (
	alice = Actor{UID: "alice", Email: "alice@ucdconnect.ie"}
	bob   = Actor{UID: "bob", Email: "bob@ucdconnect.ie"}
)
