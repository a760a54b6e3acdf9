package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/trading/internal/auth"
	"campusmarket/trading/internal/email"
	"campusmarket/trading/internal/handler"
	"campusmarket/trading/internal/repository"
	"campusmarket/trading/internal/repository/sqlite"
	"campusmarket/trading/internal/service"
	"campusmarket/trading/internal/service/supabase"
)

type testServer struct {
	*httptest.Server
	store *sqlite.Store
}

// newTestServer wires the real services over a temporary mirror. The remote
// answers every call with 503, so every request is served by the fallback.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	remote := supabase.NewClient(supabase.Config{URL: down.URL, AnonKey: "anon"})
	items := repository.NewItemRepository(remote, store, nil)
	wishes := repository.NewWishlistRepository(remote, store, nil)
	users := repository.NewUserRepository(remote, store, nil)
	chat := repository.NewChatRepository(remote, store, nil)

	tokens := auth.NewJWTManager("test-secret", time.Hour)
	mailer := email.LogService{}
	achievements := service.NewAchievementService(store, nil)

	h := handler.NewHandler(handler.Services{
		Auth:            service.NewAuthService(users, tokens, mailer, "@ucdconnect.ie", nil),
		Items:           service.NewItemService(items, remote, nil),
		Wishlist:        service.NewWishlistService(wishes, items, mailer, achievements, nil),
		Chat:            service.NewChatService(chat, users),
		Recommendations: service.NewRecommendationService(items, wishes, store, nil),
		Achievements:    achievements,
	}, tokens, nil)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// signUp registers and verifies addr, returning a bearer token.
func (s *testServer) signUp(t *testing.T, addr string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{"email": addr, "password": "hunter22"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	pending, err := s.store.GetPendingRegistration(context.Background(), addr)
	require.NoError(t, err)

	resp = s.do(t, http.MethodPost, "/v1/auth/verify", "", map[string]string{"email": addr, "code": pending.Code})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[service.Session](t, resp)
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(body))
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp(t, "alice@ucdconnect.ie")

	resp := srv.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]any](t, resp)
	assert.Equal(t, "alice@ucdconnect.ie", me["email"])

	resp = srv.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "alice@ucdconnect.ie", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "Alice@UCDconnect.ie", "password": "hunter22"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{"email": "alice@ucdconnect.ie", "password": "hunter22"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{"email": "mallory@gmail.com", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/v1/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp = srv.do(t, http.MethodGet, "/v1/items", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.signUp(t, "alice@ucdconnect.ie")
	bob := srv.signUp(t, "bob@ucdconnect.ie")

	resp := srv.do(t, http.MethodPost, "/v1/items", alice, map[string]any{
		"title": "Data Structures textbook", "price": 25, "category": "图书文具",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp = srv.do(t, http.MethodGet, "/v1/items?q=textbook", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = srv.do(t, http.MethodPatch, "/v1/items/"+id, bob, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodPatch, "/v1/items/"+id, alice, map[string]any{"price": 20})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 20, decode[map[string]any](t, resp)["price"])

	resp = srv.do(t, http.MethodGet, "/v1/items/mine", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = srv.do(t, http.MethodDelete, "/v1/items/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodDelete, "/v1/items/"+id, alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/v1/items/"+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp(t, "alice@ucdconnect.ie")

	resp := srv.do(t, http.MethodPost, "/v1/items", token, map[string]any{"title": "", "price": 5, "category": "其他"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, decode[map[string]string](t, resp)["error"])

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/wishlist", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/v1/wishlist", token, map[string]any{"title": "Lamp", "item_id": "item-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = srv.do(t, http.MethodPost, "/v1/wishlist", token, map[string]any{"title": "Desk", "item_id": "item-2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	desk := decode[map[string]any](t, resp)
	resp = srv.do(t, http.MethodPatch, "/v1/wishlist/"+desk["id"].(string), token, map[string]any{"item_id": "item-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/v1/matches?limit=ten", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/v1/recommendations/textbooks?student_id=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/v1/recommendations/image", token, map[string]string{"image": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestChatAndAchievements(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.signUp(t, "alice@ucdconnect.ie")
	bob := srv.signUp(t, "bob@ucdconnect.ie")

	resp := srv.do(t, http.MethodPost, "/v1/messages", alice, map[string]string{
		"receiver_email": "bob@ucdconnect.ie", "content": "Is the lamp still available?",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/v1/conversations", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convs := decode[[]map[string]any](t, resp)
	require.Len(t, convs, 1)
	assert.Equal(t, "alice@ucdconnect.ie", convs[0]["other_user_email"])

	resp = srv.do(t, http.MethodGet, "/v1/achievements", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, resp)
	assert.EqualValues(t, 18, got["total"])
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/v1/health", "", nil)

	resp := srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/v1/health",status="200"}`)
}
