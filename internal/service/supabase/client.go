package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
)

const (
	tableItems    = "items"
	tableUsers    = "users"
	tableWishlist = "wishlist"
	tableMessages = "chat_messages"
)

type Config struct {
	URL      string
	AnonKey  string
	Bucket   string
	CacheTTL time.Duration
}

type cachedItems struct {
	rows   []itemRow
	expiry time.Time
}

// Client talks to the PostgREST and storage endpoints of a hosted project.
type Client struct {
	client *http.Client
	config Config

	cacheMu   sync.RWMutex
	cacheData map[int]cachedItems
}

func NewClient(cfg Config) *Client {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "item_images"
	}
	return &Client{
		client: &http.Client{
			Transport: &AuthTransport{
				APIKey: cfg.AnonKey,
				Base:   http.DefaultTransport,
			},
			Timeout: 60 * time.Second,
		},
		config:    cfg,
		cacheData: make(map[int]cachedItems),
	}
}

// AuthTransport adds the project key headers PostgREST expects.
type AuthTransport struct {
	APIKey string
	Base   http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("apikey", t.APIKey)
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br")
	if req.Body != nil && req.Body != http.NoBody {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Prefer", "return=representation")
	}
	return t.Base.RoundTrip(req)
}

func (c *Client) restURL(table string, query url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", c.config.URL, table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	if resp.Header.Get("Content-Encoding") == "br" {
		resp.Body = &readCloserWrapper{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != "" {
			return apiErr
		}
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func eq(value string) string {
	return "eq." + value
}

func selectQuery(filters map[string]string) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	for col, v := range filters {
		q.Set(col, eq(v))
	}
	return q
}

func limitQuery(q url.Values, limit int) url.Values {
	q.Set("order", "created_at.desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) invalidateItems() {
	c.cacheMu.Lock()
	c.cacheData = make(map[int]cachedItems)
	c.cacheMu.Unlock()
}

type readCloserWrapper struct {
	io.Reader
	io.Closer
}

func (r *readCloserWrapper) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (r *readCloserWrapper) Close() error {
	return r.Closer.Close()
}
