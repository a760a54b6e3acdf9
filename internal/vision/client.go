// Package vision labels product photos through the Baidu image
// classification API.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"campusmarket/trading/internal/model"
)

const defaultBaseURL = "https://aip.baidubce.com"

var ErrNotConfigured = errors.New("image recognition is not configured")

// APIError is an error reported in a Baidu response body.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("baidu error %d: %s", e.Code, e.Message)
}

type Config struct {
	APIKey    string
	SecretKey string
	BaseURL   string
}

type Client struct {
	client *http.Client
	config Config

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		client: &http.Client{Timeout: 30 * time.Second},
		config: cfg,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// accessToken returns the cached OAuth token, refreshing it a minute before
// it expires.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", c.config.APIKey)
	q.Set("client_secret", c.config.SecretKey)
	endpoint := c.config.BaseURL + "/oauth/2.0/token?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return "", fmt.Errorf("failed to fetch access token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("failed to fetch access token: %s %s", tr.Error, tr.Description)
	}

	ttl := time.Duration(tr.ExpiresIn)*time.Second - time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(ttl)
	return c.token, nil
}

type classifyResponse struct {
	APIError
	Result []struct {
		Keyword string  `json:"keyword"`
		Score   float64 `json:"score"`
		Root    string  `json:"root"`
	} `json:"result"`
}

// Baidu reports rejected access tokens in the response body.
const (
	codeInvalidToken = 110
	codeExpiredToken = 111
)

func (e *APIError) tokenRejected() bool {
	return e.Code == codeInvalidToken || e.Code == codeExpiredToken
}

// Classify returns the labels Baidu recognises in image, ranked by Rank.
// A token the API rejects is dropped and the request is retried once with a
// fresh one.
func (c *Client) Classify(ctx context.Context, image []byte) ([]model.Label, error) {
	if c.config.APIKey == "" || c.config.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	labels, err := c.classify(ctx, image)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.tokenRejected() {
		labels, err = c.classify(ctx, image)
	}
	return labels, err
}

func (c *Client) classify(ctx context.Context, image []byte) ([]model.Label, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(image))
	endpoint := c.config.BaseURL + "/rest/2.0/image-classify/v2/advanced_general?access_token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var cr classifyResponse
	if err := c.do(req, &cr); err != nil {
		return nil, err
	}
	if cr.Code != 0 {
		apiErr := cr.APIError
		if apiErr.tokenRejected() {
			c.dropToken(token)
		}
		return nil, &apiErr
	}

	labels := make([]model.Label, 0, len(cr.Result))
	for _, r := range cr.Result {
		labels = append(labels, model.Label{Keyword: r.Keyword, Root: r.Root, Confidence: r.Score})
	}
	return Rank(labels), nil
}

// dropToken forgets token unless another request has already replaced it.
func (c *Client) dropToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token == token {
		c.token = ""
		c.tokenExpiry = time.Time{}
	}
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
