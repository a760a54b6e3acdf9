package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// UploadImage stores body under name in the configured bucket and returns
// its public URL.
func (c *Client) UploadImage(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	objectPath := fmt.Sprintf("%s/%s", c.config.Bucket, url.PathEscape(name))
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s", c.config.URL, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	req.Header.Set("Content-Type", contentType)

	if err := c.send(req, nil); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s", c.config.URL, objectPath), nil
}
