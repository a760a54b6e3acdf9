package supabase

import (
	"fmt"
	"time"

	"campusmarket/trading/internal/model"
)

// APIError is the PostgREST error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
}

type itemRow struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Story       *string `json:"story"`
	ImageURL    *string `json:"image_url"`
	PhoneNumber string  `json:"phone_number"`
	OwnerUID    string  `json:"owner_uid"`
	OwnerEmail  string  `json:"owner_email"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (r itemRow) toItem() model.Item {
	return model.Item{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price,
		Description: deref(r.Description),
		Category:    deref(r.Category),
		Story:       deref(r.Story),
		ImageURL:    deref(r.ImageURL),
		PhoneNumber: r.PhoneNumber,
		OwnerUID:    r.OwnerUID,
		OwnerEmail:  r.OwnerEmail,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

// createItemRequest omits timestamps; the database fills them.
type createItemRequest struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Story       *string `json:"story"`
	ImageURL    *string `json:"image_url"`
	PhoneNumber string  `json:"phone_number"`
	OwnerUID    string  `json:"owner_uid"`
	OwnerEmail  string  `json:"owner_email"`
}

func newCreateItemRequest(item model.Item) createItemRequest {
	return createItemRequest{
		ID:          item.ID,
		Title:       item.Title,
		Price:       item.Price,
		Description: nullable(item.Description),
		Category:    nullable(item.Category),
		Story:       nullable(item.Story),
		ImageURL:    nullable(item.ImageURL),
		PhoneNumber: item.PhoneNumber,
		OwnerUID:    item.OwnerUID,
		OwnerEmail:  item.OwnerEmail,
	}
}

type userRow struct {
	Email         string  `json:"email"`
	UID           string  `json:"uid"`
	DisplayName   *string `json:"display_name"`
	EmailVerified bool    `json:"email_verified"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func (r userRow) toUser() model.User {
	return model.User{
		UID:           r.UID,
		Email:         r.Email,
		DisplayName:   deref(r.DisplayName),
		EmailVerified: r.EmailVerified,
		CreatedAt:     parseTimestamp(r.CreatedAt),
		UpdatedAt:     parseTimestamp(r.UpdatedAt),
	}
}

type createUserRequest struct {
	Email         string  `json:"email"`
	UID           string  `json:"uid"`
	DisplayName   *string `json:"display_name"`
	EmailVerified bool    `json:"email_verified"`
}

type wishlistRow struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	UserEmail        string  `json:"user_email"`
	Title            string  `json:"title"`
	Category         *string `json:"category"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	TargetPrice      float64 `json:"target_price"`
	ItemID           *string `json:"item_id"`
	EnablePriceAlert bool    `json:"enable_price_alert"`
	Description      *string `json:"description"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func (r wishlistRow) toWishlistItem() model.WishlistItem {
	return model.WishlistItem{
		ID:               r.ID,
		UserID:           r.UserID,
		UserEmail:        r.UserEmail,
		Title:            r.Title,
		Category:         deref(r.Category),
		MinPrice:         r.MinPrice,
		MaxPrice:         r.MaxPrice,
		TargetPrice:      r.TargetPrice,
		ItemID:           deref(r.ItemID),
		EnablePriceAlert: r.EnablePriceAlert,
		Description:      deref(r.Description),
		CreatedAt:        parseTimestamp(r.CreatedAt),
		UpdatedAt:        parseTimestamp(r.UpdatedAt),
	}
}

type createWishlistRequest struct {
	ID               string  `json:"id,omitempty"`
	UserID           string  `json:"user_id"`
	UserEmail        string  `json:"user_email"`
	Title            string  `json:"title"`
	Category         *string `json:"category"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	TargetPrice      float64 `json:"target_price"`
	ItemID           *string `json:"item_id"`
	EnablePriceAlert bool    `json:"enable_price_alert"`
	Description      *string `json:"description"`
}

type updateItemRequest struct {
	model.ItemPatch
	UpdatedAt string `json:"updated_at"`
}

type updateWishlistRequest struct {
	model.WishlistPatch
	UpdatedAt string `json:"updated_at"`
}

type messageRow struct {
	ID            string `json:"id"`
	SenderUID     string `json:"sender_uid"`
	SenderEmail   string `json:"sender_email"`
	ReceiverUID   string `json:"receiver_uid"`
	ReceiverEmail string `json:"receiver_email"`
	Content       string `json:"content"`
	Timestamp     int64  `json:"timestamp"`
	ItemID        string `json:"item_id"`
	ItemTitle     string `json:"item_title"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999-07",
}

// parseTimestamp accepts the formats PostgREST emits for timestamp and
// timestamptz columns. Unparseable values yield the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
