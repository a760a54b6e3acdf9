// Package service holds the application operations behind the HTTP API.
// Services validate input, enforce ownership and combine repositories.
package service

import (
	"errors"
	"strings"

	"campusmarket/trading/internal/model"
)

var (
	ErrImagesUnavailable     = errors.New("image storage is not available")
	ErrEmailDomain           = errors.New("email domain is not allowed")
	ErrEmailExists           = errors.New("email already registered")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrNoPendingRegistration = errors.New("no pending registration for this email")
	ErrCodeExpired           = errors.New("verification code expired")
	ErrInvalidCode           = errors.New("invalid verification code")
	ErrTooManyAttempts       = errors.New("too many wrong codes, register again")
	ErrWishExists            = errors.New("another wishlist entry already links this item")
	ErrInvalidDisplayName    = errors.New("display name is required")
	ErrInvalidMonth          = errors.New("month must be between 1 and 12")
	ErrEmptyImage            = errors.New("image is empty")
)

// Actor is the authenticated caller.
type Actor struct {
	UID   string
	Email string
}

// owns reports whether the item was posted by a.
func (a Actor) owns(item *model.Item) bool {
	if item.OwnerUID != "" {
		return item.OwnerUID == a.UID
	}
	return item.OwnerEmail != "" && strings.EqualFold(item.OwnerEmail, a.Email)
}
