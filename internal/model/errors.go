package model

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrWishNotFound    = errors.New("wishlist item not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrForbidden       = errors.New("not the owner")
	ErrInvalidTitle    = errors.New("title is required")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidRange    = errors.New("max price must not be below min price")
	ErrEmptyMessage    = errors.New("message content is required")
	ErrNoReceiver      = errors.New("receiver is required")
)
