package model

import "time"

type User struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PendingRegistration holds a sign-up until its email code is confirmed.
type PendingRegistration struct {
	Email        string
	UID          string
	DisplayName  string
	PasswordHash string
	Code         string
	ExpiresAt    time.Time
	// Attempts counts wrong codes entered so far.
	Attempts int
}

type UserPatch struct {
	DisplayName   *string `json:"display_name,omitempty"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}
