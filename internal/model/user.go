package model

import "time"

// UserID uniquely identifies a registered user
type UserID string

// User is a registered account. PasswordHash is a bcrypt hash, never the plaintext.
type User struct {
	ID           UserID
	Username     string
	Email        string // always lowercase
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Username length bounds
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
)
