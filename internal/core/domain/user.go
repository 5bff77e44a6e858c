package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// AccountStatus is kept separate from the numeric trust score so that
// suspension never has to be encoded as an out-of-band score value.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models an account holder. TrustScore is recomputed by the trust score
// engine and never edited directly.
type User struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email,omitempty"`
	PasswordHash string        `json:"-"`
	Role         string        `json:"role"`
	Plan         string        `json:"plan,omitempty"`
	Status       AccountStatus `json:"status"`
	TrustScore   int           `json:"trust_score"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Suspended reports whether the account is banned from normal scoring.
func (u *User) Suspended() bool {
	return u.Status == AccountSuspended
}
