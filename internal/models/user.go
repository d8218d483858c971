package models

import "time"

// Role controls access to moderation endpoints.
type Role string

const (
	RoleBidder Role = "bidder"
	RoleAdmin  Role = "admin"
)

// User is an authenticated principal. The engine consumes users read-only;
// account mutation lives in the user service.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may call moderation operations.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
