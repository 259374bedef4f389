package domain

import (
	"slices"
	"time"
)

type User struct {
	ID           string
	Username     string // unique, case-sensitive
	PasswordHash string // argon2id PHC string, never leaves the service layer
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Public returns a copy safe to hand to callers: no hash, own roles slice.
func (u User) Public() User {
	u.PasswordHash = ""
	u.Roles = slices.Clone(u.Roles)
	return u
}
