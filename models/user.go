package models

import "time"

// Role is what a principal may do once logged in
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is an authenticated identity
type Principal struct {
	Email string `bson:"email" json:"email"`
	Role  Role   `bson:"role" json:"role"`
	Name  string `bson:"name" json:"name"`
}

// StoredPrincipal is a principal record with its password hash
type StoredPrincipal struct {
	Principal    `bson:",inline"`
	PasswordHash string    `bson:"password" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Session is a logged-in principal, alive from login until logout or expiry
type Session struct {
	ID        string    `json:"id"`
	User      Principal `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
