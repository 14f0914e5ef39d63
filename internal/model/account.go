package model

import "time"

// Roles recognised by the dashboard.  Admins work the back office tables,
// operators run the pump terminal.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool { return r == RoleAdmin || r == RoleOperator }

// LandingPath returns the page a signed-in user of the given role lands on.
// Unknown roles land on the login page.
func LandingPath(role string) string {
	switch role {
	case RoleAdmin:
		return "/penjualan"
	case RoleOperator:
		return "/pembelian"
	}
	return "/login"
}

// Account represents a dashboard user as stored in the `users` table.
//
// Fields:
//
//	ID           – UUID primary key.
//	Name         – full name shown in the navbar.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash of the password.
//	Role         – admin or operator.
//	IsApproved   – accounts cannot log in until an admin approves them.
//	CreatedAt    – signup timestamp (UTC).
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsApproved   bool      `json:"isApproved"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored, only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
