package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims identifies the caller of the HTTP API. The user ID travels in the
// registered "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)
