package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the identity payload embedded in a signed token: who the
// token is for, their role, and the validity window. Immutable once signed.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserRole UserRole `json:"role,omitempty"`
}

// Subject returns the subject claim, the user id the token was issued for
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// SubjectUUID parses the subject claim as a user id
func (c *TokenClaims) SubjectUUID() (uuid.UUID, error) {
	return uuid.Parse(c.RegisteredClaims.Subject)
}

// Role returns the role claim
func (c *TokenClaims) Role() UserRole {
	return c.UserRole
}

// HasRole checks if the claims carry the given role
func (c *TokenClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
