package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents the structured claims carried by a bearer token
type AuthClaims interface {
	Subject() string
	Name() string
	TokenID() string
	Roles() []string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	Username  string   `json:"name,omitempty"`
	RoleNames []string `json:"roles,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Name returns the username claim
func (c *JWTClaims) Name() string {
	return c.Username
}

// TokenID returns the unique token identifier, fresh per issuance
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Roles returns the role claims. Order carries no meaning, role claims
// are a set for authorization purposes.
func (c *JWTClaims) Roles() []string {
	return c.RoleNames
}

// HasRole checks if the token carries a specific role claim
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.RoleNames {
		if r == role {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a fresh jti so two tokens minted for the same
// identity are never byte identical.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
