package auth

import (
	"github.com/florista/bouquet-bff/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload is the input to MintAccessToken.
type AccessTokenPayload struct {
	UserID string
	Role   enums.UserRole
	// JTI becomes the Redis session id; empty mints a fresh uuid.
	JTI string
}

// AccessTokenClaims is the body of a BFF access token.
type AccessTokenClaims struct {
	UserID string         `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionID is the Redis session the token points at.
func (c *AccessTokenClaims) SessionID() string {
	return c.ID
}
