package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the identity provider.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// SenderIdentity returns the identity recorded on audit entries, or "" when unknown.
func (c *JWTClaims) SenderIdentity() string {
	if c == nil {
		return ""
	}
	if c.Email != "" {
		return c.Email
	}
	return c.UserID
}
