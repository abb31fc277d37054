package auth

import "github.com/golang-jwt/jwt/v5"

// WriterClaims is the token payload accepted by the API
type WriterClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the subject claim
func (c *WriterClaims) GetUserID() string {
	return c.Subject
}
