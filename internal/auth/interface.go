package auth

// JWTVerifier validates bearer tokens.
// The middleware only depends on this interface so tests can inject a static key.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Invalid, expired or unsigned tokens fail with domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*WriterClaims, error)

	// Close releases any resources held by the verifier
	Close() error
}
