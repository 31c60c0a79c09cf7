package tokenizer

import "github.com/golang-jwt/jwt/v5"

// accessClaims are the standard claims for access tokens. The audience carries
// the token kind; the subject is the principal ID.
type accessClaims struct {
	jwt.RegisteredClaims
}

// refreshClaims are the standard claims for refresh tokens. The JWT ID is the
// registry lookup key.
type refreshClaims struct {
	jwt.RegisteredClaims
}
