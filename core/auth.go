package core

import "time"

// Principal is an account known to the user directory. PasswordHash is empty
// for accounts created through an identity provider; such accounts cannot log
// in with a password.
type Principal struct {
	ID           string    // canonical identity key, the only identifier embedded in tokens
	Email        string    // unique lookup key, mutable, never placed in a token
	Username     string    // display name
	PasswordHash string    // bcrypt hash, empty for provider-only accounts
	CreatedAt    time.Time
}

// HasPassword reports whether the principal can authenticate with a password.
func (p *Principal) HasPassword() bool {
	return p.PasswordHash != ""
}

// Session carries the claims shared by an access/refresh token pair.
type Session struct {
	SubjectID     string // principal ID
	RefreshID     string // jti of the refresh token, the registry lookup key
	IssuedAt      time.Time
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// TokenPair is the result of a successful registration, login or refresh.
// RefreshTTL is the max-age the HTTP boundary must put on the refresh cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}
