package core

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for every password-login failure mode:
	// unknown email, provider-only account, or wrong password. The three cases
	// are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when a required token or cookie is missing
	// or an access token fails verification.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidToken is returned when a refresh token fails signature, kind or
	// registry checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrRegistryUnavailable is returned when the token registry cannot be
	// reached. Issuance fails closed on it.
	ErrRegistryUnavailable = errors.New("token registry unavailable")

	// ErrPrincipalNotFound is returned by directory lookups for unknown ids.
	ErrPrincipalNotFound = errors.New("principal not found")
)
