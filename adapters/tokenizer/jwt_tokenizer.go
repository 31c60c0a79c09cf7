package tokenizer

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/codeventure/warden/core"
	"github.com/codeventure/warden/ports"
)

// Token kinds, carried in the audience claim.
const AudienceAccess = "session:access"
const AudienceRefresh = "session:refresh"

// JWTTokenizer implements the Tokenizer interface using HS256-signed JWTs
// with a shared server secret.
type JWTTokenizer struct {
	secret []byte
}

// NewJWTTokenizer creates a new JWT tokenizer signing with secret.
func NewJWTTokenizer(secret []byte) ports.Tokenizer {
	return &JWTTokenizer{secret: secret}
}

// SessionToAccessToken converts a Session to an access JWT token.
func (j *JWTTokenizer) SessionToAccessToken(session *core.Session) (string, error) {
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.SubjectID,
			ID:        uuid.New().String(), // keeps back-to-back tokens distinct
			ExpiresAt: jwt.NewNumericDate(session.AccessExpiry),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// SessionToRefreshToken converts a Session to a refresh JWT token.
func (j *JWTTokenizer) SessionToRefreshToken(session *core.Session) (string, error) {
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.SubjectID,
			ID:        session.RefreshID, // the jti tracked by the registry
			ExpiresAt: jwt.NewNumericDate(session.RefreshExpiry),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceRefresh},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// AccessTokenToSession parses and verifies an access token.
func (j *JWTTokenizer) AccessTokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, j.keyFunc, jwt.WithAudience(AudienceAccess))
	if err != nil {
		return nil, mapParseError(err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.Session{
		SubjectID:    claims.Subject,
		IssuedAt:     claims.IssuedAt.Time,
		AccessExpiry: claims.ExpiresAt.Time,
	}, nil
}

// RefreshTokenToSession parses and verifies a refresh token. The registry
// check is the caller's job.
func (j *JWTTokenizer) RefreshTokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &refreshClaims{}, j.keyFunc, jwt.WithAudience(AudienceRefresh))
	if err != nil {
		return nil, mapParseError(err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*refreshClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.Session{
		SubjectID:     claims.Subject,
		RefreshID:     claims.ID,
		IssuedAt:      claims.IssuedAt.Time,
		RefreshExpiry: claims.ExpiresAt.Time,
	}, nil
}

// DecodeUnverified extracts claims without checking signature, expiry or
// audience. Only the jti and subject are trustworthy enough for revocation.
func (j *JWTTokenizer) DecodeUnverified(tokenStr string) (*core.Session, error) {
	claims := &refreshClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, core.ErrInvalidToken
	}

	session := &core.Session{
		SubjectID: claims.Subject,
		RefreshID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.RefreshExpiry = claims.ExpiresAt.Time
	}
	return session, nil
}

// keyFunc validates the signing method and returns the shared secret.
func (j *JWTTokenizer) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return j.secret, nil
}

func mapParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return core.ErrTokenExpired
	}
	return core.ErrInvalidToken
}
