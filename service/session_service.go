package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codeventure/warden/core"
	"github.com/codeventure/warden/ports"
)

// SessionService orchestrates registration, login, token rotation, logout and
// access-token authentication. All state lives in the injected directory and
// registry; the service itself only holds configuration.
type SessionService struct {
	directory ports.Directory
	hasher    ports.Hasher
	tokenizer ports.Tokenizer
	registry  ports.Registry
	events    ports.EventPublisher
	logger    *zap.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSessionService creates a new session service with the given dependencies.
func NewSessionService(
	directory ports.Directory,
	hasher ports.Hasher,
	tokenizer ports.Tokenizer,
	registry ports.Registry,
	events ports.EventPublisher,
	logger *zap.Logger,
	accessTTL, refreshTTL time.Duration,
) *SessionService {
	return &SessionService{
		directory:  directory,
		hasher:     hasher,
		tokenizer:  tokenizer,
		registry:   registry,
		events:     events,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a principal and issues its first token pair. The welcome
// email is handed to the worker pipeline; a publish failure is logged and
// never fails the registration.
func (s *SessionService) Register(ctx context.Context, username, email, password string) (*core.TokenPair, error) {
	email = normalizeEmail(email)

	existing, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		s.logger.Warn("registration with taken email", zap.String("email", email))
		return nil, core.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	principal, err := s.directory.Create(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return nil, core.ErrEmailTaken
		}
		return nil, fmt.Errorf("create principal: %w", err)
	}

	pair, err := s.issuePair(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishUserRegistered(ctx, principal.Email); err != nil {
		s.logger.Warn("failed to publish registration event",
			zap.String("email", principal.Email), zap.Error(err))
	}

	s.logger.Info("principal registered", zap.String("subject", principal.ID))
	return pair, nil
}

// Login authenticates with email and password. Unknown email, provider-only
// account and wrong password all return the identical ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*core.TokenPair, error) {
	email = normalizeEmail(email)

	principal, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if principal == nil || !principal.HasPassword() {
		s.logger.Warn("failed login attempt", zap.String("email", email))
		return nil, core.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(principal.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", email))
		return nil, core.ErrInvalidCredentials
	}

	return s.issuePair(ctx, principal.ID)
}

// LoginWithProvider authenticates a principal asserted by an identity
// provider, creating a password-less account on first sight.
func (s *SessionService) LoginWithProvider(ctx context.Context, email, name string) (*core.TokenPair, error) {
	email = normalizeEmail(email)

	principal, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if principal == nil {
		principal, err = s.directory.Create(ctx, name, email, "")
		if err != nil {
			return nil, fmt.Errorf("create provider principal: %w", err)
		}
		s.logger.Info("provider principal created", zap.String("subject", principal.ID))
	}

	return s.issuePair(ctx, principal.ID)
}

// Refresh rotates a refresh token: the presented jti must still be active,
// is revoked on use, and a fresh pair with a new jti is issued. A consumed
// token fails ErrInvalidToken on any later use.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	session, err := s.tokenizer.RefreshTokenToSession(refreshToken)
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	active, err := s.registry.IsActive(ctx, session.RefreshID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !active {
		s.logger.Warn("refresh with inactive jti",
			zap.String("subject", session.SubjectID), zap.String("jti", session.RefreshID))
		return nil, core.ErrInvalidToken
	}

	if err := s.registry.Revoke(ctx, session.RefreshID); err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	return s.issuePair(ctx, session.SubjectID)
}

// Logout revokes the refresh token's jti. The token is decoded without
// verification so that expired or already-revoked tokens can still be
// cleaned up; the operation succeeds regardless.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.tokenizer.DecodeUnverified(refreshToken)
	if err != nil || session.RefreshID == "" {
		// Nothing recoverable to revoke.
		return nil
	}

	if err := s.registry.Revoke(ctx, session.RefreshID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.Info("refresh token revoked", zap.String("jti", session.RefreshID))
	return nil
}

// Authenticate verifies a bearer access token and returns the subject id.
// Stateless: the registry is never consulted, so access tokens are not
// revocable before their natural expiry.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return "", core.ErrUnauthenticated
	}

	return session.SubjectID, nil
}

// Principal looks up a principal by id for the HTTP boundary.
func (s *SessionService) Principal(ctx context.Context, id string) (*core.Principal, error) {
	principal, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup principal: %w", err)
	}
	if principal == nil {
		return nil, core.ErrPrincipalNotFound
	}
	return principal, nil
}

// issuePair signs a new access/refresh pair and registers the refresh jti.
// Registration fails closed: if the registry cannot confirm the entry, no
// tokens are handed out, preserving revocability.
func (s *SessionService) issuePair(ctx context.Context, subjectID string) (*core.TokenPair, error) {
	now := time.Now()
	session := &core.Session{
		SubjectID:     subjectID,
		RefreshID:     uuid.New().String(),
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
	}

	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.registry.Register(ctx, session.RefreshID, subjectID, time.Until(session.RefreshExpiry)); err != nil {
		return nil, fmt.Errorf("issue pair: %w", err)
	}

	return &core.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RefreshTTL:   s.refreshTTL,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
