package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/codeventure/warden/adapters/hasher"
	"github.com/codeventure/warden/adapters/registry"
	"github.com/codeventure/warden/adapters/tokenizer"
	"github.com/codeventure/warden/core"
)

// memDirectory is a map-backed Directory fake.
type memDirectory struct {
	mu      sync.Mutex
	byEmail map[string]*core.Principal
}

func newMemDirectory() *memDirectory {
	return &memDirectory{byEmail: make(map[string]*core.Principal)}
}

func (d *memDirectory) FindByEmail(ctx context.Context, email string) (*core.Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.byEmail[email]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (d *memDirectory) FindByID(ctx context.Context, id string) (*core.Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.byEmail {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *memDirectory) Create(ctx context.Context, username, email, passwordHash string) (*core.Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byEmail[email]; ok {
		return nil, core.ErrEmailTaken
	}
	p := &core.Principal{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	d.byEmail[email] = p
	copied := *p
	return &copied, nil
}

// stubPublisher records published registration events.
type stubPublisher struct {
	mu     sync.Mutex
	emails []string
	fail   error
}

func (p *stubPublisher) PublishUserRegistered(ctx context.Context, email string) error {
	if p.fail != nil {
		return p.fail
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emails = append(p.emails, email)
	return nil
}

func (p *stubPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.emails...)
}

// downRegistry simulates an unreachable registry.
type downRegistry struct{}

func (downRegistry) Register(ctx context.Context, jti, subjectID string, ttl time.Duration) error {
	return core.ErrRegistryUnavailable
}

func (downRegistry) IsActive(ctx context.Context, jti string) (bool, error) {
	return false, core.ErrRegistryUnavailable
}

func (downRegistry) Revoke(ctx context.Context, jti string) error {
	return core.ErrRegistryUnavailable
}

type fixture struct {
	svc       *SessionService
	directory *memDirectory
	registry  *registry.MemoryRegistry
	publisher *stubPublisher
	tokenizer *tokenizer.JWTTokenizer
}

func newFixture(t *testing.T, accessTTL time.Duration) *fixture {
	t.Helper()

	dir := newMemDirectory()
	reg := registry.NewMemoryRegistry()
	pub := &stubPublisher{}
	tk := tokenizer.NewJWTTokenizer([]byte("test-secret")).(*tokenizer.JWTTokenizer)

	svc := NewSessionService(
		dir,
		hasher.NewBcryptHasher(bcrypt.MinCost),
		tk,
		reg,
		pub,
		zap.NewNop(),
		accessTTL,
		7*24*time.Hour,
	)

	return &fixture{svc: svc, directory: dir, registry: reg, publisher: pub, tokenizer: tk}
}

func (f *fixture) refreshJTI(t *testing.T, refreshToken string) string {
	t.Helper()
	session, err := f.tokenizer.DecodeUnverified(refreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, session.RefreshID)
	return session.RefreshID
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)

	pair, err := f.svc.Login(ctx, "alice@x.com", "pw123secure")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = f.svc.Login(ctx, "alice@x.com", "some-other-password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "mallory", "alice@x.com", "different-pw")
	assert.ErrorIs(t, err, core.ErrEmailTaken)

	// The first principal is unaffected.
	_, err = f.svc.Login(ctx, "alice@x.com", "pw123secure")
	assert.NoError(t, err)
}

func TestRegisterPublishesWelcomeEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	_, err := f.svc.Register(ctx, "alice", "Alice@X.com", "pw123secure")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice@x.com"}, f.publisher.published())
}

func TestRegisterSucceedsWhenPublishFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)
	f.publisher.fail = assert.AnError

	pair, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLoginFailureModesIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	_, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)
	_, err = f.svc.LoginWithProvider(ctx, "sso-only@x.com", "SSO User")
	require.NoError(t, err)

	// Unknown email, provider-only account, wrong password: identical error.
	_, unknownErr := f.svc.Login(ctx, "nobody@x.com", "pw123secure")
	_, providerErr := f.svc.Login(ctx, "sso-only@x.com", "pw123secure")
	_, wrongErr := f.svc.Login(ctx, "alice@x.com", "wrong")

	assert.ErrorIs(t, unknownErr, core.ErrInvalidCredentials)
	assert.ErrorIs(t, providerErr, core.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, core.ErrInvalidCredentials)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	initial, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)
	oldJTI := f.refreshJTI(t, initial.RefreshToken)

	rotated, err := f.svc.Refresh(ctx, initial.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, initial.AccessToken, rotated.AccessToken)

	newJTI := f.refreshJTI(t, rotated.RefreshToken)
	assert.NotEqual(t, oldJTI, newJTI)

	// Old jti revoked, new one registered.
	active, err := f.registry.IsActive(ctx, oldJTI)
	require.NoError(t, err)
	assert.False(t, active)
	active, err = f.registry.IsActive(ctx, newJTI)
	require.NoError(t, err)
	assert.True(t, active)

	// Replay of the consumed token fails.
	_, err = f.svc.Refresh(ctx, initial.RefreshToken)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	pair, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	pair, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)
	jti := f.refreshJTI(t, pair.RefreshToken)

	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))

	active, err := f.registry.IsActive(ctx, jti)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	// Logout is idempotent; a second call on the revoked token still succeeds.
	assert.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))
}

func TestLogoutMalformedToken(t *testing.T) {
	f := newFixture(t, 30*time.Minute)

	assert.NoError(t, f.svc.Logout(context.Background(), "garbage"))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	pair, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)

	subjectID, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	principal, err := f.svc.Principal(ctx, subjectID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", principal.Email)

	// A refresh token is not a valid bearer credential.
	_, err = f.svc.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestAuthenticateExpiredAccessToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, -time.Minute) // issues already-expired access tokens

	pair, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestLoginWithProviderCreatesPasswordlessAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	pair, err := f.svc.LoginWithProvider(ctx, "Bob@X.com", "Bob")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	principal, err := f.directory.FindByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.False(t, principal.HasPassword())

	// Second provider login reuses the principal.
	_, err = f.svc.LoginWithProvider(ctx, "bob@x.com", "Bob")
	require.NoError(t, err)
	subjectID, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, subjectID)
}

func TestIssuanceFailsClosedWhenRegistryDown(t *testing.T) {
	ctx := context.Background()

	dir := newMemDirectory()
	svc := NewSessionService(
		dir,
		hasher.NewBcryptHasher(bcrypt.MinCost),
		tokenizer.NewJWTTokenizer([]byte("test-secret")),
		downRegistry{},
		&stubPublisher{},
		zap.NewNop(),
		30*time.Minute,
		7*24*time.Hour,
	)

	_, err := svc.Register(ctx, "alice", "alice@x.com", "pw123secure")
	assert.ErrorIs(t, err, core.ErrRegistryUnavailable)

	// The principal exists but no tokens were handed out; login also fails
	// closed while the registry is down.
	_, err = svc.Login(ctx, "alice@x.com", "pw123secure")
	assert.ErrorIs(t, err, core.ErrRegistryUnavailable)
}

func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 30*time.Minute)

	// Register -> registry holds jti1 for alice.
	initial, err := f.svc.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	jti1 := f.refreshJTI(t, initial.RefreshToken)

	aliceID, err := f.svc.Authenticate(ctx, initial.AccessToken)
	require.NoError(t, err)

	subject, ok := f.registry.Subject(jti1)
	require.True(t, ok)
	assert.Equal(t, aliceID, subject)

	// Refresh -> new access token, jti1 gone, jti2 live.
	rotated, err := f.svc.Refresh(ctx, initial.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, initial.AccessToken, rotated.AccessToken)

	jti2 := f.refreshJTI(t, rotated.RefreshToken)
	_, ok = f.registry.Subject(jti1)
	assert.False(t, ok)
	_, ok = f.registry.Subject(jti2)
	assert.True(t, ok)

	// Logout -> jti2 gone, refresh with it fails.
	require.NoError(t, f.svc.Logout(ctx, rotated.RefreshToken))
	_, ok = f.registry.Subject(jti2)
	assert.False(t, ok)

	_, err = f.svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
