package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contacts-api/internal/config"
	"github.com/iliyamo/contacts-api/internal/model"
	"github.com/iliyamo/contacts-api/internal/repository"
	"github.com/iliyamo/contacts-api/internal/utils"
)

// fakeStore is an in-memory UserStore recording call counts so tests can
// assert on the cache-first contract.
type fakeStore struct {
	users    map[string]*model.User
	getCalls int
	failWith error
}

func newFakeStore(users ...model.User) *fakeStore {
	s := &fakeStore{users: map[string]*model.User{}}
	for i := range users {
		u := users[i]
		s.users[u.Email] = &u
	}
	return s
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.getCalls++
	if s.failWith != nil {
		return model.User{}, s.failWith
	}
	u, ok := s.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (s *fakeStore) UpdateRefreshToken(_ context.Context, email, token string) error {
	if s.failWith != nil {
		return s.failWith
	}
	if u, ok := s.users[email]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (s *fakeStore) RotateRefreshToken(_ context.Context, email, current, next string) (bool, error) {
	if s.failWith != nil {
		return false, s.failWith
	}
	u, ok := s.users[email]
	if !ok || u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (s *fakeStore) ClearRefreshToken(_ context.Context, email string) error {
	if u, ok := s.users[email]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (s *fakeStore) ConfirmEmail(_ context.Context, email string) error {
	if u, ok := s.users[email]; ok {
		u.Confirmed = true
	}
	return nil
}

// fakeCache is an in-memory UserCache.  TTLs are recorded, not enforced.
type fakeCache struct {
	entries  map[string]model.User
	lastTTL  time.Duration
	setCalls int
	failWith error
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]model.User{}} }

func (c *fakeCache) Get(_ context.Context, email string) (model.User, bool, error) {
	if c.failWith != nil {
		return model.User{}, false, c.failWith
	}
	u, ok := c.entries[email]
	return u, ok, nil
}

func (c *fakeCache) Set(_ context.Context, u model.User, ttl time.Duration) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.setCalls++
	c.lastTTL = ttl
	c.entries[u.Email] = u
	return nil
}

func (c *fakeCache) Delete(_ context.Context, email string) error {
	delete(c.entries, email)
	return nil
}

// testEnv bundles a service wired to fakes with a movable clock.
type testEnv struct {
	svc   *Service
	store *fakeStore
	cache *fakeCache
	codec *utils.TokenCodec
	now   *time.Time
}

func newTestEnv(t *testing.T, users ...model.User) *testEnv {
	t.Helper()
	base, err := utils.NewTokenCodec("0123456789abcdef0123456789abcdef", "HS256")
	require.NoError(t, err)

	now := time.Now().UTC()
	codec := base.WithClock(func() time.Time { return now })

	store := newFakeStore(users...)
	cache := newFakeCache()
	cfg := config.Config{AccessTTLMin: 15, RefreshTTLDays: 7, EmailTTLHours: 24}
	svc := New(store, cache, codec, cfg, config.UserCacheConfig{TTL: 300 * time.Second})
	return &testEnv{svc: svc, store: store, cache: cache, codec: codec, now: &now}
}

func (e *testEnv) advance(d time.Duration) { *e.now = e.now.Add(d) }

func confirmedUser(t *testing.T, email, password string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return model.User{ID: 1, Username: "ann", Email: email, PasswordHash: hash, Confirmed: true}
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t, confirmedUser(t, "a@example.com", "pass-123"))

	pair, err := env.svc.Login(context.Background(), "a@example.com", "pass-123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	subject, err := env.codec.Decode(pair.AccessToken, utils.ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", subject)

	// The issued refresh token is persisted on the user record.
	assert.Equal(t, pair.RefreshToken, env.store.users["a@example.com"].RefreshToken)
}

func TestLogin_FailureKinds(t *testing.T) {
	u := confirmedUser(t, "a@example.com", "pass-123")
	unconfirmed := confirmedUser(t, "b@example.com", "pass-123")
	unconfirmed.Confirmed = false
	env := newTestEnv(t, u, unconfirmed)

	// Unknown email and wrong password report the same error kind so the
	// endpoint cannot be used to enumerate accounts.
	_, err := env.svc.Login(context.Background(), "nobody@example.com", "pass-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(context.Background(), "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(context.Background(), "b@example.com", "pass-123")
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestLogin_StoreOutageIsNotCredentialFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.failWith = errors.New("connection refused")

	_, err := env.svc.Login(context.Background(), "a@example.com", "pass-123")
	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveCurrentUser_CacheMissThenHit(t *testing.T) {
	env := newTestEnv(t, confirmedUser(t, "a@example.com", "pass-123"))
	tok, err := env.codec.Issue("a@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	// Miss: store consulted once, cache populated with the configured TTL.
	u, err := env.svc.ResolveCurrentUser(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, 1, env.store.getCalls)
	assert.Equal(t, 1, env.cache.setCalls)
	assert.Equal(t, 300*time.Second, env.cache.lastTTL)

	// Hit: the store is not touched again and the entry is not rewritten.
	u, err = env.svc.ResolveCurrentUser(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, 1, env.store.getCalls)
	assert.Equal(t, 1, env.cache.setCalls)
}

func TestResolveCurrentUser_TokenFailures(t *testing.T) {
	env := newTestEnv(t, confirmedUser(t, "a@example.com", "pass-123"))

	refresh, err := env.codec.Issue("a@example.com", utils.ScopeRefresh, time.Hour)
	require.NoError(t, err)
	_, err = env.svc.ResolveCurrentUser(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	expired, err := env.codec.Issue("a@example.com", utils.ScopeAccess, 15*time.Minute)
	require.NoError(t, err)
	env.advance(16 * time.Minute)
	_, err = env.svc.ResolveCurrentUser(context.Background(), expired)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.svc.ResolveCurrentUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveCurrentUser_UnknownSubject(t *testing.T) {
	env := newTestEnv(t)
	tok, err := env.codec.Issue("ghost@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	_, err = env.svc.ResolveCurrentUser(context.Background(), tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveCurrentUser_CacheOutage(t *testing.T) {
	env := newTestEnv(t, confirmedUser(t, "a@example.com", "pass-123"))
	tok, err := env.codec.Issue("a@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	env.cache.failWith = errors.New("connection refused")
	_, err = env.svc.ResolveCurrentUser(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestRefresh_RotationIsSingleUse(t *testing.T) {
	env := newTestEnv(t, confirmedUser(t, "a@example.com", "pass-123"))

	pair, err := env.svc.Login(context.Background(), "a@example.com", "pass-123")
	require.NoError(t, err)

	// Advance the clock so the rotated token has a different issued-at
	// and therefore a different string.
	env.advance(time.Second)

	next, err := env.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, next.RefreshToken, env.store.users["a@example.com"].RefreshToken)

	// The previous token was superseded: a second redemption fails and
	// terminates the session entirely.
	env.advance(time.Second)
	_, err = env.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, env.store.users["a@example.com"].RefreshToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	env := newTestEnv(t, confirmedUser(t, "a@example.com", "pass-123"))
	access, err := env.codec.Issue("a@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	_, err = env.svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogout_ClearsSessionAndCache(t *testing.T) {
	u := confirmedUser(t, "a@example.com", "pass-123")
	env := newTestEnv(t, u)

	pair, err := env.svc.Login(context.Background(), "a@example.com", "pass-123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)
	require.NoError(t, env.cache.Set(context.Background(), u, time.Minute))

	require.NoError(t, env.svc.Logout(context.Background(), u))
	assert.Empty(t, env.store.users["a@example.com"].RefreshToken)
	_, ok, _ := env.cache.Get(context.Background(), "a@example.com")
	assert.False(t, ok)
}

func TestConfirmEmail(t *testing.T) {
	u := confirmedUser(t, "a@example.com", "pass-123")
	u.Confirmed = false
	env := newTestEnv(t, u)

	tok, err := env.svc.IssueEmailToken("a@example.com")
	require.NoError(t, err)

	require.NoError(t, env.svc.ConfirmEmail(context.Background(), tok))
	assert.True(t, env.store.users["a@example.com"].Confirmed)

	// Redeeming again is a no-op success.
	require.NoError(t, env.svc.ConfirmEmail(context.Background(), tok))
}

func TestConfirmEmail_RequiresEmailScope(t *testing.T) {
	u := confirmedUser(t, "a@example.com", "pass-123")
	u.Confirmed = false
	env := newTestEnv(t, u)

	access, err := env.codec.Issue("a@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	err = env.svc.ConfirmEmail(context.Background(), access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.False(t, env.store.users["a@example.com"].Confirmed)
}
