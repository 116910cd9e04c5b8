package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contacts-api/internal/auth"
	"github.com/iliyamo/contacts-api/internal/config"
	"github.com/iliyamo/contacts-api/internal/model"
	"github.com/iliyamo/contacts-api/internal/repository"
	"github.com/iliyamo/contacts-api/internal/utils"
)

type stubStore struct {
	user model.User
	err  error
}

func (s *stubStore) GetByEmail(context.Context, string) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	if s.user.Email == "" {
		return model.User{}, repository.ErrNotFound
	}
	return s.user, nil
}

func (s *stubStore) UpdateRefreshToken(context.Context, string, string) error { return nil }
func (s *stubStore) RotateRefreshToken(context.Context, string, string, string) (bool, error) {
	return true, nil
}
func (s *stubStore) ClearRefreshToken(context.Context, string) error { return nil }
func (s *stubStore) ConfirmEmail(context.Context, string) error      { return nil }

type noopCache struct{}

func (noopCache) Get(context.Context, string) (model.User, bool, error)   { return model.User{}, false, nil }
func (noopCache) Set(context.Context, model.User, time.Duration) error    { return nil }
func (noopCache) Delete(context.Context, string) error                    { return nil }

func newAuthService(t *testing.T, store auth.UserStore) (*auth.Service, *utils.TokenCodec) {
	t.Helper()
	codec, err := utils.NewTokenCodec("0123456789abcdef0123456789abcdef", "HS256")
	require.NoError(t, err)
	cfg := config.Config{AccessTTLMin: 15, RefreshTTLDays: 7, EmailTTLHours: 24}
	svc := auth.New(store, noopCache{}, codec, cfg, config.UserCacheConfig{TTL: time.Minute})
	return svc, codec
}

func doRequest(svc *auth.Service, authorization string) (*httptest.ResponseRecorder, model.User, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen model.User
	var ok bool
	handler := BearerAuth(svc)(func(c echo.Context) error {
		seen, ok = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, seen, ok
}

func TestBearerAuth_ValidToken(t *testing.T) {
	store := &stubStore{user: model.User{ID: 7, Email: "a@example.com", Confirmed: true}}
	svc, codec := newAuthService(t, store)
	tok, err := codec.Issue("a@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	rec, seen, ok := doRequest(svc, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), seen.ID)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	svc, _ := newAuthService(t, &stubStore{})

	rec, _, ok := doRequest(svc, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestBearerAuth_BadToken(t *testing.T) {
	svc, _ := newAuthService(t, &stubStore{})

	rec, _, ok := doRequest(svc, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestBearerAuth_StoreOutageIs503(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	svc, codec := newAuthService(t, store)
	tok, err := codec.Issue("a@example.com", utils.ScopeAccess, time.Minute)
	require.NoError(t, err)

	rec, _, _ := doRequest(svc, "Bearer "+tok)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
