package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/contacts-api/internal/config"
	"github.com/iliyamo/contacts-api/internal/model"
	"github.com/iliyamo/contacts-api/internal/repository"
	"github.com/iliyamo/contacts-api/internal/utils"
)

// UserStore is the persistent user storage the service consults on cache
// misses and for credential checks.  *repository.UserRepo implements it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	UpdateRefreshToken(ctx context.Context, email, token string) error
	RotateRefreshToken(ctx context.Context, email, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, email string) error
}

// UserCache is the TTL key-value cache of user snapshots keyed by email.
// It is never authoritative; a miss falls through to the store.
type UserCache interface {
	Get(ctx context.Context, email string) (model.User, bool, error)
	Set(ctx context.Context, u model.User, ttl time.Duration) error
	Delete(ctx context.Context, email string) error
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Service orchestrates credential verification, token issuance and
// cache-first user resolution.  It holds only configuration and injected
// collaborators, so one instance is shared by all request goroutines
// without locking.
type Service struct {
	users      UserStore
	cache      UserCache
	codec      *utils.TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	cacheTTL   time.Duration
}

// New wires a Service from its collaborators and the process configuration.
func New(users UserStore, cache UserCache, codec *utils.TokenCodec, cfg config.Config, cacheCfg config.UserCacheConfig) *Service {
	return &Service{
		users:      users,
		cache:      cache,
		codec:      codec,
		accessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		emailTTL:   time.Duration(cfg.EmailTTLHours) * time.Hour,
		cacheTTL:   cacheCfg.TTL,
	}
}

// Login verifies the email/password pair and returns a fresh token pair,
// persisting the refresh token on the user record.  The cache is not
// consulted: login needs the canonical confirmed flag and password hash.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, infra("load user", err)
	}
	if !u.Confirmed {
		return TokenPair{}, ErrNotConfirmed
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.UpdateRefreshToken(ctx, u.Email, pair.RefreshToken); err != nil {
		return TokenPair{}, infra("save refresh token", err)
	}
	return pair, nil
}

// ResolveCurrentUser validates a bearer access token and returns the user
// it belongs to.  The cache is checked first; on a hit the store is not
// touched and the entry's TTL is not refreshed.  On a miss the store is
// queried once and the cache populated.
func (s *Service) ResolveCurrentUser(ctx context.Context, bearer string) (model.User, error) {
	email, err := s.codec.Decode(bearer, utils.ScopeAccess)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if u, ok, err := s.cache.Get(ctx, email); err != nil {
		return model.User{}, infra("cache get", err)
	} else if ok {
		return u, nil
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUnauthenticated
		}
		return model.User{}, infra("load user", err)
	}
	if err := s.cache.Set(ctx, u, s.cacheTTL); err != nil {
		return model.User{}, infra("cache set", err)
	}
	return u, nil
}

// Refresh rotates a refresh token: the presented token must decode with
// scope=refresh and match the stored token byte for byte.  The compare and
// the overwrite are one conditional store update, so a given refresh token
// can be redeemed at most once.  A mismatch clears the stored token,
// forcing a re-login, since it signals reuse of a superseded token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	email, err := s.codec.Decode(refreshToken, utils.ScopeRefresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthenticated
		}
		return TokenPair{}, infra("load user", err)
	}

	pair, err := s.issuePair(email)
	if err != nil {
		return TokenPair{}, err
	}
	ok, err := s.users.RotateRefreshToken(ctx, email, refreshToken, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, infra("rotate refresh token", err)
	}
	if !ok {
		if err := s.users.ClearRefreshToken(ctx, email); err != nil {
			return TokenPair{}, infra("clear refresh token", err)
		}
		return TokenPair{}, ErrUnauthenticated
	}
	return pair, nil
}

// Logout clears the stored refresh token for the user and drops the cache
// entry so a revoked session does not keep serving a stale snapshot.
func (s *Service) Logout(ctx context.Context, u model.User) error {
	if err := s.users.ClearRefreshToken(ctx, u.Email); err != nil {
		return infra("clear refresh token", err)
	}
	if err := s.cache.Delete(ctx, u.Email); err != nil {
		return infra("cache delete", err)
	}
	return nil
}

// IssueEmailToken creates the verification token embedded in the
// confirmation link sent to a new account.
func (s *Service) IssueEmailToken(email string) (string, error) {
	return s.codec.Issue(email, utils.ScopeEmail, s.emailTTL)
}

// ConfirmEmail redeems a verification token.  The token must carry
// scope=email_verification; access and refresh tokens are rejected.
// Confirming an already-confirmed account is a no-op success.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	email, err := s.codec.Decode(token, utils.ScopeEmail)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return infra("load user", err)
	}
	if u.Confirmed {
		return nil
	}
	if err := s.users.ConfirmEmail(ctx, email); err != nil {
		return infra("confirm email", err)
	}
	// Drop any cached snapshot still carrying confirmed=false.
	if err := s.cache.Delete(ctx, email); err != nil {
		return infra("cache delete", err)
	}
	return nil
}

// RefreshCacheEntry rewrites the cache snapshot after a profile change such
// as an avatar update, so protected requests observe it immediately.
func (s *Service) RefreshCacheEntry(ctx context.Context, u model.User) error {
	if err := s.cache.Set(ctx, u, s.cacheTTL); err != nil {
		return infra("cache set", err)
	}
	return nil
}

func (s *Service) issuePair(email string) (TokenPair, error) {
	access, err := s.codec.Issue(email, utils.ScopeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(email, utils.ScopeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func infra(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInfrastructure, op, err)
}
