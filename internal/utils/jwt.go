package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Scope restricts what purpose a signed token may be used for.  A token
// presented with the wrong scope is rejected even when its signature is
// valid, so a refresh token can never pass as an access token.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	ScopeEmail   Scope = "email_verification"
)

// Distinguishable decode failures.  Handlers are free to present all of
// them as 401, but logging and tests rely on telling them apart.
var (
	// ErrTokenInvalid covers malformed structure and bad signatures.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired means the signature verified but the token is past
	// its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenScope means the token is cryptographically valid but carries
	// a different scope than the caller expects.
	ErrTokenScope = errors.New("invalid scope for token")
)

type tokenClaims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, expiring tokens carrying a subject
// and a scope.  The signing key and algorithm are fixed at construction;
// Decode only accepts the configured algorithm, so the alg header of an
// incoming token is never trusted.
//
// A zero now func defaults to time.Now; tests inject a fixed clock.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// hmacMethods is the allow-list of signing algorithms.  Anything else,
// including other HMAC variants, is a configuration error.
var hmacMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS512": jwt.SigningMethodHS512,
}

// NewTokenCodec builds a codec for the given secret and algorithm name.
func NewTokenCodec(secret, alg string) (*TokenCodec, error) {
	method, ok := hmacMethods[alg]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	return &TokenCodec{secret: []byte(secret), method: method, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads the current time from
// now.  Used by tests to issue tokens in the past.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue builds a signed token for subject with issued-at = now and
// expiry = now + ttl.
func (c *TokenCodec) Issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	t := jwt.NewWithClaims(c.method, tokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return t.SignedString(c.secret)
}

// Decode verifies signature and expiry and returns the embedded subject.
// It fails with ErrTokenInvalid on a malformed or forged token,
// ErrTokenExpired past expiry, and ErrTokenScope when the embedded scope
// differs from want.  Scope is checked only after the signature verifies,
// so ErrTokenScope is never reported for a token we did not sign.
func (c *TokenCodec) Decode(token string, want Scope) (string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.Scope != want {
		return "", ErrTokenScope
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
