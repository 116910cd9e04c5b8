// Package auth implements the authentication and session core: credential
// verification, issuing and validating access/refresh/email tokens, and the
// cache-first resolution of the current user behind every protected
// endpoint.
package auth

import "errors"

// The closed set of failures the service can report.  Handlers map these
// onto HTTP status codes; nothing here is retried automatically.
var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password.  The two cases are deliberately indistinguishable so the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotConfirmed means the credentials are valid but the account's
	// email was never confirmed.
	ErrNotConfirmed = errors.New("email not confirmed")

	// ErrUnauthenticated covers a missing, expired, malformed or
	// scope-mismatched token, and a refresh token that no longer matches
	// the stored one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInfrastructure means the store or cache is unreachable.  It is
	// never downgraded to a credential error: a client must not be told
	// "bad credentials" because a downstream dependency is out.
	ErrInfrastructure = errors.New("infrastructure failure")
)
