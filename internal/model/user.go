package model

import "time"

// User represents an application user record as stored in the `users`
// table.  PasswordHash is the bcrypt digest of the signup password.
// RefreshToken holds the most recently issued refresh token; a NULL value
// means no active session.  Confirmed flips to true exactly once when the
// email-verification token is redeemed.
//
// The struct doubles as the cache snapshot: it is JSON-serialized into
// redis by the user cache, so every field carries a json tag.  The password
// hash and refresh token never leave the service; handlers expose separate
// response types.
type User struct {
	ID           uint64    `json:"id"`            // users.id
	Username     string    `json:"username"`      // users.username
	Email        string    `json:"email"`         // users.email (unique)
	PasswordHash string    `json:"password_hash"` // users.password_hash
	Confirmed    bool      `json:"confirmed"`     // users.confirmed
	Avatar       string    `json:"avatar"`        // users.avatar (empty if unset)
	RefreshToken string    `json:"refresh_token"` // users.refresh_token (empty if NULL)
	CreatedAt    time.Time `json:"created_at"`    // users.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // users.updated_at
}
