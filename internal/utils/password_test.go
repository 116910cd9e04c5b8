package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4) // minimum cost keeps the test fast
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "s3cret-pasS"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same-password", 4)
	require.NoError(t, err)
	h2, err := HashPassword("same-password", 4)
	require.NoError(t, err)

	// Different salts produce different digests; both still verify.
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword(h1, "same-password"))
	assert.True(t, VerifyPassword(h2, "same-password"))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	// A corrupt stored hash must be a clean false, never a panic.
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "whatever"))
	assert.False(t, VerifyPassword("", "whatever"))
}
