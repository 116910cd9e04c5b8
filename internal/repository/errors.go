// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the auth
// service and handlers to distinguish between failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.  The auth
// service maps it onto its own error taxonomy; contact handlers translate
// it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert collides with the unique email
// index.  Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
