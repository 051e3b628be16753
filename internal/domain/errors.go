package domain

import "errors"

// ErrStudentNotFound is returned by any StudentRepository when the requested
// record does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrNotConfigured indicates a required secret or binding is missing from the
// environment. Handlers surface it as a distinct, user-actionable error
// rather than a generic 500.
var ErrNotConfigured = errors.New("not configured")
