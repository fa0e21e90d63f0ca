package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint rejects a write
// (duplicate email, duplicate enrollment edge).
var ErrDuplicate = errors.New("already exists")
