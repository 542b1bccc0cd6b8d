package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert collides with a uniqueness
// constraint. Duplicate detection relies on the constraint alone; there is
// no lookup-then-insert window.
var ErrDuplicate = errors.New("duplicate record")
