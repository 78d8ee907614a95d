package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Callers test
// with errors.Is.
var ErrNotFound = errors.New("not found")
