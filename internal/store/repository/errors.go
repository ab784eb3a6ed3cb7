package repository

import "errors"

// ErrNotFound marks a lookup that matched no rows. Handlers map it to a
// 404 instead of a 500.
var ErrNotFound = errors.New("not found")
