package store

import "errors"

// ErrNotFound is returned by Load when nothing has been persisted yet.
var ErrNotFound = errors.New("store: record not found")
