package kvstore

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound         = errors.New("key not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrClosed           = errors.New("store closed")
)
