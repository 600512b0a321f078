package service

import "errors"

// Service errors.
var (
	// ErrAnonymous is returned by operations that need a signed-in user.
	ErrAnonymous = errors.New("service: not signed in")
	// ErrNotStarted is returned before Start or after Stop.
	ErrNotStarted = errors.New("service: not started")
	// ErrNoBackend is returned by Start when no backend was configured.
	ErrNoBackend = errors.New("service: no backend configured")
)
