package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for backend errors.
var (
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrNotFound     = errors.New("backend: not found")
	ErrUpstream     = errors.New("backend: upstream error")
	ErrCircuitOpen  = errors.New("backend: circuit open")
	ErrTransport    = errors.New("backend: transport error")
	ErrDecode       = errors.New("backend: decode response")
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s %s returned %d", e.Method, e.Path, e.Code)
}

// Unwrap maps the status code to a sentinel kind.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUpstream
	}
}

// clientFault reports whether err is a request the backend rejected on its
// merits, which says nothing about backend health.
func clientFault(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
}
