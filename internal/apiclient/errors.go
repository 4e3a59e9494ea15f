package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/greta-mvc/flowmap/internal/registry"
)

var (
	// ErrNetwork wraps transport failures.
	ErrNetwork = errors.New("network error")
	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("decode response")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode  int
	Code        string
	Description string
	Path        string
}

func (e *StatusError) Error() string {
	msg := e.Code
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return fmt.Sprintf("%s: HTTP %d %s", e.Path, e.StatusCode, msg)
}

// Is makes a 404 match registry.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == registry.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
