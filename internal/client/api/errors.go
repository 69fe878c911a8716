package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnavailable        = errors.New("server unavailable")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status  int
	Message string
	Path    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: %d %s", e.Path, e.Status, e.Message)
}

// ServerMessage is the message field of the response body, possibly empty.
func (e *HTTPError) ServerMessage() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
