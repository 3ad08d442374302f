package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyQuery is returned when a prompt is blank after trimming.
	ErrEmptyQuery = errors.New("prompt is empty")

	// ErrEmptyResponse means a provider succeeded but returned no usable content.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrRateLimited means the provider reported a rate-limit status.
	ErrRateLimited = errors.New("provider rate-limited")

	// ErrNotFound covers unknown symbols, unresolvable contracts and missing voices.
	ErrNotFound = errors.New("not found")
)

// StatusError carries the provider HTTP status alongside its detail message.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("provider error (http %d)", e.Status)
	}
	return fmt.Sprintf("provider error (http %d): %s", e.Status, e.Detail)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == http.StatusTooManyRequests
}

// Transient reports whether err is worth retrying: rate-limit,
// server-side failure or timeout. Auth and bad-request errors are not.
func Transient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= http.StatusInternalServerError
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) {
		return timeout.Timeout()
	}
	return errors.Is(err, ErrRateLimited)
}
