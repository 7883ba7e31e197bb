package fetcher

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreachable indicates that every fetch attempt for a URL failed,
// including the scheme-swapped variant. Callers detect total fetch
// failure with errors.Is(err, ErrUnreachable) without inspecting
// individual attempts.
var ErrUnreachable = errors.New("target unreachable")

// AttemptError records one failed fetch attempt.
type AttemptError struct {
	// URL is the exact URL variant that was attempted.
	URL string

	// Err is the error the attempt returned.
	Err error
}

// Error returns the attempt as "url: error".
func (a AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", a.URL, a.Err)
}

// FetchError aggregates every failed attempt for a single fetch.
// Attempts are ordered: the URL as requested first, the scheme-swapped
// variant second when it was tried.
type FetchError struct {
	// URL is the originally requested URL.
	URL string

	// Attempts lists each variant tried, in order.
	Attempts []AttemptError
}

// Error summarizes all attempts in one line.
func (e *FetchError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("fetch %s: no attempts made", e.URL)
	}

	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, strings.Join(parts, "; "))
}

// Is matches ErrUnreachable so the sentinel works through errors.Is.
func (e *FetchError) Is(target error) bool {
	return target == ErrUnreachable
}

// Unwrap exposes the last attempt's error for errors.Is/As chains,
// so context cancellation and timeouts stay detectable.
func (e *FetchError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// StatusError reports a server-side error response (HTTP 5xx).
// Statuses below 500 are retrievable content and never produce an error.
type StatusError struct {
	// StatusCode is the HTTP status the server returned.
	StatusCode int
}

// Error returns a human-readable description of the status failure.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}
