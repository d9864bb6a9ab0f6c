package model

import (
	"fmt"
	"strings"
	"time"
)

// HTTPError wraps an HTTP status code returned by a search provider.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Attempt records the outcome of running one strategy.
type Attempt struct {
	Strategy string
	Outcome  string // success, empty, timeout, error
	Results  int
	Duration time.Duration
	Err      error
}

// NotFoundError is returned when every strategy in a cascade soft-failed.
// It echoes the query so callers can tell the user what was tried.
type NotFoundError struct {
	Query    LocationQuery
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Strategy
	}
	return fmt.Sprintf("no jobs found with any search strategy (tried %s)", strings.Join(names, ", "))
}

// ValidationError reports malformed caller input. Field is empty when the
// problem is not tied to a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
