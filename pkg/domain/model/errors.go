package model

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Error kinds attached to errors as goerr tags. Errors without any of these
// tags are treated as dependency or internal failures.
var (
	ErrTagValidation      = goerr.NewTag("validation")
	ErrTagNotFound        = goerr.NewTag("not_found")
	ErrTagForbidden       = goerr.NewTag("forbidden")
	ErrTagUnauthenticated = goerr.NewTag("unauthenticated")
	ErrTagRateLimited     = goerr.NewTag("rate_limited")
)

// Sentinel errors for domain operations
var (
	ErrIssueNotFound        = goerr.New("issue not found", goerr.T(ErrTagNotFound))
	ErrNotificationNotFound = goerr.New("notification not found", goerr.T(ErrTagNotFound))
	ErrConcurrentUpdate     = goerr.New("issue was modified concurrently")
)

// HasErrorTag reports whether err or any error it wraps carries tag. Tags
// are matched by name so that goerr errors behind plain %w wrappers are found
// too.
func HasErrorTag(err error, tag fmt.Stringer) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if slices.Contains(goerr.Tags(e), tag.String()) {
			return true
		}
	}
	return false
}

// RateLimitedError reports that the requester exceeded an action limit
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter.Round(time.Second))
}

// NewRateLimitedError returns a rate limited error tagged with ErrTagRateLimited
func NewRateLimitedError(retryAfter time.Duration) error {
	return goerr.Wrap(&RateLimitedError{RetryAfter: retryAfter}, "rate limit exceeded",
		goerr.V("retry_after", retryAfter),
		goerr.T(ErrTagRateLimited))
}

// Unauthenticated returns an error for a request without a valid identity
func Unauthenticated(msg string, opts ...goerr.Option) error {
	return goerr.New(msg, append(opts, goerr.T(ErrTagUnauthenticated))...)
}

// Forbidden returns an error for a request the identity may not perform
func Forbidden(msg string, opts ...goerr.Option) error {
	return goerr.New(msg, append(opts, goerr.T(ErrTagForbidden))...)
}
