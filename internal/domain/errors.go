package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream signals a failed call to the remote DPE search API.
	ErrUpstream = errors.New("upstream search failed")
	// ErrQuotaExceeded signals an exhausted upstream request budget.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals a filter that cannot be sent to the search API.
	ErrInvalidQuery = errors.New("invalid query")
)

// UpstreamError wraps ErrUpstream with the HTTP status returned by the remote API.
// Status is 0 when the request never got a response (network error, timeout).
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", ErrUpstream.Error(), e.Err)
		}
		return ErrUpstream.Error()
	}
	return fmt.Sprintf("%s: status %d", ErrUpstream.Error(), e.Status)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// NewUpstreamError creates an upstream error for the given status and cause.
func NewUpstreamError(status int, err error) error {
	return &UpstreamError{Status: status, Err: err}
}
