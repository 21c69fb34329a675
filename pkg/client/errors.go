package client

import (
	"errors"
	"fmt"

	"github.com/scribedesk/scribe/pkg/domain"
)

// HTTPError is a failed backend response converted into a Go error.
type HTTPError struct {
	StatusCode int
	Message    string
	ErrorType  domain.ErrorType
	// Incomplete marks the no-response sentinel; see Response.Incomplete.
	Incomplete bool
}

func (e *HTTPError) Error() string {
	if e.Incomplete {
		return "request failed: " + e.Message
	}
	if e.ErrorType != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.ErrorType, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the
// given status code that came from the backend.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return !httpErr.Incomplete && httpErr.StatusCode == code
	}
	return false
}

// IsIncomplete reports whether err stems from a request that got no usable
// response.
func IsIncomplete(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Incomplete
}
