package gen

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies a generation collaborator failure. The engine never
// retries these itself; only the resilience wrapper in this package acts on
// the classification.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureAuthInvalid
	FailureRateLimited
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuthInvalid:
		return "auth_invalid"
	case FailureRateLimited:
		return "rate_limited"
	case FailureMalformed:
		return "generation_malformed"
	default:
		return "unknown"
	}
}

// APIError is a classified failure from a generation API call.
type APIError struct {
	Kind    FailureKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation failed (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

// Kind extracts the failure classification from an error chain.
func Kind(err error) FailureKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return FailureUnknown
}

// classifyStatus maps an HTTP response status onto the failure taxonomy.
func classifyStatus(status int, body string) *APIError {
	kind := FailureUnknown
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = FailureAuthInvalid
	case status == http.StatusTooManyRequests:
		kind = FailureRateLimited
	}
	if len(body) > 300 {
		body = body[:300]
	}
	return &APIError{Kind: kind, Status: status, Message: body}
}

func malformed(format string, args ...interface{}) *APIError {
	return &APIError{Kind: FailureMalformed, Message: fmt.Sprintf(format, args...)}
}
