package services

import (
	"errors"
	"fmt"
	"strings"
)

// Closed set of failure kinds for the pipeline. Callers branch on these with
// errors.Is instead of matching message text.
var (
	// ErrConnection marks connection-level failures: DNS, TCP, timeouts.
	ErrConnection = errors.New("connection error")
	// ErrStatusMismatch marks responses whose HTTP status differs from the
	// expected value for the step.
	ErrStatusMismatch = errors.New("unexpected http status")
	// ErrRemoteState marks 2xx responses whose decoded body disagrees with
	// the expected remote lifecycle state.
	ErrRemoteState = errors.New("unexpected remote state")
	// ErrPrecondition marks local failures detected before any network call.
	ErrPrecondition = errors.New("precondition failed")
	// ErrConfiguration marks unusable credentials or environment selection.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrConnection
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// StatusError carries the identifying context for an HTTP status mismatch:
// the step key, expected vs actual status, and a body excerpt.
type StatusError struct {
	Step     string
	Expected int
	Actual   int
	Body     string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("step %s: expected status %d, got %d", e.Step, e.Expected, e.Actual)
	}
	return fmt.Sprintf("step %s: expected status %d, got %d: %s", e.Step, e.Expected, e.Actual, body)
}

// Unwrap ties every StatusError to the ErrStatusMismatch marker.
func (e *StatusError) Unwrap() error {
	return ErrStatusMismatch
}

// NewStatusError constructs a StatusError with the body excerpt trimmed to a
// bounded length so log lines and dumps stay readable.
func NewStatusError(step string, expected, actual int, body []byte) *StatusError {
	const maxBody = 2000
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxBody {
		excerpt = excerpt[:maxBody]
	}
	return &StatusError{Step: step, Expected: expected, Actual: actual, Body: excerpt}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
