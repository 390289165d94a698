// Package fault defines the error taxonomy shared across the service.
// The transport layer maps these onto responses; nothing here knows about
// HTTP status codes.
package fault

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers both genuinely absent rows and cross-tenant access.
	// The two are intentionally indistinguishable so a caller cannot probe
	// for the existence of another tenant's rows.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is for role failures that must be distinguishable from
	// absence, e.g. a non-admin attempting an admin action.
	ErrForbidden = errors.New("forbidden")

	// ErrTemplateNotFound is returned when a named email template is missing
	// or inactive.
	ErrTemplateNotFound = errors.New("email template not found")

	// ErrRetryExhausted marks an email whose delivery failed terminally.
	ErrRetryExhausted = errors.New("delivery retries exhausted")
)

// NotFound wraps ErrNotFound with the entity kind, e.g. "job 42: not found".
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a description of the denied action.
func Forbidden(action string) error {
	return fmt.Errorf("admin access required to %s: %w", action, ErrForbidden)
}

// ValidationError reports rejected input. Allowed, when set, names the full
// accepted value set and is included in the message.
type ValidationError struct {
	Field   string
	Reason  string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s: %s (must be one of: %s)", e.Field, e.Reason, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DeliveryError is a transient transport failure. It feeds the retry state
// machine rather than corrupting subsystem state.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsDelivery reports whether err is a transient delivery failure.
func IsDelivery(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
