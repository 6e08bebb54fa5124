package errx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "not found"
)

// Kind classifies a failure stage so callers can react without string matching.
type Kind string

const (
	KindNotAuthorized         Kind = "not_authorized"
	KindTokenRefreshFailed    Kind = "token_refresh_failed"
	KindNoCalendarFound       Kind = "no_calendar_found"
	KindBookingFailed         Kind = "booking_failed"
	KindToolParseFailed       Kind = "tool_parse_failed"
	KindMissingRequiredFields Kind = "missing_required_fields"
	KindUpstreamUnavailable   Kind = "upstream_unavailable"
	KindInternal              Kind = "internal"
)

// Error wraps an underlying error with a kind, an HTTP status and a safe message.
type Error struct {
	Kind    Kind
	Err     error
	Status  int
	Message string
	// Fields names the absent keys for KindMissingRequiredFields.
	Fields []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Kind:    KindInternal,
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NewKind creates an Error tagged with a failure kind.
func NewKind(kind Kind, err error, status int, message string) *Error {
	return &Error{
		Kind:    kind,
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NotAuthorized reports a missing or unusable stored credential.
func NotAuthorized(userID string) *Error {
	return NewKind(KindNotAuthorized, nil, http.StatusUnauthorized,
		fmt.Sprintf("user %s is not authorized", userID))
}

// TokenRefreshFailed reports a non-success response from the token endpoint.
func TokenRefreshFailed(detail string) *Error {
	return NewKind(KindTokenRefreshFailed, nil, http.StatusBadGateway,
		fmt.Sprintf("failed to refresh token: %s", detail))
}

// NoCalendarFound reports an empty calendar listing for the user.
func NoCalendarFound() *Error {
	return NewKind(KindNoCalendarFound, nil, http.StatusBadGateway,
		"no calendar found for user")
}

// BookingFailed reports a non-2xx booking response, carrying the raw body.
func BookingFailed(body string) *Error {
	return NewKind(KindBookingFailed, nil, http.StatusBadGateway, body)
}

// ToolParseFailed reports planner output with no extractable structured call.
func ToolParseFailed(err error) *Error {
	return NewKind(KindToolParseFailed, err, http.StatusUnprocessableEntity,
		"no structured tool call found in planner output")
}

// MissingRequiredFields names exactly the absent keys of a structured call.
func MissingRequiredFields(fields []string) *Error {
	return &Error{
		Kind:    KindMissingRequiredFields,
		Status:  http.StatusUnprocessableEntity,
		Message: fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", ")),
		Fields:  fields,
	}
}

// UpstreamUnavailable reports a failed language model or vector index call.
func UpstreamUnavailable(stage string, err error) *Error {
	return NewKind(KindUpstreamUnavailable, err, http.StatusBadGateway,
		fmt.Sprintf("%s unavailable", stage))
}

// KindOf extracts the Kind from an error chain, KindInternal when untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
