package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies every failure the client can surface.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
	KindNetwork
	KindTimeout
)

// Sentinels allow errors.Is checks against a classified *Error.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrTimeout      = errors.New("timeout")
	ErrUnknown      = errors.New("unknown error")
)

// Default user-facing messages per kind.
const (
	MessageDefault      = "An unexpected error occurred"
	MessageNetwork      = "Network error. Please check your connection."
	MessageTimeout      = "Request timed out. Please try again."
	MessageUnauthorized = "You are not authorized to access this resource"
	MessageForbidden    = "Access forbidden. You don't have permission."
	MessageNotFound     = "Resource not found"
	MessageValidation   = "Validation error. Please check your input."
	MessageServer       = "Server error. Please try again later."
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "ValidationError"
	case KindServer:
		return "ServerError"
	case KindNetwork:
		return "NetworkError"
	case KindTimeout:
		return "TimeoutError"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrUnknown
	}
}

func (k Kind) defaultMessage() string {
	switch k {
	case KindUnauthorized:
		return MessageUnauthorized
	case KindForbidden:
		return MessageForbidden
	case KindNotFound:
		return MessageNotFound
	case KindValidation:
		return MessageValidation
	case KindServer:
		return MessageServer
	case KindNetwork:
		return MessageNetwork
	case KindTimeout:
		return MessageTimeout
	default:
		return MessageDefault
	}
}

// Error is the classified failure returned for non-2xx responses and
// transport problems.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code, zero for transport failures.
	Status int
	// Fields carries field-level validation messages keyed by field name.
	Fields map[string]string
	Err    error
}

func newError(kind Kind, status int, message string, cause error) *Error {
	if strings.TrimSpace(message) == "" {
		message = kind.defaultMessage()
	}
	return &Error{Kind: kind, Status: status, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.defaultMessage()
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.Kind.sentinel()
}

// KindOf reports the classified kind of err, KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is a classified 401.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}
