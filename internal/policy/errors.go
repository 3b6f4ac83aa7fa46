package policy

import "net/http"

// Kind classifies a denied or failed request.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindForbidden
	KindNotFound
	KindConflict
	KindBadRequest
	KindInternal
)

func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad request"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages for BadRequest.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Status() int { return e.Kind.Status() }

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg) }
func Forbidden(msg string) *Error { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error { return newError(KindConflict, msg) }
func BadRequest(msg string) *Error { return newError(KindBadRequest, msg) }

func Invalid(fields map[string][]string) *Error {
	return &Error{Kind: KindBadRequest, Message: "Validation error", Fields: fields}
}
