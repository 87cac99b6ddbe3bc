package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an error for callers and for the HTTP status it maps to.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindUnavailable   Kind = "dependency_unavailable"
	KindSerialization Kind = "serialization_failure"
	KindBadRequest    Kind = "bad_request"
	KindUnauthorized  Kind = "unauthorized"
	KindForbidden     Kind = "forbidden"
	KindInternal      Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindNotFound:      http.StatusNotFound,
	KindConflict:      http.StatusConflict,
	KindUnavailable:   http.StatusServiceUnavailable,
	KindSerialization: http.StatusInternalServerError,
	KindBadRequest:    http.StatusBadRequest,
	KindUnauthorized:  http.StatusUnauthorized,
	KindForbidden:     http.StatusForbidden,
	KindInternal:      http.StatusInternalServerError,
}

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(kind Kind, message string, err error) *Error {
	return &Error{
		Code:    kindStatus[kind],
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...), nil)
}

func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...), nil)
}

func Unavailable(message string, err error) *Error {
	return New(KindUnavailable, message, err)
}

func Serialization(message string, err error) *Error {
	return New(KindSerialization, message, err)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// Sentinels for errors.Is checks; they match by kind only.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrUnavailable   = &Error{Kind: KindUnavailable}
	ErrSerialization = &Error{Kind: KindSerialization}
	ErrBadRequest    = &Error{Kind: KindBadRequest}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrForbidden     = &Error{Kind: KindForbidden}
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// From returns err as an *Error, wrapping anything else as internal.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// Respond writes err as {"error": message} with its status code. Internal
// errors hide their cause from the client.
func Respond(c *gin.Context, err error) {
	appErr := From(err)
	msg := appErr.Message
	if appErr.Kind == KindInternal || appErr.Kind == KindSerialization {
		msg = "Internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": msg, "kind": appErr.Kind})
}

// ErrorMiddleware renders errors attached with c.Error by handlers that did
// not write a response themselves.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		Respond(c, c.Errors.Last().Err)
	}
}
