// Package apperr defines the failure taxonomy shared by the services and the
// HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Oxyrus/parish/internal/storage"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindBadRequest
	KindNotFound
	KindStorageWrite
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad request"
	case KindNotFound:
		return "not found"
	case KindStorageWrite:
		return "storage write error"
	case KindValidation:
		return "validation error"
	case KindConflict:
		return "conflict"
	default:
		return "internal error"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to callers; Err is
// kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the exported sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Message == "" && t.Err == nil
	}
	return false
}

var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrBadRequest   = &Error{Kind: KindBadRequest}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrStorageWrite = &Error{Kind: KindStorageWrite}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
)

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func StorageWrite(msg string, err error) error {
	return &Error{Kind: KindStorageWrite, Message: msg, Err: err}
}

// From classifies err. Storage sentinels map onto their kinds; anything
// unrecognised becomes a StorageWrite failure carrying msg.
func From(err error, msg string) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	case errors.Is(err, storage.ErrValidation):
		return &Error{Kind: KindValidation, Message: msg, Err: err}
	case errors.Is(err, storage.ErrConflict):
		return &Error{Kind: KindConflict, Message: msg, Err: err}
	default:
		return &Error{Kind: KindStorageWrite, Message: msg, Err: err}
	}
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
