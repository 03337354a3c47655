package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindNotReady
	KindRateLimited
	KindUpstream
	KindStorage
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError  { return New(KindValidation, message) }
func Auth(message string) *AppError        { return New(KindAuth, message) }
func Forbidden(message string) *AppError   { return New(KindForbidden, message) }
func NotFound(message string) *AppError    { return New(KindNotFound, message) }
func NotReady(message string) *AppError    { return New(KindNotReady, message) }
func RateLimited(message string) *AppError { return New(KindRateLimited, message) }

// KindOf extracts the kind from any error in the chain. Unclassified errors
// are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether the error chain contains an AppError of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindNotReady:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	case KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
