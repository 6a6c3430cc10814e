package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "Unauthenticated"
	KindForbidden       ErrorKind = "Forbidden"
	KindNotFound        ErrorKind = "NotFound"
	KindInvalidInput    ErrorKind = "InvalidInput"
	KindConflict        ErrorKind = "Conflict"
	KindInternal        ErrorKind = "Internal"
)

// Reasons refine a kind for clients that need to branch on it.
const (
	ReasonCredentialMissing   = "credential_missing"
	ReasonCredentialMalformed = "credential_malformed"
	ReasonTokenExpired        = "token_expired"
	ReasonTokenInvalid        = "token_invalid"
	ReasonUserNotFound        = "user_not_found"
	ReasonInvalidType         = "invalid_type"
	ReasonTooLarge            = "too_large"
)

type ServiceError struct {
	Kind    ErrorKind
	Message string
	Reason  string
	Err     error
}

func (e ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e ServiceError) Unwrap() error {
	return e.Err
}

func ErrUnauthenticated(reason, msg string) error {
	return ServiceError{Kind: KindUnauthenticated, Reason: reason, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Kind: KindForbidden, Message: msg}
}

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Message: msg}
}

func ErrInvalidInput(msg string) error {
	return ServiceError{Kind: KindInvalidInput, Message: msg}
}

func ErrConflict(msg string) error {
	return ServiceError{Kind: KindConflict, Message: msg}
}

// ErrInternal hides the cause from clients but keeps it for logging.
func ErrInternal(err error, msg string) error {
	return ServiceError{Kind: KindInternal, Message: "Internal server error", Err: fmt.Errorf("%s: %w", msg, err)}
}

// KindOf reports the kind of err; anything that is not a ServiceError is Internal.
func KindOf(err error) ErrorKind {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindInternal
}

// ReasonOf returns the ServiceError reason, or "" when err carries none.
func ReasonOf(err error) string {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr.Reason
	}
	return ""
}
