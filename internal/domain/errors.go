package domain

import (
	"errors"
	"fmt"
)

// Business-rule error kinds. Validation and services return errors wrapping
// exactly one of these; the transport classifies them into HTTP statuses.
var (
	// ErrInvalidInput is returned when a request field is absent, blank or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRecordMissing is returned when a requested entity does not exist.
	ErrRecordMissing = errors.New("record missing")
	// ErrRequestRejected is returned when a well-formed request cannot be applied.
	ErrRequestRejected = errors.New("request rejected")
	// ErrReferenceNotFound is returned when a message names an account that does not exist.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrAuthenticationFailed is returned when the username/password pair matches no account.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrDuplicateResource is returned when an entity violates a uniqueness rule.
	ErrDuplicateResource = errors.New("duplicate resource")
	// ErrDataIntegrity is returned when storage reports a state the service cannot reconcile.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// Storage fault kinds. Repositories join one of these with the driver error,
// so the driver text stays available to logs but never reaches a caller.
var (
	ErrStorage              = errors.New("storage fault")
	ErrStorageConstraint    = fmt.Errorf("%w: constraint violation", ErrStorage)
	ErrStorageDuplicateKey  = fmt.Errorf("%w: duplicate key", ErrStorageConstraint)
	ErrStorageForeignKey    = fmt.Errorf("%w: foreign key", ErrStorageConstraint)
	ErrStorageLock          = fmt.Errorf("%w: lock not available", ErrStorage)
	ErrStorageDeadlock      = fmt.Errorf("%w: deadlock", ErrStorage)
	ErrStorageSerialization = fmt.Errorf("%w: serialization failure", ErrStorage)
	ErrStorageTimeout       = fmt.Errorf("%w: timeout", ErrStorage)
	ErrStoragePermission    = fmt.Errorf("%w: permission denied", ErrStorage)
	ErrStorageUnavailable   = fmt.Errorf("%w: unavailable", ErrStorage)
)

// Error is a business-rule failure: a kind plus a human-readable reason that
// is safe to return to the caller, optionally with the error that caused it.
type Error struct {
	Kind   error
	Reason string
	Cause  error
}

// NewError creates an Error of the given kind with a formatted reason.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// WithCause returns a copy of the error that also wraps cause, next to any
// cause it already had.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Kind:   e.Kind,
		Reason: e.Reason,
		Cause:  errors.Join(e.Cause, cause),
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Reason, e.Cause)
	}

	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Cause}
}

// ReasonOf returns the caller-facing reason of the first Error in err's tree.
func ReasonOf(err error) (string, bool) {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return "", false
	}

	return domainErr.Reason, true
}
