// Package fault carries the typed failure taxonomy shared by the generation
// pipeline, the like toggle engine and the identity sync. Callers branch on
// the Kind rather than on error strings.
package fault

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	// KindValidation marks malformed or missing input. No side effects.
	KindValidation Kind = iota + 1
	// KindAuth marks a missing or invalid identity or signature. No side effects.
	KindAuth
	// KindProvider marks a failed external generation call; the provider's
	// status and body travel in the detail string.
	KindProvider
	// KindUnexpectedShape marks a provider response that arrived but not in
	// the expected form.
	KindUnexpectedShape
	// KindStorage marks a failed blob upload.
	KindStorage
	// KindPersistence marks a failed catalog write.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindProvider:
		return "provider"
	case KindUnexpectedShape:
		return "unexpected_shape"
	case KindStorage:
		return "storage"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a failure with a user-facing message and an optional technical
// detail. The cause, when present, is reachable through errors.Unwrap.
type Error struct {
	Kind   Kind
	Msg    string
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a technical detail string and returns the same error.
func (e *Error) WithDetail(format string, args ...interface{}) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error around a cause. The cause's message doubles as the
// technical detail surfaced to the caller.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Detail: cause.Error(), cause: cause}
}

// KindOf reports the Kind of err, or zero if err carries no taxonomy.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// IsKind reports whether err is a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
