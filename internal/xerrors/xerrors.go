// Package xerrors enumerates the node's error kinds as a Kind carried by
// *Error values. Call sites build them with New, NotFound or Wrap (which
// keeps the underlying cause); callers recover the kind with KindOf or Is.
package xerrors

import "github.com/pkg/errors"

// Kind classifies why an operation failed.
type Kind int

const (
	_ Kind = iota
	KindParseError
	KindInvalidMagic
	KindInvalidConnectionState
	KindIoError
	KindChannelError
	KindServerTermination
	KindNoResponse
	KindTimerError
	KindDatabaseError
	KindInvalidBlock
	KindNotFound
	KindPoisonedLock
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "parse error"
	case KindInvalidMagic:
		return "invalid magic"
	case KindInvalidConnectionState:
		return "invalid connection state"
	case KindIoError:
		return "io error"
	case KindChannelError:
		return "channel error"
	case KindServerTermination:
		return "server termination"
	case KindNoResponse:
		return "no response"
	case KindTimerError:
		return "timer error"
	case KindDatabaseError:
		return "database error"
	case KindInvalidBlock:
		return "invalid block"
	case KindNotFound:
		return "not found"
	case KindPoisonedLock:
		return "poisoned lock"
	default:
		return "unknown error"
	}
}

// Error pairs a Kind with entity context (e.g. which store returned
// NotFound) and an optional wrapped cause.
type Error struct {
	Kind Kind
	Entity string
	cause error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Entity != "" {
		msg += ": " + e.Entity
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind with no entity/cause context.
func New(kind Kind) *Error { return &Error{Kind: kind} }

// NotFound builds a KindNotFound error naming the missing entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity}
}

// Wrap attaches kind/context to an underlying cause.
func Wrap(kind Kind, entity string, cause error) *Error {
	return &Error{Kind: kind, Entity: entity, cause: cause}
}

// Wrapf is Wrap with a formatted entity string, via pkg/errors for the
// formatting convention used throughout the node.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Entity: errors.Errorf(format, args...).Error(), cause: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
