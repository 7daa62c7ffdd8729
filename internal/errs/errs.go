// Package errs defines the error taxonomy shared by the ledger services.
//
// Every error carries a Kind, the operation that produced it, and enough
// context (entity ID, violated rule or denial reason) for the caller to
// build a user-facing message. The transport layer maps kinds to status
// codes; nothing in between needs to inspect error strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and the transport layer.
type Kind int

const (
	// KindOther is an unclassified error, typically a storage failure
	// surfaced unchanged.
	KindOther Kind = iota
	// KindUnauthenticated means no current user; mutating operations refuse.
	KindUnauthenticated
	// KindForbidden is a permission-guard denial. Reason carries the
	// guard's reason code.
	KindForbidden
	// KindInvalid is a split-validator rejection. Reason carries the first
	// violated rule.
	KindInvalid
	// KindInvariant is a refused operation that would break a structural
	// invariant, e.g. removing the last admin.
	KindInvariant
	// KindNotFound means the referenced group, expense or member does not
	// exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindInvalid:
		return "validation_failed"
	case KindInvariant:
		return "invariant_violation"
	case KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Error is the concrete error type for all classified failures.
type Error struct {
	Kind   Kind
	Op     string // operation, e.g. "group.RemoveMember"
	Entity string // affected entity ID, if known
	Reason string // violated rule or denial reason code
	Err    error  // wrapped cause, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Entity != "" {
		msg += fmt.Sprintf(" (%s)", e.Entity)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthenticated reports a missing current user.
func Unauthenticated(op string) *Error {
	return &Error{Kind: KindUnauthenticated, Op: op}
}

// Forbidden reports a permission-guard denial with its reason code.
func Forbidden(op, entity, reason string) *Error {
	return &Error{Kind: KindForbidden, Op: op, Entity: entity, Reason: reason}
}

// Invalid reports a validation failure naming the violated rule.
func Invalid(op, rule string) *Error {
	return &Error{Kind: KindInvalid, Op: op, Reason: rule}
}

// Invariant reports an operation refused to protect a structural invariant.
func Invariant(op, entity, reason string) *Error {
	return &Error{Kind: KindInvariant, Op: op, Entity: entity, Reason: reason}
}

// NotFound reports a missing entity.
func NotFound(op, entity string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Entity: entity}
}

// Wrap attaches operation context to an unclassified error.
func Wrap(op string, err error) *Error {
	return &Error{Kind: KindOther, Op: op, Err: err}
}

// KindOf returns the Kind of err, or KindOther for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ReasonOf returns the reason code or rule name of err, if any.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
