// pkg/dberrors/errors.go
//
// Package dberrors implements the tagged error kinds of the engine: Lex,
// Parse, Bind, Schema, Type, Constraint, Arithmetic, IO. Every error
// surfaced to a caller is one of these kinds, wraps the underlying cause,
// and (once a statement index is known) carries it for the batch-reporting
// rule: a batch halts at the first failing statement and reports its index.
package dberrors

import (
	"fmt"

	juju "github.com/juju/errors"
)

// Kind tags the category of a user-visible error.
type Kind int

const (
	Lex Kind = iota
	Parse
	Bind
	Schema
	Type
	Constraint
	Arithmetic
	IO
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Bind:
		return "bind error"
	case Schema:
		return "schema error"
	case Type:
		return "type error"
	case Constraint:
		return "constraint error"
	case Arithmetic:
		return "arithmetic error"
	case IO:
		return "io error"
	default:
		return "error"
	}
}

// Error is the engine's tagged error: a Kind, the wrapped cause, and
// (for statement-batch reporting) the 1-based index of the statement that
// failed. Stmt is 0 until WithStmt attaches it.
type Error struct {
	Kind Kind
	Stmt int
	Err  error
}

func (e *Error) Error() string {
	if e.Stmt > 0 {
		return fmt.Sprintf("statement %d: %s: %s", e.Stmt, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error of the given kind from a format string.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: juju.Errorf(format, args...)}
}

// Wrap annotates an existing error with a message and tags it with kind.
// If err is already a *Error, its kind is preserved and only the message
// is annotated, so wrapping never loses the original classification.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok {
		return &Error{Kind: existing.Kind, Stmt: existing.Stmt, Err: juju.Annotate(existing.Err, message)}
	}
	return &Error{Kind: kind, Err: juju.Annotate(err, message)}
}

// WithStmt attaches a 1-based statement index to err, used when a batch
// of statements aborts at the first failure (spec §7 propagation rule).
func WithStmt(err error, stmt int) error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok {
		tagged := *existing
		tagged.Stmt = stmt
		return &tagged
	}
	return &Error{Stmt: stmt, Err: juju.Trace(err)}
}

// KindOf reports the Kind of err, or false if err is not a tagged *Error.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return 0, false
}

// StackTrace renders the underlying juju/errors annotation stack, useful
// for debug logging without changing the user-facing message.
func StackTrace(err error) string {
	return juju.ErrorStack(err)
}
