// Package diag defines the failure taxonomy shared by every stage of enum
// generation. All failures are fatal for the invocation file they occur in.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindGrammar: the invocation does not match the expected grammar.
	KindGrammar Kind = iota + 1
	// KindQueryCompile: a query's source text failed to compile.
	KindQueryCompile
	// KindIO: the data file could not be read or its path canonicalized.
	KindIO
	// KindQueryRuntime: a compiled query failed against the document.
	KindQueryRuntime
	// KindDecode: a query result or data file has the wrong shape.
	KindDecode
	// KindIdentifier: a resolved variant name is not a usable identifier.
	KindIdentifier
	// KindArityMismatch: a per-variant result count disagrees with the
	// variant count.
	KindArityMismatch
)

func (k Kind) String() string {
	switch k {
	case KindGrammar:
		return "grammar error"
	case KindQueryCompile:
		return "query compile error"
	case KindIO:
		return "io error"
	case KindQueryRuntime:
		return "query runtime error"
	case KindDecode:
		return "decode error"
	case KindIdentifier:
		return "identifier error"
	case KindArityMismatch:
		return "arity mismatch"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position is a location in an invocation file. Line and Column are 1-based;
// a zero Line means the location is unknown.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// IsValid reports whether p carries a line number.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	switch {
	case !p.IsValid():
		return p.Filename
	case p.Filename == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Error is a generation failure annotated with enough context to locate it
// without inspecting internals.
type Error struct {
	Kind Kind
	// Pos is the invocation item that failed.
	Pos Position
	// Enum is the target type name, if known.
	Enum string
	// Query names the failing query, e.g. "names", "getter Tags" or
	// "option serde_rename_variants".
	Query string
	// Variant is the offending variant, if any.
	Variant string
	// File is the data file involved, if any.
	File string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if s := e.Pos.String(); s != "" {
		b.WriteString(s)
		b.WriteString(": ")
	}
	if e.Enum != "" {
		b.WriteString(e.Enum)
		b.WriteString(": ")
	}
	if e.Query != "" {
		b.WriteString(e.Query)
		b.WriteString(": ")
	}
	if e.Variant != "" {
		fmt.Fprintf(&b, "variant %s: ", e.Variant)
	}
	if e.File != "" {
		fmt.Fprintf(&b, "%s: ", e.File)
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of kind k wrapping err.
func New(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// Errorf returns an *Error of kind k with a formatted cause.
func Errorf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Err: fmt.Errorf(format, args...)}
}

// At sets the position and returns e.
func (e *Error) At(pos Position) *Error {
	e.Pos = pos
	return e
}

// In fills in the enum and query context when not already set.
func (e *Error) In(enum, query string) *Error {
	if e.Enum == "" {
		e.Enum = enum
	}
	if e.Query == "" {
		e.Query = query
	}
	return e
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
