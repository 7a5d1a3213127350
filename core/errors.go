// Package core holds the error taxonomy shared by every compile stage.
//
// The shape is lifted from a teacher pattern of a single wrapped "app error"
// carrying a stable code and a human message, rather than sentinel error
// values or per-package error types: callers match on Kind, not on
// errors.Is/As against a concrete type, so new stages can introduce new
// Kinds without touching existing call sites.
package core

import (
	"errors"
	"fmt"
)

// Kind identifies the taxonomy bucket an error belongs to, matching the
// E_* names used throughout the specification and (eventually) surfaced
// verbatim in the CLI's JSON error shape.
type Kind string

const (
	NoError Kind = ""

	EArgs Kind = "E_ARGS"

	EIORead  Kind = "E_IO_READ"
	EIOWrite Kind = "E_IO_WRITE"

	EParseXML Kind = "E_PARSE_XML"

	ESemantic Kind = "E_SVGPP_SEMANTIC"

	EIncludeArgs        Kind = "E_INCLUDE_ARGS"
	EIncludeNotFound    Kind = "E_INCLUDE_NOT_FOUND"
	EIncludeParse       Kind = "E_INCLUDE_PARSE"
	EIncludeRoot        Kind = "E_INCLUDE_ROOT"
	EIncludeCycle       Kind = "E_INCLUDE_CYCLE"
	EIncludeDepth       Kind = "E_INCLUDE_DEPTH"
	EIncludeIDCollision Kind = "E_INCLUDE_ID_COLLISION"

	EGraphArgs             Kind = "E_GRAPH_ARGS"
	EGraphNodeMissingID    Kind = "E_GRAPH_NODE_MISSING_ID"
	EGraphDuplicateNode    Kind = "E_GRAPH_DUPLICATE_NODE"
	EGraphIDCollision      Kind = "E_GRAPH_ID_COLLISION"
	EGraphUnknownNode      Kind = "E_GRAPH_UNKNOWN_NODE"
	EGraphSelfEdge         Kind = "E_GRAPH_SELF_EDGE"
	EGraphChildUnsupported Kind = "E_GRAPH_CHILD_UNSUPPORTED"
	EGraphNestedUnsupported Kind = "E_GRAPH_NESTED_UNSUPPORTED"
	EGraphTooLarge         Kind = "E_GRAPH_TOO_LARGE"
	EGraphvizUnavailable   Kind = "E_GRAPHVIZ_UNAVAILABLE"
	EGraphLayoutFailed     Kind = "E_GRAPH_LAYOUT_FAILED"
	EGraphLayoutParse      Kind = "E_GRAPH_LAYOUT_PARSE"

	EFocusNotFound Kind = "E_FOCUS_NOT_FOUND"

	ETemplate Kind = "E_TEMPLATE"

	EInternal Kind = "E_INTERNAL"
)

// exitCode maps each Kind to the process exit code named in spec §6.
// Kinds absent from the switch fall back to 1 (internal/unknown).
func exitCode(k Kind) int {
	switch k {
	case NoError:
		return 0
	case EArgs, EParseXML:
		return 2
	case ESemantic,
		EIncludeArgs, EIncludeNotFound, EIncludeParse, EIncludeRoot,
		EIncludeCycle, EIncludeDepth, EIncludeIDCollision,
		EGraphArgs, EGraphNodeMissingID, EGraphDuplicateNode, EGraphIDCollision,
		EGraphUnknownNode, EGraphSelfEdge, EGraphChildUnsupported,
		EGraphNestedUnsupported, EGraphTooLarge, EGraphvizUnavailable,
		EGraphLayoutFailed, EGraphLayoutParse, ETemplate:
		return 3
	case EIOWrite, EFocusNotFound:
		return 4
	default:
		return 1
	}
}

// Location describes where in the source an error was raised, when known.
type Location struct {
	File   string
	Line   int
	Column int
}

// Error is the error type produced by every compile stage. It carries a
// stable Kind, a one-line hint for end users, an optional source Location,
// and a Retryable flag (true for transient I/O / subprocess conditions).
type Error struct {
	cause     error
	kind      Kind
	message   string
	hint      string
	loc       Location
	retryable bool
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.loc.File != "" {
		return fmt.Sprintf("[%s] %s (%s:%d:%d)", e.kind, e.message, e.loc.File, e.loc.Line, e.loc.Column)
	}
	return fmt.Sprintf("[%s] %s", e.kind, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's taxonomy bucket.
func (e *Error) Kind() Kind { return e.kind }

// Hint returns a short actionable suggestion, or "" if none was set.
func (e *Error) Hint() string { return e.hint }

// Location returns the source location the error was raised at, if any.
func (e *Error) Location() Location { return e.loc }

// Retryable reports whether retrying the operation unchanged might succeed
// (set for subprocess/timeouts and I/O conditions that can be transient).
func (e *Error) Retryable() bool { return e.retryable }

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause in an Error of the given kind. If cause is nil, a fresh
// error is synthesized so callers never need to nil-check before wrapping.
func Wrap(cause error, kind Kind, format string, args ...interface{}) *Error {
	if cause == nil {
		cause = errors.New(string(kind))
	}
	return &Error{cause: cause, kind: kind, message: fmt.Sprintf(format, args...)}
}

// WithHint attaches a one-line hint and returns the receiver for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.hint = hint
	return e
}

// WithLocation attaches a source location and returns the receiver for
// chaining.
func (e *Error) WithLocation(file string, line, col int) *Error {
	e.loc = Location{File: file, Line: line, Column: col}
	return e
}

// WithRetryable marks the error retryable and returns the receiver for
// chaining.
func (e *Error) WithRetryable(r bool) *Error {
	e.retryable = r
	return e
}

// KindOf extracts the Kind from err's chain, or EInternal if err does not
// wrap an *Error (including err == nil, which reports NoError instead).
func KindOf(err error) Kind {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return EInternal
}

// ExitCode returns the process exit code associated with err, per spec §6.
func ExitCode(err error) int {
	return exitCode(KindOf(err))
}

// JSONError is the wire shape described in spec §6. It is exported purely
// so an external CLI can marshal it directly; this package never touches
// encoding/json itself.
type JSONError struct {
	OK        bool   `json:"ok"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	Hint      string `json:"hint,omitempty"`
	Retryable bool   `json:"retryable"`
}

// ToJSONError converts err into the wire shape from spec §6.
func ToJSONError(err error) JSONError {
	if err == nil {
		return JSONError{OK: true}
	}
	var e *Error
	if errors.As(err, &e) {
		return JSONError{
			Code:      string(e.kind),
			Message:   e.message,
			File:      e.loc.File,
			Line:      e.loc.Line,
			Column:    e.loc.Column,
			Hint:      e.hint,
			Retryable: e.retryable,
		}
	}
	return JSONError{Code: string(EInternal), Message: err.Error()}
}
