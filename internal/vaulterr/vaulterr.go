// Package vaulterr defines the structured errors returned across the vault
// backend boundary.
//
// Backends wrap their failures in *Error so the engine can decide how to
// present them without inspecting message text:
//
//	if errors.Is(err, vaulterr.ErrAlreadyExists) {
//	    // name collision in the target folder
//	}
package vaulterr

import (
	"errors"
	"fmt"
)

// Kind classifies a vault failure.
type Kind int

const (
	// BackendFailure is any I/O-layer error without a more specific kind.
	BackendFailure Kind = iota
	// NotFound means the path is absent from the index or the vault.
	NotFound
	// AlreadyExists means a create, rename or move would collide with an
	// existing name.
	AlreadyExists
	// InvalidArgument means a required id, path or title was missing or
	// malformed. Raised before any I/O.
	InvalidArgument
	// StateConflict means the operation needs session state that is not
	// present, such as an open markdown document.
	StateConflict
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case AlreadyExists:
		return "already exists"
	case InvalidArgument:
		return "invalid argument"
	case StateConflict:
		return "state conflict"
	default:
		return "backend failure"
	}
}

// Sentinels for errors.Is matching by kind.
var (
	ErrBackend         = &Error{Kind: BackendFailure}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrAlreadyExists   = &Error{Kind: AlreadyExists}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrStateConflict   = &Error{Kind: StateConflict}
)

// Error is a classified vault failure.
type Error struct {
	Kind Kind
	Op   string // operation, e.g. "rename"
	Path string // virtual path the operation addressed
	Dir  bool   // the addressed entry is a folder
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is regardless of Op, Path or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// E builds an *Error.
func E(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Exists builds an AlreadyExists error for a collision at path. dir is set
// when the entry being created, moved or renamed is a folder.
func Exists(op, path string, dir bool, err error) *Error {
	return &Error{Kind: AlreadyExists, Op: op, Path: path, Dir: dir, Err: err}
}

// Invalid builds an InvalidArgument error with a formatted message.
func Invalid(op, format string, args ...any) *Error {
	return &Error{Kind: InvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of err. Errors that are not *Error are
// BackendFailure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return BackendFailure
}
