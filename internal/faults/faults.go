// Package faults defines the error taxonomy shared by pixelthreat packages.
//
// Every failure carries a Kind so callers can classify it without importing the
// package that produced it. Sentinels work with errors.Is; *Error works with
// errors.As and IsKind.
package faults

import (
	"errors"
	"fmt"
)

// #region kinds

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	KindLoadFailure       Kind = "load_failure"
	KindInvalidRegionSize Kind = "invalid_region_size"
	KindInvalidOptions    Kind = "invalid_options"
	KindInvalidDistance   Kind = "invalid_distance"
	KindDimensionMismatch Kind = "dimension_mismatch"
	KindEmptyDirectionSet Kind = "empty_direction_set"
	KindInvalidDirection  Kind = "invalid_direction"
	KindNotFound          Kind = "not_found"
	KindInvalidConfig     Kind = "invalid_config"
)

// Sentinel errors, one per kind.
var (
	ErrLoadFailure       = errors.New("load failure")
	ErrInvalidRegionSize = errors.New("invalid region size")
	ErrInvalidOptions    = errors.New("invalid options")
	ErrInvalidDistance   = errors.New("invalid distance")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptyDirectionSet = errors.New("empty direction set")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrNotFound          = errors.New("not found")
	ErrInvalidConfig     = errors.New("invalid config")
)

var sentinels = map[Kind]error{
	KindLoadFailure:       ErrLoadFailure,
	KindInvalidRegionSize: ErrInvalidRegionSize,
	KindInvalidOptions:    ErrInvalidOptions,
	KindInvalidDistance:   ErrInvalidDistance,
	KindDimensionMismatch: ErrDimensionMismatch,
	KindEmptyDirectionSet: ErrEmptyDirectionSet,
	KindInvalidDirection:  ErrInvalidDirection,
	KindNotFound:          ErrNotFound,
	KindInvalidConfig:     ErrInvalidConfig,
}

// #endregion kinds

// #region error

// Error wraps an underlying error with operation context and a kind.
type Error struct {
	Op   string
	Kind Kind
	Path string // optional: relevant file path
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrInvalidDistance)
// holds for any *Error of KindInvalidDistance.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New builds an *Error of the given kind with a formatted detail message.
func New(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches op and kind to err. A nil err yields nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// #endregion error
