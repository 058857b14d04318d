package dataset

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrNodeNotFound  = errors.New("node not found")
	ErrPathNotFound  = errors.New("path not found")
	ErrRequestFailed = errors.New("request failed")
)

// Error provides structured information about a failed dataset operation
type Error struct {
	Op   string // Operation that failed (e.g. "load", "neighbors", "explain")
	Kind string // Entity kind (e.g. "graph", "path", "node")
	Key  string // Entity key, if any
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.Key, e.Err)
	}
	if e.Kind != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Err
}

// OpError wraps err with the operation and entity that produced it. A nil err stays nil.
func OpError(op, kind, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Key: key, Err: err}
}

// IsNotFound reports whether err denotes a missing node or path
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrPathNotFound)
}
