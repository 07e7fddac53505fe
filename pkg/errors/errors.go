// Package errors provides structured error handling for the Scene library.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfigNotFound indicates an operation on an unregistered presenter type or set.
	KindConfigNotFound
	// KindDuplicateRegistration indicates a descriptor or set collision at init time.
	KindDuplicateRegistration
	// KindInvalidState indicates a lifecycle call that is invalid in the current state.
	KindInvalidState
	// KindAsset indicates an asset provider instantiate/release failure.
	KindAsset
	// KindTeardown indicates a per-instance failure during best-effort disposal.
	KindTeardown
	// KindCanceled indicates an operation aborted by context cancellation.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfigNotFound:
		return "config-not-found"
	case KindDuplicateRegistration:
		return "duplicate-registration"
	case KindInvalidState:
		return "invalid-state"
	case KindAsset:
		return "asset"
	case KindTeardown:
		return "teardown"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// SceneError represents a structured error in the Scene library.
type SceneError struct {
	// Op is the operation that failed (e.g., "scene.Load").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// PresenterType is the presenter type involved, if applicable.
	PresenterType string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SceneError) Error() string {
	if e.PresenterType != "" {
		return fmt.Sprintf("%s [%s] type=%s: %v", e.Op, e.Kind, e.PresenterType, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SceneError) Unwrap() error {
	return e.Err
}

// New creates a SceneError with a formatted message as the underlying error.
func New(op string, kind ErrorKind, format string, args ...any) *SceneError {
	return &SceneError{
		Op:        op,
		Kind:      kind,
		Err:       fmt.Errorf(format, args...),
		Timestamp: time.Now(),
	}
}

// Wrap creates a SceneError around an existing error.
func Wrap(op string, kind ErrorKind, err error) *SceneError {
	return &SceneError{
		Op:        op,
		Kind:      kind,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// KindOf extracts the ErrorKind from an error chain.
// Returns KindUnknown for nil or non-SceneError values.
func KindOf(err error) ErrorKind {
	for err != nil {
		if se, ok := err.(*SceneError); ok {
			return se.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		if se, ok := err.(*SceneError); ok && se.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
