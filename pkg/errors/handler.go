package errors

import (
	"sync"
	"time"
)

// ErrorHandler receives reported errors and warnings.
//
// The Scene service reports hard failures through HandleError and
// idempotent no-ops (open-when-open, close-when-closed) through
// HandleWarning. Implementations must be safe for concurrent use.
type ErrorHandler interface {
	HandleError(err *SceneError)
	HandleWarning(op, format string, args ...any)
}

var (
	// DefaultHandler is the global error handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// getHandler returns the current error handler.
func getHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *SceneError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// Warn sends a warning to the global handler.
func Warn(op, format string, args ...any) {
	if h := getHandler(); h != nil {
		h.HandleWarning(op, format, args...)
	}
}
