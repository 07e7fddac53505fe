package errors

import (
	"fmt"
	"os"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including timestamps.
	Verbose bool
}

// HandleError logs a SceneError to stderr.
func (h *LogHandler) HandleError(err *SceneError) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[scene error] %s [%s]", err.Op, err.Kind)
		if err.PresenterType != "" {
			fmt.Fprintf(os.Stderr, " type=%s", err.PresenterType)
		}
		fmt.Fprintf(os.Stderr, ": %v (at %s)\n", err.Err, err.Timestamp.Format("15:04:05.000"))
	} else {
		fmt.Fprintf(os.Stderr, "[scene error] %s: %v\n", err.Op, err.Err)
	}
}

// HandleWarning logs a warning to stderr.
func (h *LogHandler) HandleWarning(op, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[scene warning] %s: %s\n", op, fmt.Sprintf(format, args...))
}
