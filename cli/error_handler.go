package cli

import (
	"fmt"
	"io"

	"github.com/grovetools/focus/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to out
func NewErrorHandler(verbose bool, out io.Writer) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     out,
	}
}

// Handle prints a message for err based on its code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	focusErr, _ := err.(*errors.FocusError)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "❌ Configuration not found. Create focus.yml or drop the --config flag.\n")

	case errors.ErrCodeConfigValidation, errors.ErrCodeConfigInvalid:
		fmt.Fprintf(h.Out, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(h.Out, "Run 'focus config schema' to see the accepted settings.\n")

	case errors.ErrCodeTaskNotFound:
		if focusErr != nil {
			fmt.Fprintf(h.Out, "❌ Task '%v' not found\n", focusErr.Details["task"])
		}
		fmt.Fprintf(h.Out, "Run 'focus task list' to see task IDs.\n")

	case errors.ErrCodeDaemonNotRunning:
		fmt.Fprintf(h.Out, "❌ The focus daemon is not running. Start it with 'focus daemon start'.\n")

	case errors.ErrCodeDaemonRunning:
		if focusErr != nil {
			fmt.Fprintf(h.Out, "❌ The focus daemon is already running (PID %v)\n", focusErr.Details["pid"])
		}

	case errors.ErrCodeInvalidInput:
		fmt.Fprintf(h.Out, "❌ %s\n", messageOf(err))

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose && focusErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", focusErr.ToJSON())
	}
	return err
}

func messageOf(err error) string {
	if fe, ok := err.(*errors.FocusError); ok {
		return fe.Message
	}
	return err.Error()
}
