package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/socialgraph/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitDatabaseError indicates the graph database could not be reached or used
	ExitDatabaseError = 12
	// ExitPartialFailure indicates at least one batch item failed or matched nothing
	ExitPartialFailure = 13
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError prints err to the command's error output and returns the exit
// code for it.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", cliErr.Cause)
			}
		}
		printRetryHint(cmd, err)
		return cliErr.Code
	}

	var typedErr *types.Error
	if errors.As(err, &typedErr) {
		cmd.PrintErrln("Error:", typedErr.Error())
		printRetryHint(cmd, err)
		return mapErrorCodeToExitCode(typedErr.Code)
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}

// mapErrorCodeToExitCode maps coded errors to CLI exit codes by namespace.
func mapErrorCodeToExitCode(code types.ErrorCode) int {
	switch s := string(code); {
	case strings.HasPrefix(s, "CONFIG_"), s == "GRAPH_INVALID_CONFIG":
		return ExitConfigError
	case strings.HasPrefix(s, "GRAPH_"), strings.HasPrefix(s, "DB_"):
		return ExitDatabaseError
	default:
		return ExitError
	}
}

// IsRetryable reports whether any error in err's chain is marked retryable,
// such as a deadlock or a dropped connection reported by the driver.
func IsRetryable(err error) bool {
	return types.IsRetryable(err)
}

func printRetryHint(cmd *cobra.Command, err error) {
	if IsRetryable(err) {
		cmd.PrintErrln("Hint: the failure is transient, running the command again may succeed")
	}
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// It is used during panic recovery, before flags may have been parsed.
func IsVerbose() bool {
	if os.Getenv("SOCIALGRAPH_VERBOSE") != "" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
