// Package exitcodes provides centralized exit code definitions and error
// handling for the relint tool. Exit codes are organized in ranges:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (e.g., missing flags, unreadable files)
//	10-19: Document Processing Errors (e.g., parse failures, lint findings)
//	20-29: Runtime Errors (e.g., I/O errors)
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category.
const (
	// Success (0)
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitMissingRequiredFlag     = 1 // Required command flag not provided
	ExitInputConfigurationError = 2 // General configuration error
	ExitManifestNotFound        = 3 // Manifest or values file not found
	ExitSourceNotProvided       = 4 // Required value source has no local stand-in

	// Document Processing Errors (10-19)
	ExitManifestParseError = 10 // Failed to parse a manifest document
	ExitUnknownKind        = 11 // Document kind is not supported
	ExitLintFindings       = 12 // Lint completed with error findings
	ExitRenderFailed       = 13 // Effective values could not be rendered

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20 // General runtime/system error
	ExitIOError             = 21 // IO operation error

	// Internal Errors (30-39)
	ExitInternalError = 30 // Internal error in command execution
)

// ExitCodeError wraps an error with an exit code for consistent error
// handling. It is used throughout the codebase to propagate both error
// details and the appropriate exit code up the call stack.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its code.
// Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeDescriptions maps exit codes to their human-readable descriptions.
var CodeDescriptions = map[int]string{
	ExitSuccess:                 "Success",
	ExitMissingRequiredFlag:     "Required command flag not provided",
	ExitInputConfigurationError: "General configuration error",
	ExitManifestNotFound:        "Manifest or values file not found",
	ExitSourceNotProvided:       "Required value source has no local stand-in",
	ExitManifestParseError:      "Failed to parse a manifest document",
	ExitUnknownKind:             "Document kind is not supported",
	ExitLintFindings:            "Lint completed with error findings",
	ExitRenderFailed:            "Effective values could not be rendered",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
	ExitInternalError:           "Internal error in command execution",
}
