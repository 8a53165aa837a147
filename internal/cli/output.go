package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes shared by every xldb command.
const (
	ExitSuccess      = 0 // command finished, every scenario passed
	ExitFailure      = 1 // rejected input: bad table, key map, condition or failed scenario
	ExitCommandError = 2 // I/O trouble: missing path, unwritable output, unknown snapshot
)

// ExitError carries the process exit code out of a command's RunE. main
// reads it back with GetExitCode.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // operation that failed, e.g. "load table"
	Err     error  // cause, may be nil
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError for an operation that failed with err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the ExitError in err's chain, or
// ExitFailure for any other error (cobra argument errors included).
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a CLIResponse
// envelope, following --format.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool // print error details in text mode
}

// CLIResponse is the JSON envelope of every --format json result.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // StoreOutput, WriteOutput, RunSummary, ...
	Error  *CLIError   `json:"error,omitempty"` // set when Status is "error"
}

// CLIError describes a failed command inside a CLIResponse.
type CLIError struct {
	Code    string      `json:"code"`              // ErrCode* constant
	Message string      `json:"message"`           // operation and cause
	Details interface{} `json:"details,omitempty"` // row and key of parse errors, key of configuration errors
}

// Success writes data as an "ok" envelope, or with fmt.Println in text mode.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes an "error" envelope, or "Error [code]: message" in text
// mode with details appended under --verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}
