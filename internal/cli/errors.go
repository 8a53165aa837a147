package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/xldb/internal/snapshot"
	"github.com/roach88/xldb/internal/xlink"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Path not found
	ErrCodeConfiguration = "E003" // Bad key map, key or predicate
	ErrCodeParse         = "E004" // Malformed table
	ErrCodeLookup        = "E005" // Unknown protein
	ErrCodeWriteFailed   = "E006" // File write error
	ErrCodeNoSnapshot    = "E007" // Snapshot id not found
	ErrCodeScenario      = "E008" // Scenario failed
)

// keyMapError marks a failure to load the --keymap file.
type keyMapError struct{ err error }

func (e *keyMapError) Error() string { return e.err.Error() }
func (e *keyMapError) Unwrap() error { return e.err }

// writeError marks a failure writing command output.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// errorCode maps an error to its CLI error code.
func errorCode(err error) string {
	var (
		kmErr *keyMapError
		wErr  *writeError
	)
	switch {
	case errors.As(err, &wErr):
		return ErrCodeWriteFailed
	case errors.As(err, &kmErr), xlink.IsConfigurationError(err):
		return ErrCodeConfiguration
	case xlink.IsParseError(err):
		return ErrCodeParse
	case xlink.IsLookupError(err):
		return ErrCodeLookup
	case errors.Is(err, snapshot.ErrNotFound):
		return ErrCodeNoSnapshot
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	default:
		return ErrCodeGeneric
	}
}

// errorDetails returns structured context for an error, or nil.
func errorDetails(err error) any {
	var pe *xlink.ParseError
	if errors.As(err, &pe) {
		d := map[string]any{"row": pe.Row}
		if pe.Key != "" {
			d["key"] = string(pe.Key)
		}
		return d
	}
	var ce *xlink.ConfigurationError
	if errors.As(err, &ce) && ce.Key != "" {
		return map[string]any{"key": string(ce.Key)}
	}
	return nil
}

// fail reports err through the formatter and returns the matching
// ExitError. I/O problems exit with ExitCommandError; rejected input exits
// with ExitFailure.
func fail(f *OutputFormatter, message string, err error) error {
	code := errorCode(err)
	if outErr := f.Error(code, message+": "+err.Error(), errorDetails(err)); outErr != nil {
		return outErr
	}

	exit := ExitFailure
	switch code {
	case ErrCodeNotFound, ErrCodeWriteFailed, ErrCodeNoSnapshot, ErrCodeGeneric:
		exit = ExitCommandError
	}
	return WrapExitError(exit, message, err)
}
