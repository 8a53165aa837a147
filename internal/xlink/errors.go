package xlink

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a KeyMap missing a mandatory role, an operation
// referencing a key the store does not carry, or a store used in the wrong
// lifecycle state.
type ConfigurationError struct {
	// Key is the logical key involved, if any.
	Key Key

	// Message is a human-readable description.
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration: %s (key=%s)", e.Message, e.Key)
	}
	return "configuration: " + e.Message
}

// ParseError reports a malformed input row.
type ParseError struct {
	// Row is the 1-based line of the input; 1 is the header.
	Row int

	// Key is the logical key whose value or column was at fault, if any.
	Key Key

	// Message is a human-readable description.
	Message string

	// Err is the underlying error (csv or strconv), if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse: row %d", e.Row)
	if e.Key != "" {
		msg += fmt.Sprintf(" key %s", e.Key)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LookupError reports a referenced entity that does not exist in the store.
type LookupError struct {
	// Name is the entity that was looked up.
	Name string

	// Message is a human-readable description.
	Message string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup: %s (name=%q)", e.Message, e.Name)
}

// IsConfigurationError returns true if err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsLookupError returns true if err is or wraps a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

func configErr(key Key, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: fmt.Sprintf(format, args...)}
}
