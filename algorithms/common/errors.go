package common

import (
	"errors"
	"fmt"
)

// InputError reports a waveform or analysis parameter that cannot be processed.
// No partial result accompanies it.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// NewInputError builds an InputError from a format string
func NewInputError(format string, args ...any) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports a malformed template table or parameter set.
// It is raised before any frame is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError builds a ConfigurationError for field
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err wraps an *InputError
func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
