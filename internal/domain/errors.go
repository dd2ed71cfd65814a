package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingArgument is wrapped when a required invocation argument is absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrMalformedInput is wrapped when the table has no usable header line.
	ErrMalformedInput = errors.New("malformed input")
)

// GeneratorError is the base error type with context.
type GeneratorError struct {
	Phase      string // "config", "invoke", "parse", "template", "compose", "write"
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *GeneratorError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// NewError creates a new GeneratorError.
func NewError(phase, file string, line int, message string, cause error) *GeneratorError {
	return &GeneratorError{
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a GeneratorError carrying a remediation hint.
func NewErrorWithSuggestion(phase, file string, line int, message, suggestion string, cause error) *GeneratorError {
	err := NewError(phase, file, line, message, cause)
	err.Suggestion = suggestion
	return err
}

// MissingArgument reports an absent required argument for operation.
func MissingArgument(operation, argument string) *GeneratorError {
	return NewErrorWithSuggestion("invoke", "", 0,
		fmt.Sprintf("%s: %q is required", operation, argument),
		fmt.Sprintf("pass the %s argument with the CSV content", argument),
		ErrMissingArgument)
}

// MalformedInput reports input that cannot be parsed into a table.
func MalformedInput(message string) *GeneratorError {
	return NewErrorWithSuggestion("parse", "", 0, message,
		"the first non-blank line must be the CSV header (file_name,test_url,test_description,test_selector,...)",
		ErrMalformedInput)
}
