// Package gen validates interpreted app models and emits the generated
// dispatch code.
package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("nuru: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("nuru: code generation failed")
	// ErrValidationFailed indicates route validation reported errors.
	ErrValidationFailed = errors.New("nuru: validation failed")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("nuru: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("nuru: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	App     string // application key
	Phase   string // "matcher", "invoke", "writer", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("nuru: generation error")
	if e.App != "" {
		b.WriteString(" for app ")
		b.WriteString(e.App)
	}
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(app, phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		App:     app,
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError carries the diagnostics that aborted emission for one app.
type ValidationError struct {
	App   string
	Diags []*ir.Diagnostic
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("nuru: validation error")
	if e.App != "" {
		b.WriteString(" for app ")
		b.WriteString(e.App)
	}
	for _, d := range e.Diags {
		b.WriteString("\n\t")
		b.WriteString(d.String())
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError creates a new ValidationError.
func NewValidationError(app string, diags []*ir.Diagnostic) *ValidationError {
	return &ValidationError{App: app, Diags: diags}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsValidationError reports whether the error is a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
