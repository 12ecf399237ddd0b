package gen

import (
	"errors"
	"fmt"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

func TestConfigError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := NewConfigError("Workers", -1, "worker count must be positive")
		assert.Equal(t, `nuru: config error for "Workers" (value: -1): worker count must be positive`, err.Error())
	})

	t.Run("Error without value", func(t *testing.T) {
		err := NewConfigError("Header", nil, "header cannot be empty; generated files must be marked")
		assert.Equal(t, `nuru: config error for "Header": header cannot be empty; generated files must be marked`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := NewConfigError("Patterns", nil, "at least one package pattern is required")
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("IsConfigError", func(t *testing.T) {
		err := NewConfigError("Dir", nil, "bad")
		assert.True(t, IsConfigError(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, IsConfigError(wrapped))

		assert.False(t, IsConfigError(errors.New("other error")))
		assert.False(t, IsConfigError(nil))
	})
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewGenerationError("main.go:10", "write", "main_nuru_gen.go", "cannot store output", cause)

	t.Run("Error", func(t *testing.T) {
		assert.Equal(t,
			"nuru: generation error for app main.go:10 in phase write (file: main_nuru_gen.go): cannot store output: disk full",
			err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		assert.Equal(t, cause, errors.Unwrap(err))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is", func(t *testing.T) {
		assert.True(t, errors.Is(err, ErrGenerationFailed))
	})

	t.Run("IsGenerationError", func(t *testing.T) {
		assert.True(t, IsGenerationError(err))
		assert.False(t, IsGenerationError(errors.New("other error")))
	})
}

func TestValidationError(t *testing.T) {
	diags := &ir.Diagnostics{}
	diags.Errorf(ir.CodeDuplicateRoute, token.Position{Filename: "main.go", Line: 12, Column: 2},
		`route "deploy {tag}" duplicates route "deploy {env}"`)
	err := NewValidationError("main.go:10", diags.All())

	t.Run("Error", func(t *testing.T) {
		assert.Contains(t, err.Error(), "nuru: validation error for app main.go:10")
		assert.Contains(t, err.Error(), ir.CodeDuplicateRoute)
	})

	t.Run("Is", func(t *testing.T) {
		assert.True(t, errors.Is(err, ErrValidationFailed))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		assert.True(t, IsValidationError(err))
		assert.True(t, IsValidationError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, IsValidationError(nil))
	})
}
