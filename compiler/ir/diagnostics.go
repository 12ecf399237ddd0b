package ir

import (
	"fmt"
	"go/token"
	"sort"
)

// Severity of a diagnostic.
type Severity int

const (
	// SeverityError blocks code emission for the enclosing app.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not block emission.
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Stable diagnostic codes. Codes are part of the public contract: tooling
// keys on them, so existing codes are never renumbered.
const (
	CodeUnknownMethod       = "NURU001" // unrecognized method on a builder value
	CodeUntraceableBuilder  = "NURU002" // builder value not resolvable by single-block traversal
	CodeDuplicateRoute      = "NURU003"
	CodeUnreachableRoute    = "NURU004"
	CodeUnregisteredService = "NURU005"
	CodeDependencyCycle     = "NURU006"
	CodeUnsupportedParam    = "NURU007"
	CodeUnsupportedHandler  = "NURU008"
	CodePatternParse        = "NURU009"
	CodeUnboundParam        = "NURU010" // warning: route capture no handler parameter binds
	CodeDuplicateIntercept  = "NURU011"
	CodeNonConstantArg      = "NURU012" // DSL argument that must be a constant literal
)

// Diagnostic is one reported violation, attached to the most specific
// source location available.
type Diagnostic struct {
	Code     string         `json:"code"`
	Severity Severity       `json:"severity"`
	Pos      token.Position `json:"pos"`
	Message  string         `json:"message"`
}

// String formats the diagnostic the way the CLI prints it.
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Pos, d.Severity, d.Code, d.Message)
}

// Diagnostics is the write-once append list of one app. It is never
// truncated; emission checks HasErrors before writing anything.
type Diagnostics struct {
	list []*Diagnostic
}

// Errorf appends an error diagnostic.
func (ds *Diagnostics) Errorf(code string, pos token.Position, format string, args ...any) {
	ds.list = append(ds.list, &Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a warning diagnostic.
func (ds *Diagnostics) Warnf(code string, pos token.Position, format string, args ...any) {
	ds.list = append(ds.list, &Diagnostic{
		Code:     code,
		Severity: SeverityWarning,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (ds *Diagnostics) HasErrors() bool {
	for _, d := range ds.list {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// All returns the diagnostics sorted by position then code, for
// deterministic reporting.
func (ds *Diagnostics) All() []*Diagnostic {
	out := make([]*Diagnostic, len(ds.list))
	copy(out, ds.list)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pos.Filename != b.Pos.Filename {
			return a.Pos.Filename < b.Pos.Filename
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return a.Code < b.Code
	})
	return out
}

// Len returns the number of recorded diagnostics.
func (ds *Diagnostics) Len() int {
	return len(ds.list)
}
