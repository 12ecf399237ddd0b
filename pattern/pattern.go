// Package pattern turns route pattern text into an ordered list of typed
// segments. It is the segment source consumed by the compiler pipeline;
// the pipeline itself never inspects pattern text directly.
package pattern

import (
	"fmt"
	"strings"
)

// Kind discriminates the segment variants.
type Kind int

const (
	// KindLiteral is a fixed word that must appear verbatim.
	KindLiteral Kind = iota
	// KindParam is a positional parameter capture.
	KindParam
	// KindCatchAll captures the remaining positional arguments.
	KindCatchAll
	// KindOption is a named option with an optional typed value.
	KindOption
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindParam:
		return "param"
	case KindCatchAll:
		return "catch-all"
	case KindOption:
		return "option"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Segment is one atomic unit of a route pattern.
//
// The populated fields depend on Kind:
//
//   - KindLiteral: Text
//   - KindParam: Name, Type, Optional
//   - KindCatchAll: Name, Type (element type)
//   - KindOption: Name (long form, no dashes), Short, Value, Repeated, Required
type Segment struct {
	Kind     Kind     `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type,omitempty"`
	Optional bool     `json:"optional,omitempty"`
	Repeated bool     `json:"repeated,omitempty"`
	Short    string   `json:"short,omitempty"`
	Value    *Segment `json:"value,omitempty"`
	Required bool     `json:"required,omitempty"`
}

// String renders the segment back in pattern syntax. Used in diagnostics
// and generated help text.
func (s *Segment) String() string {
	switch s.Kind {
	case KindLiteral:
		return s.Text
	case KindParam:
		var b strings.Builder
		b.WriteString("{")
		b.WriteString(s.Name)
		if s.Type != "" && s.Type != TypeString {
			b.WriteString(":")
			b.WriteString(s.Type)
		}
		if s.Optional {
			b.WriteString("?")
		}
		b.WriteString("}")
		return b.String()
	case KindCatchAll:
		if s.Type != "" && s.Type != TypeString {
			return "{*" + s.Name + ":" + s.Type + "}"
		}
		return "{*" + s.Name + "}"
	case KindOption:
		var b strings.Builder
		b.WriteString("--")
		b.WriteString(s.Name)
		if s.Short != "" {
			b.WriteString(",-")
			b.WriteString(s.Short)
		}
		if s.Value != nil {
			b.WriteString(" ")
			b.WriteString(s.Value.String())
		}
		if s.Repeated {
			b.WriteString("*")
		}
		if !s.Required {
			b.WriteString("?")
		}
		return b.String()
	default:
		return ""
	}
}

// Supported value types for parameters and option values.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeInt64    = "int64"
	TypeFloat64  = "float64"
	TypeBool     = "bool"
	TypeUUID     = "uuid"
	TypeTime     = "time"
	TypeDuration = "duration"
)

var valueTypes = map[string]bool{
	TypeString:   true,
	TypeInt:      true,
	TypeInt64:    true,
	TypeFloat64:  true,
	TypeBool:     true,
	TypeUUID:     true,
	TypeTime:     true,
	TypeDuration: true,
}

// KnownType reports whether t is a built-in value type name.
// Unknown names are allowed in patterns and must be backed by a
// registered converter.
func KnownType(t string) bool {
	return valueTypes[t]
}

// ParseError reports a malformed pattern.
type ParseError struct {
	Pattern string
	Offset  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("pattern %q at offset %d: %s", e.Pattern, e.Offset, e.Message)
}
