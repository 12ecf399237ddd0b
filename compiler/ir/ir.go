// Package ir holds the immutable intermediate representation produced by the
// DSL interpreter and consumed by the validator and the emitters. Records are
// finalized once per entry-point traversal and never mutated afterwards; the
// emitters rely on the declared ordering of every slice in this package, so
// re-running the pipeline on unchanged input serializes identically.
package ir

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Lifetime controls how a service instance is stored in generated code.
type Lifetime int

const (
	// Singleton constructs the service once per process and caches it.
	Singleton Lifetime = iota
	// Scoped behaves as Singleton for the lifetime of one invocation.
	Scoped
	// Transient constructs a fresh instance on every resolution.
	Transient
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// MessageKind classifies a route by its effect.
type MessageKind int

const (
	// KindCommand mutates state.
	KindCommand MessageKind = iota
	// KindQuery only reads state.
	KindQuery
	// KindIdempotent mutates state but is safe to repeat.
	KindIdempotent
)

// String returns the kind name.
func (k MessageKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindQuery:
		return "query"
	case KindIdempotent:
		return "idempotent-command"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParamOrigin says where a handler parameter's value comes from.
type ParamOrigin int

const (
	// FromRoute binds a captured route segment.
	FromRoute ParamOrigin = iota
	// FromService resolves a registered service.
	FromService
	// FromFramework passes a framework value (context, console).
	FromFramework
)

// String returns the origin name.
func (o ParamOrigin) String() string {
	switch o {
	case FromRoute:
		return "route"
	case FromService:
		return "service"
	case FromFramework:
		return "framework"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// ReturnKind classifies a handler's return shape.
type ReturnKind int

const (
	// ReturnNone is func(...).
	ReturnNone ReturnKind = iota
	// ReturnError is func(...) error.
	ReturnError
	// ReturnValue is func(...) T.
	ReturnValue
	// ReturnValueError is func(...) (T, error).
	ReturnValueError
)

// HandlerKind discriminates the two DSL forms a handler can come from.
// Both converge on the same HandlerDefinition shape so the emitters never
// need to know which form produced it.
type HandlerKind int

const (
	// HandlerDelegate is a function literal or a function reference.
	HandlerDelegate HandlerKind = iota
	// HandlerMessage is a declared command/query type with an Execute method.
	HandlerMessage
)

// FeatureSet holds the per-app feature flags.
type FeatureSet struct {
	Container  bool `json:"container,omitempty"`
	Repl       bool `json:"repl,omitempty"`
	Completion bool `json:"completion,omitempty"`
	Telemetry  bool `json:"telemetry,omitempty"`
}

// CallSite is a source location of an intercepted entry-point call.
type CallSite struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// String formats the site as file:line:col.
func (s CallSite) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Param is one handler parameter in declaration order.
type Param struct {
	Name     string      `json:"name"`
	GoType   string      `json:"go_type"`
	Origin   ParamOrigin `json:"origin"`
	Segment  string      `json:"segment,omitempty"` // route segment name for FromRoute
	Repeated bool        `json:"repeated,omitempty"`
	Optional bool        `json:"optional,omitempty"`
}

// HandlerDefinition is the unified handler shape.
type HandlerDefinition struct {
	Kind HandlerKind `json:"kind"`
	// FuncName is the referenced function for delegate handlers
	// ("deploy" or "tool.Deploy"); empty for literals.
	FuncName string `json:"func_name,omitempty"`
	// Source is the printed function literal, re-emitted verbatim.
	Source string `json:"source,omitempty"`
	// TypeName is the message type for HandlerMessage.
	TypeName string `json:"type_name,omitempty"`
	// PointerRecv reports whether the message Execute method has a
	// pointer receiver.
	PointerRecv bool `json:"pointer_recv,omitempty"`

	Params       []Param    `json:"params"`
	Returns      ReturnKind `json:"returns"`
	ValueType    string     `json:"value_type,omitempty"`
	WantsContext bool       `json:"wants_context,omitempty"`
}

// Specificity is the computed ordering vector of a route. Higher compares
// first. It is derived by the validator, never set by the interpreter.
type Specificity struct {
	Literals        int  `json:"literals"`
	TypedParams     int  `json:"typed_params"`
	RequiredOptions int  `json:"required_options"`
	CatchAll        bool `json:"catch_all,omitempty"`
}

// Compare orders two specificity vectors: routes without a catch-all first,
// then more literals, more typed parameters, more required options. Returns
// a negative value when s is more specific than o.
func (s Specificity) Compare(o Specificity) int {
	if s.CatchAll != o.CatchAll {
		if s.CatchAll {
			return 1
		}
		return -1
	}
	if s.Literals != o.Literals {
		return o.Literals - s.Literals
	}
	if s.TypedParams != o.TypedParams {
		return o.TypedParams - s.TypedParams
	}
	if s.RequiredOptions != o.RequiredOptions {
		return o.RequiredOptions - s.RequiredOptions
	}
	return 0
}

// SegmentDefinition aliases the segment shape produced by the pattern
// source. The IR stores segments exactly as parsed; order is fixed at
// creation and never reordered.
type SegmentDefinition struct {
	Kind     int                `json:"kind"`
	Text     string             `json:"text,omitempty"`
	Name     string             `json:"name,omitempty"`
	Type     string             `json:"type,omitempty"`
	Optional bool               `json:"optional,omitempty"`
	Repeated bool               `json:"repeated,omitempty"`
	Short    string             `json:"short,omitempty"`
	Value    *SegmentDefinition `json:"value,omitempty"`
	Required bool               `json:"required,omitempty"`
}

// Segment kind values, mirroring the pattern package.
const (
	SegLiteral = iota
	SegParam
	SegCatchAll
	SegOption
)

// RouteDefinition is one pattern-to-handler binding.
type RouteDefinition struct {
	Pattern     string               `json:"pattern"`
	Segments    []*SegmentDefinition `json:"segments"`
	GroupPrefix []string             `json:"group_prefix,omitempty"`
	Kind        MessageKind          `json:"kind"`
	Handler     *HandlerDefinition   `json:"handler,omitempty"`
	Response    string               `json:"response,omitempty"`
	Aliases     []string             `json:"aliases,omitempty"`
	Description string               `json:"description,omitempty"`
	// Order is the declaration sequence within the app; the tie-break of
	// last resort in specificity comparison.
	Order int `json:"order"`
	// Specificity is filled in by the validator.
	Specificity Specificity `json:"specificity"`
	// Site is the Route/Command call location, for diagnostics.
	Site CallSite `json:"site"`
}

// FullPattern returns the pattern with the group prefix chain applied.
func (r *RouteDefinition) FullPattern() string {
	out := ""
	for _, p := range r.GroupPrefix {
		out += p + " "
	}
	return out + r.Pattern
}

// ServiceDefinition is one registered service.
type ServiceDefinition struct {
	// Contract is the printed constructor result type, the identity
	// services are resolved by.
	Contract string   `json:"contract"`
	Impl     string   `json:"impl"` // constructor function name
	Lifetime Lifetime `json:"lifetime"`
	// Deps are the constructor parameter contract types, in order.
	Deps []string `json:"deps,omitempty"`
	Site CallSite `json:"site"`
}

// ConverterDefinition registers a custom string conversion for a value type.
type ConverterDefinition struct {
	// TypeName is the printed target Go type.
	TypeName string `json:"type_name"`
	// FuncName is the user conversion function, func(string) (T, error).
	FuncName string   `json:"func_name"`
	Site     CallSite `json:"site"`
}

// AppModel is the finalized IR of one entry point.
type AppModel struct {
	// Key is the stable identity derived from the builder construction
	// site; it deduplicates apps reachable from multiple call paths.
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	// Package is the Go package name the app lives in; Dir is where the
	// generated file is written.
	Package string `json:"package"`
	Dir     string `json:"dir,omitempty"`

	Routes     []*RouteDefinition     `json:"routes"`
	Services   []*ServiceDefinition   `json:"services,omitempty"`
	Converters []*ConverterDefinition `json:"converters,omitempty"`
	Features   FeatureSet             `json:"features"`

	// CallSites maps the finalize method ("run", "run-repl") to the call
	// sites that must redirect into the generated dispatcher.
	CallSites map[string][]CallSite `json:"call_sites,omitempty"`

	// Imports are the import specs of the files the app was interpreted
	// from, rendered as Go source lines. The writer injects them so that
	// verbatim handler literals resolve, then prunes the unused ones.
	Imports []string `json:"imports,omitempty"`
}

// Service returns the registered service for a contract type, or nil.
func (a *AppModel) Service(contract string) *ServiceDefinition {
	for _, s := range a.Services {
		if s.Contract == contract {
			return s
		}
	}
	return nil
}

// Converter returns the registered converter for a Go type, or nil.
func (a *AppModel) Converter(typeName string) *ConverterDefinition {
	for _, c := range a.Converters {
		if c.TypeName == typeName {
			return c
		}
	}
	return nil
}

// SortedCallSiteMethods returns the CallSites keys in stable order.
func (a *AppModel) SortedCallSiteMethods() []string {
	methods := make([]string, 0, len(a.CallSites))
	for m := range a.CallSites {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// MarshalStable serializes the model with a stable field and key order.
// Two traversals of identical source must produce identical bytes.
func (a *AppModel) MarshalStable() ([]byte, error) {
	return json.Marshal(a)
}
