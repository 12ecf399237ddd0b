package interp

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"
	"strings"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/pattern"
)

// extractHandler turns a handler expression (function literal or
// same-package function reference) into a raw handler. Classification of
// parameter origins happens later, once all services are known.
func (in *Interpreter) extractHandler(expr ast.Expr) (*rawHandler, bool) {
	pos := in.pos(expr)
	switch h := expr.(type) {
	case *ast.FuncLit:
		raw := &rawHandler{kind: ir.HandlerDelegate, pos: pos}
		if !in.readSignature(raw, h.Type) {
			return nil, false
		}
		var buf bytes.Buffer
		if err := printer.Fprint(&buf, in.entry.Pkg.Fset, h); err != nil {
			in.diags.Errorf(ir.CodeUnsupportedHandler, pos, "cannot print handler literal: %v", err)
			return nil, false
		}
		raw.source = buf.String()
		return raw, true
	case *ast.Ident:
		if h.Name == "nil" {
			return nil, false
		}
		decl := in.lookupFunc(h.Name)
		if decl == nil {
			in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
				"handler %s is not a function declared in this package", h.Name)
			return nil, false
		}
		raw := &rawHandler{kind: ir.HandlerDelegate, funcName: h.Name, pos: pos}
		if !in.readSignature(raw, decl.Type) {
			return nil, false
		}
		return raw, true
	default:
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"unsupported handler expression; use a func literal or a package function")
		return nil, false
	}
}

// readSignature fills params and return shape from a function type.
func (in *Interpreter) readSignature(raw *rawHandler, ft *ast.FuncType) bool {
	if ft.Params != nil {
		for _, field := range ft.Params.List {
			typ := types.ExprString(field.Type)
			if len(field.Names) == 0 {
				raw.params = append(raw.params, rawParam{name: "", goType: typ})
				continue
			}
			for _, name := range field.Names {
				raw.params = append(raw.params, rawParam{name: name.Name, goType: typ})
			}
		}
	}
	return in.readResults(raw, ft.Results)
}

func (in *Interpreter) readResults(raw *rawHandler, results *ast.FieldList) bool {
	if results == nil || len(results.List) == 0 {
		raw.returns = ir.ReturnNone
		return true
	}
	var typs []string
	for _, field := range results.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			typs = append(typs, types.ExprString(field.Type))
		}
	}
	switch {
	case len(typs) == 1 && typs[0] == "error":
		raw.returns = ir.ReturnError
	case len(typs) == 1:
		raw.returns = ir.ReturnValue
		raw.valueType = typs[0]
	case len(typs) == 2 && typs[1] == "error":
		raw.returns = ir.ReturnValueError
		raw.valueType = typs[0]
	default:
		in.diags.Errorf(ir.CodeUnsupportedHandler, raw.pos,
			"unsupported handler return shape (%s); use none, error, T, or (T, error)",
			strings.Join(typs, ", "))
		return false
	}
	return true
}

// lookupFunc finds a top-level function declaration in the package.
func (in *Interpreter) lookupFunc(name string) *ast.FuncDecl {
	for _, f := range in.entry.Pkg.Files {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if ok && fd.Recv == nil && fd.Name.Name == name {
				return fd
			}
		}
	}
	return nil
}

// capture is one bindable value a route can produce.
type capture struct {
	segment  string // segment name, for diagnostics and emitters
	goType   string
	repeated bool
	optional bool
}

// captures indexes a route's bindable values by normalized name.
func captures(app *ir.AppModel, route *ir.RouteDefinition) map[string]capture {
	out := make(map[string]capture)
	for _, s := range route.Segments {
		switch s.Kind {
		case ir.SegParam:
			out[normalize(s.Name)] = capture{segment: s.Name, goType: goTypeFor(app, s.Type), optional: s.Optional}
		case ir.SegCatchAll:
			out[normalize(s.Name)] = capture{segment: s.Name, goType: goTypeFor(app, s.Type), repeated: true}
		case ir.SegOption:
			if s.Value == nil {
				out[normalize(s.Name)] = capture{segment: s.Name, goType: "bool"}
				continue
			}
			c := capture{segment: s.Name, goType: goTypeFor(app, s.Value.Type), repeated: s.Repeated, optional: !s.Required}
			out[normalize(s.Name)] = c
			if n := normalize(s.Value.Name); n != normalize(s.Name) {
				out[n] = c
			}
		}
	}
	return out
}

// goTypeFor maps a pattern value type to the Go type generated captures
// carry. Custom types use their converter's Go type name verbatim.
func goTypeFor(app *ir.AppModel, patternType string) string {
	switch patternType {
	case pattern.TypeString, "":
		return "string"
	case pattern.TypeInt:
		return "int"
	case pattern.TypeInt64:
		return "int64"
	case pattern.TypeFloat64:
		return "float64"
	case pattern.TypeBool:
		return "bool"
	case pattern.TypeUUID:
		return "uuid.UUID"
	case pattern.TypeTime:
		return "time.Time"
	case pattern.TypeDuration:
		return "time.Duration"
	default:
		if c := app.Converter(patternType); c != nil {
			return c.TypeName
		}
		return patternType
	}
}

// normalize folds identifier spelling differences: DryRun, dry-run and
// dry_run are one name.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '-' || r == '_' {
			continue
		}
		b.WriteRune(lower(r))
	}
	return b.String()
}

func lower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// classifyHandler resolves every raw parameter to its origin and produces
// the final handler definition. Both DSL forms land here.
func classifyHandler(app *ir.AppModel, route *ir.RouteDefinition, raw *rawHandler, diags *ir.Diagnostics) *ir.HandlerDefinition {
	h := &ir.HandlerDefinition{
		Kind:        raw.kind,
		FuncName:    raw.funcName,
		Source:      raw.source,
		TypeName:    raw.typeName,
		PointerRecv: raw.pointerRecv,
		Returns:     raw.returns,
		ValueType:   raw.valueType,
	}
	caps := captures(app, route)
	bound := make(map[string]bool)
	pos := token.Position{Filename: route.Site.File, Line: route.Site.Line, Column: route.Site.Col}
	for _, rp := range raw.params {
		switch {
		case rp.goType == "context.Context":
			h.WantsContext = true
			h.Params = append(h.Params, ir.Param{Name: rp.name, GoType: rp.goType, Origin: ir.FromFramework})
		case rp.goType == "*console.Console":
			h.Params = append(h.Params, ir.Param{Name: rp.name, GoType: rp.goType, Origin: ir.FromFramework})
		default:
			if c, ok := caps[normalize(rp.name)]; ok {
				if !compatibleType(rp.goType, c) {
					diags.Errorf(ir.CodeUnsupportedParam, pos,
						"parameter %s has type %s but route %q captures %s",
						rp.name, rp.goType, route.Pattern, captureType(c))
					continue
				}
				bound[normalize(rp.name)] = true
				h.Params = append(h.Params, ir.Param{
					Name:     rp.name,
					GoType:   rp.goType,
					Origin:   ir.FromRoute,
					Segment:  c.segment,
					Repeated: c.repeated,
					Optional: c.optional,
				})
				continue
			}
			if svc := app.Service(rp.goType); svc != nil {
				h.Params = append(h.Params, ir.Param{Name: rp.name, GoType: rp.goType, Origin: ir.FromService})
				continue
			}
			diags.Errorf(ir.CodeUnsupportedParam, pos,
				"parameter %s (%s) matches no route capture, registered service, or framework value",
				rp.name, rp.goType)
		}
	}
	for _, s := range route.Segments {
		if s.Kind == ir.SegLiteral {
			continue
		}
		c := caps[normalize(s.Name)]
		if c.goType == "bool" && s.Kind == ir.SegOption && s.Value == nil && s.Required {
			// A required bare flag carries no information; binding is
			// optional.
			continue
		}
		if !bound[normalize(s.Name)] && (s.Value == nil || !bound[normalize(s.Value.Name)]) {
			diags.Warnf(ir.CodeUnboundParam, pos,
				"route %q captures %q but no handler parameter binds it", route.Pattern, s.Name)
		}
	}
	return h
}

// compatibleType reports whether a declared parameter type can carry a
// route capture: the exact type, a slice of it for repeated captures, or a
// pointer to it for optional non-string captures.
func compatibleType(goType string, c capture) bool {
	want := captureType(c)
	if goType == want {
		return true
	}
	if c.optional && goType == "*"+c.goType {
		return true
	}
	return false
}

// captureType is the natural Go type of a capture.
func captureType(c capture) string {
	if c.repeated {
		return "[]" + c.goType
	}
	return c.goType
}
