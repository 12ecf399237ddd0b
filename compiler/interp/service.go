package interp

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// extractService reads a Service(lifetime, constructor) registration. The
// constructor's result type is the contract; its parameters are the
// dependency list, resolved recursively against other registrations before
// emission.
func (in *Interpreter) extractService(call *ast.CallExpr) {
	pos := in.pos(call)
	if len(call.Args) != 2 {
		in.diags.Errorf(ir.CodeUnknownMethod, pos, "Service takes a lifetime and a constructor")
		return
	}
	lifetime, ok := in.lifetimeArg(call.Args[0])
	if !ok {
		return
	}
	ctor, ok := call.Args[1].(*ast.Ident)
	if !ok {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"service constructor must be a function declared in this package")
		return
	}
	decl := in.lookupFunc(ctor.Name)
	if decl == nil {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"service constructor %s is not declared in this package", ctor.Name)
		return
	}
	if decl.Type.Results == nil || len(decl.Type.Results.List) != 1 {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"service constructor %s must return exactly one value", ctor.Name)
		return
	}
	svc := &ir.ServiceDefinition{
		Contract: types.ExprString(decl.Type.Results.List[0].Type),
		Impl:     ctor.Name,
		Lifetime: lifetime,
		Site:     ir.CallSite{File: pos.Filename, Line: pos.Line, Col: pos.Column},
	}
	if decl.Type.Params != nil {
		for _, field := range decl.Type.Params.List {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				svc.Deps = append(svc.Deps, types.ExprString(field.Type))
			}
		}
	}
	in.app.services = append(in.app.services, svc)
}

// lifetimeArg resolves nuru.Singleton / nuru.Scoped / nuru.Transient.
func (in *Interpreter) lifetimeArg(expr ast.Expr) (ir.Lifetime, bool) {
	sel, ok := expr.(*ast.SelectorExpr)
	if ok {
		if id, idOk := sel.X.(*ast.Ident); idOk && id.Name == in.entry.Alias {
			switch sel.Sel.Name {
			case "Singleton":
				return ir.Singleton, true
			case "Scoped":
				// Scoped behaves as singleton per process invocation.
				return ir.Scoped, true
			case "Transient":
				return ir.Transient, true
			}
		}
	}
	in.diags.Errorf(ir.CodeNonConstantArg, in.pos(expr),
		"service lifetime must be one of %s.Singleton, %s.Scoped, %s.Transient",
		in.entry.Alias, in.entry.Alias, in.entry.Alias)
	return ir.Singleton, false
}

// extractConverter reads a Converter(fn) registration. The function must
// have the shape func(string) (T, error); T becomes a usable route
// parameter type.
func (in *Interpreter) extractConverter(call *ast.CallExpr) {
	pos := in.pos(call)
	if len(call.Args) != 1 {
		in.diags.Errorf(ir.CodeUnknownMethod, pos, "Converter takes one conversion function")
		return
	}
	fn, ok := call.Args[0].(*ast.Ident)
	if !ok {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"converter must be a function declared in this package")
		return
	}
	decl := in.lookupFunc(fn.Name)
	if decl == nil {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"converter %s is not declared in this package", fn.Name)
		return
	}
	ft := decl.Type
	if ft.Params == nil || len(ft.Params.List) != 1 || types.ExprString(ft.Params.List[0].Type) != "string" ||
		ft.Results == nil || len(ft.Results.List) != 2 || types.ExprString(ft.Results.List[1].Type) != "error" {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"converter %s must have shape func(string) (T, error)", fn.Name)
		return
	}
	in.app.converters = append(in.app.converters, &ir.ConverterDefinition{
		TypeName: types.ExprString(ft.Results.List[0].Type),
		FuncName: fn.Name,
		Site:     ir.CallSite{File: pos.Filename, Line: pos.Line, Col: pos.Column},
	})
}

// checkServiceGraph verifies every dependency resolves to a registration
// and the graph is acyclic. Both violations are compile errors: a missing
// registration must never become a runtime nil, and a cycle must never
// become runtime recursion.
func checkServiceGraph(app *ir.AppModel, diags *ir.Diagnostics) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var visit func(svc *ir.ServiceDefinition, path []string)
	visit = func(svc *ir.ServiceDefinition, path []string) {
		switch state[svc.Contract] {
		case visiting:
			diags.Errorf(ir.CodeDependencyCycle, sitePos(svc.Site),
				"service dependency cycle: %s", cyclePath(path, svc.Contract))
			return
		case done:
			return
		}
		state[svc.Contract] = visiting
		for _, dep := range svc.Deps {
			depSvc := app.Service(dep)
			if depSvc == nil {
				diags.Errorf(ir.CodeUnregisteredService, sitePos(svc.Site),
					"service %s depends on %s, which has no registration", svc.Contract, dep)
				continue
			}
			visit(depSvc, append(path, svc.Contract))
		}
		state[svc.Contract] = done
	}
	for _, svc := range app.Services {
		visit(svc, nil)
	}
}

func cyclePath(path []string, last string) string {
	out := ""
	start := 0
	for i, p := range path {
		if p == last {
			start = i
			break
		}
	}
	for _, p := range path[start:] {
		out += p + " -> "
	}
	return out + last
}

func sitePos(s ir.CallSite) token.Position {
	return token.Position{Filename: s.File, Line: s.Line, Column: s.Col}
}
