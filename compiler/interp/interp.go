// Package interp walks the statements reachable from one entry point and
// interprets the route declaration DSL into the intermediate
// representation. The walk is single-pass and statement-ordered; builder
// values flow through an identity-keyed table so fluent, fragmented and
// compound chains are semantically equivalent.
package interp

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/load"
)

// Result is the outcome of interpreting one entry point.
type Result struct {
	App   *ir.AppModel
	Diags *ir.Diagnostics
}

// Interpreter traverses one entry point. It is traversal-local state,
// rebuilt per app; nothing here survives across entry points.
type Interpreter struct {
	entry *load.Entry
	diags *ir.Diagnostics
	app   *appBuilder
	// env maps a program variable to the builder value currently bound
	// to it. Bindings are scoped to this traversal.
	env map[string]builderValue
}

// builderValue is any of the in-progress accumulators.
type builderValue interface{ isBuilder() }

func (*appBuilder) isBuilder()   {}
func (*groupBuilder) isBuilder() {}
func (*routeBuilder) isBuilder() {}

// Interpret runs the DSL interpretation for one located entry point.
func Interpret(e *load.Entry) *Result {
	in := &Interpreter{
		entry: e,
		diags: &ir.Diagnostics{},
		env:   make(map[string]builderValue),
	}
	in.app = &appBuilder{
		key:       e.Key,
		pkg:       e.Pkg.Name,
		dir:       e.Pkg.Dir,
		callSites: e.Sites,
		imports:   load.ImportLines(e.File),
	}

	if e.New == nil || e.CrossBlock {
		in.diags.Errorf(ir.CodeUntraceableBuilder, e.Pos(),
			"builder is constructed outside the block containing the entry point; "+
				"declare routes in the same function that calls Run")
		return &Result{App: in.app.build(in.diags), Diags: in.diags}
	}

	in.app.name, _ = in.stringArg(e.New, 0)
	in.walkStmts(e.Func.Body.List)
	return &Result{App: in.app.build(in.diags), Diags: in.diags}
}

// walkStmts visits statements in source order, threading builder bindings
// through assignments.
func (in *Interpreter) walkStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		in.walkStmt(stmt)
	}
}

func (in *Interpreter) walkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		in.eval(s.X)
	case *ast.AssignStmt:
		in.assign(s.Lhs, s.Rhs)
	case *ast.DeclStmt:
		gen, ok := s.Decl.(*ast.GenDecl)
		if !ok {
			return
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			lhs := make([]ast.Expr, len(vs.Names))
			for i, n := range vs.Names {
				lhs[i] = n
			}
			in.assign(lhs, vs.Values)
		}
	case *ast.ReturnStmt:
		for _, r := range s.Results {
			in.eval(r)
		}
	case *ast.IfStmt:
		if s.Init != nil {
			in.walkStmt(s.Init)
		}
		in.eval(s.Cond)
		in.walkStmts(s.Body.List)
		if s.Else != nil {
			in.walkStmt(s.Else)
		}
	case *ast.BlockStmt:
		in.walkStmts(s.List)
	case *ast.ForStmt:
		if s.Init != nil {
			in.walkStmt(s.Init)
		}
		in.walkStmts(s.Body.List)
	case *ast.RangeStmt:
		in.walkStmts(s.Body.List)
	case *ast.SwitchStmt:
		for _, c := range s.Body.List {
			if cc, ok := c.(*ast.CaseClause); ok {
				in.walkStmts(cc.Body)
			}
		}
	}
}

func (in *Interpreter) assign(lhs, rhs []ast.Expr) {
	for i, l := range lhs {
		id, ok := l.(*ast.Ident)
		if !ok || i >= len(rhs) {
			if i < len(rhs) {
				in.eval(rhs[i])
			}
			continue
		}
		v := in.eval(rhs[i])
		if v != nil {
			in.env[id.Name] = v
		} else {
			// The variable no longer holds a builder.
			delete(in.env, id.Name)
		}
	}
}

// eval evaluates an expression for its builder value, dispatching DSL
// method calls as they are encountered. Non-builder expressions are inert:
// their arguments are still scanned so chains passed into unrelated calls
// (os.Exit(app.Run(...))) are not missed.
func (in *Interpreter) eval(expr ast.Expr) builderValue {
	switch x := expr.(type) {
	case *ast.ParenExpr:
		return in.eval(x.X)
	case *ast.Ident:
		return in.env[x.Name]
	case *ast.CallExpr:
		return in.evalCall(x)
	default:
		return nil
	}
}

func (in *Interpreter) evalCall(call *ast.CallExpr) builderValue {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		// Calls through plain identifiers are inert; scan arguments.
		in.evalArgs(call)
		return nil
	}
	if id, ok := sel.X.(*ast.Ident); ok && id.Name == in.entry.Alias && sel.Sel.Name == "New" {
		if call == in.entry.New {
			return in.app
		}
		// A second app in the same function has its own entry; its
		// chain is inert for this traversal.
		return nil
	}
	recv := in.eval(sel.X)
	if recv == nil {
		in.evalArgs(call)
		return nil
	}
	return in.dispatch(recv, sel.Sel.Name, call)
}

func (in *Interpreter) evalArgs(call *ast.CallExpr) {
	for _, arg := range call.Args {
		in.eval(arg)
	}
}

// dispatch interprets one recognized DSL call. The method surface is
// closed: an unrecognized name on a builder receiver is a hard error,
// never a silent no-op.
func (in *Interpreter) dispatch(recv builderValue, method string, call *ast.CallExpr) builderValue {
	switch b := recv.(type) {
	case *appBuilder:
		return in.dispatchApp(b, method, call)
	case *groupBuilder:
		return in.dispatchGroup(b, method, call)
	case *routeBuilder:
		return in.dispatchRoute(b, method, call)
	default:
		return nil
	}
}

func (in *Interpreter) dispatchApp(b *appBuilder, method string, call *ast.CallExpr) builderValue {
	switch method {
	case "Description":
		b.description, _ = in.stringArg(call, 0)
		return b
	case "Version":
		b.version, _ = in.stringArg(call, 0)
		return b
	case "Route":
		return in.openRoute(b, nil, call)
	case "Group":
		prefix, ok := in.stringArg(call, 0)
		if !ok {
			return b
		}
		return &groupBuilder{app: b, prefix: []string{prefix}}
	case "Command":
		in.extractCommand(call)
		return b
	case "Service":
		in.extractService(call)
		return b
	case "Converter":
		in.extractConverter(call)
		return b
	case "UseContainer":
		b.features.Container = true
		return b
	case "EnableRepl":
		b.features.Repl = true
		return b
	case "EnableCompletion":
		b.features.Completion = true
		return b
	case "EnableTelemetry":
		b.features.Telemetry = true
		return b
	case "Build", "Run", "RunRepl":
		// Finalization; call sites were recorded by the locator.
		return b
	default:
		in.diags.Errorf(ir.CodeUnknownMethod, in.pos(call),
			"unrecognized builder method App.%s; the DSL surface is closed", method)
		return b
	}
}

func (in *Interpreter) dispatchGroup(b *groupBuilder, method string, call *ast.CallExpr) builderValue {
	switch method {
	case "Route":
		return in.openRoute(b.app, b.prefix, call)
	case "Group":
		prefix, ok := in.stringArg(call, 0)
		if !ok {
			return b
		}
		chain := make([]string, 0, len(b.prefix)+1)
		chain = append(chain, b.prefix...)
		chain = append(chain, prefix)
		return &groupBuilder{app: b.app, prefix: chain}
	case "Describe":
		// Group descriptions only shape help output; recorded per-route.
		return b
	case "App":
		return b.app
	default:
		in.diags.Errorf(ir.CodeUnknownMethod, in.pos(call),
			"unrecognized builder method Group.%s; the DSL surface is closed", method)
		return b
	}
}

func (in *Interpreter) dispatchRoute(b *routeBuilder, method string, call *ast.CallExpr) builderValue {
	switch method {
	case "Describe":
		b.description, _ = in.stringArg(call, 0)
		return b
	case "Alias":
		for i := range call.Args {
			if alias, ok := in.stringArg(call, i); ok {
				b.aliases = append(b.aliases, alias)
			}
		}
		return b
	case "AsQuery":
		b.kind = ir.KindQuery
		return b
	case "AsCommand":
		b.kind = ir.KindCommand
		return b
	case "AsIdempotent":
		b.kind = ir.KindIdempotent
		return b
	case "Done":
		return b.app
	default:
		in.diags.Errorf(ir.CodeUnknownMethod, in.pos(call),
			"unrecognized builder method Route.%s; the DSL surface is closed", method)
		return b
	}
}

func (in *Interpreter) openRoute(app *appBuilder, prefix []string, call *ast.CallExpr) builderValue {
	patternText, ok := in.stringArg(call, 0)
	if !ok {
		return app
	}
	var raw *rawHandler
	if len(call.Args) > 1 {
		raw, _ = in.extractHandler(call.Args[1])
	}
	return app.addRoute(prefix, patternText, raw, in.pos(call))
}

// stringArg reads a constant string literal argument. Patterns, names and
// descriptions must be compile-time constants for static interpretation.
func (in *Interpreter) stringArg(call *ast.CallExpr, i int) (string, bool) {
	if i >= len(call.Args) {
		in.diags.Errorf(ir.CodeNonConstantArg, in.pos(call), "missing argument %d", i)
		return "", false
	}
	lit, ok := call.Args[i].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		in.diags.Errorf(ir.CodeNonConstantArg, in.pos(call.Args[i]),
			"argument must be a constant string literal")
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		in.diags.Errorf(ir.CodeNonConstantArg, in.pos(call.Args[i]), "malformed string literal")
		return "", false
	}
	return s, true
}

func (in *Interpreter) pos(n ast.Node) token.Position {
	return in.entry.Pkg.Fset.Position(n.Pos())
}
