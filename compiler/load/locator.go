package load

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// Finalize method names recognized by the locator, and the dispatcher
// method keys they map to.
var finalizeMethods = map[string]string{
	"Run":     "run",
	"RunRepl": "run-repl",
}

// Entry is one located entry point: a builder construction together with
// every finalize call that was traced back to it. Two finalize calls on the
// same construction (Run and RunRepl on one builder) produce one Entry.
type Entry struct {
	Pkg *Pkg
	// File and Func enclose the construction call. For best-effort
	// entries they enclose the finalize call instead.
	File *ast.File
	Func *ast.FuncDecl
	// New is the nuru.New construction call; nil when the receiver could
	// not be traced and the entry is best-effort.
	New *ast.CallExpr
	// Alias is the local import name of the root package in File.
	Alias string
	// Sites maps dispatcher method ("run", "run-repl") to intercepted
	// call sites.
	Sites map[string][]ir.CallSite
	// CrossBlock marks a construction found outside the finalize call's
	// function (package-level variable); a single-block traversal cannot
	// interpret it and the interpreter reports it instead of mis-binding.
	CrossBlock bool
	// Key is the app identity derived from the construction site.
	Key string
}

// Pos returns the position the entry's diagnostics anchor to.
func (e *Entry) Pos() token.Position {
	if e.New != nil {
		return e.Pkg.Fset.Position(e.New.Pos())
	}
	return e.Pkg.Fset.Position(e.File.Pos())
}

// Locate scans the package for finalize calls and groups them by the
// builder construction they resolve to. Untraceable finalize calls in
// functions that touch the DSL still yield a best-effort entry so the
// interpreter can raise a scoped diagnostic rather than drop the app.
func Locate(p *Pkg) []*Entry {
	byKey := make(map[string]*Entry)
	var order []string

	for _, f := range p.Files {
		alias := nuruAlias(f)
		if alias == "" {
			continue
		}
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil {
				continue
			}
			ast.Inspect(fn.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				method, ok := finalizeMethods[sel.Sel.Name]
				if !ok {
					return true
				}
				entryFor(p, f, fn, alias, byKey, &order, call, sel, method)
				return true
			})
		}
	}

	entries := make([]*Entry, 0, len(order))
	for _, k := range order {
		entries = append(entries, byKey[k])
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func entryFor(p *Pkg, f *ast.File, fn *ast.FuncDecl, alias string, byKey map[string]*Entry, order *[]string, call *ast.CallExpr, sel *ast.SelectorExpr, method string) {
	site := callSite(p.Fset, call)
	newCall, crossBlock := traceNew(p, f, fn, alias, sel.X)
	var e *Entry
	switch {
	case newCall != nil:
		key := siteKey(p.Fset, newCall)
		e = byKey[key]
		if e == nil {
			e = &Entry{
				Pkg:        p,
				File:       f,
				Func:       fn,
				New:        newCall,
				Alias:      alias,
				Sites:      make(map[string][]ir.CallSite),
				CrossBlock: crossBlock,
				Key:        key,
			}
			byKey[key] = e
			*order = append(*order, key)
		}
	case usesDSL(fn, alias) || appTypedChain(p, fn, sel.X):
		// The function builds with the DSL but the receiver is not
		// traceable: keep a best-effort entry keyed by the finalize
		// site.
		key := siteKey(p.Fset, call)
		e = byKey[key]
		if e == nil {
			e = &Entry{
				Pkg:   p,
				File:  f,
				Func:  fn,
				Alias: alias,
				Sites: make(map[string][]ir.CallSite),
				Key:   key,
			}
			byKey[key] = e
			*order = append(*order, key)
		}
	default:
		// A Run/RunRepl call on an unrelated type; inert.
		return
	}
	e.Sites[method] = append(e.Sites[method], site)
}

// traceNew resolves the receiver expression of a finalize call back to its
// nuru.New construction. It follows chained calls, parentheses, and
// same-function (or package-level) variable assignments. The second result
// reports a package-level construction, which the single-block interpreter
// cannot traverse.
func traceNew(p *Pkg, f *ast.File, fn *ast.FuncDecl, alias string, expr ast.Expr) (*ast.CallExpr, bool) {
	for i := 0; i < 64; i++ { // bounded; chains are short
		switch x := expr.(type) {
		case *ast.ParenExpr:
			expr = x.X
		case *ast.CallExpr:
			sel, ok := x.Fun.(*ast.SelectorExpr)
			if !ok {
				return nil, false
			}
			if id, ok := sel.X.(*ast.Ident); ok && id.Name == alias && sel.Sel.Name == "New" {
				return x, false
			}
			expr = sel.X
		case *ast.Ident:
			rhs := lookupAssign(fn, x.Name)
			if rhs != nil {
				expr = rhs
				continue
			}
			if rhs := lookupPackageVar(f, x.Name); rhs != nil {
				nc, _ := traceNew(p, f, nil, alias, rhs)
				return nc, nc != nil
			}
			return nil, false
		default:
			return nil, false
		}
	}
	return nil, false
}

// lookupAssign finds the right-hand side bound to name by an assignment or
// var declaration in the function body.
func lookupAssign(fn *ast.FuncDecl, name string) ast.Expr {
	if fn == nil || fn.Body == nil {
		return nil
	}
	var rhs ast.Expr
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		switch stmt := n.(type) {
		case *ast.AssignStmt:
			for i, lhs := range stmt.Lhs {
				id, ok := lhs.(*ast.Ident)
				if ok && id.Name == name && i < len(stmt.Rhs) {
					rhs = stmt.Rhs[i]
				}
			}
		case *ast.DeclStmt:
			gen, ok := stmt.Decl.(*ast.GenDecl)
			if !ok {
				return true
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, id := range vs.Names {
					if id.Name == name && i < len(vs.Values) {
						rhs = vs.Values[i]
					}
				}
			}
		}
		return true
	})
	return rhs
}

// lookupPackageVar finds the initializer of a package-level var in the file.
func lookupPackageVar(f *ast.File, name string) ast.Expr {
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, id := range vs.Names {
				if id.Name == name && i < len(vs.Values) {
					return vs.Values[i]
				}
			}
		}
	}
	return nil
}

// appTypedChain reports whether the receiver chain bottoms out in a call to
// a same-package function whose declared result is the DSL App type. Such
// receivers are builders even though the construction is out of reach for a
// single-block traversal.
func appTypedChain(p *Pkg, fn *ast.FuncDecl, expr ast.Expr) bool {
	for i := 0; i < 64; i++ {
		switch x := expr.(type) {
		case *ast.ParenExpr:
			expr = x.X
		case *ast.CallExpr:
			switch f := x.Fun.(type) {
			case *ast.SelectorExpr:
				expr = f.X
			case *ast.Ident:
				return funcReturnsApp(p, f.Name)
			default:
				return false
			}
		case *ast.Ident:
			rhs := lookupAssign(fn, x.Name)
			if rhs == nil {
				return false
			}
			expr = rhs
		default:
			return false
		}
	}
	return false
}

// funcReturnsApp reports whether a package function declares a *App result.
func funcReturnsApp(p *Pkg, name string) bool {
	for _, f := range p.Files {
		alias := nuruAlias(f)
		if alias == "" {
			continue
		}
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv != nil || fd.Name.Name != name || fd.Type.Results == nil {
				continue
			}
			for _, r := range fd.Type.Results.List {
				t := r.Type
				if star, ok := t.(*ast.StarExpr); ok {
					t = star.X
				}
				if sel, ok := t.(*ast.SelectorExpr); ok {
					if id, ok := sel.X.(*ast.Ident); ok && id.Name == alias && sel.Sel.Name == "App" {
						return true
					}
				}
			}
		}
	}
	return false
}

// usesDSL reports whether the function body mentions the root package.
func usesDSL(fn *ast.FuncDecl, alias string) bool {
	if fn == nil || fn.Body == nil {
		return false
	}
	found := false
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if found {
			return false
		}
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok && id.Name == alias {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func callSite(fset *token.FileSet, call *ast.CallExpr) ir.CallSite {
	pos := fset.Position(call.Pos())
	return ir.CallSite{File: filepath.Base(pos.Filename), Line: pos.Line, Col: pos.Column}
}

// siteKey derives the stable identity key from a call position. It matches
// the key the runtime computes in nuru.New, so the generated registration
// resolves at run time.
func siteKey(fset *token.FileSet, call *ast.CallExpr) string {
	pos := fset.Position(call.Pos())
	return filepath.Base(pos.Filename) + ":" + strconv.Itoa(pos.Line)
}
