package interp

import (
	"go/ast"
	"go/types"
	"reflect"
	"strings"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// Marker types a declarative message struct may embed, and the message
// kinds they select.
var markerKinds = map[string]ir.MessageKind{
	"Cmd":           ir.KindCommand,
	"Query":         ir.KindQuery,
	"IdempotentCmd": ir.KindIdempotent,
}

// extractCommand reads a Command(v) declaration: v is a composite literal
// (or pointer to one) of a struct that embeds a message marker. The struct
// converges on the same handler shape as a delegate: exported fields are
// the bound parameters and Execute supplies the return convention.
func (in *Interpreter) extractCommand(call *ast.CallExpr) {
	pos := in.pos(call)
	if len(call.Args) != 1 {
		in.diags.Errorf(ir.CodeUnknownMethod, pos, "Command takes one message value")
		return
	}
	typeName, ok := commandTypeName(call.Args[0])
	if !ok {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"Command argument must be a composite literal of a message type")
		return
	}
	spec := in.lookupType(typeName)
	if spec == nil {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"message type %s is not declared in this package", typeName)
		return
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos, "message type %s is not a struct", typeName)
		return
	}

	kind, tag, ok := in.messageMarker(st)
	if !ok {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"message type %s must embed %s.Cmd, %s.Query or %s.IdempotentCmd",
			typeName, in.entry.Alias, in.entry.Alias, in.entry.Alias)
		return
	}
	route := tag.Get("route")
	if route == "" {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos,
			"message type %s has no route tag on its marker field", typeName)
		return
	}

	raw := &rawHandler{kind: ir.HandlerMessage, typeName: typeName, pos: pos}
	for _, field := range st.Fields.List {
		for _, name := range field.Names {
			if !ast.IsExported(name.Name) {
				continue
			}
			raw.params = append(raw.params, rawParam{name: name.Name, goType: types.ExprString(field.Type)})
		}
	}
	exec := in.lookupMethod(typeName, "Execute")
	if exec == nil {
		in.diags.Errorf(ir.CodeUnsupportedHandler, pos, "message type %s has no Execute method", typeName)
		return
	}
	raw.pointerRecv = isPointerRecv(exec)
	if exec.Type.Params != nil {
		for _, field := range exec.Type.Params.List {
			if types.ExprString(field.Type) == "context.Context" {
				raw.params = append(raw.params, rawParam{name: "ctx", goType: "context.Context"})
			}
		}
	}
	if !in.readResults(raw, exec.Type.Results) {
		return
	}

	rb := in.app.addRoute(nil, route, raw, pos)
	rb.kind = kind
	rb.description = tag.Get("desc")
	if alias := tag.Get("alias"); alias != "" {
		rb.aliases = strings.Split(alias, ",")
	}
}

// commandTypeName unwraps &T{} / T{} to the type name T.
func commandTypeName(expr ast.Expr) (string, bool) {
	if un, ok := expr.(*ast.UnaryExpr); ok {
		expr = un.X
	}
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return "", false
	}
	id, ok := lit.Type.(*ast.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// messageMarker finds the embedded marker field and returns the message
// kind and the field's struct tag.
func (in *Interpreter) messageMarker(st *ast.StructType) (ir.MessageKind, reflect.StructTag, bool) {
	for _, field := range st.Fields.List {
		if len(field.Names) != 0 {
			continue
		}
		sel, ok := field.Type.(*ast.SelectorExpr)
		if !ok {
			continue
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok || id.Name != in.entry.Alias {
			continue
		}
		kind, ok := markerKinds[sel.Sel.Name]
		if !ok {
			continue
		}
		var tag reflect.StructTag
		if field.Tag != nil {
			unquoted := strings.Trim(field.Tag.Value, "`")
			tag = reflect.StructTag(unquoted)
		}
		return kind, tag, true
	}
	return ir.KindCommand, "", false
}

// lookupType finds a top-level type declaration in the package.
func (in *Interpreter) lookupType(name string) *ast.TypeSpec {
	for _, f := range in.entry.Pkg.Files {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if ok && ts.Name.Name == name {
					return ts
				}
			}
		}
	}
	return nil
}

// lookupMethod finds a method on T or *T.
func (in *Interpreter) lookupMethod(typeName, method string) *ast.FuncDecl {
	for _, f := range in.entry.Pkg.Files {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || fd.Name.Name != method || len(fd.Recv.List) != 1 {
				continue
			}
			recv := fd.Recv.List[0].Type
			if star, ok := recv.(*ast.StarExpr); ok {
				recv = star.X
			}
			if id, ok := recv.(*ast.Ident); ok && id.Name == typeName {
				return fd
			}
		}
	}
	return nil
}

func isPointerRecv(fd *ast.FuncDecl) bool {
	_, ok := fd.Recv.List[0].Type.(*ast.StarExpr)
	return ok
}
