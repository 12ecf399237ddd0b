package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

const (
	rootPkg    = "github.com/TimeWarpEngineering/timewarp-nuru-sub005"
	consolePkg = "github.com/TimeWarpEngineering/timewarp-nuru-sub005/console"
)

// emitInvoke adds the invocation function for one route: it threads the
// captured arguments and resolved services into the handler and adapts the
// return shape through the runtime exit convention.
func emitInvoke(f *jen.File, app *ir.AppModel, r *ir.RouteDefinition) {
	h := r.Handler
	body := []jen.Code{}
	if h.WantsContext {
		body = append(body, jen.Id("ctx").Op(":=").Qual("context", "Background").Call())
	}

	var callee jen.Code
	switch h.Kind {
	case ir.HandlerDelegate:
		if h.FuncName != "" {
			callee = jen.Id(h.FuncName)
		} else {
			body = append(body, jen.Id("handler").Op(":=").Id(h.Source))
			callee = jen.Id("handler")
		}
	case ir.HandlerMessage:
		fields := jen.Dict{}
		for _, p := range h.Params {
			if p.Origin == ir.FromFramework {
				continue
			}
			fields[jen.Id(p.Name)] = argExpr(app, p)
		}
		body = append(body, jen.Id("msg").Op(":=").Id(h.TypeName).Values(fields))
		recv := jen.Id("msg")
		if h.PointerRecv {
			recv = jen.Parens(jen.Op("&").Id("msg"))
		}
		callee = jen.Add(recv).Dot("Execute")
	}

	var callArgs []jen.Code
	if h.Kind == ir.HandlerDelegate {
		for _, p := range h.Params {
			callArgs = append(callArgs, argExpr(app, p))
		}
	} else if h.WantsContext {
		callArgs = append(callArgs, jen.Id("ctx"))
	}
	call := jen.Add(callee).Call(callArgs...)

	exit := func(value, err jen.Code) jen.Code {
		return jen.Return(jen.Qual(rootPkg, "Exit").Call(jen.Id("c"), value, err))
	}
	switch h.Returns {
	case ir.ReturnNone:
		body = append(body, call, exit(jen.Nil(), jen.Nil()))
	case ir.ReturnError:
		body = append(body, jen.Err().Op(":=").Add(call), exit(jen.Nil(), jen.Err()))
	case ir.ReturnValue:
		body = append(body, jen.Id("v").Op(":=").Add(call), exit(jen.Id("v"), jen.Nil()))
	case ir.ReturnValueError:
		body = append(body,
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Add(call),
			exit(jen.Id("v"), jen.Err()),
		)
	}

	f.Func().Id(invokeName(app, r)).
		Params(
			jen.Id("c").Op("*").Qual(consolePkg, "Console"),
			jen.Id("a").Id(argsName(app, r)),
		).
		Int().
		Block(body...)
}

// argExpr produces the expression supplying one handler parameter.
func argExpr(app *ir.AppModel, p ir.Param) jen.Code {
	switch p.Origin {
	case ir.FromFramework:
		if p.GoType == "context.Context" {
			return jen.Id("ctx")
		}
		return jen.Id("c")
	case ir.FromService:
		if app.Features.Container {
			return jen.Qual(rootPkg, "Resolve").Index(jen.Id(p.GoType)).Call(jen.Lit(p.GoType))
		}
		return jen.Id(resolverName(app, p.GoType)).Call()
	default:
		field := jen.Id("a").Dot(fieldFor(p.Segment))
		if p.Optional && !strings.HasPrefix(p.GoType, "*") {
			// The capture is stored as a pointer; the handler asked for
			// the plain value.
			return jen.Qual(rootPkg, "Deref").Call(field)
		}
		return field
	}
}
