package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// checkIntercepts verifies that no two apps register under the same key.
// The runtime panics on a duplicate registration, so the generator refuses
// to emit one in the first place; the diagnostic lands on the later app.
func checkIntercepts(reports []*AppReport) {
	seen := map[string]*ir.AppModel{}
	for _, ar := range reports {
		app := ar.App
		if prev, ok := seen[app.Key]; ok {
			pos := sitePos(ir.CallSite{File: app.Key})
			if methods := app.SortedCallSiteMethods(); len(methods) > 0 {
				pos = sitePos(app.CallSites[methods[0]][0])
			}
			ar.Diags.Errorf(ir.CodeDuplicateIntercept, pos,
				"apps %q and %q share the dispatcher key %s", prev.Name, app.Name, app.Key)
			continue
		}
		seen[app.Key] = app
	}
}

// emitDispatch adds the per-app dispatcher: built-in words first, then the
// match table in specificity order, first match wins.
func emitDispatch(f *jen.File, app *ir.AppModel, ordered []*ir.RouteDefinition) {
	var builtins []jen.Code
	builtins = append(builtins, jen.Case(jen.Lit("--help"), jen.Lit("-h"), jen.Lit("help")).Block(
		jen.Id(helpName(app)).Call(jen.Id("c")),
		jen.Return(jen.Lit(0)),
	))
	if app.Version != "" {
		builtins = append(builtins, jen.Case(jen.Lit("--version")).Block(
			jen.Id("version"+appIdent(app)).Call(jen.Id("c")),
			jen.Return(jen.Lit(0)),
		))
	}
	if app.Features.Completion {
		builtins = append(builtins, jen.Case(jen.Lit("completion")).Block(
			jen.Id(completionName(app)).Call(jen.Id("c")),
			jen.Return(jen.Lit(0)),
		))
	}

	body := []jen.Code{
		jen.If(jen.Len(jen.Id("args")).Op(">").Lit(0)).Block(
			jen.Switch(jen.Id("args").Index(jen.Lit(0))).Block(builtins...),
		),
	}
	for _, r := range ordered {
		arm := []jen.Code{}
		if app.Features.Telemetry {
			arm = append(arm,
				jen.Id("start").Op(":=").Qual("time", "Now").Call(),
				jen.Id("code").Op(":=").Id(invokeName(app, r)).Call(jen.Id("c"), jen.Id("a")),
				jen.Qual(rootPkg, "EmitTelemetry").Call(
					jen.Lit(r.FullPattern()),
					jen.Qual("time", "Since").Call(jen.Id("start")),
				),
				jen.Return(jen.Id("code")),
			)
		} else {
			arm = append(arm, jen.Return(jen.Id(invokeName(app, r)).Call(jen.Id("c"), jen.Id("a"))))
		}
		body = append(body, jen.If(
			jen.List(jen.Id("a"), jen.Id("ok")).Op(":=").Id(matchName(app, r)).Call(jen.Id("args")),
			jen.Id("ok"),
		).Block(arm...))
	}
	body = append(body,
		jen.Id("c").Dot("Errorf").Call(
			jen.Lit("unknown command: %s"),
			jen.Qual("strings", "Join").Call(jen.Id("args"), jen.Lit(" ")),
		),
		jen.Id(helpName(app)).Call(jen.Id("c")),
		jen.Return(jen.Lit(2)),
	)

	f.Func().Id(dispatchName(app)).
		Params(
			jen.Id("c").Op("*").Qual(consolePkg, "Console"),
			jen.Id("args").Index().String(),
		).
		Int().
		Block(body...)
}

// emitRepl adds the REPL dispatcher, a thin delegation to the runtime
// session loop over the same match table.
func emitRepl(f *jen.File, app *ir.AppModel) {
	if !app.Features.Repl {
		return
	}
	f.Func().Id(replName(app)).
		Params(jen.Id("c").Op("*").Qual(consolePkg, "Console")).
		Int().
		Block(
			jen.Return(jen.Qual(rootPkg, "ReplSession").Call(
				jen.Id("c"), jen.Lit(app.Name), jen.Id(dispatchName(app)),
			)),
		)
}

// emitIntercept adds the init function that registers the dispatcher under
// the app's construction-site key, redirecting the runtime Run and RunRepl
// calls into generated code.
func emitIntercept(f *jen.File, app *ir.AppModel) {
	fields := jen.Dict{
		jen.Id("Run"): jen.Id(dispatchName(app)),
	}
	if app.Features.Repl {
		fields[jen.Id("Repl")] = jen.Id(replName(app))
	}
	f.Func().Id("init").Params().Block(
		jen.Qual(rootPkg, "Intercept").Call(
			jen.Lit(app.Key),
			jen.Qual(rootPkg, "Dispatcher").Values(fields),
		),
	)
}
