package gen

import (
	"sort"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

var headingCaser = cases.Title(language.English)

// emitHelp adds the help printer. The route listing is computed at
// generation time: patterns in lexical order with their descriptions, so the
// generated function is a plain sequence of writes with no formatting logic.
func emitHelp(f *jen.File, app *ir.AppModel) {
	title := headingCaser.String(app.Name)
	if app.Version != "" {
		title += " " + app.Version
	}
	body := []jen.Code{
		jen.Id("c").Dot("WriteLine").Call(jen.Lit(title)),
	}
	if app.Description != "" {
		body = append(body, jen.Id("c").Dot("WriteLine").Call(jen.Lit(app.Description)))
	}
	body = append(body,
		jen.Id("c").Dot("WriteLine").Call(jen.Lit("")),
		jen.Id("c").Dot("WriteLine").Call(jen.Lit("Usage:")),
	)

	routes := make([]*ir.RouteDefinition, len(app.Routes))
	copy(routes, app.Routes)
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].FullPattern() < routes[j].FullPattern()
	})
	rows := make([]jen.Code, 0, len(routes))
	for _, r := range routes {
		desc := r.Description
		for _, a := range r.Aliases {
			if desc != "" {
				desc += " "
			}
			desc += "(alias: " + a + ")"
		}
		rows = append(rows, jen.Values(jen.Lit(r.FullPattern()), jen.Lit(desc)))
	}
	body = append(body, jen.Id("c").Dot("WriteTable").Call(
		jen.Index().Index(jen.Lit(2)).String().Values(rows...),
	))

	f.Func().Id(helpName(app)).
		Params(jen.Id("c").Op("*").Qual(consolePkg, "Console")).
		Block(body...)
}
