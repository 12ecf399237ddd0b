package gen

import (
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// emitCompletion adds the completion word lister: every leading command
// word, route alias and option flag, deduplicated and sorted at generation
// time. Shell integration scripts consume one candidate per line.
func emitCompletion(f *jen.File, app *ir.AppModel) {
	if !app.Features.Completion {
		return
	}
	words := map[string]bool{}
	for _, r := range app.Routes {
		pos := r.Positionals()
		if len(pos) > 0 && pos[0].Kind == ir.SegLiteral {
			words[pos[0].Text] = true
		}
		for _, a := range r.Aliases {
			words[a] = true
		}
		for _, opt := range r.Options() {
			words["--"+opt.Name] = true
			if opt.Short != "" && opt.Short != opt.Name {
				words["-"+opt.Short] = true
			}
		}
	}
	sorted := make([]string, 0, len(words))
	for w := range words {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)

	body := make([]jen.Code, 0, len(sorted))
	for _, w := range sorted {
		body = append(body, jen.Id("c").Dot("WriteLine").Call(jen.Lit(w)))
	}
	f.Func().Id(completionName(app)).
		Params(jen.Id("c").Op("*").Qual(consolePkg, "Console")).
		Block(body...)
}
