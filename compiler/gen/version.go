package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// emitVersion adds the version printer for apps that declared one.
func emitVersion(f *jen.File, app *ir.AppModel) {
	if app.Version == "" {
		return
	}
	f.Func().Id("version" + appIdent(app)).
		Params(jen.Id("c").Op("*").Qual(consolePkg, "Console")).
		Block(
			jen.Id("c").Dot("WriteLine").Call(jen.Lit(app.Name + " " + app.Version)),
		)
}
