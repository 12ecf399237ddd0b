package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// emitServices adds one resolver per registered service. Resolution is
// direct recursive construction: a resolver calls the resolvers of its
// constructor dependencies. Singleton and scoped services cache the instance
// behind a sync.Once; transient services construct on every call. In
// container mode nothing is emitted here, invocations resolve through the
// runtime provider instead.
func emitServices(f *jen.File, app *ir.AppModel) {
	if app.Features.Container {
		return
	}
	for _, svc := range app.Services {
		deps := make([]jen.Code, 0, len(svc.Deps))
		for _, dep := range svc.Deps {
			deps = append(deps, jen.Id(resolverName(app, dep)).Call())
		}
		construct := jen.Id(svc.Impl).Call(deps...)

		if svc.Lifetime == ir.Transient {
			f.Func().Id(resolverName(app, svc.Contract)).Params().Id(svc.Contract).Block(
				jen.Return(construct),
			)
			continue
		}
		once := cacheName(app, svc.Contract) + "Once"
		cache := cacheName(app, svc.Contract)
		f.Var().Defs(
			jen.Id(once).Qual("sync", "Once"),
			jen.Id(cache).Id(svc.Contract),
		)
		f.Func().Id(resolverName(app, svc.Contract)).Params().Id(svc.Contract).Block(
			jen.Id(once).Dot("Do").Call(jen.Func().Params().Block(
				jen.Id(cache).Op("=").Add(construct),
			)),
			jen.Return(jen.Id(cache)),
		)
	}
}
