package interp

import (
	"go/token"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/pattern"
)

// The builder values the interpreter threads through a traversal. They are
// mutable accumulators exclusively owned by one traversal and finalized
// into immutable IR records by build().

type appBuilder struct {
	key         string
	name        string
	description string
	version     string
	pkg         string
	dir         string
	features    ir.FeatureSet
	routes      []*routeBuilder
	services    []*ir.ServiceDefinition
	converters  []*ir.ConverterDefinition
	callSites   map[string][]ir.CallSite
	imports     []string
	nextOrder   int
}

type groupBuilder struct {
	app    *appBuilder
	prefix []string
}

type routeBuilder struct {
	app         *appBuilder
	prefix      []string
	patternText string
	kind        ir.MessageKind
	handler     *rawHandler
	aliases     []string
	description string
	order       int
	pos         token.Position
}

// rawHandler is a handler before parameter origins are classified. The
// classification needs the full service and converter lists, which may be
// registered after the route, so it is deferred to build().
type rawHandler struct {
	kind        ir.HandlerKind
	funcName    string
	source      string
	typeName    string
	pointerRecv bool
	params      []rawParam
	returns     ir.ReturnKind
	valueType   string
	pos         token.Position
}

type rawParam struct {
	name   string
	goType string
}

func (a *appBuilder) addRoute(prefix []string, patternText string, h *rawHandler, pos token.Position) *routeBuilder {
	r := &routeBuilder{
		app:         a,
		prefix:      prefix,
		patternText: patternText,
		kind:        ir.KindCommand,
		handler:     h,
		order:       a.nextOrder,
		pos:         pos,
	}
	a.nextOrder++
	a.routes = append(a.routes, r)
	return r
}

// build finalizes the accumulated state into the immutable app model,
// recording diagnostics for everything that cannot be resolved.
func (a *appBuilder) build(diags *ir.Diagnostics) *ir.AppModel {
	app := &ir.AppModel{
		Key:         a.key,
		Name:        a.name,
		Description: a.description,
		Version:     a.version,
		Package:     a.pkg,
		Dir:         a.dir,
		Services:    a.services,
		Converters:  a.converters,
		Features:    a.features,
		CallSites:   a.callSites,
		Imports:     a.imports,
	}
	checkServiceGraph(app, diags)
	for _, rb := range a.routes {
		app.Routes = append(app.Routes, rb.build(app, diags))
	}
	return app
}

func (r *routeBuilder) build(app *ir.AppModel, diags *ir.Diagnostics) *ir.RouteDefinition {
	route := &ir.RouteDefinition{
		Pattern:     r.patternText,
		GroupPrefix: r.prefix,
		Kind:        r.kind,
		Aliases:     r.aliases,
		Description: r.description,
		Order:       r.order,
		Site:        ir.CallSite{File: r.pos.Filename, Line: r.pos.Line, Col: r.pos.Column},
	}
	segs, err := pattern.Segments(r.patternText)
	if err != nil {
		diags.Errorf(ir.CodePatternParse, r.pos, "%v", err)
		return route
	}
	route.Segments = ir.NewSegments(segs)
	for _, s := range route.Segments {
		checkSegmentType(app, s, r.pos, diags)
	}
	if r.handler == nil {
		diags.Errorf(ir.CodeUnsupportedHandler, r.pos, "route %q has no handler", r.patternText)
		return route
	}
	route.Handler = classifyHandler(app, route, r.handler, diags)
	if route.Handler != nil && route.Handler.Returns >= ir.ReturnValue {
		route.Response = route.Handler.ValueType
	}
	return route
}

// checkSegmentType verifies a segment's value type is either built in or
// backed by a registered converter.
func checkSegmentType(app *ir.AppModel, s *ir.SegmentDefinition, pos token.Position, diags *ir.Diagnostics) {
	if s.Value != nil {
		checkSegmentType(app, s.Value, pos, diags)
	}
	if s.Kind != ir.SegParam && s.Kind != ir.SegCatchAll {
		return
	}
	if pattern.KnownType(s.Type) || app.Converter(s.Type) != nil {
		return
	}
	diags.Errorf(ir.CodeUnsupportedParam, pos,
		"no converter for parameter type %q; register one with Converter", s.Type)
}
