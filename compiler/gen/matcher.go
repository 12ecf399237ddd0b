package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// emitArgs adds the captured-arguments struct for one route. Field order
// follows the segment order so regeneration is byte stable.
func emitArgs(f *jen.File, app *ir.AppModel, r *ir.RouteDefinition) {
	fields := make([]jen.Code, 0, len(r.Segments))
	for _, seg := range r.Segments {
		switch seg.Kind {
		case ir.SegParam:
			t := segGoType(app, seg.Type)
			if seg.Optional {
				t = jen.Op("*").Add(t)
			}
			fields = append(fields, jen.Id(fieldFor(seg.Name)).Add(t))
		case ir.SegCatchAll:
			fields = append(fields, jen.Id(fieldFor(seg.Name)).Index().Add(segGoType(app, seg.Type)))
		case ir.SegOption:
			fields = append(fields, jen.Id(fieldFor(seg.Name)).Add(optionFieldType(app, seg)))
		}
	}
	f.Type().Id(argsName(app, r)).Struct(fields...)
}

func optionFieldType(app *ir.AppModel, seg *ir.SegmentDefinition) jen.Code {
	if seg.Value == nil {
		return jen.Bool()
	}
	t := segGoType(app, seg.Value.Type)
	switch {
	case seg.Repeated:
		return jen.Index().Add(t)
	case !seg.Required:
		return jen.Op("*").Add(t)
	default:
		return t
	}
}

// emitMatch adds the match function for one route: it scans options off the
// argument vector, then walks the positional skeleton. Any mismatch,
// including a failed typed conversion, rejects the candidate so the
// dispatcher can try the next route.
func emitMatch(f *jen.File, app *ir.AppModel, r *ir.RouteDefinition) {
	opts := r.Options()
	body := []jen.Code{}
	if len(opts) > 0 {
		body = append(body,
			jen.Var().Id("pos").Index().String(),
			jen.Id("seen").Op(":=").Make(jen.Map(jen.String()).Bool()),
			jen.For(jen.Id("i").Op(":=").Lit(0), jen.Id("i").Op("<").Len(jen.Id("args")), jen.Id("i").Op("++")).Block(
				jen.Id("a").Op(":=").Id("args").Index(jen.Id("i")),
				jen.Switch().Block(optionCases(app, r, opts)...),
			),
		)
		for _, opt := range opts {
			if opt.Required {
				body = append(body, jen.If(jen.Op("!").Id("seen").Index(jen.Lit(opt.Name))).Block(
					jen.Return(jen.Id("out"), jen.False()),
				))
			}
		}
	} else {
		body = append(body,
			jen.For(jen.List(jen.Id("_"), jen.Id("a")).Op(":=").Range().Id("args")).Block(
				jen.If(optionLike()).Block(
					jen.Return(jen.Id("out"), jen.False()),
				),
			),
			jen.Id("pos").Op(":=").Id("args"),
		)
	}
	body = append(body, positionalChecks(app, r)...)
	body = append(body, jen.Return(jen.Id("out"), jen.True()))

	f.Func().Id(matchName(app, r)).
		Params(jen.Id("args").Index().String()).
		Params(jen.Id("out").Id(argsName(app, r)), jen.Id("ok").Bool()).
		Block(body...)
}

// optionCases emits one switch case per declared option plus the default
// case that rejects unknown options and collects positionals.
func optionCases(app *ir.AppModel, r *ir.RouteDefinition, opts []*ir.SegmentDefinition) []jen.Code {
	var cases []jen.Code
	for _, opt := range opts {
		cond := jen.Id("a").Op("==").Lit("--" + opt.Name)
		if opt.Short != "" {
			if opt.Short == opt.Name {
				cond = jen.Id("a").Op("==").Lit("-" + opt.Short)
			} else {
				cond = cond.Op("||").Id("a").Op("==").Lit("-" + opt.Short)
			}
		}
		dst := jen.Id("out").Dot(fieldFor(opt.Name))
		if opt.Value == nil {
			cases = append(cases, jen.Case(cond).Block(
				jen.Id("seen").Index(jen.Lit(opt.Name)).Op("=").True(),
				jen.Add(dst).Op("=").True(),
			))
			continue
		}
		cases = append(cases, jen.Case(cond).Block(
			jen.Id("i").Op("++"),
			jen.If(jen.Id("i").Op(">=").Len(jen.Id("args"))).Block(
				jen.Return(jen.Id("out"), jen.False()),
			),
			jen.Id("seen").Index(jen.Lit(opt.Name)).Op("=").True(),
			convertInto(app, opt.Value.Type, dst, jen.Id("args").Index(jen.Id("i")),
				opt.Repeated, !opt.Repeated && !opt.Required),
		))
	}
	cases = append(cases, jen.Default().Block(
		jen.If(optionLike()).Block(
			jen.Return(jen.Id("out"), jen.False()),
		),
		jen.Id("pos").Op("=").Append(jen.Id("pos"), jen.Id("a")),
	))
	return cases
}

// optionLike is the emitted test for an undeclared flag token. Tokens whose
// first character after the dash is a digit pass through as positionals so
// negative numbers can reach typed captures.
func optionLike() *jen.Statement {
	return jen.Len(jen.Id("a")).Op(">").Lit(1).
		Op("&&").Id("a").Index(jen.Lit(0)).Op("==").LitRune('-').
		Op("&&").Parens(
		jen.Id("a").Index(jen.Lit(1)).Op("<").LitRune('0').
			Op("||").Id("a").Index(jen.Lit(1)).Op(">").LitRune('9'),
	)
}

// positionalChecks emits the length guards and the per-slot walk over the
// collected positional arguments.
func positionalChecks(app *ir.AppModel, r *ir.RouteDefinition) []jen.Code {
	positionals := r.Positionals()
	minLen, maxLen, catchAll := 0, 0, false
	for _, seg := range positionals {
		switch {
		case seg.Kind == ir.SegCatchAll:
			catchAll = true
		case seg.Kind == ir.SegParam && seg.Optional:
			maxLen++
		default:
			minLen++
			maxLen++
		}
	}
	out := []jen.Code{}
	if minLen > 0 {
		out = append(out, jen.If(jen.Len(jen.Id("pos")).Op("<").Lit(minLen)).Block(
			jen.Return(jen.Id("out"), jen.False()),
		))
	}
	if !catchAll {
		out = append(out, jen.If(jen.Len(jen.Id("pos")).Op(">").Lit(maxLen)).Block(
			jen.Return(jen.Id("out"), jen.False()),
		))
	}
	out = append(out, jen.Id("idx").Op(":=").Lit(0))
	// Aliases rename the route's own leading word, which sits after any
	// group prefix literals.
	aliasSlot := len(r.GroupPrefix)
	for si, seg := range positionals {
		cur := jen.Id("pos").Index(jen.Id("idx"))
		switch seg.Kind {
		case ir.SegLiteral:
			cond := jen.Id("pos").Index(jen.Id("idx")).Op("!=").Lit(seg.Text)
			if si == aliasSlot && len(r.Aliases) > 0 {
				match := jen.Id("pos").Index(jen.Id("idx")).Op("==").Lit(seg.Text)
				for _, a := range r.Aliases {
					match = match.Op("||").Id("pos").Index(jen.Id("idx")).Op("==").Lit(a)
				}
				cond = jen.Op("!").Parens(match)
			}
			out = append(out,
				jen.If(cond).Block(jen.Return(jen.Id("out"), jen.False())),
				jen.Id("idx").Op("++"),
			)
		case ir.SegParam:
			dst := jen.Id("out").Dot(fieldFor(seg.Name))
			conv := convertInto(app, seg.Type, dst, cur, false, seg.Optional)
			if seg.Optional {
				out = append(out, jen.If(jen.Id("idx").Op("<").Len(jen.Id("pos"))).Block(
					conv,
					jen.Id("idx").Op("++"),
				))
			} else {
				out = append(out, conv, jen.Id("idx").Op("++"))
			}
		case ir.SegCatchAll:
			dst := jen.Id("out").Dot(fieldFor(seg.Name))
			out = append(out, jen.For(jen.List(jen.Id("_"), jen.Id("pv")).Op(":=").Range().Id("pos").Index(jen.Id("idx"), jen.Empty())).Block(
				convertInto(app, seg.Type, dst, jen.Id("pv"), true, false),
			))
		}
	}
	out = append(out, jen.Id("_").Op("=").Id("idx"))
	return out
}
