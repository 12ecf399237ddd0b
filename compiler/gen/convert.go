package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/pattern"
)

const uuidPkg = "github.com/google/uuid"

// segGoType maps a pattern value type to the Go type captures carry in the
// generated args struct. Custom types resolve through their converter.
func segGoType(app *ir.AppModel, typ string) jen.Code {
	switch typ {
	case "", pattern.TypeString:
		return jen.String()
	case pattern.TypeInt:
		return jen.Int()
	case pattern.TypeInt64:
		return jen.Int64()
	case pattern.TypeFloat64:
		return jen.Float64()
	case pattern.TypeBool:
		return jen.Bool()
	case pattern.TypeUUID:
		return jen.Qual(uuidPkg, "UUID")
	case pattern.TypeTime:
		return jen.Qual("time", "Time")
	case pattern.TypeDuration:
		return jen.Qual("time", "Duration")
	default:
		if c := app.Converter(typ); c != nil {
			return jen.Id(c.TypeName)
		}
		return jen.Id(typ)
	}
}

// convertInto emits the statements that parse the string expression src into
// dst. Conversion failure rejects the candidate: the enclosing match function
// returns (out, false). Assignments run inside a block so temporaries never
// collide. appendTo accumulates repeated captures; ptr stores the address of
// the parsed value for optional captures.
func convertInto(app *ir.AppModel, typ string, dst, src jen.Code, appendTo, ptr bool) jen.Code {
	assign := func(v jen.Code) jen.Code {
		switch {
		case appendTo:
			return jen.Add(dst).Op("=").Append(jen.Add(dst), v)
		case ptr:
			return jen.Add(dst).Op("=").Op("&").Add(v)
		default:
			return jen.Add(dst).Op("=").Add(v)
		}
	}
	reject := jen.If(jen.Err().Op("!=").Nil()).Block(
		jen.Return(jen.Id("out"), jen.False()),
	)
	switch typ {
	case "", pattern.TypeString:
		if ptr {
			// The source expression is not addressable.
			return jen.Block(
				jen.Id("v").Op(":=").Add(src),
				jen.Add(dst).Op("=").Op("&").Id("v"),
			)
		}
		return assign(src)
	case pattern.TypeInt:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "Atoi").Call(src),
			reject,
			assign(jen.Id("v")),
		)
	case pattern.TypeInt64:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(src, jen.Lit(10), jen.Lit(64)),
			reject,
			assign(jen.Id("v")),
		)
	case pattern.TypeFloat64:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "ParseFloat").Call(src, jen.Lit(64)),
			reject,
			assign(jen.Id("v")),
		)
	case pattern.TypeBool:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "ParseBool").Call(src),
			reject,
			assign(jen.Id("v")),
		)
	case pattern.TypeUUID:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual(uuidPkg, "Parse").Call(src),
			reject,
			assign(jen.Id("v")),
		)
	case pattern.TypeTime:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("time", "Parse").Call(jen.Qual("time", "RFC3339"), src),
			reject,
			assign(jen.Id("v")),
		)
	case pattern.TypeDuration:
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("time", "ParseDuration").Call(src),
			reject,
			assign(jen.Id("v")),
		)
	default:
		// Registered custom converter; the interpreter already verified
		// one exists for this type.
		fn := typ
		if c := app.Converter(typ); c != nil {
			fn = c.FuncName
		}
		return jen.Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Id(fn).Call(src),
			reject,
			assign(jen.Id("v")),
		)
	}
}
