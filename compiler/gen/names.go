package gen

import (
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/load"
)

// Generated identifiers are derived, never hand-assigned: the same IR must
// name the same functions on every run.

// appIdent returns the camelized identifier stem of an app, used as the
// suffix of every generated function for it.
func appIdent(app *ir.AppModel) string {
	stem := sanitizeIdent(app.Name)
	if stem == "" {
		stem = sanitizeIdent(app.Key)
	}
	return inflect.Camelize(stem)
}

// sanitizeIdent folds a free-form name into underscore-separated word runs.
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func dispatchName(app *ir.AppModel) string {
	return "dispatch" + appIdent(app)
}

func replName(app *ir.AppModel) string {
	return "repl" + appIdent(app)
}

func helpName(app *ir.AppModel) string {
	return "help" + appIdent(app)
}

func completionName(app *ir.AppModel) string {
	return "complete" + appIdent(app)
}

// routeStem disambiguates per-route functions by declaration order, which
// is stable across runs for unchanged input.
func routeStem(app *ir.AppModel, r *ir.RouteDefinition) string {
	return appIdent(app) + strconv.Itoa(r.Order)
}

func matchName(app *ir.AppModel, r *ir.RouteDefinition) string {
	return "match" + routeStem(app, r)
}

func invokeName(app *ir.AppModel, r *ir.RouteDefinition) string {
	return "invoke" + routeStem(app, r)
}

func argsName(app *ir.AppModel, r *ir.RouteDefinition) string {
	return "args" + routeStem(app, r)
}

// fieldFor maps a segment name to its args struct field.
func fieldFor(segment string) string {
	return inflect.CamelizeDownFirst(strings.ReplaceAll(segment, "-", "_"))
}

// resolverName names the generated resolver for a service contract.
func resolverName(app *ir.AppModel, contract string) string {
	return "resolve" + appIdent(app) + inflect.Camelize(sanitizeIdent(contract))
}

// cacheName names the cached-instance variable backing a non-transient
// resolver.
func cacheName(app *ir.AppModel, contract string) string {
	return "cached" + appIdent(app) + inflect.Camelize(sanitizeIdent(contract))
}

// GeneratedFileName maps an origin file to its generated sibling
// ("main.go" to "main_nuru_gen.go").
func GeneratedFileName(origin string) string {
	return strings.TrimSuffix(origin, ".go") + load.GeneratedSuffix
}
