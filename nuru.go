package nuru

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Lifetime controls how generated code stores a service instance.
type Lifetime int

const (
	// Singleton constructs the service once per process and caches it.
	Singleton Lifetime = iota
	// Scoped is treated as Singleton for the lifetime of one invocation
	// unless a command-scoped mode is explicitly requested.
	Scoped
	// Transient constructs a fresh instance on every resolution.
	Transient
)

// Markers for declarative message types. Embed exactly one of them in a
// struct, carry the route on its tag, and implement Execute:
//
//	type DeployCmd struct {
//		nuru.Cmd `route:"deploy {env} --dry-run?" desc:"Deploy an environment"`
//		Env    string
//		DryRun bool
//	}
//
//	func (c DeployCmd) Execute(ctx context.Context) error { ... }
type (
	// Cmd marks a state-mutating command.
	Cmd struct{}
	// Query marks a read-only query.
	Query struct{}
	// IdempotentCmd marks a command that is safe to repeat.
	IdempotentCmd struct{}
)

// App is the application builder. Its method calls are interpreted by the
// compiler; at run time it only carries enough state to find its generated
// dispatcher.
type App struct {
	key     string
	name    string
	version string
}

// New starts an application builder. The construction site is the app's
// stable identity: the generated dispatcher registers under the same
// file:line key, which is how Run finds it without reflection.
func New(name string) *App {
	_, file, line, _ := runtime.Caller(1)
	return &App{
		key:  fmt.Sprintf("%s:%d", filepath.Base(file), line),
		name: name,
	}
}

// Description sets the app description shown in generated help.
func (a *App) Description(string) *App { return a }

// Version sets the version string reported by --version.
func (a *App) Version(v string) *App {
	a.version = v
	return a
}

// Route declares a pattern-to-handler binding. The handler is a function
// literal or a function declared in the same package.
func (a *App) Route(pattern string, handler any) *Route {
	return &Route{app: a}
}

// Group opens a command group; routes declared on it inherit the prefix.
func (a *App) Group(prefix string) *Group {
	return &Group{app: a}
}

// Command declares a route from a declarative message type (a struct
// embedding Cmd, Query or IdempotentCmd).
func (a *App) Command(v any) *App { return a }

// Service registers a service by its constructor function. The constructor
// result type is the contract handlers inject by; constructor parameters
// are resolved recursively against other registrations.
func (a *App) Service(lifetime Lifetime, constructor any) *App { return a }

// Converter registers a custom string conversion, func(string) (T, error),
// enabling T as a route parameter type.
func (a *App) Converter(fn any) *App { return a }

// UseContainer switches service emission from direct construction to
// provider-based lookup (see SetProvider).
func (a *App) UseContainer() *App { return a }

// EnableRepl generates an interactive read-eval-print loop dispatcher.
func (a *App) EnableRepl() *App { return a }

// EnableCompletion generates shell completion support (--completions).
func (a *App) EnableCompletion() *App { return a }

// EnableTelemetry wraps generated dispatch with timing events (see
// EmitTelemetry).
func (a *App) EnableTelemetry() *App { return a }

// Build finalizes the declaration chain. It exists so fragmented and
// fluent declarations read the same; Run implies it.
func (a *App) Build() *App { return a }

// Run dispatches args through the generated dispatcher and returns the
// process exit code. Without a generated dispatcher it reports how to
// produce one: the interpreted fallback path is intentionally absent.
func (a *App) Run(args []string) int {
	return runDispatcher(a, args)
}

// RunRepl starts the generated REPL dispatcher.
func (a *App) RunRepl() int {
	return runRepl(a)
}

// Group builds routes sharing a literal prefix. Prefix chains compose by
// concatenation in declaration order.
type Group struct {
	app *App
}

// Route declares a route under the group prefix.
func (g *Group) Route(pattern string, handler any) *Route {
	return &Route{app: g.app}
}

// Group opens a nested group.
func (g *Group) Group(prefix string) *Group {
	return &Group{app: g.app}
}

// Describe sets the group description shown in generated help.
func (g *Group) Describe(string) *Group { return g }

// App returns the owning application builder.
func (g *Group) App() *App { return g.app }

// Route builds one route declaration.
type Route struct {
	app *App
}

// Describe sets the route description shown in generated help.
func (r *Route) Describe(string) *Route { return r }

// Alias declares alternative names for the route's leading literal.
func (r *Route) Alias(names ...string) *Route { return r }

// AsQuery marks the route as a read-only query.
func (r *Route) AsQuery() *Route { return r }

// AsCommand marks the route as a state-mutating command (the default).
func (r *Route) AsCommand() *Route { return r }

// AsIdempotent marks the route as an idempotent command.
func (r *Route) AsIdempotent() *Route { return r }

// Done closes the route declaration and returns the application builder.
func (r *Route) Done() *App { return r.app }
