package gen

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/interp"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/load"
)

const mainHeader = `package main

import (
	"os"

	nuru "github.com/TimeWarpEngineering/timewarp-nuru-sub005"
)

var _ = os.Args
`

// renderMain interprets in-memory sources and renders the generated file
// for the single app they declare.
func renderMain(t *testing.T, files map[string]string) string {
	t.Helper()
	fset := token.NewFileSet()
	p := &load.Pkg{Name: "main", Fset: fset}
	for name, src := range files {
		f, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		require.NoError(t, err)
		p.Files = append(p.Files, f)
		p.FileNames = append(p.FileNames, name)
	}
	entries := load.Locate(p)
	require.Len(t, entries, 1)
	res := interp.Interpret(entries[0])
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())

	diags := &ir.Diagnostics{}
	ordered := Validate(res.App, diags)
	require.False(t, diags.HasErrors(), "%v", diags.All())

	cfg, err := NewConfig()
	require.NoError(t, err)
	u := &fileUnit{
		dir:     t.TempDir(),
		origin:  "main.go",
		pkg:     res.App.Package,
		apps:    []*ir.AppModel{res.App},
		ordered: map[string][]*ir.RouteDefinition{res.App.Key: ordered},
	}
	out, err := render(cfg, u)
	require.NoError(t, err)
	return string(out)
}

func TestRenderRegistersDispatcher(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, "Code generated by nurugen. DO NOT EDIT.")
	assert.Contains(t, out, `nuru.Intercept("main.go:`)
	assert.Contains(t, out, "func init()")
	assert.Contains(t, out, "func dispatchTool(")
	assert.Contains(t, out, "func matchTool0(")
	assert.Contains(t, out, "func invokeTool0(")
	assert.Contains(t, out, "unknown command: %s")
}

func TestRenderTypedConversions(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("scale {replicas:int} {factor:float64}", func(replicas int, factor float64) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, "strconv.Atoi")
	assert.Contains(t, out, "strconv.ParseFloat")
}

func TestRenderVerbatimHandlerLiteral(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("greet {name}", func(name string) string {
		return "hello " + name
	})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, `return "hello " + name`)
	assert.Contains(t, out, "nuru.Exit(c, v, nil)")
}

func TestRenderRepeatedOptionAppends(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("process --id {id:int}*", func(id []int) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, "append(out.id, v)")
}

func TestRenderServiceResolvers(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
type Config interface{ Value(string) string }
type Store interface{ Get(string) string }

func NewConfig() Config { return nil }
func NewStore(c Config) Store { return nil }

func main() {
	app := nuru.New("tool")
	app.Service(nuru.Singleton, NewConfig)
	app.Service(nuru.Transient, NewStore)
	app.Route("get {key}", func(key string, s Store) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, "func resolveToolStore() Store")
	assert.Contains(t, out, "func resolveToolConfig() Config")
	assert.Contains(t, out, "cachedToolConfigOnce.Do")
	assert.Contains(t, out, "NewStore(resolveToolConfig())")
	// Transient services construct fresh, never through a Once.
	assert.NotContains(t, out, "cachedToolStoreOnce")
}

func TestRenderContainerModeUsesProvider(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
type Store interface{ Get(string) string }

func NewStore() Store { return nil }

func main() {
	app := nuru.New("tool").UseContainer()
	app.Service(nuru.Singleton, NewStore)
	app.Route("get {key}", func(key string, s Store) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, `nuru.Resolve[Store]("Store")`)
	assert.NotContains(t, out, "resolveToolStore")
}

func TestRenderFeatureSurfaces(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool").
		Version("2.0.1").
		EnableRepl().
		EnableCompletion().
		EnableTelemetry()
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, "func replTool(")
	assert.Contains(t, out, "nuru.ReplSession(c")
	assert.Contains(t, out, "func completeTool(")
	assert.Contains(t, out, `c.WriteLine("tool 2.0.1")`)
	assert.Contains(t, out, "nuru.EmitTelemetry")
	assert.Contains(t, out, "time.Since(start)")
}

func TestRenderHelpListing(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool").Description("a deployment tool")
	app.Route("deploy {env}", func(env string) {}).Describe("deploy an environment")
	app.Route("status", func() {}).Alias("st")
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, out, "func helpTool(")
	assert.Contains(t, out, `"Usage:"`)
	assert.Contains(t, out, "deploy an environment")
	assert.Contains(t, out, "(alias: st)")
}

func TestRenderIsDeterministic(t *testing.T) {
	files := map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("deploy {env} --dry-run?", func(env string, dryRun bool) {})
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`}
	first := renderMain(t, files)
	second := renderMain(t, files)
	assert.Equal(t, first, second)
}

func TestGeneratedFileName(t *testing.T) {
	assert.Equal(t, "main_nuru_gen.go", GeneratedFileName("main.go"))
	assert.Equal(t, "tool_nuru_gen.go", GeneratedFileName("tool.go"))
}

func TestRenderedImportsAreUnique(t *testing.T) {
	// The origin file imports the root package under its mandatory name;
	// the rendered block declares the same import, and the spliced origin
	// imports must not redeclare it.
	out := renderMain(t, map[string]string{"main.go": `package main

import (
	"fmt"
	"os"

	nuru "github.com/TimeWarpEngineering/timewarp-nuru-sub005"
)

func main() {
	app := nuru.New("tool")
	app.Route("greet {name}", func(name string) {
		fmt.Println("hello,", name)
	})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	f, err := parser.ParseFile(token.NewFileSet(), "out.go", out, parser.ParseComments)
	require.NoError(t, err)
	seen := map[string]int{}
	for _, imp := range f.Imports {
		seen[imp.Path.Value]++
	}
	for path, n := range seen {
		assert.Equal(t, 1, n, "import %s declared %d times", path, n)
	}
	assert.Contains(t, out, `nuru "github.com/TimeWarpEngineering/timewarp-nuru-sub005"`)
	// The verbatim handler literal keeps resolving through the origin import.
	assert.Contains(t, out, "fmt.Println")
}

func TestRenderGroupedAliasMatchesOwnWord(t *testing.T) {
	out := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Group("remote").Route("add {name}", func(name string) {}).Alias("a")
	os.Exit(app.Run(os.Args[1:]))
}
`})
	// The group prefix word matches plainly; the alias widens the route's
	// own leading word.
	assert.Contains(t, out, `pos[idx] != "remote"`)
	assert.Contains(t, out, `pos[idx] == "add" || pos[idx] == "a"`)
	assert.NotContains(t, out, `pos[idx] == "remote" ||`)
}

func TestRenderNegativeNumbersReachPositionals(t *testing.T) {
	plain := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("scale {n:int}", func(n int) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, plain, `a[1] < '0' || a[1] > '9'`)

	withOpts := renderMain(t, map[string]string{"main.go": mainHeader + `
func main() {
	app := nuru.New("tool")
	app.Route("shift {delta:int} --verbose?", func(delta int, verbose bool) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.Contains(t, withOpts, `a[1] < '0' || a[1] > '9'`)
}
