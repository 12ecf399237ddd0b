package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

func TestServiceRegistration(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Store interface{ Get(string) string }

type memStore struct{}

func (memStore) Get(string) string { return "" }

func NewStore() Store { return memStore{} }

func main() {
	app := nuru.New("tool")
	app.Service(nuru.Singleton, NewStore)
	app.Route("get {key}", func(key string, s Store) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	require.Len(t, res.App.Services, 1)
	svc := res.App.Services[0]
	assert.Equal(t, "Store", svc.Contract)
	assert.Equal(t, "NewStore", svc.Impl)
	assert.Equal(t, ir.Singleton, svc.Lifetime)
}

func TestServiceRegisteredAfterRouteStillBinds(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Store interface{ Get(string) string }

func NewStore() Store { return nil }

func main() {
	app := nuru.New("tool")
	app.Route("get {key}", func(key string, s Store) {})
	app.Service(nuru.Singleton, NewStore)
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	params := res.App.Routes[0].Handler.Params
	require.Len(t, params, 2)
	assert.Equal(t, ir.FromService, params[1].Origin)
}

func TestServiceDependencyChain(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Config interface{ Value(string) string }
type Store interface{ Get(string) string }

func NewConfig() Config { return nil }
func NewStore(c Config) Store { return nil }

func main() {
	app := nuru.New("tool")
	app.Service(nuru.Singleton, NewConfig)
	app.Service(nuru.Scoped, NewStore)
	app.Route("get {key}", func(key string, s Store) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	store := res.App.Service("Store")
	require.NotNil(t, store)
	assert.Equal(t, []string{"Config"}, store.Deps)
	assert.Equal(t, ir.Scoped, store.Lifetime)
}

func TestServiceCycleIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type A interface{ A() }
type B interface{ B() }

func NewA(b B) A { return nil }
func NewB(a A) B { return nil }

func main() {
	app := nuru.New("tool")
	app.Service(nuru.Singleton, NewA)
	app.Service(nuru.Singleton, NewB)
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeDependencyCycle)
}

func TestMissingServiceDependencyIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Config interface{ Value(string) string }
type Store interface{ Get(string) string }

func NewStore(c Config) Store { return nil }

func main() {
	app := nuru.New("tool")
	app.Service(nuru.Singleton, NewStore)
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnregisteredService)
}

func TestNonConstantLifetimeIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Store interface{ Get(string) string }

func NewStore() Store { return nil }

func main() {
	lt := nuru.Singleton
	app := nuru.New("tool")
	app.Service(lt, NewStore)
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeNonConstantArg)
}

func TestConverterRegistration(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Level int

func ParseLevel(s string) (Level, error) { return 0, nil }

func main() {
	app := nuru.New("tool")
	app.Converter(ParseLevel)
	app.Route("log {lvl:Level}", func(lvl Level) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	require.Len(t, res.App.Converters, 1)
	c := res.App.Converters[0]
	assert.Equal(t, "Level", c.TypeName)
	assert.Equal(t, "ParseLevel", c.FuncName)
}

func TestUnknownSegmentTypeWithoutConverterIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Level int

func main() {
	app := nuru.New("tool")
	app.Route("log {lvl:Level}", func(lvl Level) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedParam)
}

func TestBadConverterShapeIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Level int

func ParseLevel(s string) Level { return 0 }

func main() {
	app := nuru.New("tool")
	app.Converter(ParseLevel)
	app.Route("status", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedHandler)
}
