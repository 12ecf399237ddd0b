package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

func TestFuncLitHandlerKeepsSource(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("deploy {env}", func(env string) error {
		return nil
	})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	h := res.App.Routes[0].Handler
	assert.Equal(t, ir.HandlerDelegate, h.Kind)
	assert.Empty(t, h.FuncName)
	assert.Contains(t, h.Source, "func(env string) error")
	assert.Equal(t, ir.ReturnError, h.Returns)
}

func TestNamedFunctionHandler(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func deploy(env string) error { return nil }

func main() {
	app := nuru.New("tool")
	app.Route("deploy {env}", deploy)
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	h := res.App.Routes[0].Handler
	assert.Equal(t, "deploy", h.FuncName)
	assert.Empty(t, h.Source)
	require.Len(t, h.Params, 1)
	assert.Equal(t, ir.FromRoute, h.Params[0].Origin)
}

func TestFrameworkParamsClassified(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": `package main

import (
	"context"
	"os"

	nuru "github.com/TimeWarpEngineering/timewarp-nuru-sub005"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/console"
)

func main() {
	app := nuru.New("tool")
	app.Route("deploy {env}", func(ctx context.Context, c *console.Console, env string) error {
		return nil
	})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	h := res.App.Routes[0].Handler
	assert.True(t, h.WantsContext)
	require.Len(t, h.Params, 3)
	assert.Equal(t, ir.FromFramework, h.Params[0].Origin)
	assert.Equal(t, ir.FromFramework, h.Params[1].Origin)
	assert.Equal(t, ir.FromRoute, h.Params[2].Origin)
}

func TestOptionNameSpellingsFold(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("deploy {env} --dry-run", func(env string, dryRun bool) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	params := res.App.Routes[0].Handler.Params
	require.Len(t, params, 2)
	assert.Equal(t, "dry-run", params[1].Segment)
}

func TestOptionalCaptureBindsAsPointer(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("scale {replicas:int?}", func(replicas *int) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	p := res.App.Routes[0].Handler.Params[0]
	assert.True(t, p.Optional)
	assert.Equal(t, "*int", p.GoType)
}

func TestCatchAllBindsAsSlice(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("exec {*cmd}", func(cmd []string) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	p := res.App.Routes[0].Handler.Params[0]
	assert.True(t, p.Repeated)
	assert.Equal(t, "[]string", p.GoType)
}

func TestRepeatedOptionBindsAsSlice(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("process --id {id:int}*", func(id []int) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	p := res.App.Routes[0].Handler.Params[0]
	assert.True(t, p.Repeated)
	assert.Equal(t, "[]int", p.GoType)
}

func TestTypeMismatchIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("scale {replicas:int}", func(replicas string) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedParam)
}

func TestUnmatchedParamIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("status", func(verbose bool) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedParam)
}

func TestUnboundCaptureIsWarning(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("deploy {env} {tag}", func(env string) {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	assert.Contains(t, codes(res), ir.CodeUnboundParam)
}

func TestRequiredBareFlagNeedsNoBinding(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("push --force", func() {})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	assert.Equal(t, 0, res.Diags.Len())
}

func TestValueReturnSetsResponse(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("version", func() string { return "1.0" })
	app.Route("count", func() (int, error) { return 0, nil })
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	assert.Equal(t, "string", res.App.Routes[0].Response)
	assert.Equal(t, ir.ReturnValue, res.App.Routes[0].Handler.Returns)
	assert.Equal(t, "int", res.App.Routes[1].Response)
	assert.Equal(t, ir.ReturnValueError, res.App.Routes[1].Handler.Returns)
}

func TestBadReturnShapeIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
func main() {
	app := nuru.New("tool")
	app.Route("status", func() (int, string) { return 0, "" })
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedHandler)
}
