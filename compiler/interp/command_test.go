package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

func TestDeclarativeCommand(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type DeployCmd struct {
	nuru.Cmd ` + "`" + `route:"deploy {env} --dry-run?" desc:"deploy an environment" alias:"d"` + "`" + `
	Env    string
	DryRun bool
}

func (c *DeployCmd) Execute() error { return nil }

func main() {
	app := nuru.New("tool")
	app.Command(&DeployCmd{})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	require.Len(t, res.App.Routes, 1)
	r := res.App.Routes[0]
	assert.Equal(t, "deploy {env} --dry-run?", r.Pattern)
	assert.Equal(t, ir.KindCommand, r.Kind)
	assert.Equal(t, "deploy an environment", r.Description)
	assert.Equal(t, []string{"d"}, r.Aliases)
	h := r.Handler
	assert.Equal(t, ir.HandlerMessage, h.Kind)
	assert.Equal(t, "DeployCmd", h.TypeName)
	assert.True(t, h.PointerRecv)
	assert.Equal(t, ir.ReturnError, h.Returns)
	require.Len(t, h.Params, 2)
	assert.Equal(t, ir.FromRoute, h.Params[0].Origin)
}

func TestQueryMarkerSelectsKind(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type StatusQuery struct {
	nuru.Query ` + "`" + `route:"status"` + "`" + `
}

func (StatusQuery) Execute() (string, error) { return "", nil }

func main() {
	app := nuru.New("tool")
	app.Command(StatusQuery{})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	r := res.App.Routes[0]
	assert.Equal(t, ir.KindQuery, r.Kind)
	assert.False(t, r.Handler.PointerRecv)
	assert.Equal(t, "string", r.Response)
}

func TestCommandServiceFieldResolves(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Store interface{ Get(string) string }

func NewStore() Store { return nil }

type GetCmd struct {
	nuru.Query ` + "`" + `route:"get {key}"` + "`" + `
	Key   string
	Store Store
}

func (GetCmd) Execute() (string, error) { return "", nil }

func main() {
	app := nuru.New("tool")
	app.Service(nuru.Singleton, NewStore)
	app.Command(GetCmd{})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	require.False(t, res.Diags.HasErrors(), "%v", res.Diags.All())
	params := res.App.Routes[0].Handler.Params
	require.Len(t, params, 2)
	assert.Equal(t, ir.FromService, params[1].Origin)
}

func TestCommandWithoutMarkerIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type Plain struct {
	Env string
}

func (Plain) Execute() error { return nil }

func main() {
	app := nuru.New("tool")
	app.Command(Plain{})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedHandler)
}

func TestCommandWithoutRouteTagIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type DeployCmd struct {
	nuru.Cmd
	Env string
}

func (DeployCmd) Execute() error { return nil }

func main() {
	app := nuru.New("tool")
	app.Command(DeployCmd{})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedHandler)
}

func TestCommandWithoutExecuteIsError(t *testing.T) {
	res := interpretMain(t, map[string]string{"main.go": header + `
type DeployCmd struct {
	nuru.Cmd ` + "`" + `route:"deploy"` + "`" + `
}

func main() {
	app := nuru.New("tool")
	app.Command(DeployCmd{})
	os.Exit(app.Run(os.Args[1:]))
}
`})
	assert.True(t, res.Diags.HasErrors())
	assert.Contains(t, codes(res), ir.CodeUnsupportedHandler)
}
