package nuru

import (
	"fmt"
	"sort"
	"sync"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/console"
)

// Dispatcher is the generated entry surface for one application.
type Dispatcher struct {
	// Run dispatches one argument vector and returns an exit code.
	Run func(c *console.Console, args []string) int
	// Repl handles one REPL session; nil when the feature is off.
	Repl func(c *console.Console) int
}

var (
	dispatchMu  sync.Mutex
	dispatchers = map[string]Dispatcher{}
)

// Intercept registers a generated dispatcher under an application key.
// Generated init functions call it exactly once per key; a second
// registration for the same key means the generator emitted duplicate glue
// and is a hard failure, not something to paper over at run time.
func Intercept(key string, d Dispatcher) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	if _, ok := dispatchers[key]; ok {
		panic(fmt.Sprintf("nuru: duplicate dispatcher registration for %q", key))
	}
	dispatchers[key] = d
}

// lookup returns the dispatcher registered for the app, if any.
func lookup(a *App) (Dispatcher, bool) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	d, ok := dispatchers[a.key]
	return d, ok
}

// registeredKeys returns all registered keys in sorted order. Test helper.
func registeredKeys() []string {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	keys := make([]string, 0, len(dispatchers))
	for k := range dispatchers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runDispatcher(a *App, args []string) int {
	c := console.New()
	d, ok := lookup(a)
	if !ok || d.Run == nil {
		c.Errorf("%s: %v (key %s)", a.name, ErrNoDispatcher, a.key)
		return 2
	}
	return d.Run(c, args)
}

func runRepl(a *App) int {
	c := console.New()
	d, ok := lookup(a)
	if !ok || d.Repl == nil {
		c.Errorf("%s: %v (key %s)", a.name, ErrNoRepl, a.key)
		return 2
	}
	return d.Repl(c)
}

// Provider resolves services when an application opts into container mode
// with UseContainer. Generated code looks contracts up by their type name.
type Provider interface {
	Get(contract string) any
}

var (
	providerMu sync.RWMutex
	provider   Provider
)

// SetProvider installs the process-wide service provider for container-mode
// applications.
func SetProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// Resolve fetches a contract from the installed provider. Generated code in
// container mode calls it; a missing provider or contract is a programming
// error surfaced immediately.
func Resolve[T any](contract string) T {
	providerMu.RLock()
	p := provider
	providerMu.RUnlock()
	if p == nil {
		panic("nuru: no provider installed; call nuru.SetProvider before Run")
	}
	v, ok := p.Get(contract).(T)
	if !ok {
		panic(fmt.Sprintf("nuru: provider returned no usable value for contract %q", contract))
	}
	return v
}

// Deref unwraps an optional capture for handlers that bind the plain value
// type; an absent capture becomes the zero value.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Exit adapts a handler return to the single response-handling convention:
// a non-nil error prints to standard error and exits 1; a non-nil value
// prints to standard output; everything else exits 0.
func Exit(c *console.Console, value any, err error) int {
	if err != nil {
		c.Errorf("error: %v", err)
		return 1
	}
	if value != nil {
		c.WriteLine(fmt.Sprint(value))
	}
	return 0
}
