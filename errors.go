package nuru

import "errors"

// Sentinel errors for the runtime dispatch surface.
var (
	// ErrNoDispatcher indicates Run was called but no generated
	// dispatcher is registered for the app; run nurugen over the package.
	ErrNoDispatcher = errors.New("nuru: no generated dispatcher registered; run nurugen")
	// ErrNoRepl indicates RunRepl was called but the app was generated
	// without EnableRepl.
	ErrNoRepl = errors.New("nuru: no REPL dispatcher registered; enable with EnableRepl and re-run nurugen")
)
