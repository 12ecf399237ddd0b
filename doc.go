// Package nuru is the route declaration surface of the timewarp-nuru
// framework and the small runtime contract its generated dispatchers rely
// on.
//
// User programs declare command-line routes through the fluent builder
// ([New], [App.Route], [App.Group], ...) or through declarative message
// types ([App.Command]). The nurugen compiler interprets those declarations
// statically and emits a specialized dispatcher per application, so the
// compiled program carries no runtime route table and uses no reflection.
//
// # Declaration
//
//	app := nuru.New("deploytool").
//		Description("Deployment helper").
//		Version("1.2.0")
//	app.Route("deploy {env} --dry-run?", deploy).Describe("Deploy an environment")
//	app.Service(nuru.Singleton, NewClock)
//	os.Exit(app.Run(os.Args[1:]))
//
// # Generation
//
// Running nurugen over the package produces a *_nuru_gen.go file whose init
// function registers a dispatcher under the application's identity key (the
// builder construction site). [App.Run] and [App.RunRepl] resolve that key;
// a program that was never generated reports it instead of guessing.
//
// The compiler pipeline lives under compiler/: load (entry-point locator),
// interp (DSL interpreter and extractors), ir (intermediate representation)
// and gen (validator and code emitters).
package nuru
