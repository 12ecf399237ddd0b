package gen

import (
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

var (
	// FeatureRepl generates an interactive loop dispatcher alongside the
	// argument-vector dispatcher.
	FeatureRepl = Feature{
		Name:        "repl",
		Stage:       Beta,
		Default:     false,
		Description: "Generates a REPL dispatcher that reads lines and routes them through the same match table",
		enable:      func(f *ir.FeatureSet) { f.Repl = true },
	}

	// FeatureCompletion generates a hidden completion subcommand emitting
	// shell completion candidates.
	FeatureCompletion = Feature{
		Name:        "completion",
		Stage:       Beta,
		Default:     false,
		Description: "Generates a completion subcommand that lists route literals and option names for the shell",
		enable:      func(f *ir.FeatureSet) { f.Completion = true },
	}

	// FeatureTelemetry wraps every generated invocation with timing events.
	FeatureTelemetry = Feature{
		Name:        "telemetry",
		Stage:       Alpha,
		Default:     false,
		Description: "Wraps generated invocations with session-scoped timing events delivered to the installed sink",
		enable:      func(f *ir.FeatureSet) { f.Telemetry = true },
	}

	// FeatureContainer resolves services through the installed provider
	// instead of generating direct construction.
	FeatureContainer = Feature{
		Name:        "container",
		Stage:       Alpha,
		Default:     false,
		Description: "Resolves injected services through the runtime provider instead of generated constructors",
		enable:      func(f *ir.FeatureSet) { f.Container = true },
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureRepl,
		FeatureCompletion,
		FeatureTelemetry,
		FeatureContainer,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and actively being tested.
	Experimental

	// Alpha features are features whose initial development was finished,
	// but breaking changes to their generated surface are still expected.
	Alpha

	// Beta features are Alpha features that were documented, and no
	// breaking changes are expected for them.
	Beta

	// Stable features are Beta features that have been in use for a while.
	Stable
)

// A Feature of the dispatch codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// enable flips the corresponding flag on an app's feature set when the
	// feature is forced through the generator config.
	enable func(*ir.FeatureSet)
}

// applyFeatures merges config-forced features into an app's flags. The DSL
// flags stay authoritative; the config can only add.
func applyFeatures(c *Config, app *ir.AppModel) {
	for _, f := range c.Features {
		if f.enable != nil {
			f.enable(&app.Features)
		}
	}
}
