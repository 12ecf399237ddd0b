package gen

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/interp"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/load"
)

// AppReport is the per-app outcome of one generator run.
type AppReport struct {
	App   *ir.AppModel
	Diags *ir.Diagnostics
	// Skipped means the snapshot fingerprint matched and the app's file
	// was left untouched.
	Skipped bool
	// File is the generated file path, empty when emission was aborted.
	File string
}

// Report aggregates a full run for the CLI to print.
type Report struct {
	Apps []*AppReport
}

// HasErrors reports whether any app produced error diagnostics.
func (r *Report) HasErrors() bool {
	for _, ar := range r.Apps {
		if ar.Diags.HasErrors() {
			return true
		}
	}
	return false
}

// Run executes the full pipeline: load packages, locate entry points,
// interpret each into its app model, validate, and emit one generated file
// per origin file. Apps are exclusively owned by their goroutine during
// emission; validation errors abort emission for the failing app only.
func Run(cfg *Config) (*Report, error) {
	if cfg == nil {
		return nil, NewConfigError("Config", nil, "nil config")
	}
	pkgs, err := load.Load(&load.Config{
		Patterns:   cfg.Patterns,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, p := range pkgs {
		for _, e := range load.Locate(p) {
			res := interp.Interpret(e)
			applyFeatures(cfg, res.App)
			report.Apps = append(report.Apps, &AppReport{App: res.App, Diags: res.Diags})
		}
	}
	checkIntercepts(report.Apps)

	var errs []error
	units := map[string]*fileUnit{}
	for _, ar := range report.Apps {
		ordered := Validate(ar.App, ar.Diags)
		if ar.Diags.HasErrors() {
			errs = append(errs, NewValidationError(ar.App.Key, ar.Diags.All()))
			continue
		}
		origin := originFile(ar.App)
		key := filepath.Join(ar.App.Dir, origin)
		u := units[key]
		if u == nil {
			u = &fileUnit{
				dir:     ar.App.Dir,
				origin:  origin,
				pkg:     ar.App.Package,
				ordered: map[string][]*ir.RouteDefinition{},
			}
			units[key] = u
		}
		u.apps = append(u.apps, ar.App)
		u.ordered[ar.App.Key] = ordered
		ar.File = u.path()
	}

	// An origin file regenerates as a whole; skip it only when every app
	// it hosts is unchanged.
	emit := make([]*fileUnit, 0, len(units))
	for _, u := range units {
		unchanged := cfg.SnapshotDir != ""
		for _, app := range u.apps {
			if !Unchanged(cfg.SnapshotDir, app) {
				unchanged = false
				break
			}
		}
		if unchanged {
			for _, ar := range report.Apps {
				if ar.File == u.path() {
					ar.Skipped = true
				}
			}
			continue
		}
		emit = append(emit, u)
	}
	sort.Slice(emit, func(i, j int) bool { return emit[i].path() < emit[j].path() })

	var eg errgroup.Group
	eg.SetLimit(cfg.Workers)
	for _, u := range emit {
		eg.Go(func() error {
			formatted, err := render(cfg, u)
			if err != nil {
				return err
			}
			if cfg.DryRun {
				return nil
			}
			return write(u, formatted)
		})
	}
	if err := eg.Wait(); err != nil {
		errs = append(errs, err)
	}

	if cfg.SnapshotDir != "" && !cfg.DryRun {
		for _, u := range emit {
			for _, app := range u.apps {
				if err := WriteSnapshot(cfg.SnapshotDir, app); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return report, errors.Join(errs...)
}

// Generate is the convenience entry point used by tooling.
func Generate(opts ...Option) (*Report, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return Run(cfg)
}

// originFile extracts the base origin file name from an app key
// ("main.go:10" holds "main.go").
func originFile(app *ir.AppModel) string {
	if i := strings.LastIndex(app.Key, ":"); i > 0 {
		return app.Key[:i]
	}
	return app.Key
}
