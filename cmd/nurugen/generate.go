package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/gen"
)

type generateFlags struct {
	patterns    []string
	dir         string
	header      string
	workers     int
	snapshotDir string
	features    []string
	buildFlags  []string
	dryRun      bool
}

func (g *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&g.patterns, "patterns", nil, "package patterns to scan (default ./...)")
	cmd.Flags().StringVar(&g.dir, "dir", "", "working directory for package loading")
	cmd.Flags().StringVar(&g.header, "header", "", "header comment for generated files")
	cmd.Flags().IntVar(&g.workers, "workers", 0, "parallel emission workers (default GOMAXPROCS)")
	cmd.Flags().StringVar(&g.snapshotDir, "snapshot-dir", "", "snapshot directory for change detection")
	cmd.Flags().StringSliceVar(&g.features, "feature", nil, "force-enable a codegen feature for every app")
	cmd.Flags().StringSliceVar(&g.buildFlags, "build-flags", nil, "extra build flags for package loading")
	cmd.Flags().BoolVar(&g.dryRun, "dry-run", false, "validate and render without writing files")
}

// options merges nurugen.yaml defaults with the command-line flags, flags
// winning per field.
func (g *generateFlags) options() ([]gen.Option, error) {
	pc, err := loadProjectConfig(g.dir)
	if err != nil {
		return nil, err
	}
	patterns := pc.Patterns
	if len(g.patterns) > 0 {
		patterns = g.patterns
	}
	header := pc.Header
	if g.header != "" {
		header = g.header
	}
	workers := pc.Workers
	if g.workers > 0 {
		workers = g.workers
	}
	snapshotDir := pc.SnapshotDir
	if g.snapshotDir != "" {
		snapshotDir = g.snapshotDir
	}
	names := pc.Features
	if len(g.features) > 0 {
		names = g.features
	}
	buildFlags := pc.BuildFlags
	if len(g.buildFlags) > 0 {
		buildFlags = g.buildFlags
	}

	var opts []gen.Option
	if len(patterns) > 0 {
		opts = append(opts, gen.WithPatterns(patterns...))
	}
	if g.dir != "" {
		opts = append(opts, gen.WithDir(g.dir))
	} else if pc.Dir != "" {
		opts = append(opts, gen.WithDir(pc.Dir))
	}
	if header != "" {
		opts = append(opts, gen.WithHeader(header))
	}
	if workers > 0 {
		opts = append(opts, gen.WithWorkers(workers))
	}
	if snapshotDir != "" {
		opts = append(opts, gen.WithSnapshotDir(snapshotDir))
	}
	if len(buildFlags) > 0 {
		opts = append(opts, gen.WithBuildFlags(buildFlags...))
	}
	if g.dryRun {
		opts = append(opts, gen.WithDryRun())
	}
	features, err := featuresByName(names)
	if err != nil {
		return nil, err
	}
	if len(features) > 0 {
		opts = append(opts, gen.WithFeatures(features...))
	}
	return opts, nil
}

func featuresByName(names []string) ([]gen.Feature, error) {
	var out []gen.Feature
	for _, name := range names {
		found := false
		for _, f := range gen.AllFeatures {
			if f.Name == name {
				out = append(out, f)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
	}
	return out, nil
}

func generateCmd() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate [patterns]",
		Short: "scan packages and write dispatcher files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				flags.patterns = args
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			report, err := gen.Generate(opts...)
			if report != nil {
				printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)
			}
			if err != nil {
				return err
			}
			if report.HasErrors() {
				return fmt.Errorf("generation failed with diagnostics")
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// printReport writes per-app outcomes: diagnostics to standard error, file
// activity to standard output.
func printReport(out, errw io.Writer, report *gen.Report) {
	for _, ar := range report.Apps {
		for _, d := range ar.Diags.All() {
			fmt.Fprintln(errw, d)
		}
		switch {
		case ar.Diags.HasErrors():
			fmt.Fprintf(errw, "%s: emission aborted\n", ar.App.Key)
		case ar.Skipped:
			fmt.Fprintf(out, "%s: unchanged\n", ar.App.Key)
		case ar.File != "":
			fmt.Fprintf(out, "%s: wrote %s\n", ar.App.Key, ar.File)
		}
	}
}
