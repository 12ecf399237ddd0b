package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/gen"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/load"
)

// debounce coalesces editor write bursts into one regeneration.
const debounce = 250 * time.Millisecond

func watchCmd() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "watch [patterns]",
		Short: "regenerate on source changes",
		Long: "watch runs generate, then watches the source tree and reruns it " +
			"whenever a Go file changes. Snapshot fingerprints keep unchanged " +
			"apps from being rewritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				flags.patterns = args
			}
			if flags.snapshotDir == "" {
				// Fingerprint skipping is the point of watch mode.
				dir, err := os.MkdirTemp("", "nurugen-watch-*")
				if err != nil {
					return err
				}
				defer os.RemoveAll(dir)
				flags.snapshotDir = dir
			}
			return runWatch(cmd, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, flags *generateFlags) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}
	regen := func() {
		report, err := gen.Generate(opts...)
		if report != nil {
			printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "nurugen:", err)
		}
	}
	regen()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := flags.dir
	if root == "" {
		root = "."
	}
	if err := watchTree(watcher, root); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s for changes\n", root)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = watchTree(watcher, ev.Name)
					continue
				}
			}
			schedule()
		case <-pending:
			regen()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "watch:", err)
		case <-sig:
			return nil
		}
	}
}

// relevant filters events down to Go source edits, ignoring the generator's
// own output so a write never retriggers itself.
func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return false
	}
	if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
		return true
	}
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return !strings.HasSuffix(name, load.GeneratedSuffix)
}

// watchTree registers every directory under root, skipping hidden
// directories and testdata.
func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
