// Package load materializes user packages and locates the entry points the
// interpreter traverses: every call that finalizes a route builder into a
// runnable application.
package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// rootImport is the import path of the route declaration package.
const rootImport = "github.com/TimeWarpEngineering/timewarp-nuru-sub005"

// GeneratedSuffix marks files written by the generator. The loader skips
// them so re-running over a generated tree sees the same input.
const GeneratedSuffix = "_nuru_gen.go"

// Config controls package loading.
type Config struct {
	// Patterns are package patterns in the go/packages sense
	// ("./...", "example.com/tool/cmd").
	Patterns []string
	// Dir is the working directory for loading; empty means the
	// process directory.
	Dir string
	// BuildFlags are extra flags passed to the underlying build system.
	BuildFlags []string
}

// Pkg is one loaded package, reduced to what the pipeline needs: syntax,
// positions and file names. Type information is recovered syntactically by
// the interpreter, which keeps the pipeline usable on sources that do not
// fully type-check yet.
type Pkg struct {
	Name    string
	PkgPath string
	Dir     string
	Fset    *token.FileSet
	Files   []*ast.File
	// FileNames aligns with Files.
	FileNames []string
}

// Load loads the packages matched by cfg.
func Load(cfg *Config) ([]*Pkg, error) {
	lcfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
		Fset:       token.NewFileSet(),
	}
	pkgs, err := packages.Load(lcfg, cfg.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	var out []*Pkg
	for _, p := range pkgs {
		if len(p.GoFiles) == 0 {
			continue
		}
		lp := &Pkg{
			Name:    p.Name,
			PkgPath: p.PkgPath,
			Dir:     filepath.Dir(p.GoFiles[0]),
			Fset:    lcfg.Fset,
		}
		for _, f := range p.Syntax {
			name := lcfg.Fset.Position(f.Pos()).Filename
			if strings.HasSuffix(name, GeneratedSuffix) {
				continue
			}
			lp.Files = append(lp.Files, f)
			lp.FileNames = append(lp.FileNames, name)
		}
		out = append(out, lp)
	}
	return out, nil
}

// nuruAlias returns the local name the file imports the root package under,
// or "" when the file does not import it.
func nuruAlias(f *ast.File) string {
	for _, imp := range f.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		if path != rootImport {
			continue
		}
		if imp.Name != nil {
			return imp.Name.Name
		}
		return "nuru"
	}
	return ""
}

// ImportLines renders the file's import specs as source lines. They are
// carried on the app model so verbatim handler literals keep resolving in
// the generated file.
func ImportLines(f *ast.File) []string {
	var out []string
	for _, imp := range f.Imports {
		if imp.Name != nil {
			out = append(out, imp.Name.Name+" "+imp.Path.Value)
		} else {
			out = append(out, imp.Path.Value)
		}
	}
	return out
}
