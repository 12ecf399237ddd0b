package gen

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// fileUnit is one generated compilation unit: all apps constructed in the
// same origin file merge into a single sibling file next to it.
type fileUnit struct {
	dir    string
	origin string // base name of the origin file
	pkg    string
	apps   []*ir.AppModel
	// ordered holds each app's routes in match order, keyed by app key.
	ordered map[string][]*ir.RouteDefinition
}

func (u *fileUnit) path() string {
	return filepath.Join(u.dir, GeneratedFileName(u.origin))
}

// render produces the formatted source of one unit. Verbatim handler
// literals reference identifiers through the origin file's imports, so
// those import lines are spliced in before the goimports pass prunes
// whatever ended up unused.
func render(c *Config, u *fileUnit) ([]byte, error) {
	f := jen.NewFile(u.pkg)
	f.HeaderComment(c.Header)
	// The root package name does not match its path base, so its import
	// must stay named or a later goimports pass could not resolve it.
	f.ImportAlias(rootPkg, "nuru")
	f.ImportName(consolePkg, "console")
	f.ImportName(uuidPkg, "uuid")
	for _, app := range u.apps {
		ordered := u.ordered[app.Key]
		for _, r := range app.Routes {
			emitArgs(f, app, r)
			emitMatch(f, app, r)
			emitInvoke(f, app, r)
		}
		emitServices(f, app)
		emitHelp(f, app)
		emitVersion(f, app)
		emitCompletion(f, app)
		emitDispatch(f, app, ordered)
		emitRepl(f, app)
		emitIntercept(f, app)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("", "render", u.path(), "", err)
	}
	lines := pruneImports(originImports(u.apps), buf.Bytes())
	src := spliceImports(buf.Bytes(), lines)
	formatted, err := imports.Process(u.path(), src, nil)
	if err != nil {
		return nil, NewGenerationError("", "format", u.path(), "", err)
	}
	return formatted, nil
}

// originImports collects the deduplicated import lines of the origin files.
func originImports(apps []*ir.AppModel) []string {
	seen := map[string]bool{}
	var out []string
	for _, app := range apps {
		for _, line := range app.Imports {
			if !seen[line] {
				seen[line] = true
				out = append(out, line)
			}
		}
	}
	return out
}

// pruneImports drops origin import lines whose path the rendered source
// already declares. Splicing such a line again would redeclare the package
// name (the root import is always named, so the later goimports pass never
// merges it), and the generated file would not compile.
func pruneImports(lines []string, src []byte) []string {
	declared := map[string]bool{}
	f, err := parser.ParseFile(token.NewFileSet(), "", src, parser.ImportsOnly)
	if err == nil {
		for _, imp := range f.Imports {
			declared[imp.Path.Value] = true
		}
	}
	var out []string
	for _, line := range lines {
		i := strings.IndexByte(line, '"')
		if i < 0 {
			continue
		}
		q := line[i:]
		if declared[q] {
			continue
		}
		declared[q] = true
		out = append(out, line)
	}
	return out
}

// spliceImports inserts an extra import block right after the package
// clause. goimports merges it with the rendered block and drops the unused
// entries.
func spliceImports(src []byte, lines []string) []byte {
	if len(lines) == 0 {
		return src
	}
	idx := bytes.Index(src, []byte("\npackage "))
	if idx < 0 {
		return src
	}
	end := bytes.IndexByte(src[idx+1:], '\n')
	if end < 0 {
		return src
	}
	cut := idx + 1 + end + 1
	var b bytes.Buffer
	b.Write(src[:cut])
	fmt.Fprintf(&b, "\nimport (\n\t%s\n)\n", strings.Join(lines, "\n\t"))
	b.Write(src[cut:])
	return b.Bytes()
}

// write stores the rendered unit, skipping the write when the on-disk
// content already matches so timestamps stay put on no-op regeneration.
func write(u *fileUnit, formatted []byte) error {
	path := u.path()
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, formatted) {
		return nil
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return NewGenerationError("", "write", path, "", err)
	}
	return nil
}
