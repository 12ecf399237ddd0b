// Package console is the fixed output surface generated dispatchers write
// through. It is intentionally small: line output, error output and simple
// tables. Anything richer belongs to the terminal layer, not here.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Console writes program output.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// New returns a console bound to the process streams.
func New() *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr}
}

// WriteLine writes a line to standard output.
func (c *Console) WriteLine(s string) {
	fmt.Fprintln(c.Out, s)
}

// Writef writes formatted text to standard output.
func (c *Console) Writef(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Errorf writes a formatted line to standard error.
func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.Err, format+"\n", args...)
}

// WriteTable writes rows as two aligned columns. Generated help output
// uses it for the route listing.
func (c *Console) WriteTable(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	for _, r := range rows {
		fmt.Fprintf(c.Out, "  %s%s  %s\n", r[0], strings.Repeat(" ", width-len(r[0])), r[1])
	}
}
