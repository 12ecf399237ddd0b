package nuru

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/console"
)

// ReplSession reads lines, splits them into argument vectors and feeds
// them through a generated Run dispatcher until EOF or "exit". Generated
// Repl dispatchers delegate here; line editing, history and key bindings
// belong to the terminal layer and are not modeled.
func ReplSession(c *console.Console, name string, dispatch func(c *console.Console, args []string) int) int {
	interactive := false
	if f, ok := c.Out.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	in := bufio.NewScanner(os.Stdin)
	code := 0
	for {
		if interactive {
			c.Writef("%s> ", name)
		}
		if !in.Scan() {
			if err := in.Err(); err != nil && err != io.EOF {
				c.Errorf("repl: %v", err)
				return 1
			}
			return code
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return code
		}
		code = dispatch(c, strings.Fields(line))
	}
}
