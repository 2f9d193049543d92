package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// command is one console verb.
type command struct {
	name  string
	usage string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

// console is what the read-eval-print loop needs from the application.
type console interface {
	loggedIn() bool
	status() string
	commands() []command
	readLine() (string, error)
}

// runREPL reads commands until EOF or "exit". Commands marked auth are
// refused until a login succeeds. Handler errors are printed and the loop
// carries on.
func runREPL(ctx context.Context, c console, w io.Writer) {
	byName := map[string]command{}
	for _, cmd := range c.commands() {
		byName[cmd.name] = cmd
	}

	for {
		fmt.Fprintf(w, "sv %s> ", c.status())
		line, err := c.readLine()
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		case "help":
			printHelp(w, byName, c.loggedIn())
			continue
		}

		cmd, ok := byName[name]
		switch {
		case !ok:
			fmt.Fprintln(w, "Unknown command:", name)
		case cmd.auth && !c.loggedIn():
			fmt.Fprintln(w, "Please login first")
		default:
			if err := cmd.run(ctx, args); err != nil {
				fmt.Fprintln(w, "error:", err)
			}
		}
	}
}

func printHelp(w io.Writer, cmds map[string]command, loggedIn bool) {
	names := make([]string, 0, len(cmds))
	for n, c := range cmds {
		if !c.auth || loggedIn {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Available commands:")
	for _, n := range names {
		fmt.Fprintf(w, "  %-28s\n", cmds[n].usage)
	}
	fmt.Fprintf(w, "  %-28s\n", "exit")
}
