package conn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minisql/minisql/internal/engine"
)

const prompt = "db> "

var exit_commands = []string{"quit", "exit", ":q"}

// RunShell reads statements from in until EOF or an exit keyword,
// feeding each non-blank line to the engine and printing the result
// lines.
func RunShell(eng *engine.Engine, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Welcome to the minisql shell. Type 'exit' to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		query := scanner.Text()
		if strings.TrimSpace(query) == "" {
			continue
		}
		if isExitCommand(query) {
			return
		}
		for _, line := range eng.Execute(query) {
			fmt.Fprintln(out, line)
		}
	}
}

func isExitCommand(query string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	for _, cmd := range exit_commands {
		if trimmed == cmd {
			return true
		}
	}
	return false
}

// Shell binds RunShell to the process's standard streams.
func Shell(eng *engine.Engine) { RunShell(eng, os.Stdin, os.Stdout) }
