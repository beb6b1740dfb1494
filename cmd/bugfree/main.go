package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bugfree/internal/version"
)

// newRootCmd builds the command tree. Every call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bugfree",
		Short: "Namespace and import checker for PHP sources",
		Long: `bugfree resolves every class reference in PHP files against the
imports in scope, reports unresolved, unused and disorganized imports and
can rewrite the files to fix them`,
		SilenceErrors: true,
		SilenceUsage:  true,
		// Устанавливаем версию для автоматического флага --version
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupTracing(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeTracing(cmd)
		},
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default: nearest bugfree.toml above the first path)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "", "trace format (text|ndjson); picked from the file name when empty")
	pf.Int("trace-ring-size", 0, "ring buffer size for ring/both modes (0=default)")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")
	pf.String("cpuprofile", "", "write a CPU profile to this file")
	pf.String("memprofile", "", "write a heap profile to this file on exit")
	pf.String("exectrace", "", "write a runtime execution trace to this file")

	root.AddCommand(newLintCmd())
	root.AddCommand(newFixCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the CLI. A run that found problems exits with its status code
// (1 warnings, 2 errors); any other failure exits with 2.
func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintf(os.Stderr, "bugfree: %v\n", err)
	os.Exit(statusError)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
