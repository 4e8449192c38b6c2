package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"docgap/internal/version"
)

// newRootCmd собирает корневую команду со всеми флагами и подкомандами.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docgap",
		Short: "Report where documentation is missing in a Rust package",
		Long: `docgap runs cargo clippy with the documentation lints enabled and prints
every undocumented public item, grouped by file.`,
		Args:         cobra.NoArgs,
		RunE:         runReport,
		SilenceUsage: true,
		Version:      version.Current().Version,
	}

	registerReportFlags(root)

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("timings", false, "print phase timings to stderr")
	root.PersistentFlags().String("trace", "", "write trace events to file ('-' for stderr)")
	root.PersistentFlags().String("trace-level", "phase", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newVersionCmd())
	return root
}

// main builds the CLI and executes it. Any error exits with status 1.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
