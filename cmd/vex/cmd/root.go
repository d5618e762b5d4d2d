// Package cmd implements the vex command-line tool: a thin wrapper
// around pkg/vex (and, for the lex/parse subcommands, internal/lexer
// and internal/parser directly) for exploring and running vex scripts
// from a shell.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "vex",
	Short: "vex scripting language interpreter",
	Long: `vex is a tree-walking interpreter for a small dynamically-typed
scripting language that is a strict superset of JSON.

Every valid JSON document is a valid vex program evaluating to
itself; on top of that vex adds variables, arithmetic and logical
operators, control flow, user-defined functions and classes, and a
small standard library.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
