package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vex/pkg/vex"
)

var (
	runEvalExpr      string
	runJSONOnly      bool
	runInfinity      string
	runNaN           string
	runMaxArraySize  int
	runMaxDepth      int
	runMaxLoopTimes  int
	runStderrEnabled bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a vex file or expression",
	Long: `Execute a vex program from a file or inline expression and print
its result.

Examples:
  # Run a script file
  vex run script.vex

  # Evaluate an inline expression
  vex run -e "1 + 2"

  # Run as strict JSON (no vex extensions)
  vex run --json-only data.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&runJSONOnly, "json-only", false, "restrict the parser to strict JSON")
	runCmd.Flags().StringVar(&runInfinity, "infinity", "", "textual tag to render for Infinity/-Infinity instead of erroring")
	runCmd.Flags().StringVar(&runNaN, "nan", "", "textual tag to render for NaN instead of erroring")
	runCmd.Flags().IntVar(&runMaxArraySize, "max-array-size", 0, "maximum array length (0 = unlimited)")
	runCmd.Flags().IntVar(&runMaxDepth, "max-depth", 0, "maximum call-stack depth (0 = unlimited)")
	runCmd.Flags().IntVar(&runMaxLoopTimes, "max-loop-times", 0, "maximum iterations per loop (0 = unlimited)")
	runCmd.Flags().BoolVar(&runStderrEnabled, "stderr", true, "echo a tagged diagnostic to stderr on abort")
}

func runScript(_ *cobra.Command, args []string) error {
	input, origin, err := readInput(runEvalExpr, args)
	if err != nil {
		return err
	}

	cfg := vex.Config{
		Infinity:      runInfinity,
		NaN:           runNaN,
		MaxArraySize:  runMaxArraySize,
		MaxDepth:      runMaxDepth,
		MaxLoopTimes:  runMaxLoopTimes,
		JSONOnly:      runJSONOnly,
		StderrEnabled: runStderrEnabled,
		Stdout:        os.Stdout,
	}

	parsed, err := vex.Parse(input, origin, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("parsing failed")
	}

	result, err := vex.EvaluateParsed(parsed, cfg)
	if err != nil {
		return err
	}

	fmt.Println(result.String(cfg.Infinity, cfg.NaN))
	return nil
}
