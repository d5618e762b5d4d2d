package cmd

import (
	"fmt"
	"io"
	"os"
)

// readInput resolves the source text and its display name from either
// an inline -e/--eval flag, a file argument, or stdin, in that order
// of precedence — the same precedence every vex subcommand uses.
func readInput(evalExpr string, args []string) (source, origin string, err error) {
	switch {
	case evalExpr != "":
		return evalExpr, "<eval>", nil
	case len(args) == 1:
		data, rerr := os.ReadFile(args[0])
		if rerr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], rerr)
		}
		return string(data), args[0], nil
	default:
		data, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", rerr)
		}
		return string(data), "<stdin>", nil
	}
}
