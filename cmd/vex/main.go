// Command vex is a CLI for lexing, parsing, and running vex scripts.
package main

import (
	"fmt"
	"os"

	"github.com/vexlang/vex/cmd/vex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
