package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vexlang/vex/internal/lexer"
	"github.com/vexlang/vex/internal/token"
)

var (
	lexEvalExpr string
	showPos     bool
	showType    bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a vex source file or expression",
	Long: `Tokenize (lex) a vex program and print the resulting tokens.

If no file is given, reads from stdin.

Examples:
  # Tokenize a script file
  vex lex script.vex

  # Tokenize an inline expression
  vex lex -e "1 + 2"

  # Show token types and positions
  vex lex --show-type --show-pos script.vex`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, origin, err := readInput(lexEvalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", origin)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)
	tokenCount := 0
	errorCount := 0

	for {
		tok, lerr := l.Next()
		if lerr != nil {
			errorCount++
			fmt.Printf("error: %s\n", lerr.Error())
			continue
		}

		tokenCount++
		fmt.Println(formatToken(tok))

		if tok.Type == token.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d lexical error(s)", errorCount)
	}
	return nil
}

func formatToken(tok token.Token) string {
	var out string
	if showType {
		out = fmt.Sprintf("[%-10s]", tok.Type.String())
	}
	if tok.Type == token.EOF {
		out += " EOF"
	} else if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Type.String())
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if showPos {
		out += fmt.Sprintf(" @%s", tok.Pos.String())
	}
	return out
}
