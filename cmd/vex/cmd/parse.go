package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/vexerr"
)

var (
	parseEvalExpr string
	parseDumpAST  bool
	parseJSONOnly bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse vex source code and display the AST",
	Long: `Parse vex source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.
Use --dump-ast to show the full tree structure instead of the
reconstructed source form.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
	parseCmd.Flags().BoolVar(&parseJSONOnly, "json-only", false, "parse as strict JSON (no vex extensions)")
}

func runParse(_ *cobra.Command, args []string) error {
	input, origin, err := readInput(parseEvalExpr, args)
	if err != nil {
		return err
	}

	program, errs := parser.Parse(input, parseJSONOnly)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, vexerr.FormatErrors(errs, input, origin))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if parseDumpAST {
		fmt.Println("Abstract Syntax Tree:")
		fmt.Println("=====================")
		dumpASTNode(program, 0)
	} else {
		fmt.Println(program.String())
	}
	return nil
}

func dumpASTNode(node ast.Node, indent int) {
	pad := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		fmt.Printf("%sProgram (%d statements)\n", pad, len(n.Statements))
		for _, s := range n.Statements {
			dumpASTNode(s, indent+1)
		}
	case *ast.ExpressionStatement:
		fmt.Printf("%sExpressionStatement\n", pad)
		dumpASTNode(n.Expr, indent+1)
	case *ast.BlankStatement:
		fmt.Printf("%sBlankStatement\n", pad)
	case *ast.Literal:
		fmt.Printf("%sLiteral(%s): %s\n", pad, n.Kind.String(), n.String())
	case *ast.Identifier:
		fmt.Printf("%sIdentifier: %s\n", pad, n.Name)
	case *ast.Keyword:
		fmt.Printf("%sKeyword: %s\n", pad, n.TokenLiteral())
	case *ast.Array:
		fmt.Printf("%sArray (%d elements)\n", pad, len(n.Values))
		for _, v := range n.Values {
			dumpASTNode(v, indent+1)
		}
	case *ast.Block:
		fmt.Printf("%sBlock (entries=%d statements=%d)\n", pad, len(n.Entries), len(n.Statements))
		for _, e := range n.Entries {
			fmt.Printf("%s  %q:\n", pad, e.Key)
			dumpASTNode(e.Value, indent+2)
		}
		for _, s := range n.Statements {
			dumpASTNode(s, indent+1)
		}
	case *ast.Callee:
		fmt.Printf("%sCallee %q (%d params)\n", pad, n.Name, len(n.Parameters))
		dumpASTNode(n.Body, indent+1)
	case *ast.Call:
		fmt.Printf("%sCall\n", pad)
		fmt.Printf("%s  Target:\n", pad)
		dumpASTNode(n.Target, indent+2)
		for _, a := range n.Arguments {
			dumpASTNode(a, indent+1)
		}
	case *ast.Binary:
		fmt.Printf("%sBinary (%s)\n", pad, n.Operator)
		dumpASTNode(n.Left, indent+1)
		dumpASTNode(n.Right, indent+1)
	case *ast.Unary:
		fmt.Printf("%sUnary (%s)\n", pad, n.Operator)
		dumpASTNode(n.Right, indent+1)
	case *ast.Get:
		fmt.Printf("%sGet: %s\n", pad, n.String())
	case *ast.Set:
		fmt.Printf("%sSet (%s): %s\n", pad, n.Operator, n.Target.String())
		dumpASTNode(n.Value, indent+1)
	case *ast.Remove:
		fmt.Printf("%sRemove: %s\n", pad, n.Target.String())
	case *ast.Return:
		fmt.Printf("%sReturn\n", pad)
		if n.Value != nil {
			dumpASTNode(n.Value, indent+1)
		}
	case *ast.Loop:
		fmt.Printf("%sLoop\n", pad)
		for _, s := range n.Statements {
			dumpASTNode(s, indent+1)
		}
	case *ast.Injection:
		fmt.Printf("%sInjection: %s\n", pad, n.Variable)
	case *ast.ValueNode:
		fmt.Printf("%sValueNode\n", pad)
	default:
		fmt.Printf("%s%T: %s\n", pad, node, node.String())
	}
}
