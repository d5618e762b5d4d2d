// Package builtins implements the standard library named in
// spec.md §4.4 (if/do/while/for/int/float/string/len/insert/strip/
// type/print), registered against internal/evaluator's name->callable
// table the way the teacher's internal/interp/builtins package
// registers into DefaultRegistry: one function per builtin, split
// across files by concern, wired up from init().
package builtins

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

func init() {
	evaluator.RegisterBuiltin("if", ifBuiltin)
	evaluator.RegisterBuiltin("do", doBuiltin)
	evaluator.RegisterBuiltin("while", whileBuiltin)
	evaluator.RegisterBuiltin("for", forBuiltin)
}

// ifBuiltin implements `if(cond1, body1, cond2, body2, …)`: an even
// argument count is required, and the first body whose condition
// evaluates truthy is itself evaluated and returned (so a body is any
// expression, not only a `{ ... }` block — e.g. `if(true, 1, false, 2)`
// is legal).
func ifBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args := call.Arguments
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "if() expects an even number of arguments (condition, body, ...), got %d", len(args))
	}
	for i := 0; i < len(args); i += 2 {
		cond, sig, err := ev.Eval(args[i], env)
		if err != nil {
			return nil, evaluator.SigNone, err
		}
		if sig != evaluator.SigNone {
			return cond, sig, nil
		}
		if cond.Truthy() {
			return ev.Eval(args[i+1], env)
		}
	}
	return vexvalue.NULL, evaluator.SigNone, nil
}

// trueLiteral is the literal `true` expression used as an ast.Loop's
// Continuous entry to keep a lowered while/do/for loop alive until a
// guard statement or the loop body itself breaks or returns.
func trueLiteral(tok token.Token) ast.Expression {
	return &ast.Literal{Token: token.Token{Type: token.TRUE, Literal: "true", Pos: tok.Pos}, Kind: token.TRUE}
}

// breakKeyword builds a bare `break` statement positioned at tok.
func breakKeyword(tok token.Token) ast.Statement {
	return &ast.Keyword{Token: token.Token{Type: token.BREAK, Literal: "break", Pos: tok.Pos}}
}

// guardStatement builds `if(not cond, { break })`, an ast.Call that
// recurses into ifBuiltin through the very same builtins registry.
// evaluator.RunLoop's runWhile always executes a loop's Statements at
// least once before checking Continuous, and stops after exactly one
// pass when Continuous is empty; prepending this guard and setting
// Continuous to a single `true` literal is what turns that
// execute-then-check shape back into an ordinary pre-test loop.
func guardStatement(tok token.Token, cond ast.Expression) ast.Statement {
	notCond := &ast.Unary{Token: tok, Operator: "not", Right: cond}
	body := &ast.Block{Token: tok, Type: ast.LexicalBlock, Statements: []ast.Statement{breakKeyword(tok)}}
	return &ast.ExpressionStatement{
		Token: tok,
		Expr: &ast.Call{
			Token:     tok,
			Target:    &ast.Identifier{Token: tok, Name: "if"},
			Arguments: []ast.Expression{notCond, body},
		},
	}
}

// blockBody asserts that arg is a `{ ... }` literal usable as a loop
// body, returning its statements.
func blockBody(arg ast.Expression, who string) ([]ast.Statement, *vexerr.Error) {
	b, ok := arg.(*ast.Block)
	if !ok || b.Entries != nil {
		return nil, vexerr.Eval(arg.Pos(), "%s() expects a block body argument", who)
	}
	return b.Statements, nil
}

// doBuiltin implements `do(body)`: an infinite loop, with no implicit
// condition, that only stops on break or return inside body.
func doBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args := call.Arguments
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "do() expects exactly 1 argument (the loop body), got %d", len(args))
	}
	stmts, berr := blockBody(args[0], "do")
	if berr != nil {
		return nil, evaluator.SigNone, berr
	}
	loop := &ast.Loop{
		Token:      call.Token,
		Statements: stmts,
		Continuous: []ast.Expression{trueLiteral(call.Token)},
	}
	return ev.RunLoop(loop, env)
}

// whileBuiltin implements `while(cond, body)`: a standard pre-test
// loop, lowered via the guard-statement technique described on
// guardStatement.
func whileBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args := call.Arguments
	if len(args) != 2 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "while() expects exactly 2 arguments (condition, body), got %d", len(args))
	}
	stmts, berr := blockBody(args[1], "while")
	if berr != nil {
		return nil, evaluator.SigNone, berr
	}
	loop := &ast.Loop{
		Token:      call.Token,
		Statements: append([]ast.Statement{guardStatement(call.Token, args[0])}, stmts...),
		Continuous: []ast.Expression{trueLiteral(call.Token)},
	}
	return ev.RunLoop(loop, env)
}

// forBuiltin implements both for forms from spec.md §4.4:
//
//   - for(x in iter, body)            — two arguments, for-in over a
//     single loop variable; x must be `x in iter` (an *ast.Binary with
//     operator "in").
//   - for(key, val in iter, body)     — three arguments, for-in
//     binding both key and value.
//   - for(init, cond, update, body)   — four arguments, the C-style
//     counted form, lowered through the same guard technique as
//     while().
func forBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args := call.Arguments
	switch len(args) {
	case 2:
		return forIn(ev, call, env, nil, args[0], args[1])
	case 3:
		keyIdent, ok := args[0].(*ast.Identifier)
		if !ok {
			return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "for() with 3 arguments expects an identifier as the key variable")
		}
		return forIn(ev, call, env, []string{keyIdent.Name}, args[1], args[2])
	case 4:
		return forCStyle(ev, call, env, args[0], args[1], args[2], args[3])
	default:
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "for() expects 2, 3, or 4 arguments, got %d", len(args))
	}
}

// forIn handles `for(x in iter, body)` and `for(key, val in iter, body)`.
// inExpr must be `name in iter` (an *ast.Binary with operator "in");
// extraEach, if non-nil, supplies the leading key variable name for
// the three-argument form, so Each becomes [extraEach[0], name].
func forIn(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment, extraEach []string, inExpr, bodyExpr ast.Expression) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	bin, ok := inExpr.(*ast.Binary)
	if !ok || bin.Operator != "in" {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "for() expects a \"x in iterable\" expression")
	}
	valIdent, ok := bin.Left.(*ast.Identifier)
	if !ok {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "for() expects an identifier on the left of \"in\"")
	}
	stmts, berr := blockBody(bodyExpr, "for")
	if berr != nil {
		return nil, evaluator.SigNone, berr
	}
	each := append(append([]string{}, extraEach...), valIdent.Name)
	loop := &ast.Loop{
		Token:      call.Token,
		Statements: stmts,
		Each:       each,
		Iterator:   bin.Right,
	}
	return ev.RunLoop(loop, env)
}

// forCStyle handles `for(init, cond, update, body)`.
func forCStyle(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment, initExpr, cond, update, bodyExpr ast.Expression) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	stmts, berr := blockBody(bodyExpr, "for")
	if berr != nil {
		return nil, evaluator.SigNone, berr
	}
	loop := &ast.Loop{
		Token:      call.Token,
		Initial:    []ast.Expression{initExpr},
		Statements: append([]ast.Statement{guardStatement(call.Token, cond)}, stmts...),
		Continuous: []ast.Expression{update, trueLiteral(call.Token)},
	}
	return ev.RunLoop(loop, env)
}
