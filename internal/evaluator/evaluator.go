// Package evaluator walks an *ast.Program against an *environment.Environment,
// implementing the runtime semantics of spec.md §4.3.
package evaluator

import (
	"io"
	"math"
	"strconv"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

// Signal is the Go-level control-flow channel an Eval call bubbles
// upward alongside its value. spec.md models return/break/continue as
// environment sentinels (environment.ReturnSlot and friends); a port
// may surface them instead as a distinct result variant threaded
// through the evaluator, which is clearer and cheaper in Go. The
// sentinel names and Environment API still exist and are written to
// at the point of signaling, for introspection and fidelity to the
// described model.
type Signal int

const (
	SigNone Signal = iota
	SigReturn
	SigBreak
	SigContinue
)

// boundary describes how a statement sequence's caller should treat
// an unwinding signal.
type boundary int

const (
	boundaryPlain boundary = iota
	boundaryFunction
	boundaryLoop
)

// frame is one entry of the bounded call-depth stack (spec.md §4.3.1).
type frame struct {
	name     string
	isLoop   bool
	isFunc   bool
}

// Evaluator walks the AST against an environment, maintaining a
// bounded call-depth stack and the configuration limits of Config.
type Evaluator struct {
	Config Config
	Out    io.Writer

	stack []frame
}

// New creates an Evaluator. A nil out discards anything print() writes.
func New(cfg Config, out io.Writer) *Evaluator {
	if out == nil {
		out = io.Discard
	}
	return &Evaluator{Config: cfg, Out: out}
}

func (ev *Evaluator) pushFrame(f frame) *vexerr.Error {
	if ev.Config.MaxDepth > 0 && len(ev.stack) >= ev.Config.MaxDepth {
		return vexerr.EvalNoPos("call depth exceeded max_depth (%d)", ev.Config.MaxDepth)
	}
	ev.stack = append(ev.stack, f)
	return nil
}

func (ev *Evaluator) popFrame() {
	ev.stack = ev.stack[:len(ev.stack)-1]
}

// CheckFinite is the exported form of checkFinite, used by
// internal/builtins' string()/print() so a non-finite float is
// rejected there the same way it is after every arithmetic operator.
func (ev *Evaluator) CheckFinite(v *vexvalue.Value, pos token.Position) (*vexvalue.Value, *vexerr.Error) {
	return ev.checkFinite(v, pos)
}

// ResetStack discards every frame on the call-depth stack. Used by
// the host-facing Instance lifecycle (pkg/vex) to recover after an
// aborted call: spec.md §7 requires "the call-stack frame buffer is
// cleared" so the next call on the same Instance starts clean.
func (ev *Evaluator) ResetStack() {
	ev.stack = ev.stack[:0]
}

// checkFinite aborts with an EvalError when v is a non-finite float
// and the config has no textual tag configured for it (spec.md §3.1:
// "Infinity/NaN representable only when config permits"). It is a
// no-op for every other Kind.
func (ev *Evaluator) checkFinite(v *vexvalue.Value, pos token.Position) (*vexvalue.Value, *vexerr.Error) {
	if v.Kind() != vexvalue.KindFloat {
		return v, nil
	}
	f := v.Float()
	if math.IsInf(f, 0) && ev.Config.Infinity == "" {
		return nil, vexerr.Eval(pos, "float overflowed to infinity and no infinity tag is configured")
	}
	if math.IsNaN(f) && ev.Config.NaN == "" {
		return nil, vexerr.Eval(pos, "float computation produced NaN and no NaN tag is configured")
	}
	return v, nil
}

// Eval evaluates node in env, returning its value, any unwinding
// signal it produced, and an error if evaluation must abort.
func (ev *Evaluator) Eval(node ast.Node, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	switch n := node.(type) {
	case *ast.Program:
		return ev.evalStatements(n.Statements, env, boundaryFunction)
	case *ast.BlankStatement:
		return vexvalue.NULL, SigNone, nil
	case *ast.ExpressionStatement:
		return ev.Eval(n.Expr, env)

	case *ast.Literal:
		return ev.evalLiteral(n)
	case *ast.Identifier:
		return ev.evalIdentifier(n, env)
	case *ast.Array:
		return ev.evalArray(n, env)
	case *ast.Block:
		return ev.evalBlock(n, env)
	case *ast.Callee:
		v := vexvalue.NewCallee(n, env)
		if n.Name != "" {
			env.Define(n.Name, v)
		}
		return v, SigNone, nil

	case *ast.Unary:
		return ev.evalUnary(n, env)
	case *ast.Binary:
		return ev.evalBinary(n, env)

	case *ast.Get:
		return ev.evalGet(n, env)
	case *ast.Set:
		return ev.evalSet(n, env)
	case *ast.Remove:
		return ev.evalRemove(n, env)

	case *ast.Return:
		return ev.evalReturn(n, env)
	case *ast.Keyword:
		return ev.evalKeyword(n, env)

	case *ast.Call:
		return ev.evalCall(n, env)
	case *ast.Loop:
		return ev.RunLoop(n, env)

	case *ast.Injection:
		return ev.evalInjection(n, env)
	case *ast.ValueNode:
		v, err := vexvalue.FromHost(n.Value)
		if err != nil {
			return nil, SigNone, vexerr.Eval(n.Pos(), "%s", err.Error())
		}
		return v, SigNone, nil

	default:
		return nil, SigNone, vexerr.Eval(node.Pos(), "unsupported AST node %T", node)
	}
}

func sigName(sig Signal) string {
	switch sig {
	case SigBreak:
		return "break"
	case SigContinue:
		return "continue"
	default:
		return "return"
	}
}

// evalStatements runs a sequence of statements in env, honoring the
// unwinding rules for the given boundary kind: a function boundary
// absorbs return and rejects stray break/continue; a loop boundary
// lets its caller (the loop-running code) see break/continue
// directly; a plain boundary (an if body, or any nested `{ ... }`)
// propagates every signal upward unchanged.
func (ev *Evaluator) evalStatements(stmts []ast.Statement, env *environment.Environment, b boundary) (*vexvalue.Value, Signal, *vexerr.Error) {
	last := vexvalue.NULL
	for _, s := range stmts {
		v, sig, err := ev.Eval(s, env)
		if err != nil {
			return nil, SigNone, err
		}
		if v != nil {
			last = v
		}
		switch sig {
		case SigNone:
			continue
		case SigReturn:
			if b == boundaryFunction {
				env.SignalReturn(v)
				return v, SigNone, nil
			}
			return v, SigReturn, nil
		case SigBreak, SigContinue:
			if b == boundaryFunction {
				return nil, SigNone, vexerr.EvalNoPos("%s used outside of a loop", sigName(sig))
			}
			return v, sig, nil
		}
	}
	// spec.md's glossary: ":= writes the implicit slot that a block
	// returns its result through". If any `:=` ran in this scope, its
	// value - not simply the last statement's own value - is the
	// block's result.
	if im, ok := env.ImplicitValue(); ok {
		return im, SigNone, nil
	}
	return last, SigNone, nil
}

func (ev *Evaluator) evalLiteral(n *ast.Literal) (*vexvalue.Value, Signal, *vexerr.Error) {
	switch n.Kind {
	case token.INT:
		i, err := strconv.ParseInt(n.Token.Literal, 10, 64)
		if err != nil {
			return nil, SigNone, vexerr.Eval(n.Pos(), "malformed integer literal %q", n.Token.Literal)
		}
		return vexvalue.Int(i), SigNone, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(n.Token.Literal, 64)
		if err != nil {
			return nil, SigNone, vexerr.Eval(n.Pos(), "malformed float literal %q", n.Token.Literal)
		}
		v, ferr := ev.checkFinite(vexvalue.Float(f), n.Pos())
		if ferr != nil {
			return nil, SigNone, ferr
		}
		return v, SigNone, nil
	case token.STRING:
		return vexvalue.String(n.Token.Literal), SigNone, nil
	case token.TRUE:
		return vexvalue.TRUE, SigNone, nil
	case token.FALSE:
		return vexvalue.FALSE, SigNone, nil
	case token.NULL:
		return vexvalue.NULL, SigNone, nil
	default:
		return nil, SigNone, vexerr.Eval(n.Pos(), "unsupported literal kind")
	}
}

func (ev *Evaluator) evalIdentifier(n *ast.Identifier, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	return env.Get(n.Name), SigNone, nil
}

func (ev *Evaluator) evalArray(n *ast.Array, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	out := vexvalue.NewArray()
	for _, e := range n.Values {
		v, sig, err := ev.Eval(e, env)
		if err != nil {
			return nil, SigNone, err
		}
		if sig != SigNone {
			return v, sig, nil
		}
		if ev.Config.MaxArraySize > 0 && out.ArrayLen()+1 > ev.Config.MaxArraySize {
			return nil, SigNone, vexerr.Eval(n.Pos(), "array literal would exceed max_array_size (%d)", ev.Config.MaxArraySize)
		}
		out.ArrayAppend(v.DeepCopy())
	}
	return out, SigNone, nil
}

func (ev *Evaluator) evalBlock(n *ast.Block, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	if n.Entries != nil {
		out := vexvalue.NewBlock()
		for _, e := range n.Entries {
			v, sig, err := ev.Eval(e.Value, env)
			if err != nil {
				return nil, SigNone, err
			}
			if sig != SigNone {
				return v, sig, nil
			}
			out.ObjectSet(e.Key, v.DeepCopy())
		}
		return out, SigNone, nil
	}

	// A bare *ast.Block reached through generic Eval is always a
	// lexical body (an if argument, or a nested `{ ... }`; while/do/for
	// block arguments are lifted into an *ast.Loop and run by RunLoop).
	// Named/anonymous function and class bodies are invoked directly
	// against their Statements by the call protocol in call.go and
	// never dispatched through here.
	child := environment.NewEnclosed(env)
	if err := ev.pushFrame(frame{name: "block"}); err != nil {
		return nil, SigNone, err
	}
	defer ev.popFrame()
	return ev.evalStatements(n.Statements, child, boundaryPlain)
}

func (ev *Evaluator) evalUnary(n *ast.Unary, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	v, sig, err := ev.Eval(n.Right, env)
	if err != nil || sig != SigNone {
		return v, sig, err
	}
	switch n.Operator {
	case "not":
		return vexvalue.Bool(!v.Truthy()), SigNone, nil
	case "-":
		if !v.IsNumeric() {
			return nil, SigNone, vexerr.Eval(n.Pos(), "unary '-' requires a numeric operand, got %s", v.Kind().String())
		}
		if v.Kind() == vexvalue.KindInt {
			return vexvalue.Int(-v.Int()), SigNone, nil
		}
		return vexvalue.Float(-v.Float()), SigNone, nil
	case "+":
		if !v.IsNumeric() {
			return nil, SigNone, vexerr.Eval(n.Pos(), "unary '+' requires a numeric operand, got %s", v.Kind().String())
		}
		return v, SigNone, nil
	default:
		return nil, SigNone, vexerr.Eval(n.Pos(), "unknown unary operator %q", n.Operator)
	}
}

func (ev *Evaluator) evalBinary(n *ast.Binary, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	left, sig, err := ev.Eval(n.Left, env)
	if err != nil || sig != SigNone {
		return left, sig, err
	}

	if n.Operator == "and" {
		if !left.Truthy() {
			return vexvalue.FALSE, SigNone, nil
		}
		right, sig, err := ev.Eval(n.Right, env)
		if err != nil || sig != SigNone {
			return right, sig, err
		}
		return vexvalue.Bool(right.Truthy()), SigNone, nil
	}
	if n.Operator == "or" {
		if left.Truthy() {
			return vexvalue.TRUE, SigNone, nil
		}
		right, sig, err := ev.Eval(n.Right, env)
		if err != nil || sig != SigNone {
			return right, sig, err
		}
		return vexvalue.Bool(right.Truthy()), SigNone, nil
	}

	right, sig, err := ev.Eval(n.Right, env)
	if err != nil || sig != SigNone {
		return right, sig, err
	}

	var out *vexvalue.Value
	var opErr *vexerr.Error
	switch n.Operator {
	case "+":
		out, opErr = Add(n.Pos(), left, right, ev.Config.MaxArraySize)
	case "-":
		out, opErr = Sub(n.Pos(), left, right)
	case "*":
		out, opErr = Mul(n.Pos(), left, right, ev.Config.MaxArraySize)
	case "/":
		out, opErr = Div(n.Pos(), left, right, ev.Config.MaxArraySize)
	case "%":
		out, opErr = Mod(n.Pos(), left, right)
	case "<", "<=", ">", ">=":
		out, opErr = Compare(n.Pos(), n.Operator, left, right)
	case "==":
		out = vexvalue.Bool(left.Equals(right, false))
	case "!=":
		out = vexvalue.Bool(!left.Equals(right, false))
	case "in":
		out, opErr = In(n.Pos(), left, right)
	default:
		opErr = vexerr.Eval(n.Pos(), "unknown binary operator %q", n.Operator)
	}
	if opErr != nil {
		return nil, SigNone, opErr
	}
	switch n.Operator {
	case "+", "-", "*", "/", "%":
		fout, ferr := ev.checkFinite(out, n.Pos())
		if ferr != nil {
			return nil, SigNone, ferr
		}
		out = fout
	}
	return out, SigNone, nil
}

func (ev *Evaluator) evalKeyword(n *ast.Keyword, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	switch n.Token.Type {
	case token.BREAK:
		env.SignalBreak()
		return vexvalue.NULL, SigBreak, nil
	case token.CONTINUE:
		env.SignalContinue()
		return vexvalue.NULL, SigContinue, nil
	default:
		return nil, SigNone, vexerr.Eval(n.Pos(), "unsupported keyword statement")
	}
}

func (ev *Evaluator) evalReturn(n *ast.Return, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	if n.Value == nil {
		return vexvalue.NULL, SigReturn, nil
	}
	v, sig, err := ev.Eval(n.Value, env)
	if err != nil {
		return nil, SigNone, err
	}
	if sig != SigNone {
		return v, sig, nil
	}
	return v, SigReturn, nil
}

func (ev *Evaluator) evalInjection(n *ast.Injection, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	v, err := vexvalue.FromHost(n.Value)
	if err != nil {
		return nil, SigNone, vexerr.Eval(n.Pos(), "%s", err.Error())
	}
	env.Define(n.Variable, v)
	return v, SigNone, nil
}
