package evaluator

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

// BuiltinFunc implements a standard-library function. Unlike a
// user-defined Callee it receives the raw Call node and caller
// environment directly, so it can choose to evaluate arguments
// lazily (while/do/for lower their block arguments into *ast.Loop
// nodes, and if evaluates only the selected branch, this way instead
// of being special parser syntax).
type BuiltinFunc func(ev *Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error)

// builtins is a name -> implementation registry populated by
// internal/builtins' init(). Keeping it here, rather than importing
// internal/builtins directly, avoids a cycle: the builtins package
// needs the Evaluator/Signal types this package defines.
var builtins = map[string]BuiltinFunc{}

// RegisterBuiltin adds fn under name, overwriting any previous
// registration. Intended to be called from package init functions.
func RegisterBuiltin(name string, fn BuiltinFunc) {
	builtins[name] = fn
}

// LookupBuiltin reports whether name is a registered standard
// library function, mainly so callers (e.g. the host embedding API)
// can tell a builtin name apart from an undefined one.
func LookupBuiltin(name string) (BuiltinFunc, bool) {
	fn, ok := builtins[name]
	return fn, ok
}

func (ev *Evaluator) evalCall(n *ast.Call, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	if ident, ok := n.Target.(*ast.Identifier); ok && !env.Has(ident.Name) {
		if fn, ok := builtins[ident.Name]; ok {
			return fn(ev, n, env)
		}
	}

	callee, sig, err := ev.Eval(n.Target, env)
	if err != nil {
		return nil, SigNone, err
	}
	if sig != SigNone {
		return callee, sig, nil
	}
	if callee.Kind() != vexvalue.KindCallee {
		return nil, SigNone, vexerr.Eval(n.Pos(), "cannot call a %s", callee.Kind().String())
	}
	return ev.Invoke(callee, n.Arguments, env, n.Pos())
}

// Invoke runs a Callee value against raw argument expressions
// evaluated in callerEnv, implementing spec.md's parameter-binding
// rules: positional binding by modifier (value/function/reference),
// a trailing "_" array of every evaluated argument, and closure
// capture of the defining environment.
//
// Because Array/Block values are already Go pointers, a reference
// parameter only needs to skip the DeepCopy a value parameter gets —
// mutations the callee makes through the shared pointer are visible
// to the caller without any further indirection.
func (ev *Evaluator) Invoke(callee *vexvalue.Value, argExprs []ast.Expression, callerEnv *environment.Environment, pos token.Position) (*vexvalue.Value, Signal, *vexerr.Error) {
	def := callee.CalleeDef()
	if def == nil {
		return nil, SigNone, vexerr.Eval(pos, "value is not callable")
	}

	outer, _ := callee.CalleeEnv().(*environment.Environment)
	if outer == nil {
		outer = callerEnv
	}
	fnEnv := environment.NewEnclosed(outer)

	implicit := vexvalue.NewArray()
	for i, p := range def.Parameters {
		if i >= len(argExprs) {
			fnEnv.Define(p.Name, vexvalue.UNDEFINED)
			continue
		}
		bound, slotForImplicit, sig, err := ev.bindArgument(p, argExprs[i], callerEnv)
		if err != nil {
			return nil, SigNone, err
		}
		if sig != SigNone {
			return bound, sig, nil
		}
		fnEnv.Define(p.Name, bound)
		implicit.ArrayAppend(slotForImplicit)
	}
	for i := len(def.Parameters); i < len(argExprs); i++ {
		v, sig, err := ev.Eval(argExprs[i], callerEnv)
		if err != nil {
			return nil, SigNone, err
		}
		if sig != SigNone {
			return v, sig, nil
		}
		implicit.ArrayAppend(v.DeepCopy())
	}
	fnEnv.Define("_", implicit)

	if err := ev.pushFrame(frame{name: def.Name, isFunc: true}); err != nil {
		return nil, SigNone, err
	}
	defer ev.popFrame()

	if def.Body.Type == ast.ClassConstructor {
		return ev.runConstructor(def.Body, fnEnv)
	}

	return ev.evalStatements(def.Body.Statements, fnEnv, boundaryFunction)
}

// bindArgument evaluates (or, for a function-modifier parameter,
// wraps) one positional argument, returning both the value to bind
// to the named parameter and the value to record in the implicit "_"
// array.
func (ev *Evaluator) bindArgument(p *ast.Parameter, argExpr ast.Expression, callerEnv *environment.Environment) (*vexvalue.Value, *vexvalue.Value, Signal, *vexerr.Error) {
	if p.Modifier == ast.ParamFunction {
		thunk := vexvalue.NewCallee(&ast.Callee{
			Token: p.Token,
			Body: &ast.Block{
				Token:      p.Token,
				Type:       ast.AnonymousFunction,
				Statements: []ast.Statement{&ast.Return{Token: p.Token, Value: argExpr}},
			},
		}, callerEnv)
		return thunk, thunk, SigNone, nil
	}

	v, sig, err := ev.Eval(argExpr, callerEnv)
	if err != nil {
		return nil, nil, SigNone, err
	}
	if sig != SigNone {
		return v, v, sig, nil
	}
	if p.Modifier == ast.ParamReference {
		return v, v, SigNone, nil
	}
	return v.DeepCopy(), v.DeepCopy(), SigNone, nil
}

// runConstructor executes a class body to completion (ignoring its
// statements' trailing value) and snapshots the resulting scope as a
// Block: every field and method the constructor defined becomes a
// member reachable by name. An explicit return() inside a
// constructor still aborts construction early, value discarded.
func (ev *Evaluator) runConstructor(body *ast.Block, fnEnv *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	_, sig, err := ev.evalStatements(body.Statements, fnEnv, boundaryFunction)
	if err != nil {
		return nil, SigNone, err
	}
	_ = sig // boundaryFunction already absorbed SigReturn

	instance := vexvalue.NewBlock()
	for name, v := range fnEnv.LocalBindings() {
		if environment.IsReservedName(name) || name == "_" {
			continue
		}
		instance.ObjectSet(name, v)
	}
	return instance, SigNone, nil
}
