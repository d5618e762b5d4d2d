package vex

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

// Instance is a program that has been evaluated once and can be
// called into repeatedly afterward (spec.md §6.1's `MakeInstance` /
// `InvokeOnInstance` / `GetMember`), e.g. a script that defines a set
// of named functions over shared top-level state.
//
// Per spec.md §7, an aborted InvokeOnInstance call rewinds the
// instance's environment to its state immediately after construction
// and clears the evaluator's call-stack frame buffer, so the instance
// remains usable for the next call.
type Instance struct {
	env *environment.Environment
	ev  *evaluator.Evaluator
	cfg Config

	snapshot map[string]*vexvalue.Value

	source, origin string
}

// MakeInstance evaluates p once against a fresh top-level environment
// and keeps that environment alive for later InvokeOnInstance/GetMember
// calls.
func MakeInstance(p *Parsed, cfg Config) (*Instance, error) {
	ev := cfg.newEvaluator()
	env := environment.New()
	_, _, err := ev.Eval(p.Program, env)
	if err != nil {
		return nil, wrapEval(cfg, err, p.source, p.origin)
	}
	return &Instance{
		env:      env,
		ev:       ev,
		cfg:      cfg,
		snapshot: env.Snapshot(),
		source:   p.source,
		origin:   p.origin,
	}, nil
}

// InvokeOnInstance calls the callable top-level member named name with
// args (host values, normalized as FromHost does), returning its result. On
// abort, inst is rewound per spec.md §7 before the error is returned.
func InvokeOnInstance(inst *Instance, name string, args []any) (*vexvalue.Value, error) {
	callee := inst.env.Get(name)
	if callee.Kind() != vexvalue.KindCallee {
		return nil, wrapEval(inst.cfg, vexerr.EvalNoPos("%q is not a callable member of this instance", name), inst.source, inst.origin)
	}

	argExprs := make([]ast.Expression, len(args))
	for i, a := range args {
		argExprs[i] = &ast.ValueNode{Value: a}
	}

	v, _, err := inst.ev.Invoke(callee, argExprs, inst.env, token.Position{})
	if err != nil {
		inst.env.Restore(inst.snapshot)
		inst.ev.ResetStack()
		return nil, wrapEval(inst.cfg, err, inst.source, inst.origin)
	}
	return v, nil
}

// GetMember reads the value at path, a sequence of string object keys
// and int array indices rooted at a top-level variable (path[0] must
// be a string). The walk is lenient the way internal/evaluator's plain
// get-expression is: a missing key or an out-of-range index yields
// NULL rather than an error, and only a malformed path shape (wrong
// segment type, or indexing into a non-container) is an error.
func GetMember(inst *Instance, path []any) (*vexvalue.Value, error) {
	if len(path) == 0 {
		return nil, wrapEval(inst.cfg, vexerr.EvalNoPos("GetMember requires a non-empty path"), inst.source, inst.origin)
	}
	root, ok := path[0].(string)
	if !ok {
		return nil, wrapEval(inst.cfg, vexerr.EvalNoPos("GetMember's first path segment must be a variable name"), inst.source, inst.origin)
	}

	cur := inst.env.Get(root)
	for _, seg := range path[1:] {
		if cur.Kind() == vexvalue.KindNull || cur.Kind() == vexvalue.KindUndefined {
			return vexvalue.NULL, nil
		}
		switch s := seg.(type) {
		case string:
			if cur.Kind() != vexvalue.KindBlock {
				return nil, wrapEval(inst.cfg, vexerr.EvalNoPos("cannot read member %q of a %s", s, cur.Kind().String()), inst.source, inst.origin)
			}
			v, found := cur.ObjectGet(s)
			if !found {
				return vexvalue.NULL, nil
			}
			cur = v
		case int:
			if cur.Kind() != vexvalue.KindArray {
				return nil, wrapEval(inst.cfg, vexerr.EvalNoPos("cannot index a %s with an integer", cur.Kind().String()), inst.source, inst.origin)
			}
			v, found := cur.ArrayGet(s)
			if !found {
				return vexvalue.NULL, nil
			}
			cur = v
		default:
			return nil, wrapEval(inst.cfg, vexerr.EvalNoPos("GetMember path segments must be string or int"), inst.source, inst.origin)
		}
	}
	return cur, nil
}
