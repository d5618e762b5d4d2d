package builtins

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

// evalArgs eagerly evaluates every argument of call in env, the way
// every builtin except if/do/while/for needs them. If an argument
// produces a control-flow signal (a break/continue/return nested
// inside an argument expression) evaluation stops there and sigVal/sig
// should be returned by the caller directly, the same way any other
// Eval call propagates an in-flight signal.
func evalArgs(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (args []*vexvalue.Value, sigVal *vexvalue.Value, sig evaluator.Signal, err *vexerr.Error) {
	args = make([]*vexvalue.Value, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		v, s, e := ev.Eval(a, env)
		if e != nil {
			return nil, nil, evaluator.SigNone, e
		}
		if s != evaluator.SigNone {
			return nil, v, s, nil
		}
		args = append(args, v)
	}
	return args, nil, evaluator.SigNone, nil
}
