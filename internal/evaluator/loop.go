package evaluator

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

// RunLoop executes an *ast.Loop: Initial runs once against a fresh
// scope enclosing the caller's, then either the for-in form (n.Each /
// n.Iterator set) or the general while/do form (n.Statements followed
// by n.Continuous, repeated while its last expression is truthy)
// takes over. The while/do/for builtins all lower to this single
// shape; the difference between "check before" and "check after" is
// in how each builtin arranges n.Statements and n.Continuous, not in
// how this function runs them.
// RunLoop executes n against env. It is exported so the standard
// library's while/do/for implementations (internal/builtins) can
// lower their arguments into a Loop node and hand it back here.
func (ev *Evaluator) RunLoop(n *ast.Loop, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	loopEnv := environment.NewEnclosed(env)
	for _, e := range n.Initial {
		_, sig, err := ev.Eval(e, loopEnv)
		if err != nil {
			return nil, SigNone, err
		}
		if sig != SigNone {
			return nil, sig, nil
		}
	}

	if n.Iterator != nil {
		return ev.runForIn(n, loopEnv)
	}
	return ev.runWhile(n, loopEnv)
}

func (ev *Evaluator) runIterationBody(n *ast.Loop, bodyEnv *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	if err := ev.pushFrame(frame{name: "loop", isLoop: true}); err != nil {
		return nil, SigNone, err
	}
	defer ev.popFrame()
	return ev.evalStatements(n.Statements, bodyEnv, boundaryLoop)
}

func (ev *Evaluator) runWhile(n *ast.Loop, loopEnv *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	last := vexvalue.NULL
	iterations := 0
	for {
		if ev.Config.MaxLoopTimes > 0 && iterations >= ev.Config.MaxLoopTimes {
			return nil, SigNone, vexerr.Eval(n.Pos(), "loop exceeded max_loop_times (%d)", ev.Config.MaxLoopTimes)
		}
		iterations++

		bodyEnv := environment.NewEnclosed(loopEnv)
		v, sig, err := ev.runIterationBody(n, bodyEnv)
		if err != nil {
			return nil, SigNone, err
		}
		if v != nil {
			last = v
		}
		if sig == SigReturn {
			return v, SigReturn, nil
		}
		if sig == SigBreak {
			return last, SigNone, nil
		}

		if len(n.Continuous) == 0 {
			return last, SigNone, nil
		}
		cont := vexvalue.TRUE
		for _, ce := range n.Continuous {
			cv, csig, cerr := ev.Eval(ce, loopEnv)
			if cerr != nil {
				return nil, SigNone, cerr
			}
			if csig != SigNone {
				return cv, csig, nil
			}
			cont = cv
		}
		if !cont.Truthy() {
			return last, SigNone, nil
		}
	}
}

func bindEach(each []string, env *environment.Environment, key, val *vexvalue.Value) {
	switch len(each) {
	case 1:
		env.Define(each[0], val)
	case 2:
		env.Define(each[0], key)
		env.Define(each[1], val)
	}
}

func (ev *Evaluator) runForIn(n *ast.Loop, loopEnv *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	iterV, sig, err := ev.Eval(n.Iterator, loopEnv)
	if err != nil {
		return nil, SigNone, err
	}
	if sig != SigNone {
		return iterV, sig, nil
	}
	// spec.md §4.3.2: "a deep copy of the collection is taken at loop
	// entry" so that the body mutating the loop variable's source
	// (e.g. `for(v in x){ x = [] }`) cannot perturb iteration.
	iterV = iterV.DeepCopy()

	last := vexvalue.NULL
	iterations := 0

	step := func(key, val *vexvalue.Value) (Signal, *vexvalue.Value, *vexerr.Error) {
		if ev.Config.MaxLoopTimes > 0 && iterations >= ev.Config.MaxLoopTimes {
			return SigNone, nil, vexerr.Eval(n.Pos(), "loop exceeded max_loop_times (%d)", ev.Config.MaxLoopTimes)
		}
		iterations++
		bodyEnv := environment.NewEnclosed(loopEnv)
		bindEach(n.Each, bodyEnv, key, val)
		v, sig, err := ev.runIterationBody(n, bodyEnv)
		if err != nil {
			return SigNone, nil, err
		}
		return sig, v, nil
	}

	switch iterV.Kind() {
	case vexvalue.KindArray:
		for idx, elem := range iterV.Array() {
			sig, v, err := step(vexvalue.Int(int64(idx)), elem)
			if err != nil {
				return nil, SigNone, err
			}
			if v != nil {
				last = v
			}
			switch sig {
			case SigReturn:
				return v, SigReturn, nil
			case SigBreak:
				return last, SigNone, nil
			}
		}
	case vexvalue.KindBlock:
		// spec.md §4.3.2: block iteration is "a sequence of [key,
		// value] pairs". The two-variable `for(key, val in iter,
		// body)` form binds them separately; the single-variable
		// `for(x in iter, body)` form binds x to the pair itself.
		for _, key := range iterV.ObjectKeys() {
			keyV := vexvalue.String(key)
			val, _ := iterV.ObjectGet(key)
			bindVal := val
			if len(n.Each) == 1 {
				bindVal = vexvalue.NewArray(keyV, val)
			}
			sig, v, err := step(keyV, bindVal)
			if err != nil {
				return nil, SigNone, err
			}
			if v != nil {
				last = v
			}
			switch sig {
			case SigReturn:
				return v, SigReturn, nil
			case SigBreak:
				return last, SigNone, nil
			}
		}
	case vexvalue.KindString:
		idx := 0
		for _, r := range iterV.Str() {
			sig, v, err := step(vexvalue.Int(int64(idx)), vexvalue.String(string(r)))
			if err != nil {
				return nil, SigNone, err
			}
			if v != nil {
				last = v
			}
			switch sig {
			case SigReturn:
				return v, SigReturn, nil
			case SigBreak:
				return last, SigNone, nil
			}
			idx++
		}
	default:
		return nil, SigNone, vexerr.Eval(n.Pos(), "cannot iterate over a %s", iterV.Kind().String())
	}
	return last, SigNone, nil
}
