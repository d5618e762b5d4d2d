package builtins

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

func init() {
	evaluator.RegisterBuiltin("len", lenBuiltin)
	evaluator.RegisterBuiltin("insert", insertBuiltin)
	evaluator.RegisterBuiltin("strip", stripBuiltin)
	evaluator.RegisterBuiltin("print", printBuiltin)
}

// lenBuiltin implements `len(x)`: the element count of an array or
// block, or the rune count of a string.
func lenBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "len() expects exactly 1 argument, got %d", len(args))
	}
	v := args[0]
	switch v.Kind() {
	case vexvalue.KindArray, vexvalue.KindBlock, vexvalue.KindString:
		return vexvalue.Int(int64(v.Len())), evaluator.SigNone, nil
	default:
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "len() expects an array, block, or string, got %s", v.Kind().String())
	}
}

// insertBuiltin implements `insert(arr, idx, val)`: in-place insertion
// into an array, with a negative index wrapping from the end and
// bounds checked against [0, len(arr)].
func insertBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 3 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "insert() expects exactly 3 arguments (array, index, value), got %d", len(args))
	}
	arr, idxVal, val := args[0], args[1], args[2]
	if arr.Kind() != vexvalue.KindArray {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "insert() expects an array as its first argument, got %s", arr.Kind().String())
	}
	if idxVal.Kind() != vexvalue.KindInt {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "insert() expects an integer index, got %s", idxVal.Kind().String())
	}
	if ev.Config.MaxArraySize > 0 && arr.ArrayLen()+1 > ev.Config.MaxArraySize {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "insert() would exceed max_array_size (%d)", ev.Config.MaxArraySize)
	}
	if !arr.ArrayInsert(int(idxVal.Int()), val.DeepCopy()) {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "insert() index %d is out of range for an array of length %d", idxVal.Int(), arr.ArrayLen())
	}
	return arr, evaluator.SigNone, nil
}

// stripBuiltin implements `strip(s)`: trims Unicode whitespace
// (unicode.IsSpace, which includes the full-width space U+3000) from
// both ends.
func stripBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "strip() expects exactly 1 argument, got %d", len(args))
	}
	if args[0].Kind() != vexvalue.KindString {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "strip() expects a string, got %s", args[0].Kind().String())
	}
	trimmed := strings.TrimFunc(args[0].Str(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '　'
	})
	return vexvalue.String(trimmed), evaluator.SigNone, nil
}

// printBuiltin implements `print(x, …)`: writes the comma-joined
// canonical form of every argument to the evaluator's output sink,
// the way the teacher's builtinPrint writes straight to i.output.
func printBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	parts := make([]string, len(args))
	for idx, a := range args {
		if _, ferr := ev.CheckFinite(a, call.Pos()); ferr != nil {
			return nil, evaluator.SigNone, ferr
		}
		parts[idx] = a.String(ev.Config.Infinity, ev.Config.NaN)
	}
	fmt.Fprint(ev.Out, strings.Join(parts, ", "))
	return vexvalue.NULL, evaluator.SigNone, nil
}
