package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

func init() {
	evaluator.RegisterBuiltin("int", intBuiltin)
	evaluator.RegisterBuiltin("float", floatBuiltin)
	evaluator.RegisterBuiltin("string", stringBuiltin)
	evaluator.RegisterBuiltin("type", typeBuiltin)
}

// intBuiltin implements `int(x)`: coerces a number or a numeric string
// to Int, truncating a Float toward zero. Non-finite floats and
// non-numeric strings are rejected.
func intBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "int() expects exactly 1 argument, got %d", len(args))
	}
	v := args[0]
	switch v.Kind() {
	case vexvalue.KindInt:
		return v, evaluator.SigNone, nil
	case vexvalue.KindFloat:
		if math.IsInf(v.Float(), 0) || math.IsNaN(v.Float()) {
			return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "int() cannot convert a non-finite float")
		}
		return vexvalue.Int(int64(v.Float())), evaluator.SigNone, nil
	case vexvalue.KindBool:
		if v.Bool() {
			return vexvalue.Int(1), evaluator.SigNone, nil
		}
		return vexvalue.Int(0), evaluator.SigNone, nil
	case vexvalue.KindString:
		n, perr := parseNumericString(v.Str())
		if perr != nil {
			return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "int() cannot convert %q to a number", v.Str())
		}
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "int() cannot convert a non-finite value")
		}
		return vexvalue.Int(int64(n)), evaluator.SigNone, nil
	default:
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "int() cannot convert a %s", v.Kind().String())
	}
}

// floatBuiltin implements `float(x)`: coerces a number or a numeric
// string to Float.
func floatBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "float() expects exactly 1 argument, got %d", len(args))
	}
	v := args[0]
	switch v.Kind() {
	case vexvalue.KindFloat:
		return v, evaluator.SigNone, nil
	case vexvalue.KindInt:
		return vexvalue.Float(float64(v.Int())), evaluator.SigNone, nil
	case vexvalue.KindBool:
		if v.Bool() {
			return vexvalue.Float(1), evaluator.SigNone, nil
		}
		return vexvalue.Float(0), evaluator.SigNone, nil
	case vexvalue.KindString:
		n, perr := parseNumericString(v.Str())
		if perr != nil {
			return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "float() cannot convert %q to a number", v.Str())
		}
		out, ferr := ev.CheckFinite(vexvalue.Float(n), call.Pos())
		if ferr != nil {
			return nil, evaluator.SigNone, ferr
		}
		return out, evaluator.SigNone, nil
	default:
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "float() cannot convert a %s", v.Kind().String())
	}
}

func parseNumericString(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// stringBuiltin implements `string(x)`: the canonical textual form of
// spec.md §6.3, using the evaluator's configured Infinity/NaN tags.
// Rejects a non-finite float when no tag is configured, matching the
// rule every arithmetic operator already enforces.
func stringBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "string() expects exactly 1 argument, got %d", len(args))
	}
	if _, ferr := ev.CheckFinite(args[0], call.Pos()); ferr != nil {
		return nil, evaluator.SigNone, ferr
	}
	return vexvalue.String(args[0].String(ev.Config.Infinity, ev.Config.NaN)), evaluator.SigNone, nil
}

// typeBuiltin implements `type(x)`.
func typeBuiltin(ev *evaluator.Evaluator, call *ast.Call, env *environment.Environment) (*vexvalue.Value, evaluator.Signal, *vexerr.Error) {
	args, sigVal, sig, err := evalArgs(ev, call, env)
	if err != nil {
		return nil, evaluator.SigNone, err
	}
	if sig != evaluator.SigNone {
		return sigVal, sig, nil
	}
	if len(args) != 1 {
		return nil, evaluator.SigNone, vexerr.Eval(call.Pos(), "type() expects exactly 1 argument, got %d", len(args))
	}
	var name string
	switch args[0].Kind() {
	case vexvalue.KindUndefined, vexvalue.KindNull:
		name = "null"
	case vexvalue.KindInt:
		name = "int"
	case vexvalue.KindFloat:
		name = "float"
	case vexvalue.KindString:
		name = "string"
	case vexvalue.KindBool:
		name = "boolean"
	case vexvalue.KindArray:
		name = "array"
	case vexvalue.KindBlock:
		name = "block"
	case vexvalue.KindCallee:
		name = "function"
	default:
		name = "null"
	}
	return vexvalue.String(name), evaluator.SigNone, nil
}
