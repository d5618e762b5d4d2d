package evaluator

import (
	"math"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

func intIndex(v *vexvalue.Value) (int, bool) {
	switch v.Kind() {
	case vexvalue.KindInt:
		return int(v.Int()), true
	case vexvalue.KindFloat:
		if v.Float() == math.Trunc(v.Float()) {
			return int(v.Float()), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func (ev *Evaluator) evalGet(n *ast.Get, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	base := env.Get(n.Base.Name)
	v, err := ev.navigateGet(base, n.Members, env)
	if err != nil {
		return nil, SigNone, err
	}
	return v, SigNone, nil
}

// navigateGet walks a member chain leniently, the way JSON-flavored
// dotted access usually works: a missing key, an out-of-range index,
// or dereferencing through null/undefined all just yield null and
// stop the chain. The genuine error cases abort outright (spec.md
// §4.3.2): a boolean used as an index, a non-integer float or other
// non-numeric index into an array, a non-string index into a block,
// and a break/continue/return signal raised while evaluating an index.
func (ev *Evaluator) navigateGet(base *vexvalue.Value, members []ast.Member, env *environment.Environment) (*vexvalue.Value, *vexerr.Error) {
	cur := base
	for _, m := range members {
		if cur.IsNull() || cur.IsUndefined() {
			return vexvalue.NULL, nil
		}
		if m.IsKey {
			if cur.Kind() != vexvalue.KindBlock {
				return vexvalue.NULL, nil
			}
			v, ok := cur.ObjectGet(m.Key)
			if !ok {
				return vexvalue.NULL, nil
			}
			cur = v
			continue
		}

		idxVal, sig, err := ev.Eval(m.Index, env)
		if err != nil {
			return nil, err
		}
		if sig != SigNone {
			return nil, vexerr.Eval(m.Index.Pos(), "a control-flow statement cannot appear inside an index expression")
		}
		if idxVal.Kind() == vexvalue.KindBool {
			return nil, vexerr.Eval(m.Index.Pos(), "a boolean value cannot be used as an index")
		}

		switch cur.Kind() {
		case vexvalue.KindArray:
			switch idxVal.Kind() {
			case vexvalue.KindInt:
				v, ok := cur.ArrayGet(int(idxVal.Int()))
				if !ok {
					return vexvalue.NULL, nil
				}
				cur = v
			case vexvalue.KindFloat:
				if idxVal.Float() != math.Trunc(idxVal.Float()) {
					return nil, vexerr.Eval(m.Index.Pos(), "a non-integer float cannot index an array")
				}
				v, ok := cur.ArrayGet(int(idxVal.Float()))
				if !ok {
					return vexvalue.NULL, nil
				}
				cur = v
			default:
				return nil, vexerr.Eval(m.Index.Pos(), "an array index must be numeric, got %s", idxVal.Kind().String())
			}
		case vexvalue.KindBlock:
			if idxVal.Kind() != vexvalue.KindString {
				return nil, vexerr.Eval(m.Index.Pos(), "a block index must be a string, got %s", idxVal.Kind().String())
			}
			v, ok := cur.ObjectGet(idxVal.Str())
			if !ok {
				return vexvalue.NULL, nil
			}
			cur = v
		default:
			return vexvalue.NULL, nil
		}
	}
	return cur, nil
}

// navigateForSet is navigateGet's strict counterpart, used to resolve
// the container that a Set/Remove will mutate: every intermediate
// step must actually exist, or assignment aborts with an error
// instead of silently targeting null.
func (ev *Evaluator) navigateForSet(base *vexvalue.Value, members []ast.Member, env *environment.Environment) (*vexvalue.Value, *vexerr.Error) {
	cur := base
	for _, m := range members {
		if cur.IsNull() || cur.IsUndefined() {
			return nil, vexerr.EvalNoPos("cannot assign through an undefined or null intermediate value")
		}
		if m.IsKey {
			if cur.Kind() != vexvalue.KindBlock {
				return nil, vexerr.EvalNoPos("cannot assign into a %s using a key", cur.Kind().String())
			}
			v, ok := cur.ObjectGet(m.Key)
			if !ok {
				return nil, vexerr.EvalNoPos("key %q does not exist", m.Key)
			}
			cur = v
			continue
		}

		idxVal, sig, err := ev.Eval(m.Index, env)
		if err != nil {
			return nil, err
		}
		if sig != SigNone {
			return nil, vexerr.EvalNoPos("a control-flow statement cannot appear inside an index expression")
		}
		switch cur.Kind() {
		case vexvalue.KindArray:
			idx, ok := intIndex(idxVal)
			if !ok {
				return nil, vexerr.EvalNoPos("an array index must be an integer")
			}
			v, ok := cur.ArrayGet(idx)
			if !ok {
				return nil, vexerr.EvalNoPos("array index out of range")
			}
			cur = v
		case vexvalue.KindBlock:
			if idxVal.Kind() != vexvalue.KindString {
				return nil, vexerr.EvalNoPos("a block index must be a string")
			}
			v, ok := cur.ObjectGet(idxVal.Str())
			if !ok {
				return nil, vexerr.EvalNoPos("key %q does not exist", idxVal.Str())
			}
			cur = v
		default:
			return nil, vexerr.EvalNoPos("cannot index into a %s", cur.Kind().String())
		}
	}
	return cur, nil
}

func (ev *Evaluator) readLeaf(parent *vexvalue.Value, m ast.Member, env *environment.Environment) (*vexvalue.Value, *vexerr.Error) {
	if m.IsKey {
		if parent.Kind() != vexvalue.KindBlock {
			return nil, vexerr.EvalNoPos("cannot read a key from a %s", parent.Kind().String())
		}
		v, ok := parent.ObjectGet(m.Key)
		if !ok {
			return vexvalue.NULL, nil
		}
		return v, nil
	}
	idxVal, _, err := ev.Eval(m.Index, env)
	if err != nil {
		return nil, err
	}
	switch parent.Kind() {
	case vexvalue.KindArray:
		idx, ok := intIndex(idxVal)
		if !ok {
			return nil, vexerr.EvalNoPos("an array index must be an integer")
		}
		v, ok := parent.ArrayGet(idx)
		if !ok {
			return vexvalue.NULL, nil
		}
		return v, nil
	case vexvalue.KindBlock:
		if idxVal.Kind() != vexvalue.KindString {
			return nil, vexerr.EvalNoPos("a block index must be a string")
		}
		v, ok := parent.ObjectGet(idxVal.Str())
		if !ok {
			return vexvalue.NULL, nil
		}
		return v, nil
	default:
		return nil, vexerr.EvalNoPos("cannot index into a %s", parent.Kind().String())
	}
}

func (ev *Evaluator) writeLeaf(parent *vexvalue.Value, m ast.Member, val *vexvalue.Value, env *environment.Environment) *vexerr.Error {
	if m.IsKey {
		if parent.Kind() != vexvalue.KindBlock {
			return vexerr.EvalNoPos("cannot assign a key into a %s", parent.Kind().String())
		}
		parent.ObjectSet(m.Key, val)
		return nil
	}
	idxVal, _, err := ev.Eval(m.Index, env)
	if err != nil {
		return err
	}
	switch parent.Kind() {
	case vexvalue.KindArray:
		idx, ok := intIndex(idxVal)
		if !ok {
			return vexerr.EvalNoPos("an array index must be an integer")
		}
		if !parent.ArraySet(idx, val) {
			return vexerr.EvalNoPos("array index out of range")
		}
		return nil
	case vexvalue.KindBlock:
		if idxVal.Kind() != vexvalue.KindString {
			return vexerr.EvalNoPos("a block index must be a string")
		}
		parent.ObjectSet(idxVal.Str(), val)
		return nil
	default:
		return vexerr.EvalNoPos("cannot assign into a %s", parent.Kind().String())
	}
}

func (ev *Evaluator) applyCompound(op string, cur, rhs *vexvalue.Value, pos token.Position) (*vexvalue.Value, *vexerr.Error) {
	switch op {
	case "+=":
		return Add(pos, cur, rhs, ev.Config.MaxArraySize)
	case "-=":
		return Sub(pos, cur, rhs)
	case "*=":
		return Mul(pos, cur, rhs, ev.Config.MaxArraySize)
	case "/=":
		return Div(pos, cur, rhs, ev.Config.MaxArraySize)
	case "%=":
		return Mod(pos, cur, rhs)
	default:
		return nil, vexerr.Eval(pos, "unknown compound assignment operator %q", op)
	}
}

func (ev *Evaluator) evalSet(n *ast.Set, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	name := n.Target.Base.Name
	if environment.IsReservedName(name) {
		return nil, SigNone, vexerr.Eval(n.Pos(), "%q is a reserved name and cannot be assigned", name)
	}

	rhs, sig, err := ev.Eval(n.Value, env)
	if err != nil {
		return nil, SigNone, err
	}
	if sig != SigNone {
		return rhs, sig, nil
	}
	rhs = rhs.DeepCopy()

	if n.Operator == ":=" {
		env.Set("", rhs, false)
		return rhs, SigNone, nil
	}

	localOnly := n.Operator == ":"
	compound := !localOnly && n.Operator != "="

	if len(n.Target.Members) == 0 {
		if compound {
			cur := env.Get(name)
			combined, cerr := ev.applyCompound(n.Operator, cur, rhs, n.Pos())
			if cerr != nil {
				return nil, SigNone, cerr
			}
			env.Set(name, combined, false)
			return combined, SigNone, nil
		}
		env.Set(name, rhs, localOnly)
		return rhs, SigNone, nil
	}

	base := env.Get(name)
	parent, nerr := ev.navigateForSet(base, n.Target.Members[:len(n.Target.Members)-1], env)
	if nerr != nil {
		return nil, SigNone, nerr
	}
	last := n.Target.Members[len(n.Target.Members)-1]

	finalValue := rhs
	if compound {
		curLeaf, lerr := ev.readLeaf(parent, last, env)
		if lerr != nil {
			return nil, SigNone, lerr
		}
		combined, cerr := ev.applyCompound(n.Operator, curLeaf, rhs, n.Pos())
		if cerr != nil {
			return nil, SigNone, cerr
		}
		finalValue = combined
	}

	if werr := ev.writeLeaf(parent, last, finalValue, env); werr != nil {
		return nil, SigNone, werr
	}
	return finalValue, SigNone, nil
}

func (ev *Evaluator) evalRemove(n *ast.Remove, env *environment.Environment) (*vexvalue.Value, Signal, *vexerr.Error) {
	name := n.Target.Base.Name
	if len(n.Target.Members) == 0 {
		env.Remove(name)
		return vexvalue.NULL, SigNone, nil
	}

	base := env.Get(name)
	parent, err := ev.navigateForSet(base, n.Target.Members[:len(n.Target.Members)-1], env)
	if err != nil {
		return nil, SigNone, err
	}
	last := n.Target.Members[len(n.Target.Members)-1]

	if last.IsKey {
		if parent.Kind() != vexvalue.KindBlock {
			return nil, SigNone, vexerr.Eval(n.Pos(), "cannot remove a key from a %s", parent.Kind().String())
		}
		parent.ObjectDelete(last.Key)
		return vexvalue.NULL, SigNone, nil
	}

	idxVal, _, ierr := ev.Eval(last.Index, env)
	if ierr != nil {
		return nil, SigNone, ierr
	}
	switch parent.Kind() {
	case vexvalue.KindArray:
		idx, ok := intIndex(idxVal)
		if !ok {
			return nil, SigNone, vexerr.Eval(n.Pos(), "an array index must be an integer")
		}
		parent.ArrayDelete(idx)
	case vexvalue.KindBlock:
		if idxVal.Kind() != vexvalue.KindString {
			return nil, SigNone, vexerr.Eval(n.Pos(), "a block index must be a string")
		}
		parent.ObjectDelete(idxVal.Str())
	default:
		return nil, SigNone, vexerr.Eval(n.Pos(), "cannot remove from a %s", parent.Kind().String())
	}
	return vexvalue.NULL, SigNone, nil
}
