package evaluator

import (
	"math"
	"strings"

	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

func pymod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// numericBinary applies fn to the float64 widening of both operands,
// producing an Int when both operands were Int and the math result is
// exact (used by +, -, *), or always Float when either operand is a
// Float.
func numericBinary(l, r *vexvalue.Value, fn func(a, b float64) float64) *vexvalue.Value {
	if l.Kind() == vexvalue.KindInt && r.Kind() == vexvalue.KindInt {
		return vexvalue.Int(int64(fn(float64(l.Int()), float64(r.Int()))))
	}
	return vexvalue.Float(fn(l.AsFloat(), r.AsFloat()))
}

// divModResult mirrors numericBinary but for / and %, where even two
// Int operands can produce a non-integral Float result.
func divModResult(l, r *vexvalue.Value, result float64) *vexvalue.Value {
	if l.Kind() == vexvalue.KindInt && r.Kind() == vexvalue.KindInt && result == math.Trunc(result) {
		return vexvalue.Int(int64(result))
	}
	return vexvalue.Float(result)
}

func at(pos token.Position, format string, args ...any) *vexerr.Error {
	return vexerr.Eval(pos, format, args...)
}

// Add implements the `+` operator matrix of spec.md §4.3.3. maxArraySize
// bounds the result of array concatenation (the growth points subject
// to the limit are `+`, `*`, `/` on strings, and `insert`).
func Add(pos token.Position, l, r *vexvalue.Value, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	if l.IsNull() {
		return r, nil
	}
	if r.IsNull() {
		return l, nil
	}
	if l.Kind() == vexvalue.KindArray || r.Kind() == vexvalue.KindArray {
		return arrayAdd(pos, l, r, maxArraySize)
	}
	if l.Kind() == vexvalue.KindBlock && r.Kind() == vexvalue.KindBlock {
		return blockAdd(l, r), nil
	}
	if l.Kind() == vexvalue.KindBlock || r.Kind() == vexvalue.KindBlock {
		return nil, at(pos, "'+' between a block and a %s is not supported", otherKind(l, r).String())
	}
	if l.Kind() == vexvalue.KindString || r.Kind() == vexvalue.KindString {
		return vexvalue.String(canon(l) + canon(r)), nil
	}
	if l.IsNumeric() && r.IsNumeric() {
		return numericBinary(l, r, func(a, b float64) float64 { return a + b }), nil
	}
	if l.Kind() == vexvalue.KindBool && r.Kind() == vexvalue.KindBool {
		return vexvalue.Bool(l.Bool() || r.Bool()), nil
	}
	return nil, at(pos, "'+' is not defined between %s and %s", l.Kind().String(), r.Kind().String())
}

func otherKind(l, r *vexvalue.Value) vexvalue.Kind {
	if l.Kind() == vexvalue.KindBlock {
		return r.Kind()
	}
	return l.Kind()
}

func canon(v *vexvalue.Value) string {
	if v.Kind() == vexvalue.KindString {
		return v.Str()
	}
	return v.String("Infinity", "NaN")
}

func arrayAdd(pos token.Position, l, r *vexvalue.Value, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	var resultLen int
	switch {
	case l.Kind() == vexvalue.KindArray && r.Kind() == vexvalue.KindArray:
		resultLen = l.Len() + r.Len()
	case l.Kind() == vexvalue.KindArray:
		resultLen = l.Len() + 1
	default:
		resultLen = r.Len() + 1
	}
	if maxArraySize > 0 && resultLen > maxArraySize {
		return nil, at(pos, "array concatenation would exceed max_array_size (%d)", maxArraySize)
	}

	if l.Kind() == vexvalue.KindArray && r.Kind() == vexvalue.KindArray {
		out := vexvalue.NewArray(l.Array()...)
		for _, e := range r.Array() {
			out.ArrayAppend(e)
		}
		return out, nil
	}
	if l.Kind() == vexvalue.KindArray {
		out := vexvalue.NewArray(l.Array()...)
		out.ArrayAppend(r)
		return out, nil
	}
	out := vexvalue.NewArray(l)
	for _, e := range r.Array() {
		out.ArrayAppend(e)
	}
	return out, nil
}

func blockAdd(l, r *vexvalue.Value) *vexvalue.Value {
	out := vexvalue.NewBlock()
	for _, k := range l.ObjectKeys() {
		v, _ := l.ObjectGet(k)
		out.ObjectSet(k, v)
	}
	for _, k := range r.ObjectKeys() {
		rv, _ := r.ObjectGet(k)
		if lv, ok := out.ObjectGet(k); ok {
			if merged, err := Add(token.Position{}, lv, rv, 0); err == nil {
				out.ObjectSet(k, merged)
				continue
			}
		}
		out.ObjectSet(k, rv)
	}
	return out
}

// Sub implements the `-` operator matrix.
func Sub(pos token.Position, l, r *vexvalue.Value) (*vexvalue.Value, *vexerr.Error) {
	switch {
	case l.Kind() == vexvalue.KindArray:
		return arraySub(l, r), nil
	case l.Kind() == vexvalue.KindBlock && r.Kind() == vexvalue.KindBlock:
		return blockSubBlock(l, r), nil
	case l.Kind() == vexvalue.KindBlock && r.Kind() == vexvalue.KindArray:
		return blockSubKeys(l, r), nil
	case l.Kind() == vexvalue.KindBlock && r.Kind() == vexvalue.KindString:
		out := l.DeepCopy()
		out.ObjectDelete(r.Str())
		return out, nil
	case l.Kind() == vexvalue.KindString && r.Kind() == vexvalue.KindString:
		return vexvalue.String(strings.ReplaceAll(l.Str(), r.Str(), "")), nil
	case l.Kind() == vexvalue.KindString && r.Kind() == vexvalue.KindArray:
		out := l.Str()
		for _, e := range r.Array() {
			out = strings.ReplaceAll(out, canon(e), "")
		}
		return vexvalue.String(out), nil
	case l.IsNumeric() && r.IsNumeric():
		return numericBinary(l, r, func(a, b float64) float64 { return a - b }), nil
	default:
		return nil, at(pos, "'-' is not defined between %s and %s", l.Kind().String(), r.Kind().String())
	}
}

func arraySub(l, r *vexvalue.Value) *vexvalue.Value {
	out := vexvalue.NewArray()
	for _, e := range l.Array() {
		if e.Equals(r, true) {
			continue
		}
		out.ArrayAppend(e)
	}
	return out
}

func blockSubBlock(l, r *vexvalue.Value) *vexvalue.Value {
	out := vexvalue.NewBlock()
	for _, k := range l.ObjectKeys() {
		lv, _ := l.ObjectGet(k)
		if rv, ok := r.ObjectGet(k); ok {
			if diff, err := Sub(token.Position{}, lv, rv); err == nil {
				out.ObjectSet(k, diff)
				continue
			}
		}
		out.ObjectSet(k, lv)
	}
	for _, k := range r.ObjectKeys() {
		if _, ok := l.ObjectGet(k); ok {
			continue
		}
		rv, _ := r.ObjectGet(k)
		if rv.IsNumeric() {
			out.ObjectSet(k, numericBinary(vexvalue.Int(0), rv, func(a, b float64) float64 { return a - b }))
		}
	}
	return out
}

func blockSubKeys(l, keys *vexvalue.Value) *vexvalue.Value {
	out := l.DeepCopy()
	for _, e := range keys.Array() {
		if e.Kind() == vexvalue.KindString {
			out.ObjectDelete(e.Str())
		}
	}
	return out
}

// Mul implements the `*` operator matrix.
func Mul(pos token.Position, l, r *vexvalue.Value, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	if l.IsNull() || r.IsNull() {
		return vexvalue.NULL, nil
	}
	switch {
	case l.Kind() == vexvalue.KindBlock && r.Kind() == vexvalue.KindBlock:
		return blockMul(l, r), nil
	case (l.Kind() == vexvalue.KindString && r.Kind() == vexvalue.KindInt) || (l.Kind() == vexvalue.KindInt && r.Kind() == vexvalue.KindString):
		s, n := stringAndInt(l, r)
		return vexvalue.String(strings.Repeat(s, int(n))), nil
	case (l.Kind() == vexvalue.KindArray && r.Kind() == vexvalue.KindInt) || (l.Kind() == vexvalue.KindInt && r.Kind() == vexvalue.KindArray):
		arr, n := arrayAndInt(l, r)
		return repeatArray(arr, int(n), pos, maxArraySize)
	case (l.Kind() == vexvalue.KindArray && r.Kind() == vexvalue.KindString) || (l.Kind() == vexvalue.KindString && r.Kind() == vexvalue.KindArray):
		arr, sep := arrayAndString(l, r)
		return vexvalue.String(joinArray(arr, sep)), nil
	case l.IsNumeric() && r.IsNumeric():
		return numericBinary(l, r, func(a, b float64) float64 { return a * b }), nil
	default:
		return nil, at(pos, "'*' is not defined between %s and %s", l.Kind().String(), r.Kind().String())
	}
}

func stringAndInt(l, r *vexvalue.Value) (string, int64) {
	if l.Kind() == vexvalue.KindString {
		return l.Str(), r.Int()
	}
	return r.Str(), l.Int()
}

func arrayAndInt(l, r *vexvalue.Value) ([]*vexvalue.Value, int64) {
	if l.Kind() == vexvalue.KindArray {
		return l.Array(), r.Int()
	}
	return r.Array(), l.Int()
}

func arrayAndString(l, r *vexvalue.Value) ([]*vexvalue.Value, string) {
	if l.Kind() == vexvalue.KindArray {
		return l.Array(), r.Str()
	}
	return r.Array(), l.Str()
}

func repeatArray(elems []*vexvalue.Value, n int, pos token.Position, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	if n < 0 {
		n = 0
	}
	if maxArraySize > 0 && len(elems)*n > maxArraySize {
		return nil, at(pos, "array repetition would exceed max_array_size (%d)", maxArraySize)
	}
	out := vexvalue.NewArray()
	for i := 0; i < n; i++ {
		for _, e := range elems {
			out.ArrayAppend(e.DeepCopy())
		}
	}
	return out, nil
}

func joinArray(elems []*vexvalue.Value, sep string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = canon(e)
	}
	return strings.Join(parts, sep)
}

func blockMul(l, r *vexvalue.Value) *vexvalue.Value {
	out := vexvalue.NewBlock()
	for _, k := range l.ObjectKeys() {
		lv, _ := l.ObjectGet(k)
		if rv, ok := r.ObjectGet(k); ok {
			if prod, err := Mul(token.Position{}, lv, rv, 0); err == nil {
				out.ObjectSet(k, prod)
				continue
			}
		}
		out.ObjectSet(k, vexvalue.NULL)
	}
	for _, k := range r.ObjectKeys() {
		if _, ok := l.ObjectGet(k); !ok {
			out.ObjectSet(k, vexvalue.NULL)
		}
	}
	return out
}

// Div implements the `/` operator matrix. maxArraySize bounds the
// array produced by splitting a string (spec.md:284 names `/` of long
// strings as a max_array_size growth point alongside `+`/`*`/`insert`).
func Div(pos token.Position, l, r *vexvalue.Value, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	if r.IsNull() {
		return nil, at(pos, "division by null is not defined")
	}
	if l.IsNull() {
		if r.IsNumeric() && r.AsFloat() == 0 {
			return nil, at(pos, "division by zero")
		}
		return vexvalue.NULL, nil
	}
	switch {
	case l.Kind() == vexvalue.KindBlock && r.Kind() == vexvalue.KindBlock:
		return blockDiv(pos, l, r, maxArraySize)
	case l.Kind() == vexvalue.KindString && r.Kind() == vexvalue.KindString:
		return stringSplit(pos, l.Str(), r.Str(), maxArraySize)
	case l.IsNumeric() && r.IsNumeric():
		if r.AsFloat() == 0 {
			return nil, at(pos, "division by zero")
		}
		return divModResult(l, r, l.AsFloat()/r.AsFloat()), nil
	default:
		return nil, at(pos, "'/' is not defined between %s and %s", l.Kind().String(), r.Kind().String())
	}
}

func stringSplit(pos token.Position, s, sep string, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	if maxArraySize > 0 && len(parts) > maxArraySize {
		return nil, at(pos, "string split would exceed max_array_size (%d)", maxArraySize)
	}
	out := vexvalue.NewArray()
	for _, p := range parts {
		out.ArrayAppend(vexvalue.String(p))
	}
	return out, nil
}

func blockDiv(pos token.Position, l, r *vexvalue.Value, maxArraySize int) (*vexvalue.Value, *vexerr.Error) {
	out := vexvalue.NewBlock()
	for _, k := range l.ObjectKeys() {
		lv, _ := l.ObjectGet(k)
		rv, ok := r.ObjectGet(k)
		if !ok {
			return nil, at(pos, "block division requires every left-hand key (%q) to exist on the right", k)
		}
		q, err := Div(pos, lv, rv, maxArraySize)
		if err != nil {
			return nil, err
		}
		out.ObjectSet(k, q)
	}
	for _, k := range r.ObjectKeys() {
		if _, ok := l.ObjectGet(k); !ok {
			out.ObjectSet(k, vexvalue.NULL)
		}
	}
	return out, nil
}

// Mod implements the `%` operator: numeric operands only, with the
// same null/zero domain restrictions as Div.
func Mod(pos token.Position, l, r *vexvalue.Value) (*vexvalue.Value, *vexerr.Error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return nil, at(pos, "'%%' requires numeric operands, got %s and %s", l.Kind().String(), r.Kind().String())
	}
	if r.AsFloat() == 0 {
		return nil, at(pos, "modulo by zero")
	}
	return divModResult(l, r, pymod(l.AsFloat(), r.AsFloat())), nil
}

// Compare implements <, <=, >, >=: numeric operands only.
func Compare(pos token.Position, op string, l, r *vexvalue.Value) (*vexvalue.Value, *vexerr.Error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return nil, at(pos, "%q requires numeric operands, got %s and %s", op, l.Kind().String(), r.Kind().String())
	}
	a, b := l.AsFloat(), r.AsFloat()
	switch op {
	case "<":
		return vexvalue.Bool(a < b), nil
	case "<=":
		return vexvalue.Bool(a <= b), nil
	case ">":
		return vexvalue.Bool(a > b), nil
	case ">=":
		return vexvalue.Bool(a >= b), nil
	}
	return nil, at(pos, "unknown comparison operator %q", op)
}

// In implements spec.md's `in`: element-of on arrays (strict
// equality), key-of/sub-block-of on blocks, substring on strings.
func In(pos token.Position, l, r *vexvalue.Value) (*vexvalue.Value, *vexerr.Error) {
	switch r.Kind() {
	case vexvalue.KindArray:
		for _, e := range r.Array() {
			if l.Equals(e, true) {
				return vexvalue.TRUE, nil
			}
		}
		return vexvalue.FALSE, nil
	case vexvalue.KindBlock:
		if l.Kind() == vexvalue.KindString {
			_, ok := r.ObjectGet(l.Str())
			return vexvalue.Bool(ok), nil
		}
		if l.Kind() == vexvalue.KindBlock {
			for _, k := range l.ObjectKeys() {
				lv, _ := l.ObjectGet(k)
				rv, ok := r.ObjectGet(k)
				if !ok || !lv.Equals(rv, true) {
					return vexvalue.FALSE, nil
				}
			}
			return vexvalue.TRUE, nil
		}
		return nil, at(pos, "'in' against a block requires a string key or a sub-block, got %s", l.Kind().String())
	case vexvalue.KindString:
		if l.Kind() != vexvalue.KindString {
			return nil, at(pos, "'in' against a string requires a string, got %s", l.Kind().String())
		}
		return vexvalue.Bool(strings.Contains(r.Str(), l.Str())), nil
	default:
		return nil, at(pos, "'in' is not defined against %s", r.Kind().String())
	}
}
