// Package vexvalue defines the tagged-union runtime value type shared
// by the evaluator, the standard library, and the embedding API. It intentionally avoids interface{}/any for the value
// payload itself so downstream code can switch on Kind rather than on
// a Go type assertion.
package vexvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vexlang/vex/internal/ast"
)

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindBlock
	KindCallee
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindBlock:
		return "block"
	case KindCallee:
		return "function"
	default:
		return "unknown"
	}
}

// Value is a runtime value of the scripting language. The zero Value
// is KindUndefined.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	s   string
	arr []*Value

	objEntries map[string]*Value
	objKeys    []string

	callee    *ast.Callee
	calleeEnv any // *environment.Environment when captured; nil otherwise
}

// UNDEFINED is the shared sentinel used by Environment to mark
// declared-but-unassigned slots. It is never observable by scripts.
var UNDEFINED = &Value{kind: KindUndefined}

// NULL is the shared JSON-null value.
var NULL = &Value{kind: KindNull}

// TRUE and FALSE are the shared boolean singletons.
var (
	TRUE  = &Value{kind: KindBool, b: true}
	FALSE = &Value{kind: KindBool, b: false}
)

func Bool(b bool) *Value {
	if b {
		return TRUE
	}
	return FALSE
}

func Int(n int64) *Value { return &Value{kind: KindInt, i: n} }

func Float(n float64) *Value { return &Value{kind: KindFloat, f: n} }

func String(s string) *Value { return &Value{kind: KindString, s: s} }

func NewArray(elems ...*Value) *Value {
	a := &Value{kind: KindArray, arr: make([]*Value, 0, len(elems))}
	a.arr = append(a.arr, elems...)
	return a
}

func NewBlock() *Value {
	return &Value{kind: KindBlock, objEntries: map[string]*Value{}, objKeys: []string{}}
}

// NewCallee wraps a parsed function/class definition into a runtime
// CalleeRegistry value. env is the environment the callee's calls run
// in: the evaluator passes the scope the definition was evaluated in,
// so every function value closes over its defining scope and none is
// registered without a captured environment.
func NewCallee(c *ast.Callee, env any) *Value {
	return &Value{kind: KindCallee, callee: c, calleeEnv: env}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindUndefined
	}
	return v.kind
}

func (v *Value) IsUndefined() bool { return v.Kind() == KindUndefined }
func (v *Value) IsNull() bool      { return v.Kind() == KindNull }

func (v *Value) Bool() bool {
	if v == nil || v.kind != KindBool {
		return false
	}
	return v.b
}

func (v *Value) Int() int64 {
	if v == nil || v.kind != KindInt {
		return 0
	}
	return v.i
}

func (v *Value) Float() float64 {
	if v == nil || v.kind != KindFloat {
		return 0
	}
	return v.f
}

// AsFloat returns a numeric value (Int or Float) widened to float64.
func (v *Value) AsFloat() float64 {
	switch v.Kind() {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		return 0
	}
}

func (v *Value) IsNumeric() bool {
	return v.Kind() == KindInt || v.Kind() == KindFloat
}

func (v *Value) Str() string {
	if v == nil || v.kind != KindString {
		return ""
	}
	return v.s
}

func (v *Value) Array() []*Value {
	if v == nil || v.kind != KindArray {
		return nil
	}
	return v.arr
}

func (v *Value) ArrayLen() int { return len(v.Array()) }

func (v *Value) ArrayAppend(child *Value) {
	if v == nil || v.kind != KindArray {
		return
	}
	v.arr = append(v.arr, child)
}

// ArrayGet resolves a possibly-negative index, wrapping from the end.
// ok is false when the index is out of range.
func (v *Value) ArrayGet(idx int) (*Value, bool) {
	if v == nil || v.kind != KindArray {
		return nil, false
	}
	n := len(v.arr)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, false
	}
	return v.arr[idx], true
}

func (v *Value) ArraySet(idx int, child *Value) bool {
	if v == nil || v.kind != KindArray {
		return false
	}
	n := len(v.arr)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return false
	}
	v.arr[idx] = child
	return true
}

func (v *Value) ArrayInsert(idx int, child *Value) bool {
	if v == nil || v.kind != KindArray {
		return false
	}
	n := len(v.arr)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx > n {
		return false
	}
	v.arr = append(v.arr, nil)
	copy(v.arr[idx+1:], v.arr[idx:n])
	v.arr[idx] = child
	return true
}

// ArrayDelete removes the element at idx (negative wraps from the
// end), reporting whether the index was in range.
func (v *Value) ArrayDelete(idx int) bool {
	if v == nil || v.kind != KindArray {
		return false
	}
	n := len(v.arr)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return false
	}
	v.arr = append(v.arr[:idx], v.arr[idx+1:]...)
	return true
}

// ObjectKeys returns the block's keys in insertion order.
func (v *Value) ObjectKeys() []string {
	if v == nil || v.kind != KindBlock {
		return nil
	}
	out := make([]string, len(v.objKeys))
	copy(out, v.objKeys)
	return out
}

func (v *Value) ObjectGet(key string) (*Value, bool) {
	if v == nil || v.kind != KindBlock {
		return nil, false
	}
	val, ok := v.objEntries[key]
	return val, ok
}

func (v *Value) ObjectSet(key string, child *Value) {
	if v == nil || v.kind != KindBlock {
		return
	}
	if _, exists := v.objEntries[key]; !exists {
		v.objKeys = append(v.objKeys, key)
	}
	v.objEntries[key] = child
}

func (v *Value) ObjectDelete(key string) bool {
	if v == nil || v.kind != KindBlock {
		return false
	}
	if _, ok := v.objEntries[key]; !ok {
		return false
	}
	delete(v.objEntries, key)
	for i, k := range v.objKeys {
		if k == key {
			v.objKeys = append(v.objKeys[:i], v.objKeys[i+1:]...)
			break
		}
	}
	return true
}

func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arr)
	case KindBlock:
		return len(v.objKeys)
	case KindString:
		return len([]rune(v.s))
	default:
		return 0
	}
}

// Callee accessors.

func (v *Value) CalleeDef() *ast.Callee { return v.callee }
func (v *Value) CalleeEnv() any         { return v.calleeEnv }

// Truthy implements spec.md §4.3.3: everything is truthy except Null,
// false, numeric zero. Empty containers and the string "0" are
// truthy.
func (v *Value) Truthy() bool {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	default:
		return true
	}
}

// DeepCopy clones composite values (Array/Block). Scalars are
// returned as-is (they are immutable), and Callee values are returned
// as-is (closures/registries are shared by identity, never copied).
func (v *Value) DeepCopy() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindArray:
		out := make([]*Value, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.DeepCopy()
		}
		return &Value{kind: KindArray, arr: out}
	case KindBlock:
		entries := make(map[string]*Value, len(v.objEntries))
		keys := make([]string, len(v.objKeys))
		copy(keys, v.objKeys)
		for k, val := range v.objEntries {
			entries[k] = val.DeepCopy()
		}
		return &Value{kind: KindBlock, objEntries: entries, objKeys: keys}
	default:
		return v
	}
}

// Equals implements spec.md §4.3.3 equality: structural for
// Array/Block, numeric cross-comparison for Int/Float, truthiness
// comparison when one side is Boolean and the other is not, and
// identity for Callee. strict disables the boolean/truthiness
// coercion for nested comparisons.
func (v *Value) Equals(other *Value, strict bool) bool {
	if v.Kind() == KindBool && other.Kind() != KindBool && !strict {
		return v.Truthy() == other.Truthy()
	}
	if other.Kind() == KindBool && v.Kind() != KindBool && !strict {
		return v.Truthy() == other.Truthy()
	}

	if v.IsNumeric() && other.IsNumeric() {
		return v.AsFloat() == other.AsFloat()
	}

	if v.Kind() != other.Kind() {
		return false
	}

	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equals(other.arr[i], true) {
				return false
			}
		}
		return true
	case KindBlock:
		if len(v.objKeys) != len(other.objKeys) {
			return false
		}
		for k, val := range v.objEntries {
			ov, ok := other.objEntries[k]
			if !ok || !val.Equals(ov, true) {
				return false
			}
		}
		return true
	case KindCallee:
		return v.callee == other.callee
	default:
		return false
	}
}

// String renders the canonical textual form of v (spec.md §6.3).
// infinityTag/nanTag are the configured replacement strings for
// non-finite floats (empty means "error", handled by the caller
// before String is reached).
func (v *Value) String(infinityTag, nanTag string) string {
	var sb strings.Builder
	v.writeString(&sb, infinityTag, nanTag, false)
	return sb.String()
}

func (v *Value) writeString(sb *strings.Builder, infinityTag, nanTag string, quoted bool) {
	switch v.Kind() {
	case KindUndefined, KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.f, infinityTag, nanTag))
	case KindString:
		if quoted {
			sb.WriteString(quoteString(v.s))
		} else {
			sb.WriteString(v.s)
		}
	case KindArray:
		sb.WriteString("[")
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeString(sb, infinityTag, nanTag, true)
		}
		sb.WriteString("]")
	case KindBlock:
		sb.WriteString("{")
		for i, k := range v.objKeys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quoteString(k))
			sb.WriteString(": ")
			v.objEntries[k].writeString(sb, infinityTag, nanTag, true)
		}
		sb.WriteString("}")
	case KindCallee:
		name := "anonymous"
		if v.callee != nil && v.callee.Name != "" {
			name = v.callee.Name
		}
		sb.WriteString("function:" + name)
	}
}

func formatFloat(f float64, infinityTag, nanTag string) string {
	if math.IsInf(f, 1) {
		if infinityTag != "" {
			return infinityTag
		}
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		if infinityTag != "" {
			return "-" + infinityTag
		}
		return "-Infinity"
	}
	if math.IsNaN(f) {
		if nanTag != "" {
			return nanTag
		}
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// MarshalJSON implements json.Marshaler so a *Value round-trips
// through encoding/json (spec.md §6.4 JSON compatibility).
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.arr)
	case KindBlock:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.objKeys {
			if i > 0 {
				sb.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			sb.Write(kb)
			sb.WriteByte(':')
			vb, err := v.objEntries[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			sb.Write(vb)
		}
		sb.WriteByte('}')
		return []byte(sb.String()), nil
	case KindCallee:
		return nil, fmt.Errorf("cannot marshal a function value to JSON")
	default:
		return []byte("null"), nil
	}
}

// FromJSON converts a decoded encoding/json value (as produced by
// json.Unmarshal into an any) into a runtime Value, preserving object
// key order is not possible through encoding/json alone; callers that
// need stable order should parse through the language parser instead,
// which preserves source order directly.
func FromJSON(raw any) (*Value, error) {
	switch x := raw.(type) {
	case nil:
		return NULL, nil
	case bool:
		return Bool(x), nil
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return Int(int64(x)), nil
		}
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		arr := NewArray()
		for _, e := range x {
			ev, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			arr.ArrayAppend(ev)
		}
		return arr, nil
	case map[string]any:
		blk := NewBlock()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev, err := FromJSON(x[k])
			if err != nil {
				return nil, err
			}
			blk.ObjectSet(k, ev)
		}
		return blk, nil
	default:
		return nil, fmt.Errorf("unsupported JSON-decoded type %T", raw)
	}
}

// FromHost normalizes an arbitrary host-language value into a runtime
// Value per spec.md §4.3.5: integers of any width become Int, floats
// of any width become Float, strings/booleans pass through,
// arrays/maps are deep-copied and recursed, and map keys must be
// strings. Anything else is rejected.
func FromHost(raw any) (*Value, error) {
	switch x := raw.(type) {
	case nil:
		return NULL, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		arr := NewArray()
		for _, e := range x {
			ev, err := FromHost(e)
			if err != nil {
				return nil, err
			}
			arr.ArrayAppend(ev)
		}
		return arr, nil
	case map[string]any:
		blk := NewBlock()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev, err := FromHost(x[k])
			if err != nil {
				return nil, err
			}
			blk.ObjectSet(k, ev)
		}
		return blk, nil
	default:
		return nil, fmt.Errorf("cannot normalize host value of type %T", raw)
	}
}
