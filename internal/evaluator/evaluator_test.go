package evaluator_test

import (
	"bytes"
	"testing"

	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"

	// Side-effect import so if/do/while/for/print and the rest of the
	// standard library are registered: evaluator itself cannot import
	// internal/builtins (that would be the cycle builtins already
	// avoids by registering through evaluator.RegisterBuiltin), but an
	// external _test package for evaluator can link both.
	_ "github.com/vexlang/vex/internal/builtins"
)

func eval(t *testing.T, cfg evaluator.Config, src string) (*vexvalue.Value, *bytes.Buffer, *vexerr.Error) {
	t.Helper()
	prog, errs := parser.Parse(src, cfg.JSONOnly)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	var out bytes.Buffer
	ev := evaluator.New(cfg, &out)
	env := environment.New()
	v, _, err := ev.Eval(prog, env)
	return v, &out, err
}

func mustEval(t *testing.T, src string) *vexvalue.Value {
	t.Helper()
	v, _, err := eval(t, evaluator.Config{}, src)
	if err != nil {
		t.Fatalf("unexpected error evaluating %q: %v", src, err)
	}
	return v
}

// spec.md §8 "Concrete scenarios" 1-6.

func TestConcreteScenario1AssignmentAndReturn(t *testing.T) {
	v := mustEval(t, `a:3,b:2,return(a+b)`)
	if got := v.String("", ""); got != "5" {
		t.Fatalf("got %s, want 5", got)
	}
	if v.Kind() != vexvalue.KindInt {
		t.Fatalf("want Int, got %s", v.Kind())
	}
}

func TestConcreteScenario2JSONObject(t *testing.T) {
	v := mustEval(t, `{"a": 3, "b": [2, 1]}`)
	if v.Kind() != vexvalue.KindBlock {
		t.Fatalf("want Block, got %s", v.Kind())
	}
	a, _ := v.ObjectGet("a")
	if a.String("", "") != "3" {
		t.Fatalf("a = %s, want 3", a.String("", ""))
	}
	b, _ := v.ObjectGet("b")
	if b.String("", "") != "[2, 1]" {
		t.Fatalf("b = %s, want [2, 1]", b.String("", ""))
	}
}

func TestConcreteScenario3FunctionCall(t *testing.T) {
	v := mustEval(t, `function f(x){return(x*x)} return(f(4))`)
	if got := v.String("", ""); got != "16" {
		t.Fatalf("got %s, want 16", got)
	}
}

func TestConcreteScenario4ClosureCapturesDefiningScope(t *testing.T) {
	v := mustEval(t, `
function make(a){
  function g(){return(a)}
  return(g)
}
h=make(7)
return(h())
`)
	if got := v.String("", ""); got != "7" {
		t.Fatalf("got %s, want 7 (closure should see its defining scope)", got)
	}
}

func TestConcreteScenario5ForInSum(t *testing.T) {
	v := mustEval(t, `x=[1,2,3], for(v in x){y+=v}, return(y)`)
	if got := v.String("", ""); got != "6" {
		t.Fatalf("got %s, want 6", got)
	}
}

func TestConcreteScenario6DivisionSemantics(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{}, `return(1/0)`)
	if err == nil {
		t.Fatalf("expected division by zero to abort")
	}

	v := mustEval(t, `return(3/2)`)
	if got := v.String("", ""); got != "1.5" {
		t.Fatalf("3/2 => %s, want 1.5 (Float)", got)
	}
	if v.Kind() != vexvalue.KindFloat {
		t.Fatalf("3/2 should be Float, got %s", v.Kind())
	}

	v = mustEval(t, `return(4/2)`)
	if got := v.String("", ""); got != "2" {
		t.Fatalf("4/2 => %s, want 2 (Int)", got)
	}
	if v.Kind() != vexvalue.KindInt {
		t.Fatalf("4/2 should be Int, got %s", v.Kind())
	}
}

// Deep-copy invariant (spec.md §3.5, §8): assigning an array/block to
// another variable must not alias the original.

func TestDeepCopyOnAssignmentArray(t *testing.T) {
	v := mustEval(t, `
a = [1, 2, 3]
b = a
b[0] = 99
return(a)
`)
	if got := v.String("", ""); got != "[1, 2, 3]" {
		t.Fatalf("mutating b perturbed a: got %s", got)
	}
}

func TestDeepCopyOnAssignmentBlock(t *testing.T) {
	v := mustEval(t, `
a = {"x": 1}
b = a
b.x = 99
return(a.x)
`)
	if got := v.String("", ""); got != "1" {
		t.Fatalf("mutating b perturbed a: got %s", got)
	}
}

// Reference parameters are the one legitimate identity-sharing path
// for composite arguments (spec.md §3.5, §4.3.4).

func TestReferenceParameterSharesIdentity(t *testing.T) {
	v := mustEval(t, `
function zeroFirst(reference arr){
  arr[0] = 0
}
a = [1, 2, 3]
zeroFirst(a)
return(a)
`)
	if got := v.String("", ""); got != "[0, 2, 3]" {
		t.Fatalf("reference parameter did not mutate caller's array: got %s", got)
	}
}

func TestValueParameterDeepCopiesArray(t *testing.T) {
	v := mustEval(t, `
function zeroFirst(arr){
  arr[0] = 0
}
a = [1, 2, 3]
zeroFirst(a)
return(a)
`)
	if got := v.String("", ""); got != "[1, 2, 3]" {
		t.Fatalf("plain parameter should not mutate caller's array: got %s", got)
	}
}

// Class/instance lifecycle (spec.md §3.6): a class_constructor block's
// environment becomes the instance state reachable by member access.

func TestClassConstructorProducesBlockInstance(t *testing.T) {
	v := mustEval(t, `
class Counter(start){
  count = start
  function bump(){
    count = count + 1
    return(count)
  }
}
c = Counter(10)
return(c.count)
`)
	if got := v.String("", ""); got != "10" {
		t.Fatalf("got %s, want 10", got)
	}
}

func TestClassConstructorMethodMutatesInstanceState(t *testing.T) {
	v := mustEval(t, `
class Counter(start){
  count = start
  function bump(){
    count = count + 1
    return(count)
  }
}
c = Counter(10)
c.bump()
return(c.count)
`)
	if got := v.String("", ""); got != "11" {
		t.Fatalf("got %s, want 11 (method should mutate constructor-scope state)", got)
	}
}

// Arithmetic operator matrices (spec.md §4.3.3).

func TestArithmeticMatrix(t *testing.T) {
	cases := map[string]string{
		`return([1,2] + [3])`:        "[1, 2, 3]",
		`return({"a":1} + {"b":2})`:  `{"a": 1, "b": 2}`,
		`return({"a":1} + {"a":2})`:  `{"a": 3}`,
		`return("a" + 1)`:            `a1`,
		`return(1 + 1.5)`:            "2.5",
		`return(true + false)`:       "true",
		`return([1,2,3] - 2)`:        "[1, 3]",
		`return({"a":1,"b":2} - ["a"])`: `{"b": 2}`,
		`return("hello" - "l")`:      `heo`,
		`return([1,2] * 2)`:          "[1, 2, 1, 2]",
		`return("ab" * 3)`:           `ababab`,
		`return(["a","b"] * "-")`:    `a-b`,
		`return("a,b,c" / ",")`:      `["a", "b", "c"]`,
		`return(7 % 3)`:              "1",
		`return(-7 % 3)`:             "2",
		`return(2 < 3)`:              "true",
		`return([1,2] == [1,2])`:     "true",
		`return(2 in [1,2,3])`:       "true",
		`return("b" in {"a":1,"b":2})`: "true",
		`return(not false)`:          "true",
	}
	for src, want := range cases {
		v := mustEval(t, src)
		if got := v.String("", ""); got != want {
			t.Errorf("%s => %s, want %s", src, got, want)
		}
	}
}

// Boundary / resource-limit behavior (spec.md §8 "Boundaries").

func TestMaxDepthBoundary(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{MaxDepth: 5}, `
function rec(n){
  return(rec(n+1))
}
return(rec(0))
`)
	if err == nil {
		t.Fatalf("expected max_depth to abort unbounded recursion")
	}
}

func TestMaxLoopTimesBoundary(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{MaxLoopTimes: 3}, `
i = 0
while(true, { i = i + 1 })
`)
	if err == nil {
		t.Fatalf("expected max_loop_times to abort an infinite loop")
	}
}

func TestMaxArraySizeBoundary(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{MaxArraySize: 2}, `return([1,2,3])`)
	if err == nil {
		t.Fatalf("expected max_array_size to abort an over-sized array literal")
	}
}

// Integer index out-of-range: null for Get, error for Set (spec.md §8).

func TestArrayIndexOutOfRangeGetYieldsNull(t *testing.T) {
	v := mustEval(t, `a = [1,2,3], return(a[10])`)
	if got := v.String("", ""); got != "null" {
		t.Fatalf("got %s, want null", got)
	}
}

func TestArrayIndexOutOfRangeSetErrors(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{}, `a = [1,2,3], a[10] = 5`)
	if err == nil {
		t.Fatalf("expected an out-of-range assignment to abort")
	}
}

// break/continue scoping (spec.md §4.3.1): must find an enclosing loop.

func TestBreakOutsideLoopErrors(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{}, `function f(){ break }
return(f())`)
	if err == nil {
		t.Fatalf("expected break outside a loop to abort")
	}
}

func TestContinueSkipsRestOfIterationBody(t *testing.T) {
	v := mustEval(t, `
total = 0
for(v in [1,2,3,4], {
  if(v == 2, { continue })
  total += v
})
return(total)
`)
	if got := v.String("", ""); got != "8" {
		t.Fatalf("got %s, want 8 (skip only v==2)", got)
	}
}

// Implicit slot (spec.md glossary: "the nameless per-scope value used
// by `:=` to return a value from a block"): a block's result must come
// from its last `:=`, not merely its last statement.

func TestImplicitSlotSurvivesASubsequentPlainStatement(t *testing.T) {
	v := mustEval(t, `
result = {
  x := 5
  y = 10
}
return(result)
`)
	if got := v.String("", ""); got != "5" {
		t.Fatalf("got %s, want 5 (the := value, not y's)", got)
	}
}

func TestBlockWithoutImplicitAssignmentFallsBackToLastStatement(t *testing.T) {
	v := mustEval(t, `
result = {
  x = 5
  y = 10
}
return(result)
`)
	if got := v.String("", ""); got != "10" {
		t.Fatalf("got %s, want 10 (no := ran, so last statement's value wins)", got)
	}
}

// for-in over a Block (spec.md §4.3.2: "a block iterator is expanded
// to a sequence of [key, value] pairs").

func TestForInBlockSingleVariableBindsKeyValuePair(t *testing.T) {
	v := mustEval(t, `
pairs = []
for(p in {"a": 1, "b": 2}, {
  pairs += [p]
})
return(pairs)
`)
	if got := v.String("", ""); got != `[["a", 1], ["b", 2]]` {
		t.Fatalf("got %s, want [[\"a\", 1], [\"b\", 2]]", got)
	}
}

func TestForInBlockTwoVariablesBindKeyAndValueSeparately(t *testing.T) {
	v := mustEval(t, `
total = 0
keys = ""
for(k, val in {"a": 1, "b": 2}, {
  keys += k
  total += val
})
return([keys, total])
`)
	if got := v.String("", ""); got != `["ab", 3]` {
		t.Fatalf("got %s, want [\"ab\", 3]", got)
	}
}

// max_array_size on `+` and string `/` (spec.md:284: "+, *, insert, /
// of long strings" all grow arrays and must be bounded).

func TestMaxArraySizeBoundsArrayConcatenation(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{MaxArraySize: 3}, `return([1,2] + [3,4])`)
	if err == nil {
		t.Fatalf("expected array concatenation to abort past max_array_size")
	}
	v := mustEval(t, `return([1,2] + [3])`)
	if got := v.String("", ""); got != "[1, 2, 3]" {
		t.Fatalf("got %s, want [1, 2, 3]", got)
	}
}

func TestMaxArraySizeBoundsStringSplit(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{MaxArraySize: 2}, `return("a,b,c" / ",")`)
	if err == nil {
		t.Fatalf("expected string split to abort past max_array_size")
	}
}

func TestMaxArraySizeBoundsInsert(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{MaxArraySize: 2}, `a = [1,2], insert(a, 0, 9)`)
	if err == nil {
		t.Fatalf("expected insert() to abort past max_array_size")
	}
}

// Reserved-name write protection (spec.md §3.5).

func TestReservedNameCannotBeAssigned(t *testing.T) {
	_, _, err := eval(t, evaluator.Config{}, `___x___ = 1`)
	if err == nil {
		t.Fatalf("expected writing a ___reserved___ name to abort")
	}
}
