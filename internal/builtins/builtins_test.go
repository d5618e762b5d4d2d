package builtins

import (
	"bytes"
	"testing"

	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/vexerr"
	"github.com/vexlang/vex/internal/vexvalue"
)

func run(t *testing.T, src string) (*bytes.Buffer, evalOutcome) {
	t.Helper()
	prog, errs := parser.Parse(src, false)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	var out bytes.Buffer
	ev := evaluator.New(evaluator.Config{}, &out)
	env := environment.New()
	v, sig, err := ev.Eval(prog, env)
	return &out, evalOutcome{value: v, sig: sig, err: err}
}

type evalOutcome struct {
	value *vexvalue.Value
	sig   evaluator.Signal
	err   *vexerr.Error
}

func mustOK(t *testing.T, src string) evalOutcome {
	t.Helper()
	_, res := run(t, src)
	if res.err != nil {
		t.Fatalf("unexpected error for %q: %v", src, res.err)
	}
	return res
}

func TestIfSelectsFirstTruthyBranch(t *testing.T) {
	res := mustOK(t, `if(false, 1, true, 2, true, 3)`)
	if got := res.value.String("", ""); got != "2" {
		t.Fatalf("got %s, want 2", got)
	}
}

func TestIfNoMatchReturnsNull(t *testing.T) {
	res := mustOK(t, `if(false, 1)`)
	if got := res.value.String("", ""); got != "null" {
		t.Fatalf("got %s, want null", got)
	}
}

func TestIfOddArgCountErrors(t *testing.T) {
	_, res := run(t, `if(true, 1, false)`)
	if res.err == nil {
		t.Fatalf("expected an error for an odd argument count")
	}
}

func TestWhileIsPreTest(t *testing.T) {
	out, res := run(t, `
i = 0
while(i < 3, {
  print(i)
  i = i + 1
})
`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != "012" {
		t.Fatalf("got %q, want %q", out.String(), "012")
	}
}

func TestWhileNeverEntersWhenFalseImmediately(t *testing.T) {
	out, res := run(t, `while(false, { print("never") })`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != "" {
		t.Fatalf("got %q, want empty output", out.String())
	}
}

func TestDoRunsUntilBreak(t *testing.T) {
	out, res := run(t, `
i = 0
do({
  print(i)
  i = i + 1
  if(i >= 3, { break })
})
`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != "012" {
		t.Fatalf("got %q, want %q", out.String(), "012")
	}
}

func TestForCStyle(t *testing.T) {
	out, res := run(t, `for(i = 0, i < 3, i = i + 1, { print(i) })`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != "012" {
		t.Fatalf("got %q, want %q", out.String(), "012")
	}
}

func TestForCStyleNeverRunsWhenConditionStartsFalse(t *testing.T) {
	out, res := run(t, `for(i = 5, i < 3, i = i + 1, { print(i) })`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != "" {
		t.Fatalf("got %q, want empty output", out.String())
	}
}

func TestForInArray(t *testing.T) {
	out, res := run(t, `for(x in [1, 2, 3], { print(x) })`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != "123" {
		t.Fatalf("got %q, want %q", out.String(), "123")
	}
}

func TestLenOfArrayBlockString(t *testing.T) {
	res := mustOK(t, `len([1, 2, 3])`)
	if got := res.value.String("", ""); got != "3" {
		t.Fatalf("array len got %s, want 3", got)
	}
	res = mustOK(t, `len("hello")`)
	if got := res.value.String("", ""); got != "5" {
		t.Fatalf("string len got %s, want 5", got)
	}
}

func TestInsertWithNegativeIndex(t *testing.T) {
	res := mustOK(t, `
a = [1, 2, 3]
insert(a, -1, 9)
a
`)
	if got := res.value.String("", ""); got != `[1, 2, 9, 3]` {
		t.Fatalf("got %s, want [1, 2, 9, 3]", got)
	}
}

func TestInsertOutOfRangeErrors(t *testing.T) {
	_, res := run(t, `a = [1, 2]
insert(a, 99, 9)`)
	if res.err == nil {
		t.Fatalf("expected an out-of-range error")
	}
}

func TestStripTrimsWhitespaceAndFullWidthSpace(t *testing.T) {
	res := mustOK(t, "strip(\"  　hi  \")")
	if got := res.value.String("", ""); got != `hi` {
		t.Fatalf("got %s, want hi", got)
	}
}

func TestIntFloatStringConversions(t *testing.T) {
	res := mustOK(t, `int(3.9)`)
	if got := res.value.String("", ""); got != "3" {
		t.Fatalf("int(3.9) got %s, want 3", got)
	}
	res = mustOK(t, `int("42")`)
	if got := res.value.String("", ""); got != "42" {
		t.Fatalf("int(\"42\") got %s, want 42", got)
	}
	res = mustOK(t, `float("1.5")`)
	if got := res.value.String("", ""); got != "1.5" {
		t.Fatalf("float(\"1.5\") got %s, want 1.5", got)
	}
	res = mustOK(t, `string(42)`)
	if got := res.value.String("", ""); got != `42` {
		t.Fatalf("string(42) got %s, want 42", got)
	}
}

func TestTypeNames(t *testing.T) {
	cases := map[string]string{
		`type(1)`:       `int`,
		`type(1.5)`:     `float`,
		`type("s")`:     `string`,
		`type(true)`:    `boolean`,
		`type(null)`:    `null`,
		`type([1])`:     `array`,
		`type({"a":1})`: `block`,
	}
	for src, want := range cases {
		res := mustOK(t, src)
		if got := res.value.String("", ""); got != want {
			t.Errorf("%s => %s, want %s", src, got, want)
		}
	}
}

func TestPrintJoinsWithCommaSpace(t *testing.T) {
	out, res := run(t, `print(1, "two", true)`)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if out.String() != `1, two, true` {
		t.Fatalf("got %q", out.String())
	}
}
