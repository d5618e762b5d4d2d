package vex

import (
	"bytes"
	"testing"
)

func TestParseReturnsErrorOnBadSyntax(t *testing.T) {
	_, err := Parse(`{`, "bad.vex", Config{})
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("want *ParseError, got %T", err)
	}
}

func TestEvaluateParsedSimpleExpression(t *testing.T) {
	parsed, err := Parse(`1 + 2 * 3`, "expr.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	v, err := EvaluateParsed(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if got := v.String("", ""); got != "7" {
		t.Fatalf("got %s, want 7", got)
	}
}

func TestEvaluateParsedRunsPrint(t *testing.T) {
	var out bytes.Buffer
	parsed, err := Parse(`print("hi")`, "print.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := EvaluateParsed(parsed, Config{Stdout: &out}); err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if out.String() != `hi` {
		t.Fatalf("got %q", out.String())
	}
}

func TestWithInjectedVariablesSeedsTopLevelScope(t *testing.T) {
	parsed, err := Parse(`x + 1`, "inject.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	injected := parsed.WithInjectedVariables(map[string]any{"x": 41})
	v, err := EvaluateParsed(injected, Config{})
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if got := v.String("", ""); got != "42" {
		t.Fatalf("got %s, want 42", got)
	}
}

func TestMakeInstanceAndInvoke(t *testing.T) {
	parsed, err := Parse(`
total = 0
function add(n) {
  total = total + n
  return(total)
}
`, "counter.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	inst, err := MakeInstance(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected instance error: %v", err)
	}

	v, err := InvokeOnInstance(inst, "add", []any{int64(5)})
	if err != nil {
		t.Fatalf("unexpected invoke error: %v", err)
	}
	if got := v.String("", ""); got != "5" {
		t.Fatalf("got %s, want 5", got)
	}

	v, err = InvokeOnInstance(inst, "add", []any{int64(10)})
	if err != nil {
		t.Fatalf("unexpected invoke error: %v", err)
	}
	if got := v.String("", ""); got != "15" {
		t.Fatalf("got %s, want 15 (state should persist across calls)", got)
	}
}

func TestInvokeOnInstanceRewindsStateAfterAbort(t *testing.T) {
	parsed, err := Parse(`
total = 0
function bump(n) {
  total = total + n
  return(1 / n)
}
`, "abort.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	inst, err := MakeInstance(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected instance error: %v", err)
	}

	if _, err := InvokeOnInstance(inst, "bump", []any{int64(0)}); err == nil {
		t.Fatalf("expected a division-by-zero abort")
	}

	v, err := GetMember(inst, []any{"total"})
	if err != nil {
		t.Fatalf("unexpected GetMember error: %v", err)
	}
	if got := v.String("", ""); got != "0" {
		t.Fatalf("total should be rewound to 0 after abort, got %s", got)
	}
}

func TestInvokeOnInstanceRejectsNonCallableMember(t *testing.T) {
	parsed, err := Parse(`x = 1`, "notfn.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	inst, err := MakeInstance(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected instance error: %v", err)
	}
	if _, err := InvokeOnInstance(inst, "x", nil); err == nil {
		t.Fatalf("expected an error calling a non-callable member")
	}
}

func TestGetMemberWalksNestedPath(t *testing.T) {
	parsed, err := Parse(`obj = {"list": [10, 20, 30]}`, "member.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	inst, err := MakeInstance(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected instance error: %v", err)
	}
	v, err := GetMember(inst, []any{"obj", "list", 1})
	if err != nil {
		t.Fatalf("unexpected GetMember error: %v", err)
	}
	if got := v.String("", ""); got != "20" {
		t.Fatalf("got %s, want 20", got)
	}
}

func TestGetMemberMissingKeyYieldsNull(t *testing.T) {
	parsed, err := Parse(`obj = {"a": 1}`, "missing.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	inst, err := MakeInstance(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected instance error: %v", err)
	}
	v, err := GetMember(inst, []any{"obj", "missing"})
	if err != nil {
		t.Fatalf("unexpected GetMember error: %v", err)
	}
	if got := v.String("", ""); got != "null" {
		t.Fatalf("got %s, want null", got)
	}
}

func TestToJSONRoundTripsThroughFromJSONBytes(t *testing.T) {
	parsed, err := Parse(`{"name": "vex", "tags": ["json", "superset"], "count": 2}`, "doc.vex", Config{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	v, err := EvaluateParsed(parsed, Config{})
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}

	raw, err := ToJSON(v)
	if err != nil {
		t.Fatalf("unexpected ToJSON error: %v", err)
	}

	back, err := FromJSONBytes(raw)
	if err != nil {
		t.Fatalf("unexpected FromJSONBytes error: %v", err)
	}
	if !v.Equals(back, true) {
		t.Fatalf("round trip not structurally equal: %s vs %s", v.String("", ""), back.String("", ""))
	}
}

func TestFromJSONBytesRejectsMalformedInput(t *testing.T) {
	if _, err := FromJSONBytes([]byte(`{not json`)); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
