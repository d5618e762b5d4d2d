package vexvalue

import (
	"math"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestStringCanonicalForms(t *testing.T) {
	obj := NewBlock()
	obj.ObjectSet("name", String("vex"))
	obj.ObjectSet("count", Int(3))

	cases := map[string]*Value{
		"int":     Int(42),
		"float":   Float(3.5),
		"string":  String("hello \"world\"\n"),
		"bool":    Bool(true),
		"null":    NULL,
		"array":   NewArray(Int(1), Int(2), String("three")),
		"object":  obj,
		"nested":  NewArray(NewArray(Int(1)), obj),
		"neg_int": Int(-7),
	}
	for name, v := range cases {
		snaps.MatchSnapshot(t, name, v.String("Infinity", "NaN"))
	}
}

func TestStringInfinityNaNTags(t *testing.T) {
	inf := Float(math.Inf(1))
	negInf := Float(math.Inf(-1))
	nan := Float(math.NaN())

	if got := inf.String("Infinity", "NaN"); got != "Infinity" {
		t.Fatalf("want Infinity, got %q", got)
	}
	if got := negInf.String("Infinity", "NaN"); got != "-Infinity" {
		t.Fatalf("want -Infinity, got %q", got)
	}
	if got := nan.String("Infinity", "NaN"); got != "NaN" {
		t.Fatalf("want NaN, got %q", got)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    *Value
		want bool
	}{
		{Int(0), false},
		{Int(1), true},
		{Float(0), false},
		{String(""), true},
		{String("x"), true},
		{Bool(false), false},
		{Bool(true), true},
		{NULL, false},
		{UNDEFINED, false},
		{NewArray(), true},
		{NewBlock(), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%s) = %v, want %v", c.v.Kind(), got, c.want)
		}
	}
}

func TestEqualsStrictVsLoose(t *testing.T) {
	if !Int(1).Equals(Float(1), false) {
		t.Fatalf("loose equality should treat 1 == 1.0")
	}
	if !Int(1).Equals(Float(1), true) {
		t.Fatalf("strict equality should still compare int and float numerically")
	}
	a := NewArray(Int(1), Int(2))
	b := NewArray(Int(1), Int(2))
	if !a.Equals(b, true) {
		t.Fatalf("structurally equal arrays should compare equal")
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	orig := NewArray(Int(1))
	dup := orig.DeepCopy()
	dup.ArrayAppend(Int(2))
	if orig.Len() != 1 {
		t.Fatalf("mutating the copy must not affect the original, original len = %d", orig.Len())
	}
}
