package parser

import (
	"testing"

	"github.com/vexlang/vex/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse(src, false)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestParseAssignment(t *testing.T) {
	prog := parseOK(t, `x = 1 + 2 * 3`)
	if len(prog.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Statements))
	}
	set, ok := prog.Statements[0].(*ast.Set)
	if !ok {
		t.Fatalf("want *ast.Set, got %T", prog.Statements[0])
	}
	if set.Operator != "=" || set.Target.Base.Name != "x" {
		t.Fatalf("unexpected set: %+v", set)
	}
	bin, ok := set.Value.(*ast.Binary)
	if !ok || bin.Operator != "+" {
		t.Fatalf("want top-level '+', got %#v", set.Value)
	}
}

func TestParseMemberChainAssignment(t *testing.T) {
	prog := parseOK(t, `a.b[0] += 1`)
	set := prog.Statements[0].(*ast.Set)
	if set.Operator != "+=" {
		t.Fatalf("want +=, got %s", set.Operator)
	}
	if len(set.Target.Members) != 2 || !set.Target.Members[0].IsKey || set.Target.Members[0].Key != "b" {
		t.Fatalf("unexpected members: %+v", set.Target.Members)
	}
}

func TestParseObjectLiteral(t *testing.T) {
	prog := parseOK(t, `{"a": 1, b: [1, 2, 3]}`)
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	blk, ok := stmt.Expr.(*ast.Block)
	if !ok || blk.Entries == nil {
		t.Fatalf("want an object literal Block, got %#v", stmt.Expr)
	}
	if len(blk.Entries) != 2 || blk.Entries[0].Key != "a" || blk.Entries[1].Key != "b" {
		t.Fatalf("unexpected entries: %+v", blk.Entries)
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	prog := parseOK(t, `
function add(x, reference acc, function thunk) {
  return(x + acc)
}
`)
	fn, ok := prog.Statements[0].(*ast.Callee)
	if !ok {
		t.Fatalf("want *ast.Callee, got %T", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Parameters) != 3 {
		t.Fatalf("unexpected function: %+v", fn)
	}
	if fn.Parameters[1].Modifier != ast.ParamReference || fn.Parameters[2].Modifier != ast.ParamFunction {
		t.Fatalf("unexpected modifiers: %+v", fn.Parameters)
	}
	if fn.Body.Type != ast.PureFunction || len(fn.Body.Statements) != 1 {
		t.Fatalf("unexpected body: %+v", fn.Body)
	}
}

func TestParseCallWithBlockArgument(t *testing.T) {
	prog := parseOK(t, `if(x > 0, { y = 1 })`)
	stmt := prog.Statements[0].(*ast.Call)
	if stmt.Target.(*ast.Identifier).Name != "if" {
		t.Fatalf("unexpected target: %+v", stmt.Target)
	}
	if len(stmt.Arguments) != 2 {
		t.Fatalf("want 2 arguments, got %d", len(stmt.Arguments))
	}
	body, ok := stmt.Arguments[1].(*ast.Block)
	if !ok || body.Entries != nil || len(body.Statements) != 1 {
		t.Fatalf("want a lexical-block body, got %#v", stmt.Arguments[1])
	}
}

func TestParseRemoveAndBreakContinue(t *testing.T) {
	prog := parseOK(t, `
remove(foo.bar)
while(true, { break continue })
`)
	if _, ok := prog.Statements[0].(*ast.Remove); !ok {
		t.Fatalf("want *ast.Remove, got %T", prog.Statements[0])
	}
}

func TestJSONOnlyModeAcceptsObject(t *testing.T) {
	_, errs := Parse(`{"a": [1, 2, true, null]}`, true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestJSONOnlyModeRejectsStatements(t *testing.T) {
	_, errs := Parse(`x = 1`, true)
	if len(errs) == 0 {
		t.Fatalf("expected a json_only violation to be reported")
	}
}
