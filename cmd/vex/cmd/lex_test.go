package cmd

import (
	"strings"
	"testing"

	"github.com/vexlang/vex/internal/token"
)

func TestFormatTokenPlain(t *testing.T) {
	showType, showPos = false, false
	got := formatToken(token.Token{Type: token.IDENT, Literal: "x", Pos: token.Position{Line: 1, Column: 1}})
	if got != ` "x"` {
		t.Fatalf("got %q", got)
	}
}

func TestFormatTokenWithTypeAndPos(t *testing.T) {
	showType, showPos = true, true
	defer func() { showType, showPos = false, false }()
	got := formatToken(token.Token{Type: token.INT, Literal: "42", Pos: token.Position{Line: 3, Column: 5}})
	if !strings.Contains(got, "INT") || !strings.Contains(got, `"42"`) || !strings.HasSuffix(got, "@3:5") {
		t.Fatalf("got %q", got)
	}
}

func TestFormatTokenEOF(t *testing.T) {
	showType, showPos = false, false
	got := formatToken(token.Token{Type: token.EOF})
	if got != " EOF" {
		t.Fatalf("got %q", got)
	}
}
