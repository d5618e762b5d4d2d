package vex

import (
	"sort"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/token"
)

// Parsed is the result of a successful parse: spec.md §6.1's
// `Parsed` return value of `parse(...)`.
type Parsed struct {
	Program *ast.Program

	source string
	origin string
}

// Parse implements spec.md §6.1's `parse(source_text, origin_tag?,
// config?) -> Parsed | LexError | ParseError`. origin is an arbitrary
// label (e.g. a file path) used only for error messages. Every
// diagnostic the parser accumulates is returned together as a single
// *ParseError rather than stopping at the first one, mirroring
// internal/parser.Parse's own accumulate-everything behavior.
func Parse(source, origin string, cfg Config) (*Parsed, error) {
	prog, errs := parser.Parse(source, cfg.JSONOnly)
	if len(errs) > 0 {
		return nil, &ParseError{Errors: errs, Source: source, Origin: origin}
	}
	return &Parsed{Program: prog, source: source, origin: origin}, nil
}

// WithInjectedVariables returns a copy of p whose program begins with
// one ast.Injection statement per entry of vars (spec.md §3.2's
// Injection node), sorted by name for deterministic output. This is
// the host-value injection pathway implied by spec.md §4.3.5: a host
// can seed variables into a script's top-level scope before it runs,
// without reparsing source text the host built by hand.
func (p *Parsed) WithInjectedVariables(vars map[string]any) *Parsed {
	if len(vars) == 0 {
		return p
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	tok := token.Token{Literal: "inject"}
	injections := make([]ast.Statement, 0, len(names))
	for _, name := range names {
		injections = append(injections, &ast.Injection{Token: tok, Variable: name, Value: vars[name]})
	}

	out := &ast.Program{
		Statements: append(injections, p.Program.Statements...),
		JSONOnly:   p.Program.JSONOnly,
	}
	return &Parsed{Program: out, source: p.source, origin: p.origin}
}
