// Package vex is the embedder-facing engine API: the five operations
// spec.md §6.1 requires (Parse, EvaluateParsed, MakeInstance,
// InvokeOnInstance, GetMember) composed from internal/parser,
// internal/evaluator, and internal/vexvalue. It deliberately excludes
// the host-facing convenience façade spec.md §1 scopes out (arg-vector
// mixing, file-path resolution, "+"-fragment concatenation) — those
// are left to a caller's own wrapper, the way the teacher's
// pkg/dwscript leaves argument-vector conveniences to its own callers
// on top of the core interp package.
package vex

import (
	"io"

	"github.com/vexlang/vex/internal/evaluator"

	// Registers if/do/while/for and the standard library functions into
	// internal/evaluator's builtin table as a side effect of importing
	// this package — an embedder never needs to import internal/builtins
	// itself.
	_ "github.com/vexlang/vex/internal/builtins"
)

// Config is the host-tunable option set of spec.md §6.2. The zero
// value is a usable default: no resource limits, Infinity/NaN
// production treated as an error, json_only disabled.
type Config struct {
	Infinity      string
	NaN           string
	MaxArraySize  int
	MaxDepth      int
	MaxLoopTimes  int
	JSONOnly      bool
	StderrEnabled bool

	// Stdout receives everything print() writes. A nil Stdout discards
	// it, matching internal/evaluator.New's own nil-writer handling.
	Stdout io.Writer
}

func (c Config) evaluatorConfig() evaluator.Config {
	return evaluator.Config{
		Infinity:      c.Infinity,
		NaN:           c.NaN,
		MaxArraySize:  c.MaxArraySize,
		MaxDepth:      c.MaxDepth,
		MaxLoopTimes:  c.MaxLoopTimes,
		JSONOnly:      c.JSONOnly,
		StderrEnabled: c.StderrEnabled,
	}
}

func (c Config) newEvaluator() *evaluator.Evaluator {
	return evaluator.New(c.evaluatorConfig(), c.Stdout)
}
