package vex

import (
	"github.com/vexlang/vex/internal/environment"
	"github.com/vexlang/vex/internal/vexvalue"
)

// EvaluateParsed implements spec.md §6.1's `evaluate(parsed, config?) ->
// Value | EvalError`: a one-shot, fire-and-forget run of a Parsed
// program against a fresh top-level environment. There is no way to
// call back into the program afterward — for that, use MakeInstance.
func EvaluateParsed(p *Parsed, cfg Config) (*vexvalue.Value, error) {
	ev := cfg.newEvaluator()
	env := environment.New()
	v, _, err := ev.Eval(p.Program, env)
	if err != nil {
		return nil, wrapEval(cfg, err, p.source, p.origin)
	}
	return v, nil
}
