package vex

import (
	"fmt"
	"os"

	"github.com/vexlang/vex/internal/vexerr"
)

// ParseError wraps every LexError/ParseError diagnostic accumulated
// while parsing a single source, formatted against that source the
// way internal/vexerr.FormatErrors renders a compiler's error list.
type ParseError struct {
	Errors []*vexerr.Error
	Source string
	Origin string
}

func (e *ParseError) Error() string {
	return vexerr.FormatErrors(e.Errors, e.Source, e.Origin)
}

// EvalError wraps a single runtime abort (spec.md §7: EvalError).
type EvalError struct {
	Err    *vexerr.Error
	Source string
	Origin string
}

func (e *EvalError) Error() string {
	return e.Err.Format(e.Source, e.Origin)
}

func (e *EvalError) Unwrap() error { return e.Err }

// wrapEval turns a raw *vexerr.Error into the public EvalError,
// attaching a correlation tag and echoing the diagnostic to stderr
// when cfg.StderrEnabled requests it (spec.md §6.2, §7).
func wrapEval(cfg Config, err *vexerr.Error, source, origin string) error {
	if cfg.StderrEnabled {
		err = err.WithTag(vexerr.NextTag())
		fmt.Fprintln(os.Stderr, err.Format(source, origin))
	}
	return &EvalError{Err: err, Source: source, Origin: origin}
}
