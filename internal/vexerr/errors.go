// Package vexerr implements the flat LexError/ParseError/EvalError
// taxonomy from spec.md §7, formatted with a file:line:column header,
// the offending source line, and a caret, in the style of a compiler
// diagnostic.
package vexerr

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/vexlang/vex/internal/token"
)

// Kind distinguishes the three error categories spec.md §7 defines.
type Kind string

const (
	KindLex   Kind = "LexError"
	KindParse Kind = "ParseError"
	KindEval  Kind = "EvalError"
)

// Error is a single diagnostic with position and an optional
// correlation tag (spec.md §6.2 stderr_enabled).
type Error struct {
	Kind    Kind
	Message string
	Pos     token.Position
	HasPos  bool
	Tag     string
}

func (e *Error) Error() string {
	if e.HasPos {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

var tagCounter uint64

// NextTag returns a process-unique correlation tag, used when
// Config.StderrEnabled requests one (spec.md §6.2, §7).
func NextTag() string {
	n := atomic.AddUint64(&tagCounter, 1)
	return fmt.Sprintf("vex-%06x", n)
}

func New(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos, HasPos: true}
}

func NewNoPos(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Lex(pos token.Position, format string, args ...any) *Error {
	return New(KindLex, pos, format, args...)
}

func Parse(pos token.Position, format string, args ...any) *Error {
	return New(KindParse, pos, format, args...)
}

func Eval(pos token.Position, format string, args ...any) *Error {
	return New(KindEval, pos, format, args...)
}

func EvalNoPos(format string, args ...any) *Error {
	return NewNoPos(KindEval, format, args...)
}

// WithTag attaches a correlation tag and returns the same error for
// chaining.
func (e *Error) WithTag(tag string) *Error {
	e.Tag = tag
	return e
}

// Format renders the error with a file:line:column header, the
// offending source line, and a caret — the same shape the teacher's
// compiler-error formatter produces.
func (e *Error) Format(source, file string) string {
	var sb strings.Builder

	if e.HasPos {
		if file != "" {
			fmt.Fprintf(&sb, "%s in %s:%d:%d\n", e.Kind, file, e.Pos.Line, e.Pos.Column)
		} else {
			fmt.Fprintf(&sb, "%s at %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)
		}

		if line := sourceLine(source, e.Pos.Line); line != "" {
			prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
			sb.WriteString("^\n")
		}
	} else {
		fmt.Fprintf(&sb, "%s\n", e.Kind)
	}

	sb.WriteString(e.Message)
	if e.Tag != "" {
		fmt.Fprintf(&sb, " [%s]", e.Tag)
	}
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// FormatErrors formats multiple diagnostics against the same source.
func FormatErrors(errs []*Error, source, file string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(source, file)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[%d/%d] ", i+1, len(errs))
		sb.WriteString(e.Format(source, file))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
