package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRunScriptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vex")
	if err := os.WriteFile(path, []byte(`print(1 + 2)`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	runEvalExpr = ""
	runJSONOnly = false
	runInfinity = ""
	runNaN = ""
	runMaxArraySize = 0
	runMaxDepth = 0
	runMaxLoopTimes = 0
	runStderrEnabled = false

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err := runScript(nil, []string{path})
	w.Close()
	os.Stdout = old
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if got := buf.String(); got != "3null\n" {
		t.Fatalf("got %q, want %q", got, "3null\n")
	}
}

func TestRunScriptInlineExpression(t *testing.T) {
	runEvalExpr = `"hello"`
	runJSONOnly = false
	runInfinity = ""
	runNaN = ""
	runMaxArraySize = 0
	runMaxDepth = 0
	runMaxLoopTimes = 0
	runStderrEnabled = false
	defer func() { runEvalExpr = "" }()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err := runScript(nil, nil)
	w.Close()
	os.Stdout = old
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if got := buf.String(); got != "hello\n" {
		t.Fatalf("got %q", got)
	}
}

func TestRunScriptParseErrorReturnsError(t *testing.T) {
	runEvalExpr = `{`
	runJSONOnly = false
	defer func() { runEvalExpr = "" }()

	if err := runScript(nil, nil); err == nil {
		t.Fatalf("expected a parse error")
	}
}
