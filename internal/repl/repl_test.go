package repl

import (
	"bytes"
	"strings"
	"testing"

	"gecko/internal/evaluator"
)

func runSession(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	startBuffered(evaluator.New(&out), &out, in)
	return out.String()
}

func TestSessionKeepsStateAcrossLines(t *testing.T) {
	got := runSession(t,
		"var x = 1;",
		"x = x + 1;",
		"print x;",
	)
	if !strings.Contains(got, "2\n") {
		t.Errorf("state did not persist across lines: %q", got)
	}
}

func TestBareExpressionIsEchoed(t *testing.T) {
	got := runSession(t, "1 + 2")
	if !strings.Contains(got, "3\n") {
		t.Errorf("expression value not echoed: %q", got)
	}
}

func TestAssignmentEchoesValue(t *testing.T) {
	got := runSession(t, "var x;", "x = 5")
	if !strings.Contains(got, "5\n") {
		t.Errorf("assignment value not echoed: %q", got)
	}
}

func TestParseErrorDoesNotKillSession(t *testing.T) {
	got := runSession(t,
		"var = ;",
		"print \"still here\";",
	)
	if !strings.Contains(got, "Error") {
		t.Errorf("diagnostic not shown: %q", got)
	}
	if !strings.Contains(got, "still here\n") {
		t.Errorf("session died after a parse error: %q", got)
	}
}

func TestRuntimeErrorDoesNotKillSession(t *testing.T) {
	got := runSession(t,
		"print missing;",
		"print \"still here\";",
	)
	if !strings.Contains(got, "Undefined variable 'missing'.") {
		t.Errorf("runtime error not shown: %q", got)
	}
	if !strings.Contains(got, "still here\n") {
		t.Errorf("session died after a runtime error: %q", got)
	}
}

func TestFunctionSurvivesAcrossLines(t *testing.T) {
	got := runSession(t,
		"fun double(n) { return n * 2; }",
		"double(21)",
	)
	if !strings.Contains(got, "42\n") {
		t.Errorf("function not callable on a later line: %q", got)
	}
}

func TestBlankLinesAreIgnored(t *testing.T) {
	got := runSession(t, "", "   ", "print 1;")
	if !strings.Contains(got, "1\n") {
		t.Errorf("session mishandled blank lines: %q", got)
	}
}

func TestSemicolonIsOptional(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"1 + 1", "2\n"},
		{"1 + 1;", "2\n"},
		{"if (true) { print 9; }", "9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := runSession(t, tt.line); !strings.Contains(got, tt.expected) {
				t.Errorf("got %q, want it to contain %q", got, tt.expected)
			}
		})
	}
}
