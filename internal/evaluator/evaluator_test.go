package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"gecko/internal/lexer"
	"gecko/internal/object"
	"gecko/internal/parser"
)

// run executes a source string against a fresh evaluator and returns the
// final result alongside everything print wrote.
func run(t *testing.T, input string) (object.Object, string) {
	t.Helper()
	l := lexer.New(input)
	tokens := l.ScanTokens()
	if errs := l.Errors(); len(errs) != 0 {
		t.Fatalf("lexer errors: %v", errs)
	}
	p := parser.New(tokens)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	var out bytes.Buffer
	result := New(&out).Interpret(program)
	return result, out.String()
}

func expectOutput(t *testing.T, input, expected string) {
	t.Helper()
	result, out := run(t, input)
	if err, ok := result.(*object.Error); ok {
		t.Fatalf("unexpected runtime error: %s", err.Inspect())
	}
	if out != expected {
		t.Errorf("wrong output for %q:\ngot  %q\nwant %q", input, out, expected)
	}
}

func expectRuntimeError(t *testing.T, input, message string) *object.Error {
	t.Helper()
	result, _ := run(t, input)
	err, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected a runtime error for %q, got %T", input, result)
	}
	if err.Message != message {
		t.Errorf("wrong error for %q:\ngot  %q\nwant %q", input, err.Message, message)
	}
	return err
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 1 + 2;", "3\n"},
		{"print 5 - 8;", "-3\n"},
		{"print 4 * 2.5;", "10\n"},
		{"print 7 / 2;", "3.5\n"},
		{"print 1 + 2 * 3;", "7\n"},
		{"print (1 + 2) * 3;", "9\n"},
		{"print -4 + 2;", "-2\n"},
		{"print 0.1 + 0.2;", "0.30000000000000004\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectOutput(t, tt.input, tt.expected)
		})
	}
}

func TestPrintRendering(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print nil;", "nil\n"},
		{"print true;", "true\n"},
		{"print !nil;", "true\n"},
		{"print \"hi\";", "hi\n"},
		{"print 3.0;", "3\n"},
		{"fun f() {} print f;", "<fn f>\n"},
		{"print clock;", "<native fn>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectOutput(t, tt.input, tt.expected)
		})
	}
}

func TestStringConcatenation(t *testing.T) {
	expectOutput(t, `print "foo" + "bar";`, "foobar\n")
}

func TestComparisonAndEquality(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print 1 < 2;", "true\n"},
		{"print 2 <= 2;", "true\n"},
		{"print 1 > 2;", "false\n"},
		{"print 2 >= 3;", "false\n"},
		{"print 1 == 1;", "true\n"},
		{"print 1 != 1;", "false\n"},
		{"print \"a\" == \"a\";", "true\n"},
		{"print 1 == \"1\";", "false\n"},
		{"print nil == nil;", "true\n"},
		{"print nil == false;", "false\n"},
		{"print true != 1;", "true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectOutput(t, tt.input, tt.expected)
		})
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"if (nil) print \"t\"; else print \"f\";", "f\n"},
		{"if (false) print \"t\"; else print \"f\";", "f\n"},
		{"if (0) print \"t\"; else print \"f\";", "t\n"},
		{"if (\"\") print \"t\"; else print \"f\";", "t\n"},
		{"if (true) print \"t\"; else print \"f\";", "t\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectOutput(t, tt.input, tt.expected)
		})
	}
}

func TestLogicalOperandValues(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"print \"hi\" or 2;", "hi\n"},
		{"print nil or \"yes\";", "yes\n"},
		{"print nil or false;", "false\n"},
		{"print nil and \"no\";", "nil\n"},
		{"print 1 and 2;", "2\n"},
		{"print false and 1;", "false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectOutput(t, tt.input, tt.expected)
		})
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	input := `
var calls = 0;
fun probe() { calls = calls + 1; return true; }
var a = false and probe();
var b = true or probe();
print calls;
probe() and probe();
print calls;
`
	expectOutput(t, input, "0\n2\n")
}

func TestVariablesAndAssignment(t *testing.T) {
	input := `
var x = 1;
var y;
print y;
x = x + 1;
print x;
print x = 10;
`
	expectOutput(t, input, "nil\n2\n10\n")
}

func TestBlockScoping(t *testing.T) {
	input := `
var x = "outer";
{
  var x = "inner";
  print x;
}
print x;
`
	expectOutput(t, input, "inner\nouter\n")
}

func TestAssignmentReachesEnclosingScope(t *testing.T) {
	input := `
var x = 1;
{
  x = 2;
}
print x;
`
	expectOutput(t, input, "2\n")
}

func TestWhileLoop(t *testing.T) {
	input := `
var i = 0;
while (i < 3) {
  print i;
  i = i + 1;
}
`
	expectOutput(t, input, "0\n1\n2\n")
}

func TestForLoop(t *testing.T) {
	expectOutput(t, "for (var i = 0; i < 3; i = i + 1) print i;", "0\n1\n2\n")
}

func TestForLoopVariableScoped(t *testing.T) {
	_, out := run(t, "for (var i = 0; i < 1; i = i + 1) print i;\nprint i;")
	if !strings.Contains(out, "0\n") {
		t.Errorf("loop did not run: %q", out)
	}
	result, _ := run(t, "for (var i = 0; i < 1; i = i + 1) {}\nprint i;")
	err, ok := result.(*object.Error)
	if !ok || err.Message != "Undefined variable 'i'." {
		t.Errorf("loop variable leaked out of the desugared block: %v", result)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fun add(a, b) { return a + b; } print add(1, 2);", "3\n"},
		{"fun f() {} print f();", "nil\n"},
		{"fun f() { return; } print f();", "nil\n"},
		{"fun f() { 1 + 1; } print f();", "nil\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectOutput(t, tt.input, tt.expected)
		})
	}
}

func TestReturnUnwindsThroughNestedStatements(t *testing.T) {
	input := `
fun find() {
  var i = 0;
  while (true) {
    if (i == 5) {
      return i;
    }
    i = i + 1;
  }
}
print find();
`
	expectOutput(t, input, "5\n")
}

func TestReturnStopsOuterFunctionOnly(t *testing.T) {
	input := `
fun inner() { return "from inner"; }
fun outer() {
  inner();
  return "from outer";
}
print outer();
`
	expectOutput(t, input, "from outer\n")
}

func TestRecursion(t *testing.T) {
	input := `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`
	expectOutput(t, input, "55\n")
}

func TestClosureCapturesDeclarationEnvironment(t *testing.T) {
	input := `
fun makeCounter() {
  var count = 0;
  fun increment() {
    count = count + 1;
    return count;
  }
  return increment;
}
var a = makeCounter();
var b = makeCounter();
print a();
print a();
print b();
`
	expectOutput(t, input, "1\n2\n1\n")
}

func TestClosuresShareOneEnvironment(t *testing.T) {
	input := `
var get;
var set;
fun make() {
  var value = 0;
  fun getter() { return value; }
  fun setter(v) { value = v; }
  get = getter;
  set = setter;
}
make();
set(42);
print get();
`
	expectOutput(t, input, "42\n")
}

func TestClosureSeesLaterGlobal(t *testing.T) {
	input := `
fun show() { print message; }
var message = "hello";
show();
`
	expectOutput(t, input, "hello\n")
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"print -\"a\";", "Operand must be a number."},
		{"print 1 < \"a\";", "Operands must be numbers."},
		{"print \"a\" - \"b\";", "Operands must be numbers."},
		{"print 1 + \"a\";", "Operands must be two numbers or two strings."},
		{"print missing;", "Undefined variable 'missing'."},
		{"ghost = 1;", "Undefined variable 'ghost'."},
		{"var f = 1; f();", "Can only call functions and classes."},
		{"fun f(a) {} f(1, 2);", "Expected 1 arguments but got 2."},
		{"fun f(a, b) {} f(1);", "Expected 2 arguments but got 1."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectRuntimeError(t, tt.input, tt.message)
		})
	}
}

func TestRuntimeErrorCarriesLine(t *testing.T) {
	err := expectRuntimeError(t, "var a = 1;\n\nprint a + \"x\";", "Operands must be two numbers or two strings.")
	if err.Line != 3 {
		t.Errorf("error line = %d, want 3", err.Line)
	}
	if got := err.Inspect(); got != "Operands must be two numbers or two strings.\n[line 3]" {
		t.Errorf("wrong rendering: %q", got)
	}
}

func TestRuntimeErrorHaltsRemainingStatements(t *testing.T) {
	input := `
print "before";
print missing;
print "after";
`
	result, out := run(t, input)
	if _, ok := result.(*object.Error); !ok {
		t.Fatalf("expected a runtime error, got %T", result)
	}
	if out != "before\n" {
		t.Errorf("statements after the failure still ran: %q", out)
	}
}

func TestErrorPropagatesOutOfLoopsAndCalls(t *testing.T) {
	input := `
fun boom() { return missing; }
var i = 0;
while (i < 3) {
  boom();
  i = i + 1;
}
`
	expectRuntimeError(t, input, "Undefined variable 'missing'.")
}

func TestDivisionByZero(t *testing.T) {
	expectOutput(t, "print 1 / 0;", "+Inf\n")
	expectOutput(t, "print 0 / 0;", "NaN\n")
}

func TestBuiltinClock(t *testing.T) {
	result, _ := run(t, "var t = clock() - clock(); t;")
	if err, ok := result.(*object.Error); ok {
		t.Fatalf("clock failed: %s", err.Inspect())
	}
	result, out := run(t, "print clock() >= 0;")
	if err, ok := result.(*object.Error); ok {
		t.Fatalf("clock failed: %s", err.Inspect())
	}
	if out != "true\n" {
		t.Errorf("clock did not return a positive number: %q", out)
	}
}

func TestBuiltinEnv(t *testing.T) {
	t.Setenv("GECKO_TEST_VALUE", "abc")
	expectOutput(t, `print env("GECKO_TEST_VALUE");`, "abc\n")
	expectOutput(t, `print env("GECKO_TEST_DEFINITELY_UNSET");`, "nil\n")
}

func TestBuiltinErrorIsStampedWithCallLine(t *testing.T) {
	result, _ := run(t, "\nclock(1);")
	err, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected a runtime error, got %T", result)
	}
	if err.Line != 2 {
		t.Errorf("builtin error line = %d, want 2", err.Line)
	}
}

func TestRootEnvironmentPersistsAcrossInterpretCalls(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)

	for _, src := range []string{"var x = 1;", "x = x + 1;", "print x;"} {
		l := lexer.New(src)
		p := parser.New(l.ScanTokens())
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) != 0 {
			t.Fatalf("parser errors: %v", errs)
		}
		if result := e.Interpret(program); isError(result) {
			t.Fatalf("unexpected error: %s", result.Inspect())
		}
	}
	if out.String() != "2\n" {
		t.Errorf("root environment did not persist: %q", out.String())
	}
}
