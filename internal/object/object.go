package object

import (
	"fmt"
	"strconv"
	"strings"

	"gecko/internal/ast"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"

	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	ERROR_OBJ    = "ERROR"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
)

type ObjectType string

// Object is the closed dynamic value domain: nil, boolean, number, string
// and the two callable kinds. RETURN_VALUE and ERROR are evaluator-internal
// signals threaded through the same type so composite statements can forward
// them without a separate channel.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// Inspect renders integral doubles without a trailing ".0".
func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Function is a user-declared callable: parameter list, body, and the
// environment that was active at the declaration site. Every invocation
// parents its fresh environment at Env, never at the caller's, which is what
// makes scoping lexical.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Name + ">" }

type BuiltinFunction func(args ...Object) Object

// Builtin is a native function implemented in Go and registered into the
// root environment.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<native fn>" }

// ReturnValue wraps the result of a return statement while it unwinds to the
// enclosing call boundary. It must never be confused with an Error: return
// is control flow, not failure.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error is a runtime failure. Once produced it propagates out of every
// enclosing block and loop; only the driver consumes it. Line is the
// offending token's source line, 0 when raised inside a native function
// before the call site stamps it.
type Error struct {
	Message string
	Line    int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Line)
}

// Equals implements coercion-free equality over the value domain: values of
// different kinds are never equal, nil equals only nil, and callables
// compare by identity.
func Equals(a, b Object) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *Nil:
		return true
	case *Boolean:
		return av.Value == b.(*Boolean).Value
	case *Number:
		return av.Value == b.(*Number).Value
	case *String:
		return av.Value == b.(*String).Value
	default:
		return a == b
	}
}

// FormatTable renders rows of string cells as a compact tab-separated table,
// used by the SQL natives.
func FormatTable(header []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(header, "\t"))
	for _, row := range rows {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, "\t"))
	}
	return sb.String()
}
