package evaluator

import (
	"fmt"
	"io"
	"log/slog"

	"gecko/internal/ast"
	"gecko/internal/object"
)

var (
	NIL   = &object.Nil{}
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
)

// Evaluator walks the syntax tree against a persistent root environment.
// Execution is strictly sequential and synchronous; printing and variable
// mutation are the only observable effects.
type Evaluator struct {
	env *object.Environment
	out io.Writer
}

// New creates an evaluator with a fresh root environment carrying the native
// functions.
func New(out io.Writer) *Evaluator {
	env := object.NewEnvironment()
	for name, builtin := range builtins {
		env.Define(name, builtin)
	}
	return &Evaluator{env: env, out: out}
}

// Interpret executes each top-level statement in order. The first runtime
// error halts the remaining statements and is returned to the caller; the
// tree itself is never mutated.
func (e *Evaluator) Interpret(program *ast.Program) object.Object {
	return e.Eval(program)
}

func (e *Evaluator) Eval(node ast.Node) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.PrintStatement:
		val := e.Eval(node.Value)
		if isError(val) {
			return val
		}
		fmt.Fprintln(e.out, val.Inspect())
		return nil

	case *ast.VarStatement:
		var val object.Object = NIL
		if node.Value != nil {
			val = e.Eval(node.Value)
			if isError(val) {
				return val
			}
		}
		e.env.Define(node.Name.Value, val)
		return nil

	case *ast.IfStatement:
		return e.evalIfStatement(node)

	case *ast.WhileStatement:
		return e.evalWhileStatement(node)

	case *ast.FunctionStatement:
		fn := &object.Function{
			Name:       node.Name.Value,
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        e.env,
		}
		e.env.Define(node.Name.Value, fn)
		return nil

	case *ast.ReturnStatement:
		var val object.Object = NIL
		if node.ReturnValue != nil {
			val = e.Eval(node.ReturnValue)
			if isError(val) {
				return val
			}
		}
		return &object.ReturnValue{Value: val}

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.Nil:
		return NIL

	case *ast.Grouping:
		return e.Eval(node.Expression)

	case *ast.Identifier:
		if val, ok := e.env.Get(node.Value); ok {
			return val
		}
		return newError(node.Token.Line, "Undefined variable '%s'.", node.Value)

	case *ast.AssignExpression:
		val := e.Eval(node.Value)
		if isError(val) {
			return val
		}
		if !e.env.Assign(node.Name.Value, val) {
			return newError(node.Name.Token.Line, "Undefined variable '%s'.", node.Name.Value)
		}
		return val

	case *ast.PrefixExpression:
		right := e.Eval(node.Right)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpression(node, right)

	case *ast.InfixExpression:
		left := e.Eval(node.Left)
		if isError(left) {
			return left
		}
		right := e.Eval(node.Right)
		if isError(right) {
			return right
		}
		return e.evalInfixExpression(node, left, right)

	case *ast.LogicalExpression:
		return e.evalLogicalExpression(node)

	case *ast.CallExpression:
		return e.evalCallExpression(node)
	}

	return NIL
}

func (e *Evaluator) evalProgram(program *ast.Program) object.Object {
	var result object.Object
	for _, stmt := range program.Statements {
		result = e.Eval(stmt)
		switch result := result.(type) {
		case *object.ReturnValue:
			// a stray top-level return halts the program with its value
			return result.Value
		case *object.Error:
			slog.Debug("halting on runtime error", slog.String("error", result.Message))
			return result
		}
	}
	return result
}

// evalBlockStatement pushes one child environment for the block and restores
// the prior one on every exit path, including return unwinds and propagated
// errors. Return and error results are forwarded unwrapped so they keep
// travelling to the call boundary or the driver.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement) object.Object {
	prev := e.env
	e.env = object.NewEnclosedEnvironment(prev)
	defer func() { e.env = prev }()

	var result object.Object
	for _, stmt := range block.Statements {
		result = e.Eval(stmt)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
	return result
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement) object.Object {
	condition := e.Eval(node.Condition)
	if isError(condition) {
		return condition
	}
	if isTruthy(condition) {
		return e.Eval(node.Then)
	}
	if node.Else != nil {
		return e.Eval(node.Else)
	}
	return nil
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement) object.Object {
	for {
		condition := e.Eval(node.Condition)
		if isError(condition) {
			return condition
		}
		if !isTruthy(condition) {
			return nil
		}
		result := e.Eval(node.Body)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, right object.Object) object.Object {
	switch node.Operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		num, ok := right.(*object.Number)
		if !ok {
			return newError(node.Token.Line, "Operand must be a number.")
		}
		return &object.Number{Value: -num.Value}
	default:
		return newError(node.Token.Line, "unknown operator: %s%s", node.Operator, right.Type())
	}
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, left, right object.Object) object.Object {
	op := node.Operator
	line := node.Token.Line

	// equality is defined over all value kinds, without coercion
	switch op {
	case "==":
		return nativeBoolToBooleanObject(object.Equals(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!object.Equals(left, right))
	}

	if l, ok := left.(*object.Number); ok {
		if r, ok := right.(*object.Number); ok {
			return evalNumberInfixExpression(op, l, r, line)
		}
	}
	if op == "+" {
		if l, ok := left.(*object.String); ok {
			if r, ok := right.(*object.String); ok {
				return &object.String{Value: l.Value + r.Value}
			}
		}
		return newError(line, "Operands must be two numbers or two strings.")
	}
	return newError(line, "Operands must be numbers.")
}

func evalNumberInfixExpression(op string, left, right *object.Number, line int) object.Object {
	l, r := left.Value, right.Value
	switch op {
	case "+":
		return &object.Number{Value: l + r}
	case "-":
		return &object.Number{Value: l - r}
	case "*":
		return &object.Number{Value: l * r}
	case "/":
		// host floating-point rules apply; division by zero yields Inf/NaN
		return &object.Number{Value: l / r}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case "<=":
		return nativeBoolToBooleanObject(l <= r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case ">=":
		return nativeBoolToBooleanObject(l >= r)
	default:
		return newError(line, "unknown operator: %s", op)
	}
}

// evalLogicalExpression short-circuits: the right operand runs only when the
// left operand's truthiness does not decide the result, and the value is
// whichever operand decided it, not a coerced boolean.
func (e *Evaluator) evalLogicalExpression(node *ast.LogicalExpression) object.Object {
	left := e.Eval(node.Left)
	if isError(left) {
		return left
	}
	if node.Operator == "or" {
		if isTruthy(left) {
			return left
		}
	} else {
		if !isTruthy(left) {
			return left
		}
	}
	return e.Eval(node.Right)
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression) object.Object {
	callee := e.Eval(node.Callee)
	if isError(callee) {
		return callee
	}
	args := make([]object.Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		arg := e.Eval(a)
		if isError(arg) {
			return arg
		}
		args = append(args, arg)
	}
	return e.applyFunction(node.Token.Line, callee, args)
}

// applyFunction invokes a callable. A user function gets one fresh
// environment parented at its captured closure environment, never at the
// caller's; a return unwinds exactly to this boundary and is unwrapped here.
func (e *Evaluator) applyFunction(line int, fn object.Object, args []object.Object) object.Object {
	switch fn := fn.(type) {
	case *object.Function:
		if len(args) != len(fn.Parameters) {
			return newError(line, "Expected %d arguments but got %d.", len(fn.Parameters), len(args))
		}
		env := object.NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Parameters {
			env.Define(param.Value, args[i])
		}

		prev := e.env
		e.env = env
		defer func() { e.env = prev }()

		for _, stmt := range fn.Body.Statements {
			result := e.Eval(stmt)
			if result != nil {
				if rv, ok := result.(*object.ReturnValue); ok {
					return rv.Value
				}
				if result.Type() == object.ERROR_OBJ {
					return result
				}
			}
		}
		return NIL

	case *object.Builtin:
		result := fn.Fn(args...)
		if err, ok := result.(*object.Error); ok && err.Line == 0 {
			err.Line = line
		}
		return result

	default:
		return newError(line, "Can only call functions and classes.")
	}
}

func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Nil:
		return false
	case *object.Boolean:
		return obj.Value
	default:
		return true
	}
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func newError(line int, format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...), Line: line}
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}
