package parser

import (
	"encoding/json"
	"reflect"

	"gecko/internal/ast"
)

// WalkAST recursively serializes a syntax tree into a machine-centric map
// structure, used by the -debug-ast flag to dump the parsed program.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"type":       "Program",
			"statements": statements,
		}

	case *ast.VarStatement:
		return map[string]interface{}{
			"type":  "VarStatement",
			"line":  n.Token.Line,
			"name":  n.Name.Value,
			"value": WalkAST(n.Value),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"expression": WalkAST(n.Expression),
		}

	case *ast.PrintStatement:
		return map[string]interface{}{
			"type":  "PrintStatement",
			"line":  n.Token.Line,
			"value": WalkAST(n.Value),
		}

	case *ast.BlockStatement:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"type":       "BlockStatement",
			"statements": statements,
		}

	case *ast.IfStatement:
		return map[string]interface{}{
			"type":      "IfStatement",
			"condition": WalkAST(n.Condition),
			"then":      WalkAST(n.Then),
			"else":      WalkAST(n.Else),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"type":      "WhileStatement",
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
		}

	case *ast.FunctionStatement:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Value
		}
		return map[string]interface{}{
			"type":       "FunctionStatement",
			"name":       n.Name.Value,
			"parameters": params,
			"body":       WalkAST(n.Body),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"type":        "ReturnStatement",
			"line":        n.Token.Line,
			"returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"type":  "Identifier",
			"value": n.Value,
		}

	case *ast.NumberLiteral:
		return map[string]interface{}{
			"type":  "NumberLiteral",
			"value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":  "StringLiteral",
			"value": n.Value,
		}

	case *ast.Boolean:
		return map[string]interface{}{
			"type":  "Boolean",
			"value": n.Value,
		}

	case *ast.Nil:
		return map[string]interface{}{
			"type": "Nil",
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"type":     "PrefixExpression",
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"type":     "InfixExpression",
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.LogicalExpression:
		return map[string]interface{}{
			"type":     "LogicalExpression",
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.Grouping:
		return map[string]interface{}{
			"type":       "Grouping",
			"expression": WalkAST(n.Expression),
		}

	case *ast.AssignExpression:
		return map[string]interface{}{
			"type":  "AssignExpression",
			"name":  n.Name.Value,
			"value": WalkAST(n.Value),
		}

	case *ast.CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"type":      "CallExpression",
			"line":      n.Token.Line,
			"callee":    WalkAST(n.Callee),
			"arguments": args,
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}

// DumpJSON renders the tree produced by WalkAST as indented JSON.
func DumpJSON(node ast.Node) ([]byte, error) {
	return json.MarshalIndent(WalkAST(node), "", "  ")
}
