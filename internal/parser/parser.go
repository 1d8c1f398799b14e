package parser

import (
	"errors"
	"fmt"

	"gecko/internal/ast"
	"gecko/internal/token"
)

// Parser consumes a scanned token sequence and builds the syntax tree with
// one production per precedence level, lowest to highest:
//
//	assignment -> or -> and -> equality -> comparison -> term -> factor -> unary -> call -> primary
//
// A grammar mismatch inside a declaration is reported, then recovered by
// discarding tokens up to the next likely statement boundary, so one broken
// statement yields one diagnostic and parsing continues. Errors never escape
// ParseProgram; callers check Errors() and must not evaluate a program that
// parsed with any.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []string
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.isAtEnd() {
		if stmt := p.parseDeclaration(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program
}

// parseDeclaration is the error-recovery boundary: every parse failure below
// it is caught here, already recorded, and answered with synchronization.
func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement
	var err error
	switch {
	case p.match(token.VAR):
		stmt, err = p.parseVarDeclaration()
	case p.match(token.FUNCTION):
		stmt, err = p.parseFunctionDeclaration()
	default:
		stmt, err = p.parseStatement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	varTok := p.previous()
	name, err := p.consume(token.IDENT, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var value ast.Expression
	if p.match(token.ASSIGN) {
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStatement{
		Token: varTok,
		Name:  &ast.Identifier{Token: name, Value: name.Lexeme},
		Value: value,
	}, nil
}

func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	funTok := p.previous()
	name, err := p.consume(token.IDENT, "Expect function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN, "Expect '(' after function name."); err != nil {
		return nil, err
	}

	var params []*ast.Identifier
	if !p.check(token.RPAREN) {
		for {
			if len(params) >= 255 {
				// reported but not fatal, matching call-site arity limits
				p.errorAt(p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(token.IDENT, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.Identifier{Token: param, Value: param.Lexeme})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "Expect '{' before function body."); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStatement{
		Token:      funTok,
		Name:       &ast.Identifier{Token: name, Value: name.Lexeme},
		Parameters: params,
		Body:       body,
	}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.match(token.FOR):
		return p.parseForStatement()
	case p.match(token.IF):
		return p.parseIfStatement()
	case p.match(token.PRINT):
		return p.parsePrintStatement()
	case p.match(token.RETURN):
		return p.parseReturnStatement()
	case p.match(token.WHILE):
		return p.parseWhileStatement()
	case p.match(token.LBRACE):
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return block, nil
	default:
		return p.parseExpressionStatement()
	}
}

// parseForStatement desugars `for` into while at parse time: the initializer
// runs once in an enclosing block, a missing condition becomes `true`, and
// the increment is appended to the loop body.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	forTok := p.previous()
	if _, err := p.consume(token.LPAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var initializer ast.Statement
	var err error
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer, err = p.parseVarDeclaration()
	default:
		initializer, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition ast.Expression
	if !p.check(token.SEMICOLON) {
		if condition, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !p.check(token.RPAREN) {
		if increment, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RPAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: forTok,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: forTok, Expression: increment},
			},
		}
	}
	if condition == nil {
		condition = &ast.Boolean{
			Token: token.Token{Type: token.TRUE, Lexeme: "true", Line: forTok.Line},
			Value: true,
		}
	}
	var loop ast.Statement = &ast.WhileStatement{Token: forTok, Condition: condition, Body: body}
	if initializer != nil {
		loop = &ast.BlockStatement{Token: forTok, Statements: []ast.Statement{initializer, loop}}
	}
	return loop, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	ifTok := p.previous()
	if _, err := p.consume(token.LPAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Statement
	if p.match(token.ELSE) {
		if elseBranch, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Token: ifTok, Condition: condition, Then: then, Else: elseBranch}, nil
}

func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	printTok := p.previous()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStatement{Token: printTok, Value: value}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	returnTok := p.previous()
	var value ast.Expression
	var err error
	if !p.check(token.SEMICOLON) {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Token: returnTok, ReturnValue: value}, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	whileTok := p.previous()
	if _, err := p.consume(token.LPAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: whileTok, Condition: condition, Body: body}, nil
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	lbrace := p.previous()
	block := &ast.BlockStatement{Token: lbrace}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.parseDeclaration(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	if _, err := p.consume(token.RBRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	first := p.peek()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Token: first, Expression: expr}, nil
}

// ----- expression precedence cascade -----

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

// parseAssignment is right-recursive: `a = b = c` assigns right to left. Any
// left-hand side that is not a bare variable reference is reported as an
// invalid target, but the already-parsed expression is kept so parsing can
// continue without recovery.
func (p *Parser) parseAssignment() (ast.Expression, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.match(token.ASSIGN) {
		equals := p.previous()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if name, ok := expr.(*ast.Identifier); ok {
			return &ast.AssignExpression{Token: equals, Name: name, Value: value}, nil
		}
		p.errorAt(equals, "Invalid assignment target.")
	}
	return expr, nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	expr, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR) {
		op := p.previous()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		expr = &ast.LogicalExpression{Token: op, Left: expr, Operator: op.Lexeme, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND) {
		op := p.previous()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &ast.LogicalExpression{Token: op, Left: expr, Operator: op.Lexeme, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseComparison, token.NOT_EQ, token.EQ)
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseTerm, token.GT, token.GT_EQ, token.LT, token.LT_EQ)
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseFactor, token.MINUS, token.PLUS)
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseUnary, token.SLASH, token.ASTERISK)
}

// parseBinaryLevel implements one left-associative binary precedence level,
// looping while its own operator set matches.
func (p *Parser) parseBinaryLevel(operand func() (ast.Expression, error), operators ...token.TokenType) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(operators...) {
		op := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &ast.InfixExpression{Token: op, Left: expr, Operator: op.Lexeme, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.PrefixExpression{Token: op, Operator: op.Lexeme, Right: right}, nil
	}
	return p.parseCall()
}

func (p *Parser) parseCall() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.match(token.LPAREN) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	lparen := p.previous()
	var args []ast.Expression
	if !p.check(token.RPAREN) {
		for {
			if len(args) >= 255 {
				p.errorAt(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "Expect ')' after arguments."); err != nil {
		return nil, err
	}
	return &ast.CallExpression{Token: lparen, Callee: callee, Arguments: args}, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch {
	case p.match(token.FALSE):
		return &ast.Boolean{Token: p.previous(), Value: false}, nil
	case p.match(token.TRUE):
		return &ast.Boolean{Token: p.previous(), Value: true}, nil
	case p.match(token.NIL):
		return &ast.Nil{Token: p.previous()}, nil
	case p.match(token.NUMBER):
		tok := p.previous()
		value, _ := tok.Literal.(float64)
		return &ast.NumberLiteral{Token: tok, Value: value}, nil
	case p.match(token.STRING):
		tok := p.previous()
		value, _ := tok.Literal.(string)
		return &ast.StringLiteral{Token: tok, Value: value}, nil
	case p.match(token.IDENT):
		tok := p.previous()
		return &ast.Identifier{Token: tok, Value: tok.Lexeme}, nil
	case p.match(token.LPAREN):
		lparen := p.previous()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Token: lparen, Expression: expr}, nil
	default:
		return nil, p.errorAt(p.peek(), "Expect expression.")
	}
}

// ----- token plumbing -----

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.TokenType, message string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

// errorAt records a diagnostic for tok and returns it as the error value the
// cascade unwinds with.
func (p *Parser) errorAt(tok token.Token, message string) error {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	msg := fmt.Sprintf("[line %d] Error%s: %s", tok.Line, where, message)
	p.errors = append(p.errors, msg)
	return errors.New(msg)
}

// synchronize discards tokens until just past a ';' or just before a token
// that starts a statement, bounding the cascade from one broken declaration.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case token.CLASS, token.FUNCTION, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
