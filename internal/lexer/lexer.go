package lexer

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"gecko/internal/token"
)

// Lexer performs a single left-to-right pass over the source, handing out one
// token per NextToken call. Lexical errors do not stop the pass; they are
// recorded and the offending input is dropped, so callers must consult
// Errors() before trusting the token stream.
type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int  // 1-based line of the current rune

	errors []string
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// Errors returns the lexical diagnostics accumulated so far, one line each.
func (l *Lexer) Errors() []string {
	return l.errors
}

// ScanTokens drains the lexer into a slice terminated by the EOF token.
func (l *Lexer) ScanTokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespace()

		switch l.ch {
		case '(':
			return l.charToken(token.LPAREN)
		case ')':
			return l.charToken(token.RPAREN)
		case '{':
			return l.charToken(token.LBRACE)
		case '}':
			return l.charToken(token.RBRACE)
		case ',':
			return l.charToken(token.COMMA)
		case '.':
			return l.charToken(token.DOT)
		case ';':
			return l.charToken(token.SEMICOLON)
		case '+':
			return l.charToken(token.PLUS)
		case '-':
			return l.charToken(token.MINUS)
		case '*':
			return l.charToken(token.ASTERISK)
		case '/':
			// line comments are consumed by skipWhitespace
			return l.charToken(token.SLASH)
		case '!':
			return l.compoundToken(token.BANG, '=', token.NOT_EQ)
		case '=':
			return l.compoundToken(token.ASSIGN, '=', token.EQ)
		case '<':
			return l.compoundToken(token.LT, '=', token.LT_EQ)
		case '>':
			return l.compoundToken(token.GT, '=', token.GT_EQ)
		case '"':
			tok, ok := l.readString()
			if !ok {
				continue
			}
			return tok
		case 0:
			return token.Token{Type: token.EOF, Lexeme: "", Line: l.line}
		default:
			if isLetter(l.ch) {
				return l.readIdentifier()
			}
			if isDigit(l.ch) {
				return l.readNumber()
			}
			l.errorf(l.line, "Unexpected character.")
			l.readChar()
		}
	}
}

// charToken emits a single-character token and advances past it.
func (l *Lexer) charToken(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Lexeme: string(l.ch), Line: l.line}
	l.readChar()
	return tok
}

// compoundToken emits the two-character token t1 when the next rune is ch1,
// falling back to the one-character token t otherwise.
func (l *Lexer) compoundToken(t token.TokenType, ch1 rune, t1 token.TokenType) token.Token {
	line := l.line
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		lexeme := string(first) + string(l.ch)
		l.readChar()
		return token.Token{Type: t1, Lexeme: lexeme, Line: line}
	}
	tok := token.Token{Type: t, Lexeme: string(l.ch), Line: line}
	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.line++
			l.readChar()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readString scans a double-quoted literal. Strings may span lines. An
// unterminated string records a diagnostic and reports ok=false; the pass
// continues at end of input.
func (l *Lexer) readString() (token.Token, bool) {
	start := l.position
	l.readChar() // consume the opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\n' {
			l.line++
		}
		l.readChar()
	}
	if l.ch == 0 {
		l.errorf(l.line, "Unterminated string.")
		return token.Token{}, false
	}
	value := l.input[start+1 : l.position]
	line := l.line
	l.readChar() // consume the closing quote
	return token.Token{
		Type:    token.STRING,
		Lexeme:  l.input[start:l.position],
		Literal: value,
		Line:    line,
	}, true
}

// readNumber scans a maximal run of digits with an optional fraction. The dot
// is only consumed when a digit follows it, so `123.` lexes as NUMBER DOT.
func (l *Lexer) readNumber() token.Token {
	start := l.position
	line := l.line
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		l.errorf(line, fmt.Sprintf("Invalid number literal '%s'.", lexeme))
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: value, Line: line}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	line := l.line
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Line: line}
}

func (l *Lexer) errorf(line int, message string) {
	l.errors = append(l.errors, fmt.Sprintf("[line %d] Error: %s", line, message))
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
