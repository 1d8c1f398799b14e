package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // count, total, x, y, ...
	NUMBER = "NUMBER" // 1343456, 3.14
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	DOT       = "."
	COMMA     = ","
	SEMICOLON = ";"

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"

	// Keywords
	AND      = "AND"
	CLASS    = "CLASS"
	ELSE     = "ELSE"
	FALSE    = "FALSE"
	FOR      = "FOR"
	FUNCTION = "FUNCTION"
	IF       = "IF"
	NIL      = "NIL"
	OR       = "OR"
	PRINT    = "PRINT"
	RETURN   = "RETURN"
	SUPER    = "SUPER"
	THIS     = "THIS"
	TRUE     = "TRUE"
	VAR      = "VAR"
	WHILE    = "WHILE"
)

// Token is a classified unit of lexical input. Lexeme holds the exact source
// substring the token was scanned from; Literal holds the decoded value for
// NUMBER (float64) and STRING (string) tokens and is nil otherwise. Line is
// the 1-based source line, used for diagnostics.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

var keywords = map[string]TokenType{
	// constants
	"nil":   NIL,
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"fun":   FUNCTION,
	"var":   VAR,
	"class": CLASS,

	// flow control
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"while":  WHILE,
	"return": RETURN,

	// logic
	"and": AND,
	"or":  OR,

	"print": PRINT,
	"super": SUPER,
	"this":  THIS,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
