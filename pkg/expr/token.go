// Package expr implements the expression engine: a tokenizer, a
// shunting-yard parser producing RPN, and a lazy stack-based evaluator over
// an extensible registry of operators and functions.
package expr

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Literals
	TokenLiteral    TokenType = iota // decimal numeric literal
	TokenHexLiteral                  // 0x-prefixed integer literal
	TokenString                      // single-quoted string literal

	// Identifiers
	TokenVariable // identifier read as a variable
	TokenFunction // identifier immediately followed by '('

	// Operators
	TokenOperator      // binary operator
	TokenUnaryOperator // prefix operator, surface carries the "u" suffix

	// Structure
	TokenOpenParen  // (
	TokenCloseParen // )
	TokenComma      // ,
)

// Token is a single lexical token. Tokens are immutable once produced.
type Token struct {
	Surface string // raw text; unary operators carry a trailing "u"
	Type    TokenType
	Pos     int // byte offset in the source text
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenLiteral:
		return "LITERAL"
	case TokenHexLiteral:
		return "HEX_LITERAL"
	case TokenString:
		return "STRING"
	case TokenVariable:
		return "VARIABLE"
	case TokenFunction:
		return "FUNCTION"
	case TokenOperator:
		return "OPERATOR"
	case TokenUnaryOperator:
		return "UNARY_OPERATOR"
	case TokenOpenParen:
		return "OPEN_PAREN"
	case TokenCloseParen:
		return "CLOSE_PAREN"
	case TokenComma:
		return "COMMA"
	default:
		return "UNKNOWN"
	}
}
