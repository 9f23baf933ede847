package expr

import "fmt"

// The engine reports three error kinds, all terminating the current
// evaluation: LexError from the tokenizer, SyntaxError from the parser and
// the RPN validation pass, and EvalError from forcing.

// LexError is a malformed literal or an unterminated string.
type LexError struct {
	Msg string
	Pos int // byte offset in the source text
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// NewLexError creates a LexError at the given offset.
func NewLexError(pos int, format string, args ...interface{}) *LexError {
	return &LexError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// SyntaxError is a structurally invalid token sequence: mismatched parens,
// misplaced commas, unknown operators or functions, or wrong arity detected
// at parse time.
type SyntaxError struct {
	Msg string
	Pos int // byte offset, or -1 when no single offset applies
}

func (e *SyntaxError) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// NewSyntaxError creates a SyntaxError at the given offset.
func NewSyntaxError(pos int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// EvalError is a runtime failure during forcing: an operand type mismatch,
// assignment to a non-variable, wrong arity to a variadic function, or an
// undefined numeric operation such as division by zero.
type EvalError struct {
	Msg string
	Pos int // byte offset, or -1 when no single offset applies
}

func (e *EvalError) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// NewEvalError creates an EvalError without a source offset.
func NewEvalError(format string, args ...interface{}) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...), Pos: -1}
}

// NewEvalErrorAt creates an EvalError at the given offset.
func NewEvalErrorAt(pos int, format string, args ...interface{}) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}
