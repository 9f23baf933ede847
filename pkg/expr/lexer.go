package expr

// tokenizer scans source text into a flat token sequence. Operator symbols
// are matched greedily against the live registry, so the set of scannable
// operators follows whatever the host has registered.
type tokenizer struct {
	input string
	pos   int
	reg   *Registry

	tokens []Token
}

func newTokenizer(input string, reg *Registry) *tokenizer {
	return &tokenizer{input: input, reg: reg}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool { return isLetter(ch) || isDigit(ch) }

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && isWhitespace(t.input[t.pos]) {
		t.pos++
	}
}

func (t *tokenizer) peek() byte {
	if t.pos+1 < len(t.input) {
		return t.input[t.pos+1]
	}
	return 0
}

// prev returns the last emitted token, or nil.
func (t *tokenizer) prev() *Token {
	if len(t.tokens) == 0 {
		return nil
	}
	return &t.tokens[len(t.tokens)-1]
}

// tokenize scans the whole input.
func (t *tokenizer) tokenize() ([]Token, error) {
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return t.tokens, nil
		}
		if err := t.next(); err != nil {
			return nil, err
		}
	}
}

func (t *tokenizer) next() error {
	ch := t.input[t.pos]

	switch {
	case isDigit(ch) || (ch == '.' && isDigit(t.peek())):
		return t.scanNumber()
	case ch == '\'':
		return t.scanString()
	case isLetter(ch):
		t.scanIdentifier()
		return nil
	case ch == '(':
		t.emit(Token{Surface: "(", Type: TokenOpenParen, Pos: t.pos})
		t.pos++
		return nil
	case ch == ')':
		t.emit(Token{Surface: ")", Type: TokenCloseParen, Pos: t.pos})
		t.pos++
		return nil
	case ch == ',':
		t.emit(Token{Surface: ",", Type: TokenComma, Pos: t.pos})
		t.pos++
		return nil
	default:
		t.scanOperator()
		return nil
	}
}

func (t *tokenizer) emit(tok Token) {
	t.tokens = append(t.tokens, tok)
}

// scanNumber reads a decimal or hexadecimal literal. Decimal literals allow
// at most one decimal point and one optionally signed exponent.
func (t *tokenizer) scanNumber() error {
	start := t.pos

	if t.input[t.pos] == '0' && (t.peek() == 'x' || t.peek() == 'X') {
		t.pos += 2
		digits := 0
		for t.pos < len(t.input) && isHexDigit(t.input[t.pos]) {
			t.pos++
			digits++
		}
		if digits == 0 {
			return NewLexError(start, "malformed hexadecimal literal %q", t.input[start:t.pos])
		}
		t.emit(Token{Surface: t.input[start:t.pos], Type: TokenHexLiteral, Pos: start})
		return nil
	}

	seenPoint := false
	seenExp := false
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		switch {
		case isDigit(ch):
			t.pos++
		case ch == '.' && !seenExp:
			if seenPoint {
				return NewLexError(start, "malformed numeric literal: second decimal point")
			}
			seenPoint = true
			t.pos++
		case (ch == 'e' || ch == 'E') && !seenExp:
			seenExp = true
			t.pos++
			if t.pos < len(t.input) && (t.input[t.pos] == '+' || t.input[t.pos] == '-') {
				t.pos++
			}
			if t.pos >= len(t.input) || !isDigit(t.input[t.pos]) {
				return NewLexError(start, "malformed numeric literal: missing exponent digits")
			}
		default:
			t.emit(Token{Surface: t.input[start:t.pos], Type: TokenLiteral, Pos: start})
			return nil
		}
	}
	t.emit(Token{Surface: t.input[start:t.pos], Type: TokenLiteral, Pos: start})
	return nil
}

// scanString reads a single-quoted string literal. No escape processing is
// performed. A quoted literal directly following another string literal is
// a continuation: its content is appended to the previous token, which is
// what makes multi-line text via adjacent quoting work.
func (t *tokenizer) scanString() error {
	start := t.pos
	t.pos++ // opening quote

	content := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '\'' {
		t.pos++
	}
	if t.pos >= len(t.input) {
		return NewLexError(start, "unterminated string literal")
	}
	text := t.input[content:t.pos]
	t.pos++ // closing quote

	if p := t.prev(); p != nil && p.Type == TokenString {
		p.Surface += text
		return nil
	}
	t.emit(Token{Surface: text, Type: TokenString, Pos: start})
	return nil
}

// scanIdentifier reads a variable or function-call name. An identifier is a
// function call when the next non-blank character is an open paren.
func (t *tokenizer) scanIdentifier() {
	start := t.pos
	for t.pos < len(t.input) && isIdentPart(t.input[t.pos]) {
		t.pos++
	}
	surface := t.input[start:t.pos]

	// blanks between a function name and its open paren are allowed
	j := t.pos
	for j < len(t.input) && isWhitespace(t.input[j]) {
		j++
	}
	if j < len(t.input) && t.input[j] == '(' {
		t.pos = j
		t.emit(Token{Surface: surface, Type: TokenFunction, Pos: start})
		return
	}
	t.emit(Token{Surface: surface, Type: TokenVariable, Pos: start})
}

// scanOperator greedily consumes the longest run of operator characters
// that is a registered symbol. If no prefix of the run is registered, the
// whole run is emitted and the parser reports it as unknown.
func (t *tokenizer) scanOperator() {
	start := t.pos
	validUntil := -1
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isIdentPart(ch) || isWhitespace(ch) || ch == '(' || ch == ')' || ch == ',' || ch == '\'' {
			break
		}
		t.pos++
		if t.reg.HasOperator(t.input[start:t.pos]) {
			validUntil = t.pos
		}
	}
	surface := t.input[start:t.pos]
	if validUntil != -1 {
		surface = t.input[start:validUntil]
		t.pos = validUntil
	}

	tok := Token{Surface: surface, Type: TokenOperator, Pos: start}
	if p := t.prev(); p == nil || p.Type == TokenOperator || p.Type == TokenOpenParen || p.Type == TokenComma {
		tok.Surface += "u"
		tok.Type = TokenUnaryOperator
	}
	t.emit(tok)
}
