package expr

// shuntingYard converts the token sequence to Reverse Polish Notation. It
// inserts implicit multiplication where an operand-class token directly
// precedes an open paren, and emits function open-parens into the output so
// the evaluator can locate each call's argument boundary.
func shuntingYard(tokens []Token, reg *Registry) ([]Token, error) {
	var output []Token
	var stack []Token

	var lastFunction *Token
	var previous *Token

	for i := range tokens {
		token := tokens[i]
		switch token.Type {
		case TokenLiteral, TokenHexLiteral, TokenString:
			if previous != nil &&
				(previous.Type == TokenLiteral || previous.Type == TokenHexLiteral || previous.Type == TokenString) {
				return nil, NewSyntaxError(token.Pos, "missing operator")
			}
			output = append(output, token)

		case TokenVariable:
			output = append(output, token)

		case TokenFunction:
			stack = append(stack, token)
			lastFunction = &tokens[i]

		case TokenComma:
			if previous != nil && previous.Type == TokenOperator {
				return nil, NewSyntaxError(previous.Pos, "missing parameter(s) for operator %s", previous.Surface)
			}
			for len(stack) > 0 && stack[len(stack)-1].Type != TokenOpenParen {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				if lastFunction == nil {
					return nil, NewSyntaxError(token.Pos, "unexpected comma")
				}
				return nil, NewSyntaxError(token.Pos, "parse error for function '%s'", lastFunction.Surface)
			}

		case TokenOperator:
			if previous != nil && (previous.Type == TokenComma || previous.Type == TokenOpenParen) {
				return nil, NewSyntaxError(token.Pos, "missing parameter(s) for operator %s", token.Surface)
			}
			op, ok := reg.Operator(token.Surface)
			if !ok {
				return nil, NewSyntaxError(token.Pos, "unknown operator '%s'", token.Surface)
			}
			stack = shuntOperators(&output, stack, op, reg)
			stack = append(stack, token)

		case TokenUnaryOperator:
			if previous != nil && previous.Type != TokenOperator &&
				previous.Type != TokenComma && previous.Type != TokenOpenParen {
				return nil, NewSyntaxError(token.Pos, "invalid position for unary operator %s", token.Surface)
			}
			op, ok := reg.Operator(token.Surface)
			if !ok {
				return nil, NewSyntaxError(token.Pos, "unknown unary operator '%s'",
					token.Surface[:len(token.Surface)-1])
			}
			stack = shuntOperators(&output, stack, op, reg)
			stack = append(stack, token)

		case TokenOpenParen:
			if previous != nil {
				if previous.Type == TokenLiteral || previous.Type == TokenHexLiteral ||
					previous.Type == TokenVariable || previous.Type == TokenCloseParen {
					// implicit multiplication: 2(a+b), (a+b)(a-b)
					stack = append(stack, Token{Surface: "*", Type: TokenOperator, Pos: token.Pos})
				}
				// a function's open paren marks the start of its
				// argument scope in the output
				if previous.Type == TokenFunction {
					output = append(output, token)
				}
			}
			stack = append(stack, token)

		case TokenCloseParen:
			if previous != nil && previous.Type == TokenOperator {
				return nil, NewSyntaxError(previous.Pos, "missing parameter(s) for operator %s", previous.Surface)
			}
			for len(stack) > 0 && stack[len(stack)-1].Type != TokenOpenParen {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, NewSyntaxError(token.Pos, "mismatched parentheses")
			}
			stack = stack[:len(stack)-1]
			if len(stack) > 0 && stack[len(stack)-1].Type == TokenFunction {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		}
		previous = &tokens[i]
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == TokenOpenParen || top.Type == TokenCloseParen {
			return nil, NewSyntaxError(top.Pos, "mismatched parentheses")
		}
		output = append(output, top)
	}
	return output, nil
}

// shuntOperators pops operators with higher (or equal, for left-associative
// incoming) precedence off the operator stack into the output.
func shuntOperators(output *[]Token, stack []Token, incoming *Operator, reg *Registry) []Token {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.Type != TokenOperator && top.Type != TokenUnaryOperator {
			break
		}
		topOp, ok := reg.Operator(top.Surface)
		if !ok {
			break
		}
		if (incoming.LeftAssoc && incoming.Precedence <= topOp.Precedence) ||
			incoming.Precedence < topOp.Precedence {
			*output = append(*output, top)
			stack = stack[:len(stack)-1]
			continue
		}
		break
	}
	return stack
}

// validateRPN checks that the RPN sequence has a consistent operand count
// for every operator and per-function argument scope, and that exactly one
// result remains. It rejects malformed sequences before any lazy node is
// built.
func validateRPN(rpn []Token, reg *Registry) error {
	// each entry is the operand count of one nested function scope
	counts := []int{0}

	for _, token := range rpn {
		switch token.Type {
		case TokenUnaryOperator:
			if counts[len(counts)-1] < 1 {
				return NewSyntaxError(token.Pos, "missing parameter(s) for operator %s",
					token.Surface[:len(token.Surface)-1])
			}

		case TokenOperator:
			if counts[len(counts)-1] < 2 {
				if token.Surface == ";" {
					return NewSyntaxError(token.Pos, "unnecessary semicolon")
				}
				return NewSyntaxError(token.Pos, "missing parameter(s) for operator %s", token.Surface)
			}
			counts[len(counts)-1]--

		case TokenFunction:
			f, ok := reg.Function(token.Surface)
			if !ok {
				return NewSyntaxError(token.Pos, "unknown function '%s'", token.Surface)
			}
			numParams := counts[len(counts)-1]
			counts = counts[:len(counts)-1]
			if !f.Variadic() && numParams != f.NumParams {
				return NewSyntaxError(token.Pos, "function %s expected %d parameters, got %d",
					f.Name, f.NumParams, numParams)
			}
			if len(counts) == 0 {
				return NewSyntaxError(token.Pos, "too many function calls, maximum scope exceeded")
			}
			counts[len(counts)-1]++

		case TokenOpenParen:
			counts = append(counts, 0)

		default:
			counts[len(counts)-1]++
		}
	}

	if len(counts) > 1 {
		return &SyntaxError{Msg: "too many unhandled function parameter lists", Pos: -1}
	}
	if counts[0] > 1 {
		return &SyntaxError{Msg: "too many numbers or variables", Pos: -1}
	}
	if counts[0] < 1 {
		return &SyntaxError{Msg: "empty expression", Pos: -1}
	}
	return nil
}
