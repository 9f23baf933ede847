package expr

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// stackEntry is one slot of the tree-building stack. paramsStart marks the
// beginning of a function's argument scope, mirroring the function
// open-paren the parser emitted into the RPN.
type stackEntry struct {
	lv          LazyValue
	paramsStart bool
}

// buildTree walks the RPN once, left to right, building a tree of lazy
// values without forcing anything. Each operator or function node closes
// over the already-built lazy values of its operands; all side effects are
// deferred until the root is forced.
func (e *Expression) buildTree(rpn []Token) (LazyValue, error) {
	var stack []stackEntry

	push := func(lv LazyValue) {
		stack = append(stack, stackEntry{lv: lv})
	}
	pop := func() (LazyValue, bool) {
		if len(stack) == 0 || stack[len(stack)-1].paramsStart {
			return nil, false
		}
		lv := stack[len(stack)-1].lv
		stack = stack[:len(stack)-1]
		return lv, true
	}

	for i := range rpn {
		token := rpn[i]
		switch token.Type {
		case TokenUnaryOperator:
			op, ok := e.registry.Operator(token.Surface)
			if !ok {
				return nil, NewEvalErrorAt(token.Pos, "unknown unary operator '%s'", token.Surface)
			}
			operand, ok := pop()
			if !ok {
				return nil, NewEvalErrorAt(token.Pos, "missing operand for operator %s", token.Surface)
			}
			push(func() (value.Value, error) {
				res, err := op.eval(operand, nil)
				if err != nil {
					return nil, err
				}
				return res.Force()
			})

		case TokenOperator:
			op, ok := e.registry.Operator(token.Surface)
			if !ok {
				return nil, NewEvalErrorAt(token.Pos, "unknown operator '%s'", token.Surface)
			}
			right, okR := pop()
			left, okL := pop()
			if !okR || !okL {
				return nil, NewEvalErrorAt(token.Pos, "missing operand for operator %s", token.Surface)
			}
			push(func() (value.Value, error) {
				res, err := op.eval(left, right)
				if err != nil {
					return nil, err
				}
				return res.Force()
			})

		case TokenVariable:
			name := token.Surface
			push(func() (value.Value, error) {
				lv, ok := e.env.Get(name)
				if !ok {
					// unset names read as zero, bound to the name
					lv = lazyOf(value.Zero.BindTo(name))
					e.env.Set(name, lv)
				}
				return lv.Force()
			})

		case TokenFunction:
			f, ok := e.registry.Function(token.Surface)
			if !ok {
				return nil, NewEvalErrorAt(token.Pos, "unknown function '%s'", token.Surface)
			}
			var params []LazyValue
			for len(stack) > 0 && !stack[len(stack)-1].paramsStart {
				params = append([]LazyValue{stack[len(stack)-1].lv}, params...)
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, NewEvalErrorAt(token.Pos, "missing argument scope for function %s", f.Name)
			}
			stack = stack[:len(stack)-1] // the paramsStart marker
			push(func() (value.Value, error) {
				res, err := f.lazyEval(params)
				if err != nil {
					return nil, err
				}
				return res.Force()
			})

		case TokenOpenParen:
			stack = append(stack, stackEntry{paramsStart: true})

		case TokenLiteral:
			surface := token.Surface
			pos := token.Pos
			push(func() (value.Value, error) {
				n, err := value.NewNumericFromString(surface)
				if err != nil {
					return nil, NewEvalErrorAt(pos, "malformed numeric literal %q", surface)
				}
				return n, nil
			})

		case TokenString:
			push(lazyOf(value.NewStr(token.Surface)))

		case TokenHexLiteral:
			surface := token.Surface
			pos := token.Pos
			push(func() (value.Value, error) {
				bi, ok := new(big.Int).SetString(surface[2:], 16)
				if !ok {
					return nil, NewEvalErrorAt(pos, "malformed hexadecimal literal %q", surface)
				}
				return value.NewNumeric(decimal.NewFromBigInt(bi, 0)), nil
			})

		default:
			return nil, NewEvalErrorAt(token.Pos, "unexpected token '%s'", token.Surface)
		}
	}

	root, ok := pop()
	if !ok || len(stack) != 0 {
		return nil, NewEvalError("expression did not reduce to a single value")
	}
	return root, nil
}
