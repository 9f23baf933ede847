package expr

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// asNumeric extracts the decimal from a numeric operand.
func asNumeric(v value.Value) (value.Numeric, error) {
	n, ok := v.(value.Numeric)
	if !ok {
		return value.Numeric{}, NewEvalError("operand must be numeric, got %s", v.TypeName())
	}
	return n, nil
}

// numericOp adapts a decimal binary function into an eager operator that
// rejects non-numeric operands.
func numericOp(fn func(a, b decimal.Decimal) (decimal.Decimal, error)) OperatorFunc {
	return func(a, b value.Value) (value.Value, error) {
		na, err := asNumeric(a)
		if err != nil {
			return nil, err
		}
		nb, err := asNumeric(b)
		if err != nil {
			return nil, err
		}
		d, err := fn(na.Decimal(), nb.Decimal())
		if err != nil {
			return nil, err
		}
		return value.NewNumeric(d), nil
	}
}

func (e *Expression) registerOperators() {
	r := e.registry

	// sequencing: evaluate and log the left side, yield the right
	r.AddLazyOperator(";", PrecedenceSequence, true, func(a, b LazyValue) (LazyValue, error) {
		return func() (value.Value, error) {
			va, err := a.Force()
			if err != nil {
				return nil, err
			}
			e.log(va.String())
			return b.Force()
		}, nil
	})

	r.AddOperator("+", PrecedenceAdditive, true, numericOp(
		func(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Add(b), nil }))

	r.AddOperator("-", PrecedenceAdditive, true, numericOp(
		func(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Sub(b), nil }))

	r.AddOperator("*", PrecedenceMultiplicative, true, numericOp(
		func(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Mul(b), nil }))

	r.AddOperator("/", PrecedenceMultiplicative, true, numericOp(
		func(a, b decimal.Decimal) (decimal.Decimal, error) {
			if b.IsZero() {
				return decimal.Decimal{}, NewEvalError("division by zero")
			}
			return a.DivRound(b, e.precision), nil
		}))

	r.AddOperator("%", PrecedenceMultiplicative, true, numericOp(
		func(a, b decimal.Decimal) (decimal.Decimal, error) {
			if b.IsZero() {
				return decimal.Decimal{}, NewEvalError("modulo by zero")
			}
			return a.Mod(b), nil
		}))

	r.AddOperator("^", PrecedencePower, false, numericOp(
		func(a, b decimal.Decimal) (decimal.Decimal, error) {
			return powDecimal(a, b, e.precision)
		}))

	r.AddLazyOperator("&&", PrecedenceAnd, false, func(a, b LazyValue) (LazyValue, error) {
		return func() (value.Value, error) {
			va, err := a.Force()
			if err != nil {
				return nil, err
			}
			if !va.Boolean() {
				return value.False, nil
			}
			vb, err := b.Force()
			if err != nil {
				return nil, err
			}
			return value.Bool(vb.Boolean()), nil
		}, nil
	})

	r.AddLazyOperator("||", PrecedenceOr, false, func(a, b LazyValue) (LazyValue, error) {
		return func() (value.Value, error) {
			va, err := a.Force()
			if err != nil {
				return nil, err
			}
			if va.Boolean() {
				return value.True, nil
			}
			vb, err := b.Force()
			if err != nil {
				return nil, err
			}
			return value.Bool(vb.Boolean()), nil
		}, nil
	})

	r.AddOperator(">", PrecedenceComparison, false, compareOp(func(c int) bool { return c > 0 }))
	r.AddOperator(">=", PrecedenceComparison, false, compareOp(func(c int) bool { return c >= 0 }))
	r.AddOperator("<", PrecedenceComparison, false, compareOp(func(c int) bool { return c < 0 }))
	r.AddOperator("<=", PrecedenceComparison, false, compareOp(func(c int) bool { return c <= 0 }))
	r.AddOperator("==", PrecedenceEquality, false, compareOp(func(c int) bool { return c == 0 }))

	// legacy mode makes != evaluate the same comparison as ==, for hosts
	// that depend on that historical behavior
	r.AddOperator("!=", PrecedenceEquality, false, func(a, b value.Value) (value.Value, error) {
		c := value.Compare(a, b)
		if e.legacyNeq {
			return value.Bool(c == 0), nil
		}
		return value.Bool(c != 0), nil
	})

	r.AddOperator("=", PrecedenceAssign, false, func(a, b value.Value) (value.Value, error) {
		name := a.BoundName()
		if name == "" {
			return nil, NewEvalError("LHS of assignment needs to be a variable")
		}
		bound := b.BindTo(name)
		e.env.Set(name, lazyOf(bound))
		return bound, nil
	})

	r.AddOperator("<>", PrecedenceEquality, false, func(a, b value.Value) (value.Value, error) {
		lname, rname := a.BoundName(), b.BoundName()
		if lname == "" || rname == "" {
			return nil, NewEvalError("both sides of swapping assignment need to be variables")
		}
		lval := b.BindTo(lname)
		rval := a.BindTo(rname)
		e.env.Set(lname, lazyOf(lval))
		e.env.Set(rname, lazyOf(rval))
		return lval, nil
	})

	r.AddUnaryOperator("-", func(v value.Value) (value.Value, error) {
		n, err := asNumeric(v)
		if err != nil {
			return nil, err
		}
		return value.NewNumeric(n.Decimal().Neg()), nil
	})

	r.AddUnaryOperator("+", func(v value.Value) (value.Value, error) {
		if _, err := asNumeric(v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

func compareOp(test func(int) bool) OperatorFunc {
	return func(a, b value.Value) (value.Value, error) {
		return value.Bool(test(value.Compare(a, b))), nil
	}
}

// powDecimal raises a to the power b with real exponents: the exact integer
// power is multiplied by the fractional power computed in floating point,
// and negative exponents go through the reciprocal.
func powDecimal(a, b decimal.Decimal, precision int32) (decimal.Decimal, error) {
	sign := b.Sign()
	babs := b.Abs()
	intPart := babs.Truncate(0)
	frac := babs.Sub(intPart)

	result := a.Pow(intPart)
	if !frac.IsZero() {
		af, _ := a.Float64()
		ff, _ := frac.Float64()
		p := math.Pow(af, ff)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Decimal{}, NewEvalError("invalid power operation")
		}
		result = result.Mul(decimal.NewFromFloat(p))
	}
	if sign < 0 {
		if result.IsZero() {
			return decimal.Decimal{}, NewEvalError("division by zero")
		}
		result = decimal.NewFromInt(1).DivRound(result, precision)
	}
	return result, nil
}
