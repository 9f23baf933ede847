package expr

import (
	"github.com/shopspring/decimal"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// registerBuiltins seeds the non-transcendental standard functions.
func (e *Expression) registerBuiltins() {
	r := e.registry

	r.AddFunction("fact", 1, func(args []value.Value) (value.Value, error) {
		n, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		if n.Decimal().Sign() < 0 {
			return nil, NewEvalError("factorial of a negative number")
		}
		factorial := decimal.NewFromInt(1)
		for i := int64(1); i <= n.Int(); i++ {
			factorial = factorial.Mul(decimal.NewFromInt(i))
		}
		return value.NewNumeric(factorial), nil
	})

	r.AddFunction("not", 1, func(args []value.Value) (value.Value, error) {
		return value.Bool(!args[0].Boolean()), nil
	})

	r.AddFunction("abs", 1, func(args []value.Value) (value.Value, error) {
		n, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		return value.NewNumeric(n.Decimal().Abs()), nil
	})

	r.AddFunction("relu", 1, func(args []value.Value) (value.Value, error) {
		if value.Compare(args[0], value.Zero) < 0 {
			return value.Zero, nil
		}
		return args[0], nil
	})

	r.AddFunction("floor", 1, func(args []value.Value) (value.Value, error) {
		n, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		return value.NewNumeric(n.Decimal().Floor()), nil
	})

	r.AddFunction("ceil", 1, func(args []value.Value) (value.Value, error) {
		n, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		return value.NewNumeric(n.Decimal().Ceil()), nil
	})

	r.AddFunction("round", 2, func(args []value.Value) (value.Value, error) {
		n, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		places, err := asNumeric(args[1])
		if err != nil {
			return nil, err
		}
		return value.NewNumeric(n.Decimal().Round(int32(places.Int()))), nil
	})

	r.AddFunction("min", -1, reducerFn("min", func(c int) bool { return c < 0 }))
	r.AddFunction("max", -1, reducerFn("max", func(c int) bool { return c > 0 }))

	// side-effecting passthrough: the value's text form goes to the log
	// sink, the value itself flows on
	r.AddFunction("print", 1, func(args []value.Value) (value.Value, error) {
		e.log(args[0].String())
		return args[0], nil
	})

	r.AddFunction("list", -1, func(args []value.Value) (value.Value, error) {
		items := make([]value.Value, len(args))
		copy(items, args)
		return value.NewList(items), nil
	})
}

// reducerFn builds a variadic reducer keeping the argument that wins the
// comparison.
func reducerFn(name string, wins func(int) bool) FunctionFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return nil, NewEvalError("%s requires at least one parameter", name)
		}
		best := args[0]
		for _, v := range args[1:] {
			if wins(value.Compare(v, best)) {
				best = v
			}
		}
		return best, nil
	}
}
