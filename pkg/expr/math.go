package expr

import (
	"math"
	"math/rand"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// Numeric constants seeded into every environment.
var (
	piNumber, _    = value.NewNumericFromString("3.14159265358979323846264338327950288419716939937510582097494459230781640628620899862803482534211706798")
	eulerNumber, _ = value.NewNumericFromString("2.71828182845904523536028747135266249775724709369995957496696762772407663")
)

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }

// AddMathFunction registers a one-argument function computed in float64.
// Results outside the real domain (NaN or infinite) are evaluation errors.
func (e *Expression) AddMathFunction(name string, fn func(float64) float64) {
	e.registry.AddFunction(name, 1, func(args []value.Value) (value.Value, error) {
		n, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		res := fn(n.Float())
		if math.IsNaN(res) || math.IsInf(res, 0) {
			return nil, NewEvalError("argument out of domain for %s", name)
		}
		return value.NewNumericFromFloat(res), nil
	})
}

// AddMathFunction2 registers a two-argument function computed in float64.
func (e *Expression) AddMathFunction2(name string, fn func(float64, float64) float64) {
	e.registry.AddFunction(name, 2, func(args []value.Value) (value.Value, error) {
		a, err := asNumeric(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asNumeric(args[1])
		if err != nil {
			return nil, err
		}
		res := fn(a.Float(), b.Float())
		if math.IsNaN(res) || math.IsInf(res, 0) {
			return nil, NewEvalError("argument out of domain for %s", name)
		}
		return value.NewNumericFromFloat(res), nil
	})
}

// registerMathFunctions seeds the transcendental library. Trigonometry
// works in degrees.
func (e *Expression) registerMathFunctions() {
	e.AddMathFunction("rand", func(d float64) float64 { return d * rand.Float64() })

	e.AddMathFunction("sin", func(d float64) float64 { return math.Sin(degToRad(d)) })
	e.AddMathFunction("cos", func(d float64) float64 { return math.Cos(degToRad(d)) })
	e.AddMathFunction("tan", func(d float64) float64 { return math.Tan(degToRad(d)) })
	e.AddMathFunction("asin", func(d float64) float64 { return radToDeg(math.Asin(d)) })
	e.AddMathFunction("acos", func(d float64) float64 { return radToDeg(math.Acos(d)) })
	e.AddMathFunction("atan", func(d float64) float64 { return radToDeg(math.Atan(d)) })
	e.AddMathFunction2("atan2", func(a, b float64) float64 { return radToDeg(math.Atan2(a, b)) })

	e.AddMathFunction("sinh", math.Sinh)
	e.AddMathFunction("cosh", math.Cosh)
	e.AddMathFunction("tanh", math.Tanh)
	e.AddMathFunction("sec", func(d float64) float64 { return 1 / math.Cos(degToRad(d)) })
	e.AddMathFunction("csc", func(d float64) float64 { return 1 / math.Sin(degToRad(d)) })
	e.AddMathFunction("sech", func(d float64) float64 { return 1 / math.Cosh(d) })
	e.AddMathFunction("csch", func(d float64) float64 { return 1 / math.Sinh(d) })
	e.AddMathFunction("cot", func(d float64) float64 { return 1 / math.Tan(degToRad(d)) })
	e.AddMathFunction("acot", func(d float64) float64 { return radToDeg(math.Atan(1 / d)) })
	e.AddMathFunction("coth", func(d float64) float64 { return 1 / math.Tanh(d) })
	e.AddMathFunction("asinh", math.Asinh)
	e.AddMathFunction("acosh", math.Acosh)
	e.AddMathFunction("atanh", math.Atanh)

	e.AddMathFunction("rad", degToRad)
	e.AddMathFunction("deg", radToDeg)
	e.AddMathFunction("log", math.Log)
	e.AddMathFunction("log10", math.Log10)
	e.AddMathFunction("log1p", math.Log1p)
	e.AddMathFunction("sqrt", math.Sqrt)
}
