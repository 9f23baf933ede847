package value

import "github.com/shopspring/decimal"

// Numeric is an arbitrary-precision decimal value. Boolean by convention:
// zero is false, anything else is true.
type Numeric struct {
	dec   decimal.Decimal
	bound string
}

// Frequently used numerics.
var (
	Zero = NewNumericFromInt(0)
	One  = NewNumericFromInt(1)

	// True and False follow the 1/0 convention for boolean results.
	True  = One
	False = Zero
)

// NewNumeric wraps a decimal as a Numeric.
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{dec: d}
}

// NewNumericFromInt creates a Numeric from an int64.
func NewNumericFromInt(i int64) Numeric {
	return Numeric{dec: decimal.NewFromInt(i)}
}

// NewNumericFromFloat creates a Numeric from a float64.
func NewNumericFromFloat(f float64) Numeric {
	return Numeric{dec: decimal.NewFromFloat(f)}
}

// NewNumericFromString parses a decimal literal, including exponents.
func NewNumericFromString(s string) (Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Numeric{}, err
	}
	return Numeric{dec: d}, nil
}

// Bool converts a Go bool to the conventional 1/0 numeric.
func Bool(b bool) Numeric {
	if b {
		return True
	}
	return False
}

// Decimal returns the underlying decimal.
func (n Numeric) Decimal() decimal.Decimal { return n.dec }

// Int returns the integer part of the value.
func (n Numeric) Int() int64 { return n.dec.IntPart() }

// Float returns the nearest float64.
func (n Numeric) Float() float64 {
	f, _ := n.dec.Float64()
	return f
}

func (n Numeric) String() string   { return n.dec.String() }
func (n Numeric) Boolean() bool    { return !n.dec.IsZero() }
func (n Numeric) TypeName() string { return "number" }

func (n Numeric) BoundName() string { return n.bound }

func (n Numeric) BindTo(name string) Value { return Numeric{dec: n.dec, bound: name} }
