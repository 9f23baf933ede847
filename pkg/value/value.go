// Package value defines the runtime value variants used by the expression
// engine: arbitrary-precision numerics, strings, lists and null. The Value
// interface is open so that hosts can plug in their own variants; the engine
// only relies on the methods declared here.
package value

import "strings"

// Value is a single expression result. Implementations are immutable;
// rebinding a variable replaces its environment entry, never the value.
type Value interface {
	// String returns the canonical text form of the value.
	String() string

	// Boolean reports the boolean interpretation of the value.
	Boolean() bool

	// TypeName identifies the variant in error messages and in the
	// cross-type ordering of Compare.
	TypeName() string

	// BoundName returns the variable name this value was last bound to,
	// or "" if it is unbound.
	BoundName() string

	// BindTo returns a copy of the value carrying the given binding name.
	BindTo(name string) Value
}

// Null is the absence of a value. Its text form is empty and it is false.
type Null struct {
	bound string
}

// NullValue is the canonical unbound null.
var NullValue = Null{}

func (n Null) String() string   { return "" }
func (n Null) Boolean() bool    { return false }
func (n Null) TypeName() string { return "null" }

func (n Null) BoundName() string { return n.bound }

func (n Null) BindTo(name string) Value { return Null{bound: name} }

// Type ranks for the cross-type total order. Host-supplied variants sort
// after all built-in ones.
func rank(v Value) int {
	switch v.(type) {
	case Null:
		return 0
	case Numeric:
		return 1
	case Str:
		return 2
	case List:
		return 3
	default:
		return 4
	}
}

// Compare defines a total order over all values: null sorts first, then
// numerics by value, strings lexicographically, lists element-wise (shorter
// prefix first), and host variants by type name then canonical string.
// Binding names are ignored.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case Null:
		return 0
	case Numeric:
		return av.dec.Cmp(b.(Numeric).dec)
	case Str:
		return strings.Compare(av.s, b.(Str).s)
	case List:
		bv := b.(List)
		for i := 0; i < len(av.items) && i < len(bv.items); i++ {
			if c := Compare(av.items[i], bv.items[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(av.items) < len(bv.items):
			return -1
		case len(av.items) > len(bv.items):
			return 1
		}
		return 0
	default:
		if c := strings.Compare(a.TypeName(), b.TypeName()); c != 0 {
			return c
		}
		return strings.Compare(a.String(), b.String())
	}
}

// Equal reports whether two values are equal under Compare.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }
