package expr

import (
	"testing"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

func TestCustomOperator(t *testing.T) {
	e := New("3 >> 2")
	e.Registry().AddOperator(">>", PrecedencePower+1, true, func(a, b value.Value) (value.Value, error) {
		na, err := asNumeric(a)
		if err != nil {
			return nil, err
		}
		nb, err := asNumeric(b)
		if err != nil {
			return nil, err
		}
		return value.NewNumericFromInt(na.Int() >> uint(nb.Int())), nil
	})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "0" {
		t.Errorf("got %s, want 0", v.String())
	}
}

func TestCustomOperatorPrecedence(t *testing.T) {
	// a high-precedence custom operator binds tighter than *
	e := New("2 * 3 ! 4")
	e.Registry().AddOperator("!", PrecedencePower+1, true, func(a, b value.Value) (value.Value, error) {
		na, _ := asNumeric(a)
		nb, _ := asNumeric(b)
		return value.NewNumericFromInt(na.Int()*10 + nb.Int()), nil
	})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "68" {
		t.Errorf("got %s, want 68 (2 * 34)", v.String())
	}
}

func TestCustomUnaryOperator(t *testing.T) {
	e := New("~5 + 1")
	e.Registry().AddUnaryOperator("~", func(v value.Value) (value.Value, error) {
		n, err := asNumeric(v)
		if err != nil {
			return nil, err
		}
		return value.NewNumericFromInt(-n.Int() - 1), nil
	})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "-5" {
		t.Errorf("got %s, want -5", v.String())
	}
}

func TestCustomFunction(t *testing.T) {
	e := New("avg(1, 2, 3, 4)")
	e.Registry().AddFunction("avg", -1, func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return nil, NewEvalError("avg requires at least one parameter")
		}
		sum := value.Zero.Decimal()
		for _, a := range args {
			n, err := asNumeric(a)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(n.Decimal())
		}
		return value.NewNumeric(sum.DivRound(value.NewNumericFromInt(int64(len(args))).Decimal(), DefaultPrecision)), nil
	})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "2.5" {
		t.Errorf("got %s, want 2.5", v.String())
	}
}

func TestCustomLazyFunction(t *testing.T) {
	// first(a, b) must never force b
	e := New("first(7, 1/0)")
	e.Registry().AddLazyFunction("first", 2, func(args []LazyValue) (LazyValue, error) {
		return args[0], nil
	})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "7" {
		t.Errorf("got %s, want 7", v.String())
	}
}

func TestFunctionNamesAreCaseInsensitive(t *testing.T) {
	if got := evalString(t, "MAX(1, 2)"); got != "2" {
		t.Errorf("got %s, want 2", got)
	}
	if got := evalString(t, "Sqrt(9)"); got != "3" {
		t.Errorf("got %s, want 3", got)
	}
}

// hostValue is a value variant a host application might plug in.
type hostValue struct {
	id    string
	bound string
}

func (h hostValue) String() string    { return h.id }
func (h hostValue) Boolean() bool     { return h.id != "" }
func (h hostValue) TypeName() string  { return "host" }
func (h hostValue) BoundName() string { return h.bound }
func (h hostValue) BindTo(name string) value.Value {
	h.bound = name
	return h
}

func TestHostValueVariant(t *testing.T) {
	e := New("if(h, h, 'missing')")
	e.SetVariable("h", hostValue{id: "entity-1"})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	hv, ok := v.(hostValue)
	if !ok {
		t.Fatalf("got %T, want hostValue", v)
	}
	if hv.id != "entity-1" {
		t.Errorf("got %s", hv.id)
	}
}

func TestHostValueAssignment(t *testing.T) {
	e := New("x = h; x")
	e.SetVariable("h", hostValue{id: "entity-2"})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.TypeName() != "host" || v.BoundName() != "x" {
		t.Errorf("got %s bound to %q", v.TypeName(), v.BoundName())
	}
}

func TestLazyVariable(t *testing.T) {
	forced := 0
	e := New("if(0, expensive, 5)")
	e.SetLazyVariable("expensive", func() (value.Value, error) {
		forced++
		return value.NewNumericFromInt(1000), nil
	})
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "5" {
		t.Errorf("got %s, want 5", v.String())
	}
	if forced != 0 {
		t.Errorf("lazy variable forced %d times in the untaken branch", forced)
	}
}

func TestPrecisionAffectsDivision(t *testing.T) {
	e := New("1/3")
	e.SetPrecision(4)
	v, err := e.Eval()
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "0.3333" {
		t.Errorf("got %s, want 0.3333", v.String())
	}
}
