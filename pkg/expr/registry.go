package expr

import (
	"strings"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// Operator precedence levels, highest binds tightest.
const (
	PrecedenceSequence       = 1  // ;
	PrecedenceAssign         = 2  // =
	PrecedenceOr             = 3  // ||
	PrecedenceAnd            = 4  // &&
	PrecedenceEquality       = 7  // == != <>
	PrecedenceComparison     = 10 // < <= > >=
	PrecedenceAdditive       = 20 // + -
	PrecedenceMultiplicative = 30 // * / %
	PrecedencePower          = 40 // ^
	PrecedenceUnary          = 60 // prefix + -
)

// OperatorFunc is an eager binary operator: both operands are forced before
// the call.
type OperatorFunc func(a, b value.Value) (value.Value, error)

// LazyOperatorFunc is a lazy binary operator: it decides which operands to
// force. Boolean short-circuiting and sequencing are built on this.
type LazyOperatorFunc func(a, b LazyValue) (LazyValue, error)

// UnaryOperatorFunc is an eager prefix operator.
type UnaryOperatorFunc func(v value.Value) (value.Value, error)

// FunctionFunc is an eager function: arguments are forced left to right
// before the call.
type FunctionFunc func(args []value.Value) (value.Value, error)

// LazyFunctionFunc is a lazy function: it receives the unforced arguments
// and forces them selectively. Control flow is built on this.
type LazyFunctionFunc func(args []LazyValue) (LazyValue, error)

// Operator describes a registered operator. Unary operators are keyed with
// a trailing "u" on their surface, matching the tokenizer's tagging.
type Operator struct {
	Surface    string
	Precedence int
	LeftAssoc  bool
	Unary      bool

	eval LazyOperatorFunc // unary operators ignore the second operand
}

// Function describes a registered function.
type Function struct {
	Name      string
	NumParams int // -1 means variadic

	lazyEval LazyFunctionFunc
}

// Variadic reports whether the function accepts any number of arguments.
func (f *Function) Variadic() bool { return f.NumParams < 0 }

// Registry maps operator symbols and lower-cased function names to their
// behavior. Re-registering a symbol or name replaces the previous entry.
// The tokenizer consults the live registry for greedy operator matching, so
// all registration must happen before the first evaluation.
type Registry struct {
	operators map[string]*Operator
	functions map[string]*Function
}

// NewRegistry creates an empty registry. Expression seeds the standard
// library into it at construction.
func NewRegistry() *Registry {
	return &Registry{
		operators: make(map[string]*Operator),
		functions: make(map[string]*Function),
	}
}

// Operator returns the operator registered for the given surface. Unary
// operators are looked up with their "u" suffix.
func (r *Registry) Operator(surface string) (*Operator, bool) {
	op, ok := r.operators[surface]
	return op, ok
}

// HasOperator reports whether the exact surface is a registered binary
// operator symbol. Used by the tokenizer's longest-match scan.
func (r *Registry) HasOperator(surface string) bool {
	_, ok := r.operators[surface]
	return ok
}

// Function returns the function registered under the given name,
// case-insensitively.
func (r *Registry) Function(name string) (*Function, bool) {
	f, ok := r.functions[strings.ToLower(name)]
	return f, ok
}

// AddLazyOperator registers a binary operator that controls the forcing of
// its own operands.
func (r *Registry) AddLazyOperator(surface string, precedence int, leftAssoc bool, fn LazyOperatorFunc) {
	r.operators[surface] = &Operator{
		Surface:    surface,
		Precedence: precedence,
		LeftAssoc:  leftAssoc,
		eval:       fn,
	}
}

// AddOperator registers an eager binary operator.
func (r *Registry) AddOperator(surface string, precedence int, leftAssoc bool, fn OperatorFunc) {
	r.AddLazyOperator(surface, precedence, leftAssoc, func(a, b LazyValue) (LazyValue, error) {
		return func() (value.Value, error) {
			va, err := a.Force()
			if err != nil {
				return nil, err
			}
			vb, err := b.Force()
			if err != nil {
				return nil, err
			}
			return fn(va, vb)
		}, nil
	})
}

// AddUnaryOperator registers a prefix operator. Unary operators always bind
// to the following operand with fixed high precedence.
func (r *Registry) AddUnaryOperator(surface string, fn UnaryOperatorFunc) {
	key := surface + "u"
	r.operators[key] = &Operator{
		Surface:    key,
		Precedence: PrecedenceUnary,
		Unary:      true,
		eval: func(a, _ LazyValue) (LazyValue, error) {
			return func() (value.Value, error) {
				v, err := a.Force()
				if err != nil {
					return nil, err
				}
				return fn(v)
			}, nil
		},
	}
}

// AddLazyFunction registers a function that receives unforced arguments.
// numParams of -1 registers a variadic function.
func (r *Registry) AddLazyFunction(name string, numParams int, fn LazyFunctionFunc) {
	name = strings.ToLower(name)
	r.functions[name] = &Function{Name: name, NumParams: numParams, lazyEval: fn}
}

// AddFunction registers an eager function: its arguments are forced in
// order before the call.
func (r *Registry) AddFunction(name string, numParams int, fn FunctionFunc) {
	r.AddLazyFunction(name, numParams, func(args []LazyValue) (LazyValue, error) {
		return func() (value.Value, error) {
			vals := make([]value.Value, len(args))
			for i, a := range args {
				v, err := a.Force()
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			return fn(vals)
		}, nil
	})
}
