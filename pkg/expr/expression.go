package expr

import (
	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// DefaultPrecision is the number of decimal places kept by division and by
// the reciprocal step of the power operator.
const DefaultPrecision = 16

// Expression is one parse-and-evaluate unit: it owns a registry seeded with
// the standard library, a variable environment, the source text, and a
// cache of the parsed RPN and the built lazy tree. Once the tree is cached
// the text is never re-tokenized; calling Eval again replays the cached
// tree, re-executing any side effects against the current environment.
//
// An Expression is not safe for concurrent use. Hosts extend the registry
// and pre-bind variables before the first Eval.
type Expression struct {
	src      string
	registry *Registry
	env      *Env

	logger    func(string)
	precision int32
	legacyNeq bool

	tokens []Token
	rpn    []Token
	root   LazyValue
}

// New creates an expression from source text with the standard operators,
// functions and constants registered.
func New(src string) *Expression {
	e := &Expression{
		src:       src,
		registry:  NewRegistry(),
		env:       NewEnv(),
		precision: DefaultPrecision,
	}
	e.registerOperators()
	e.registerMathFunctions()
	e.registerBuiltins()
	e.registerControlFlow()
	return e
}

// Source returns the expression text.
func (e *Expression) Source() string { return e.src }

// Env returns the variable environment. Hosts may pre-populate or inspect
// it between evaluations, never during one.
func (e *Expression) Env() *Env { return e.env }

// Registry returns the operator and function registry for host extension.
func (e *Expression) Registry() *Registry { return e.registry }

// SetLogger installs the line sink that receives the textual form of every
// sequencing operator's left operand, and print output. The engine performs
// no other I/O.
func (e *Expression) SetLogger(fn func(string)) *Expression {
	e.logger = fn
	return e
}

// SetPrecision sets the decimal places kept by division.
func (e *Expression) SetPrecision(places int32) *Expression {
	e.precision = places
	return e
}

// SetLegacyInequality makes != evaluate the same comparison as ==, for
// hosts that depend on that historical behavior. Off by default.
func (e *Expression) SetLegacyInequality(on bool) *Expression {
	e.legacyNeq = on
	return e
}

// SetVariable binds a value under the given name.
func (e *Expression) SetVariable(name string, v value.Value) *Expression {
	e.env.SetValue(name, v)
	return e
}

// SetLazyVariable binds a deferred computation under the given name.
func (e *Expression) SetLazyVariable(name string, lv LazyValue) *Expression {
	e.env.Set(name, lv)
	return e
}

// SetVariableText binds a textual value: numeric text becomes a numeric,
// "null" becomes null, anything else a string.
func (e *Expression) SetVariableText(name, text string) *Expression {
	if n, err := value.NewNumericFromString(text); err == nil {
		return e.SetVariable(name, n)
	}
	if text == "null" || text == "NULL" {
		return e.SetVariable(name, value.NullValue)
	}
	return e.SetVariable(name, value.NewStr(text))
}

// Tokens returns the cached token sequence, scanning the source on first
// use.
func (e *Expression) Tokens() ([]Token, error) {
	if e.tokens == nil {
		tokens, err := newTokenizer(e.src, e.registry).tokenize()
		if err != nil {
			return nil, err
		}
		e.tokens = tokens
	}
	return e.tokens, nil
}

// RPN returns the cached Reverse Polish form, parsing and validating on
// first use.
func (e *Expression) RPN() ([]Token, error) {
	if e.rpn == nil {
		tokens, err := e.Tokens()
		if err != nil {
			return nil, err
		}
		rpn, err := shuntingYard(tokens, e.registry)
		if err != nil {
			return nil, err
		}
		if err := validateRPN(rpn, e.registry); err != nil {
			return nil, err
		}
		e.rpn = rpn
	}
	return e.rpn, nil
}

// Eval evaluates the expression, building and caching the lazy tree on
// first call and forcing its root exactly once per call.
func (e *Expression) Eval() (value.Value, error) {
	if e.root == nil {
		rpn, err := e.RPN()
		if err != nil {
			return nil, err
		}
		root, err := e.buildTree(rpn)
		if err != nil {
			return nil, err
		}
		e.root = root
	}
	return e.root.Force()
}

// log emits a line through the host sink, if one is installed.
func (e *Expression) log(line string) {
	if e.logger != nil {
		e.logger(line)
	}
}
