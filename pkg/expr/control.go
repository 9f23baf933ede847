package expr

import (
	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// Control-flow functions are lazy: they receive unforced arguments and
// force them selectively. Iteration constructs shadow the loop variables
// "_" and "acc" in the shared environment and restore the previous bindings
// on every exit path, including errors.

func boundNumber(name string, i int64) LazyValue {
	return lazyOf(value.NewNumericFromInt(i).BindTo(name))
}

func (e *Expression) registerControlFlow() {
	r := e.registry

	// if(cond, a, b): the untaken branch is never forced
	r.AddLazyFunction("if", 3, func(args []LazyValue) (LazyValue, error) {
		cond, err := args[0].Force()
		if err != nil {
			return nil, err
		}
		if cond.Boolean() {
			return args[1], nil
		}
		return args[2], nil
	})

	// loop(expr, n): evaluates expr n times with "_" bound to the
	// iteration index; yields the last value, or zero when n <= 0
	r.AddLazyFunction("loop", 2, func(args []LazyValue) (LazyValue, error) {
		nv, err := args[1].Force()
		if err != nil {
			return nil, err
		}
		n, err := asNumeric(nv)
		if err != nil {
			return nil, err
		}
		restore := e.env.PushBinding("_", boundNumber("_", 0))
		defer restore()

		last := value.Value(value.Zero)
		for i := int64(0); i < n.Int(); i++ {
			e.env.Set("_", boundNumber("_", i))
			last, err = args[0].Force()
			if err != nil {
				return nil, err
			}
		}
		return lazyOf(last), nil
	})

	// map(expr, list): evaluates expr per element with "_" bound to it;
	// yields the list of results in input order
	r.AddLazyFunction("map", 2, func(args []LazyValue) (LazyValue, error) {
		items, err := e.forceList(args[1], "map")
		if err != nil {
			return nil, err
		}
		restore := e.env.PushBinding("_", boundNumber("_", 0))
		defer restore()

		out := make([]value.Value, 0, len(items))
		for _, item := range items {
			e.env.Set("_", lazyOf(item.BindTo("_")))
			res, err := args[0].Force()
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
		return lazyOf(value.NewList(out)), nil
	})

	// for(expr, list): like map, but yields the count of true results
	r.AddLazyFunction("for", 2, func(args []LazyValue) (LazyValue, error) {
		items, err := e.forceList(args[1], "for")
		if err != nil {
			return nil, err
		}
		restore := e.env.PushBinding("_", boundNumber("_", 0))
		defer restore()

		var successes int64
		for _, item := range items {
			e.env.Set("_", lazyOf(item.BindTo("_")))
			res, err := args[0].Force()
			if err != nil {
				return nil, err
			}
			if res.Boolean() {
				successes++
			}
		}
		return lazyOf(value.NewNumericFromInt(successes)), nil
	})

	// while(cond, limit, expr): "_" is rebound to the iteration index
	// before each test; yields the last expr value, or zero if no
	// iteration ran
	r.AddLazyFunction("while", 3, func(args []LazyValue) (LazyValue, error) {
		lv, err := args[1].Force()
		if err != nil {
			return nil, err
		}
		limit, err := asNumeric(lv)
		if err != nil {
			return nil, err
		}
		restore := e.env.PushBinding("_", boundNumber("_", 0))
		defer restore()

		last := value.Value(value.Zero)
		for i := int64(0); i < limit.Int(); {
			cond, err := args[0].Force()
			if err != nil {
				return nil, err
			}
			if !cond.Boolean() {
				break
			}
			last, err = args[2].Force()
			if err != nil {
				return nil, err
			}
			i++
			e.env.Set("_", boundNumber("_", i))
		}
		return lazyOf(last), nil
	})

	// reduce(expr, list, initial): folds the list left to right with
	// "acc" bound to the accumulator and "_" to the element
	r.AddLazyFunction("reduce", 3, func(args []LazyValue) (LazyValue, error) {
		acc, err := args[2].Force()
		if err != nil {
			return nil, err
		}
		items, err := e.forceList(args[1], "reduce")
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return lazyOf(acc), nil
		}
		restoreAcc := e.env.PushBinding("acc", boundNumber("acc", 0))
		defer restoreAcc()
		restore := e.env.PushBinding("_", boundNumber("_", 0))
		defer restore()

		for _, item := range items {
			e.env.Set("acc", lazyOf(acc.BindTo("acc")))
			e.env.Set("_", lazyOf(item.BindTo("_")))
			acc, err = args[0].Force()
			if err != nil {
				return nil, err
			}
		}
		return lazyOf(acc), nil
	})

	// case(cond1, expr1, ..., default): forces conditions in order, only
	// the matching branch (or the default) is forced
	r.AddLazyFunction("case", -1, func(args []LazyValue) (LazyValue, error) {
		if len(args)%2 == 0 || len(args) < 3 {
			return nil, NewEvalError("case needs at least one condition and case, and a default value")
		}
		for i := 0; i < len(args)-1; i += 2 {
			cond, err := args[i].Force()
			if err != nil {
				return nil, err
			}
			if cond.Boolean() {
				return args[i+1], nil
			}
		}
		return args[len(args)-1], nil
	})
}

// forceList forces an argument that must evaluate to a list.
func (e *Expression) forceList(arg LazyValue, fn string) ([]value.Value, error) {
	v, err := arg.Force()
	if err != nil {
		return nil, err
	}
	list, ok := v.(value.List)
	if !ok {
		return nil, NewEvalError("second argument of %s must be a list, got %s", fn, v.TypeName())
	}
	return list.Items(), nil
}
