package expr

import (
	"sort"

	"github.com/lemonberrylabs/lazyexpr/pkg/value"
)

// Env is the variable environment of one expression instance: a single flat
// mapping from name to lazy value, shared and mutated across the whole
// lifetime of the instance. It is not safe for concurrent use; the engine
// is single-threaded by contract.
type Env struct {
	vars map[string]LazyValue
}

// NewEnv creates an environment seeded with the standard constants.
func NewEnv() *Env {
	e := &Env{vars: make(map[string]LazyValue)}
	e.vars["e"] = lazyOf(eulerNumber)
	e.vars["PI"] = lazyOf(piNumber)
	e.vars["TRUE"] = lazyTrue
	e.vars["FALSE"] = lazyFalse
	e.vars["NULL"] = lazyOf(value.NullValue)
	return e
}

// Get returns the binding for name, if present.
func (e *Env) Get(name string) (LazyValue, bool) {
	lv, ok := e.vars[name]
	return lv, ok
}

// Has reports whether name is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Set installs a lazy binding, replacing any previous one.
func (e *Env) Set(name string, lv LazyValue) {
	e.vars[name] = lv
}

// SetValue binds a concrete value, carrying the binding name.
func (e *Env) SetValue(name string, v value.Value) {
	bound := v.BindTo(name)
	e.vars[name] = lazyOf(bound)
}

// Delete removes a binding.
func (e *Env) Delete(name string) {
	delete(e.vars, name)
}

// Names returns all bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PushBinding installs a shadow binding and returns a restore function that
// reinstates the previous state. Iteration constructs defer the restore so
// that loop variables cannot leak, even when an error aborts the loop
// mid-iteration.
func (e *Env) PushBinding(name string, lv LazyValue) func() {
	prev, existed := e.vars[name]
	e.vars[name] = lv
	return func() {
		if existed {
			e.vars[name] = prev
		} else {
			delete(e.vars, name)
		}
	}
}
