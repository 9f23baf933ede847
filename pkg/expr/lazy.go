package expr

import "github.com/lemonberrylabs/lazyexpr/pkg/value"

// LazyValue is a deferred computation producing a value when forced.
// Forcing may have side effects (mutating the environment, emitting a log
// line), so the evaluator forces each node at most once per pass and the
// untaken branches of control-flow functions are never forced at all.
type LazyValue func() (value.Value, error)

// Force runs the deferred computation.
func (l LazyValue) Force() (value.Value, error) { return l() }

// lazyOf wraps an already-computed value.
func lazyOf(v value.Value) LazyValue {
	return func() (value.Value, error) { return v, nil }
}

// Prebuilt leaves.
var (
	lazyTrue  = lazyOf(value.True)
	lazyFalse = lazyOf(value.False)
)
