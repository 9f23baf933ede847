package value

import "strings"

// List is an ordered sequence of values. Its boolean interpretation is
// "non-empty".
type List struct {
	items []Value
	bound string
}

// NewList creates a list value. The slice is not copied; callers must not
// mutate it afterwards.
func NewList(items []Value) List {
	return List{items: items}
}

// Items returns the elements in order. The returned slice must be treated
// as read-only.
func (l List) Items() []Value { return l.items }

// Len returns the number of elements.
func (l List) Len() int { return len(l.items) }

func (l List) String() string {
	parts := make([]string, len(l.items))
	for i, v := range l.items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l List) Boolean() bool    { return len(l.items) > 0 }
func (l List) TypeName() string { return "list" }

func (l List) BoundName() string { return l.bound }

func (l List) BindTo(name string) Value { return List{items: l.items, bound: name} }
