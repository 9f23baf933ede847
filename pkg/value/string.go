package value

// Str is a text value. Its boolean interpretation is "non-empty".
type Str struct {
	s     string
	bound string
}

// NewStr creates a string value.
func NewStr(s string) Str {
	return Str{s: s}
}

func (s Str) String() string   { return s.s }
func (s Str) Boolean() bool    { return s.s != "" }
func (s Str) TypeName() string { return "string" }

func (s Str) BoundName() string { return s.bound }

func (s Str) BindTo(name string) Value { return Str{s: s.s, bound: name} }
