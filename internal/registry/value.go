package registry

// Value is an observed checker value. The zero Value means "no value
// recorded" — a check that never ran, failed, or produced no output.
// Absence is modeled here instead of with a magic string so that a checker
// script whose real output happens to collide with a sentinel token is
// still handled as a plain value everywhere above the persistence layer.
type Value struct {
	str   string
	known bool
}

// NewValue returns a known value holding s.
func NewValue(s string) Value {
	return Value{str: s, known: true}
}

// None returns the absent value.
func None() Value {
	return Value{}
}

// IsNone reports whether no value has been recorded.
func (v Value) IsNone() bool {
	return !v.known
}

// String returns the raw value, or the empty string when absent.
func (v Value) String() string {
	return v.str
}

// Equal reports whether two values are the same. Comparison is exact string
// equality; two absent values are equal regardless of their internal string.
func (v Value) Equal(o Value) bool {
	if v.known != o.known {
		return false
	}
	if !v.known {
		return true
	}
	return v.str == o.str
}
