package mapdata

import "fmt"

// Required holds a field that has no default: it is either Unset or Set to a
// value. The zero value is Unset.
type Required[T any] struct {
	v *T
}

// Req returns a Required set to v.
func Req[T any](v T) Required[T] {
	return Required[T]{v: &v}
}

// Set stores v.
func (r *Required[T]) Set(v T) {
	r.v = &v
}

// Unset clears the field.
func (r *Required[T]) Unset() {
	r.v = nil
}

// Get returns the value and whether it has been set.
func (r Required[T]) Get() (T, bool) {
	if r.v == nil {
		var zero T
		return zero, false
	}
	return *r.v, true
}

// IsSet reports whether a value has been stored.
func (r Required[T]) IsSet() bool {
	return r.v != nil
}

// Or returns the value, or def when unset.
func (r Required[T]) Or(def T) T {
	if r.v == nil {
		return def
	}
	return *r.v
}

func (r Required[T]) String() string {
	if r.v == nil {
		return "<unset>"
	}
	return fmt.Sprint(*r.v)
}
