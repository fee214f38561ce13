// Package untagged implements the type registry and maps whose serialized
// form carries no type tag: the outer map key doubles as the dispatch key,
// and deserialization relies on the key registered for a type matching the
// key of the value.
package untagged

import (
	"reflect"

	typereg "github.com/azriel91/type-reg"
)

// Value is a type-erased value stored in a TypeMap. The runtime type of the
// wrapped value never changes after construction.
type Value interface {
	// TypeName returns the fully qualified name of the wrapped type.
	TypeName() typereg.TypeName

	// Type returns the reflect.Type of the wrapped value.
	Type() reflect.Type

	// Inner returns a pointer to the wrapped value, as an any. Encoders
	// serialize through it without knowing the concrete type.
	Inner() any

	// Clone returns an independent deep copy of this value.
	Clone() Value
}

// Downcast narrows an erased value back to its concrete type. It returns a
// pointer into the value's own storage, so mutating through it updates the
// stored value. A type mismatch returns (nil, false), never a panic.
func Downcast[T any](v Value) (*T, bool) {
	if v == nil {
		return nil, false
	}

	inner, ok := v.Inner().(*T)
	return inner, ok
}

// derefInner unwraps the pointer an erased value hands out, for debug output.
func derefInner(inner any) any {
	v := reflect.ValueOf(inner)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return v.Elem().Interface()
	}

	return inner
}
