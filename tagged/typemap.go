package tagged

import (
	"fmt"
	"iter"
	"reflect"
	"strings"

	"github.com/azriel91/type-reg/codec"
)

// TypeMap is a serializable map from K to values of arbitrary concrete
// types. Every value serializes as {type-name: value}, so the map can be
// deserialized by a registry that only knows the registered types, not the
// keys.
//
// Iteration and serialization follow insertion order. Not safe for
// concurrent mutation.
type TypeMap[K comparable] struct {
	entries map[K]Value
	order   []K
}

// NewTypeMap creates an empty TypeMap.
func NewTypeMap[K comparable]() *TypeMap[K] {
	return &TypeMap[K]{entries: map[K]Value{}}
}

// NewTypeMapWithCapacity creates an empty TypeMap pre-sized for n entries.
func NewTypeMapWithCapacity[K comparable](n int) *TypeMap[K] {
	return &TypeMap[K]{
		entries: make(map[K]Value, n),
		order:   make([]K, 0, n),
	}
}

// Put wraps value and stores it under key, returning the previous erased
// value at key, or nil.
func Put[T any, K comparable](m *TypeMap[K], key K, value T) Value {
	return m.PutRaw(key, New(value))
}

// Get looks up key and downcasts the stored value to T. It returns
// (nil, false) when the key is absent or the stored type is not T.
func Get[T any, K comparable](m *TypeMap[K], key K) (*T, bool) {
	value, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	return Downcast[T](value)
}

// PutRaw stores an already-erased value under key, returning the previous
// value or nil.
func (m *TypeMap[K]) PutRaw(key K, value Value) Value {
	previous, existed := m.entries[key]
	if !existed {
		m.order = append(m.order, key)
	}

	m.entries[key] = value
	if existed {
		return previous
	}
	return nil
}

// GetRaw returns the erased value stored under key.
func (m *TypeMap[K]) GetRaw(key K) (Value, bool) {
	value, ok := m.entries[key]
	return value, ok
}

// Delete removes key and returns the value that was stored, or nil.
func (m *TypeMap[K]) Delete(key K) Value {
	value, ok := m.entries[key]
	if !ok {
		return nil
	}

	delete(m.entries, key)
	for idx, existing := range m.order {
		if existing == key {
			m.order = append(m.order[:idx], m.order[idx+1:]...)
			break
		}
	}

	return value
}

// Len returns the number of entries.
func (m *TypeMap[K]) Len() int {
	return len(m.entries)
}

// Keys iterates over keys in insertion order.
func (m *TypeMap[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, key := range m.order {
			if !yield(key) {
				return
			}
		}
	}
}

// All iterates over entries in insertion order.
func (m *TypeMap[K]) All() iter.Seq2[K, Value] {
	return func(yield func(K, Value) bool) {
		for _, key := range m.order {
			if !yield(key, m.entries[key]) {
				return
			}
		}
	}
}

// IntoInner returns the underlying entries. The map must not be used
// afterwards.
func (m *TypeMap[K]) IntoInner() map[K]Value {
	return m.entries
}

// Clone returns a deep copy: every stored value is cloned through its own
// Clone, so the copy never aliases the original.
func (m *TypeMap[K]) Clone() *TypeMap[K] {
	cloned := NewTypeMapWithCapacity[K](len(m.entries))
	for key, value := range m.All() {
		cloned.PutRaw(key, value.Clone())
	}

	return cloned
}

// Marshal serializes the map through the given format, emitting each value
// in its externally tagged form.
func (m *TypeMap[K]) Marshal(f codec.Format) ([]byte, error) {
	return f.Marshal(m.marshalTree())
}

func (m *TypeMap[K]) marshalTree() codec.Map {
	out := make(codec.Map, 0, len(m.order))
	for key, value := range m.All() {
		out = append(out, codec.Entry{Key: key, Value: tree(value)})
	}

	return out
}

func (m *TypeMap[K]) MarshalYAML() (any, error)    { return m.marshalTree(), nil }
func (m *TypeMap[K]) MarshalJSON() ([]byte, error) { return m.marshalTree().MarshalJSON() }
func (m *TypeMap[K]) MarshalCBOR() ([]byte, error) { return m.marshalTree().MarshalCBOR() }

// String renders the map for debugging, printing each value's type identity
// next to its value.
func (m *TypeMap[K]) String() string {
	var sb strings.Builder
	sb.WriteString("{")

	first := true
	for key, value := range m.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v: %s(%v)", key, value.TypeName(), derefInner(value.Inner()))
	}

	sb.WriteString("}")
	return sb.String()
}

// derefInner unwraps the pointer an erased value hands out, for debug
// output.
func derefInner(inner any) any {
	v := reflect.ValueOf(inner)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return v.Elem().Interface()
	}

	return inner
}
