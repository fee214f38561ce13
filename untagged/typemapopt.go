package untagged

import (
	"fmt"
	"iter"
	"strings"

	"github.com/azriel91/type-reg/codec"
)

// TypeMapOpt is a TypeMap whose slots are optional: a present key may hold
// "no value", which serializes to the format's null and deserializes back
// without dispatching to a registered type.
type TypeMapOpt[K comparable] struct {
	entries map[K]Value // nil means an explicit null
	order   []K
	unknown *UnknownEntries[K]
}

// NewTypeMapOpt creates an empty TypeMapOpt.
func NewTypeMapOpt[K comparable]() *TypeMapOpt[K] {
	return &TypeMapOpt[K]{entries: map[K]Value{}}
}

// NewTypeMapOptWithCapacity creates an empty TypeMapOpt pre-sized for n
// entries.
func NewTypeMapOptWithCapacity[K comparable](n int) *TypeMapOpt[K] {
	return &TypeMapOpt[K]{
		entries: make(map[K]Value, n),
		order:   make([]K, 0, n),
	}
}

// PutOpt wraps value and stores it under key. A nil value stores an explicit
// null. It returns the previous slot and whether the key existed.
func PutOpt[T any, K comparable](m *TypeMapOpt[K], key K, value *T) (Value, bool) {
	if value == nil {
		return m.PutRaw(key, nil)
	}

	return m.PutRaw(key, NewBox(*value))
}

// GetOpt looks up key and downcasts. ok reports whether the key is present;
// a nil pointer with ok=true means the slot holds an explicit null (or a
// value of a different type — mismatches are soft, never an error).
func GetOpt[T any, K comparable](m *TypeMapOpt[K], key K) (*T, bool) {
	value, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if value == nil {
		return nil, true
	}

	inner, _ := Downcast[T](value)
	return inner, true
}

// PutRaw stores an already-erased value (or nil for an explicit null) under
// key, returning the previous slot and whether the key existed.
func (m *TypeMapOpt[K]) PutRaw(key K, value Value) (Value, bool) {
	previous, existed := m.entries[key]
	if !existed {
		m.order = append(m.order, key)
	}

	m.entries[key] = value
	return previous, existed
}

// GetRaw returns the erased value stored under key; a nil Value with ok=true
// is an explicit null.
func (m *TypeMapOpt[K]) GetRaw(key K) (Value, bool) {
	value, ok := m.entries[key]
	return value, ok
}

// Delete removes key, returning the slot it held and whether it existed.
func (m *TypeMapOpt[K]) Delete(key K) (Value, bool) {
	value, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	delete(m.entries, key)
	for idx, existing := range m.order {
		if existing == key {
			m.order = append(m.order[:idx], m.order[idx+1:]...)
			break
		}
	}

	return value, true
}

// Len returns the number of typed slots, explicit nulls included.
func (m *TypeMapOpt[K]) Len() int {
	return len(m.entries)
}

// Keys iterates over keys in insertion order.
func (m *TypeMapOpt[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, key := range m.order {
			if !yield(key) {
				return
			}
		}
	}
}

// All iterates over slots in insertion order; nil values are explicit nulls.
func (m *TypeMapOpt[K]) All() iter.Seq2[K, Value] {
	return func(yield func(K, Value) bool) {
		for _, key := range m.order {
			if !yield(key, m.entries[key]) {
				return
			}
		}
	}
}

// UnknownEntries returns the side table of entries whose key had no
// registered type during deserialization, or nil when the fallback was not
// enabled.
func (m *TypeMapOpt[K]) UnknownEntries() *UnknownEntries[K] {
	return m.unknown
}

// IntoInner returns the underlying slots and the unknown-entries side table.
// The map must not be used afterwards.
func (m *TypeMapOpt[K]) IntoInner() (map[K]Value, *UnknownEntries[K]) {
	return m.entries, m.unknown
}

// Clone returns a deep copy; explicit nulls stay null.
func (m *TypeMapOpt[K]) Clone() *TypeMapOpt[K] {
	cloned := NewTypeMapOptWithCapacity[K](len(m.entries))
	for key, value := range m.All() {
		if value == nil {
			cloned.PutRaw(key, nil)
			continue
		}
		cloned.PutRaw(key, value.Clone())
	}

	if m.unknown != nil {
		cloned.unknown = m.unknown.clone()
	}

	return cloned
}

// Marshal serializes the map through the given format; explicit nulls encode
// as the format's null, and captured unknown entries are re-emitted.
func (m *TypeMapOpt[K]) Marshal(f codec.Format) ([]byte, error) {
	return f.Marshal(m.marshalTree())
}

func (m *TypeMapOpt[K]) marshalTree() codec.Map {
	tree := make(codec.Map, 0, len(m.order))
	for key, value := range m.All() {
		if value == nil {
			tree = append(tree, codec.Entry{Key: key, Value: nil})
			continue
		}
		tree = append(tree, codec.Entry{Key: key, Value: value.Inner()})
	}

	if m.unknown != nil {
		for key, raw := range m.unknown.All() {
			if raw == nil {
				tree = append(tree, codec.Entry{Key: key, Value: nil})
				continue
			}
			tree = append(tree, codec.Entry{Key: key, Value: raw})
		}
	}

	return tree
}

func (m *TypeMapOpt[K]) MarshalYAML() (any, error)    { return m.marshalTree(), nil }
func (m *TypeMapOpt[K]) MarshalJSON() ([]byte, error) { return m.marshalTree().MarshalJSON() }
func (m *TypeMapOpt[K]) MarshalCBOR() ([]byte, error) { return m.marshalTree().MarshalCBOR() }

// String renders the map for debugging.
func (m *TypeMapOpt[K]) String() string {
	var sb strings.Builder
	sb.WriteString("{")

	first := true
	for key, value := range m.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false

		if value == nil {
			fmt.Fprintf(&sb, "%v: null", key)
			continue
		}
		fmt.Fprintf(&sb, "%v: %s(%v)", key, value.TypeName(), derefInner(value.Inner()))
	}

	sb.WriteString("}")
	return sb.String()
}
