package untagged

import (
	"fmt"
	"strings"

	typereg "github.com/azriel91/type-reg"
	"github.com/azriel91/type-reg/codec"
)

// DecodeFn decodes one raw value into an erased value of a concrete type.
type DecodeFn func(raw codec.Raw) (Value, error)

// TypeReg maps dispatch keys to the decode logic of registered types.
//
// Registries are plain values: create one, register the concrete types the
// data may contain, and pass it wherever deserialization happens. There is
// no global registry.
type TypeReg[K comparable] struct {
	fns   map[K]DecodeFn
	order []K

	// when set, entries with unregistered keys are captured raw instead of
	// failing deserialization
	unknownEntries bool
}

// NewTypeReg creates an empty TypeReg.
func NewTypeReg[K comparable]() *TypeReg[K] {
	return &TypeReg[K]{fns: map[K]DecodeFn{}}
}

// NewTypeRegWithCapacity creates an empty TypeReg pre-sized for n
// registrations.
func NewTypeRegWithCapacity[K comparable](n int) *TypeReg[K] {
	return &TypeReg[K]{
		fns:   make(map[K]DecodeFn, n),
		order: make([]K, 0, n),
	}
}

// WithUnknownEntries enables the unknown-entries fallback: map entries whose
// key has no registered type are captured into the map's side table instead
// of failing the whole deserialization. It returns the registry for
// chaining.
func (reg *TypeReg[K]) WithUnknownEntries() *TypeReg[K] {
	reg.unknownEntries = true
	return reg
}

// Register associates the concrete type T with key. Values under key decode
// into T wrapped in a Box. Registering the same key again replaces the
// previous association.
func Register[T any, K comparable](reg *TypeReg[K], key K) {
	reg.RegisterFn(key, func(raw codec.Raw) (Value, error) {
		var value T
		if err := raw.Decode(&value); err != nil {
			return nil, err
		}

		return NewBox(value), nil
	})
}

// RegisterDisplay is Register for types carrying the display capability;
// decoded values are wrapped in a BoxDisplay.
func RegisterDisplay[T fmt.Stringer, K comparable](reg *TypeReg[K], key K) {
	reg.RegisterFn(key, func(raw codec.Raw) (Value, error) {
		var value T
		if err := raw.Decode(&value); err != nil {
			return nil, err
		}

		return NewBoxDisplay(value), nil
	})
}

// RegisterFn associates a custom decode function with key. Last registration
// wins.
func (reg *TypeReg[K]) RegisterFn(key K, fn DecodeFn) {
	if _, exists := reg.fns[key]; !exists {
		reg.order = append(reg.order, key)
	}
	reg.fns[key] = fn
}

// Len returns the number of registered keys.
func (reg *TypeReg[K]) Len() int {
	return len(reg.fns)
}

// Keys returns the registered keys in registration order.
func (reg *TypeReg[K]) Keys() []K {
	return append([]K(nil), reg.order...)
}

// UnmarshalMap deserializes an encoded map of arbitrary values into a
// TypeMap, dispatching each entry on its map key.
func (reg *TypeReg[K]) UnmarshalMap(f codec.Format, data []byte) (*TypeMap[K], error) {
	raw, err := f.Parse(data)
	if err != nil {
		return nil, err
	}

	return reg.DecodeMap(raw)
}

// DecodeMap is UnmarshalMap for an already-parsed raw value.
func (reg *TypeReg[K]) DecodeMap(raw codec.Raw) (*TypeMap[K], error) {
	entries, ok := raw.Entries()
	if !ok {
		return nil, fmt.Errorf("expected a map of arbitrary data types")
	}

	typeMap := NewTypeMapWithCapacity[K](len(entries))
	if reg.unknownEntries {
		typeMap.unknown = newUnknownEntries[K]()
	}

	for _, entry := range entries {
		var key K
		if err := entry.Key.Decode(&key); err != nil {
			return nil, fmt.Errorf("decode map key: %w", err)
		}

		fn, registered := reg.fns[key]
		if !registered {
			if reg.unknownEntries {
				typeMap.unknown.put(key, entry.Value)
				continue
			}

			return nil, reg.unknownKeyError(key)
		}

		value, err := fn(entry.Value)
		if err != nil {
			return nil, err
		}
		typeMap.PutRaw(key, value)
	}

	return typeMap, nil
}

// UnmarshalMapOpt deserializes an encoded map whose values may be null into
// a TypeMapOpt. Null entries become explicit nulls without dispatching.
func (reg *TypeReg[K]) UnmarshalMapOpt(f codec.Format, data []byte) (*TypeMapOpt[K], error) {
	raw, err := f.Parse(data)
	if err != nil {
		return nil, err
	}

	return reg.DecodeMapOpt(raw)
}

// DecodeMapOpt is UnmarshalMapOpt for an already-parsed raw value.
func (reg *TypeReg[K]) DecodeMapOpt(raw codec.Raw) (*TypeMapOpt[K], error) {
	entries, ok := raw.Entries()
	if !ok {
		return nil, fmt.Errorf("expected a map of arbitrary data types")
	}

	typeMap := NewTypeMapOptWithCapacity[K](len(entries))
	if reg.unknownEntries {
		typeMap.unknown = newUnknownEntries[K]()
	}

	for _, entry := range entries {
		var key K
		if err := entry.Key.Decode(&key); err != nil {
			return nil, fmt.Errorf("decode map key: %w", err)
		}

		fn, registered := reg.fns[key]
		if !registered {
			if reg.unknownEntries {
				// keep nil for a present-but-null unknown entry so it stays
				// distinguishable from an absent key
				if entry.Value.IsNull() {
					typeMap.unknown.put(key, nil)
				} else {
					typeMap.unknown.put(key, entry.Value)
				}
				continue
			}

			return nil, reg.unknownKeyError(key)
		}

		if entry.Value.IsNull() {
			typeMap.PutRaw(key, nil)
			continue
		}

		value, err := fn(entry.Value)
		if err != nil {
			return nil, err
		}
		typeMap.PutRaw(key, value)
	}

	return typeMap, nil
}

// UnmarshalSingle deserializes one externally tagged value, encoded as a
// single-entry map {key: value}, and returns the erased value.
func (reg *TypeReg[K]) UnmarshalSingle(f codec.Format, data []byte) (Value, error) {
	raw, err := f.Parse(data)
	if err != nil {
		return nil, err
	}

	return reg.DecodeSingle(raw)
}

// DecodeSingle is UnmarshalSingle for an already-parsed raw value.
func (reg *TypeReg[K]) DecodeSingle(raw codec.Raw) (Value, error) {
	entries, ok := raw.Entries()
	if !ok {
		return nil, fmt.Errorf("expected a single-entry map {key: value}")
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("expected a single-entry map {key: value}, got %d entries", len(entries))
	}

	var key K
	if err := entries[0].Key.Decode(&key); err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}

	fn, registered := reg.fns[key]
	if !registered {
		return nil, reg.unknownKeyError(key)
	}

	return fn(entries[0].Value)
}

func (reg *TypeReg[K]) unknownKeyError(key K) error {
	return &typereg.UnknownKeyError[K]{
		Key:        key,
		Registered: reg.Keys(),
	}
}

// String renders the registered keys for debugging. Decode functions have no
// useful rendering, so values print as "..".
func (reg *TypeReg[K]) String() string {
	var sb strings.Builder
	sb.WriteString("{")

	for idx, key := range reg.order {
		if idx > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: ..", key)
	}

	sb.WriteString("}")
	return sb.String()
}
