package tagged

import (
	"fmt"
	"strings"

	typereg "github.com/azriel91/type-reg"
	"github.com/azriel91/type-reg/codec"
)

// DecodeFn decodes one raw value into an erased value of a concrete type.
type DecodeFn func(raw codec.Raw) (Value, error)

// TypeReg maps type tags to the decode logic of registered types. The tag is
// derived from the registered type's fully qualified name, so no explicit
// key is supplied at registration.
type TypeReg struct {
	fns   map[typereg.TypeName]DecodeFn
	order []typereg.TypeName
}

// NewTypeReg creates an empty TypeReg.
func NewTypeReg() *TypeReg {
	return &TypeReg{fns: map[typereg.TypeName]DecodeFn{}}
}

// NewTypeRegWithCapacity creates an empty TypeReg pre-sized for n
// registrations.
func NewTypeRegWithCapacity(n int) *TypeReg {
	return &TypeReg{
		fns:   make(map[typereg.TypeName]DecodeFn, n),
		order: make([]typereg.TypeName, 0, n),
	}
}

// Register makes the concrete type T deserializable; the dispatch tag is T's
// fully qualified type name. Registering the same type again replaces the
// previous association.
func Register[T any](reg *TypeReg) {
	reg.RegisterFn(typereg.NameOf[T](), func(raw codec.Raw) (Value, error) {
		var value T
		if err := raw.Decode(&value); err != nil {
			return nil, err
		}

		return New(value), nil
	})
}

// RegisterFn associates a custom decode function with a tag. Last
// registration wins.
func (reg *TypeReg) RegisterFn(name typereg.TypeName, fn DecodeFn) {
	if _, exists := reg.fns[name]; !exists {
		reg.order = append(reg.order, name)
	}
	reg.fns[name] = fn
}

// Len returns the number of registered types.
func (reg *TypeReg) Len() int {
	return len(reg.fns)
}

// Names returns the registered type tags in registration order.
func (reg *TypeReg) Names() []typereg.TypeName {
	return append([]typereg.TypeName(nil), reg.order...)
}

// UnmarshalSingle deserializes one externally tagged value, encoded as the
// single-entry map {type-name: value}.
func (reg *TypeReg) UnmarshalSingle(f codec.Format, data []byte) (Value, error) {
	raw, err := f.Parse(data)
	if err != nil {
		return nil, err
	}

	return reg.DecodeSingle(raw)
}

// DecodeSingle is UnmarshalSingle for an already-parsed raw value.
func (reg *TypeReg) DecodeSingle(raw codec.Raw) (Value, error) {
	entries, ok := raw.Entries()
	if !ok {
		return nil, fmt.Errorf("expected a single-entry map {type-name: value}")
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("expected a single-entry map {type-name: value}, got %d entries", len(entries))
	}

	var tag string
	if err := entries[0].Key.Decode(&tag); err != nil {
		return nil, fmt.Errorf("decode type tag: %w", err)
	}

	fn, registered := reg.fns[typereg.TypeName(tag)]
	if !registered {
		return nil, reg.unknownTagError(typereg.TypeName(tag))
	}

	return fn(entries[0].Value)
}

// UnmarshalMap deserializes an encoded map of externally tagged values into
// a TypeMap, dispatching each entry on the tag embedded in its value.
func UnmarshalMap[K comparable](reg *TypeReg, f codec.Format, data []byte) (*TypeMap[K], error) {
	raw, err := f.Parse(data)
	if err != nil {
		return nil, err
	}

	return DecodeMap[K](reg, raw)
}

// DecodeMap is UnmarshalMap for an already-parsed raw value.
func DecodeMap[K comparable](reg *TypeReg, raw codec.Raw) (*TypeMap[K], error) {
	entries, ok := raw.Entries()
	if !ok {
		return nil, fmt.Errorf("expected a map of tagged data types")
	}

	typeMap := NewTypeMapWithCapacity[K](len(entries))
	for _, entry := range entries {
		var key K
		if err := entry.Key.Decode(&key); err != nil {
			return nil, fmt.Errorf("decode map key: %w", err)
		}

		value, err := reg.DecodeSingle(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("decode value for key %v: %w", key, err)
		}

		typeMap.PutRaw(key, value)
	}

	return typeMap, nil
}

func (reg *TypeReg) unknownTagError(tag typereg.TypeName) error {
	return &typereg.UnknownKeyError[typereg.TypeName]{
		Key:        tag,
		Registered: reg.Names(),
	}
}

// String renders the registered tags for debugging. Decode functions have no
// useful rendering, so values print as "..".
func (reg *TypeReg) String() string {
	var sb strings.Builder
	sb.WriteString("{")

	for idx, name := range reg.order {
		if idx > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: ..", name)
	}

	sb.WriteString("}")
	return sb.String()
}
