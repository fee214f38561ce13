// Package tagged implements the type registry and map whose serialized form
// embeds a type tag in every value: each value encodes as a single-entry map
// {type-name: value}, and deserialization dispatches on the embedded name.
//
// The tag is the fully qualified Go type name (see typereg.NameOf), which is
// stable for a given module path but couples serialized data to it; prefer
// the untagged protocol when the data outlives the code layout.
package tagged

import (
	"reflect"

	typereg "github.com/azriel91/type-reg"
	"github.com/azriel91/type-reg/codec"
	"github.com/azriel91/type-reg/internal/clone"
)

// Value is a type-erased value that serializes with its type tag.
type Value interface {
	// TypeName returns the fully qualified name of the wrapped type, which
	// doubles as the wire tag.
	TypeName() typereg.TypeName

	// Type returns the reflect.Type of the wrapped value.
	Type() reflect.Type

	// Inner returns a pointer to the wrapped value, as an any.
	Inner() any

	// Clone returns an independent deep copy of this value.
	Clone() Value
}

// New wraps the given value.
func New[T any](value T) Value {
	return &box{
		inner: &value,
		ty:    reflect.TypeFor[T](),
	}
}

// Downcast narrows an erased value back to its concrete type. A type
// mismatch returns (nil, false), never a panic.
func Downcast[T any](v Value) (*T, bool) {
	if v == nil {
		return nil, false
	}

	inner, ok := v.Inner().(*T)
	return inner, ok
}

type box struct {
	inner any // always a *T
	ty    reflect.Type
}

func (b *box) TypeName() typereg.TypeName { return typereg.NameOfType(b.ty) }

func (b *box) Type() reflect.Type { return b.ty }

func (b *box) Inner() any { return b.inner }

func (b *box) Clone() Value {
	return &box{
		inner: clone.Clone(b.inner),
		ty:    b.ty,
	}
}

// tree is the externally tagged form, {type-name: value}.
func tree(v Value) codec.Map {
	return codec.Map{{Key: string(v.TypeName()), Value: v.Inner()}}
}

func (b *box) MarshalYAML() (any, error)    { return tree(b), nil }
func (b *box) MarshalJSON() ([]byte, error) { return tree(b).MarshalJSON() }
func (b *box) MarshalCBOR() ([]byte, error) { return tree(b).MarshalCBOR() }
