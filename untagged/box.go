package untagged

import (
	"fmt"
	"reflect"

	typereg "github.com/azriel91/type-reg"
	"github.com/azriel91/type-reg/internal/clone"
)

// Box wraps a value of any type with no additional constraints.
type Box struct {
	inner any // always a *T
	ty    reflect.Type
}

// NewBox wraps the given value.
func NewBox[T any](value T) *Box {
	return &Box{
		inner: &value,
		ty:    reflect.TypeFor[T](),
	}
}

func (b *Box) TypeName() typereg.TypeName { return typereg.NameOfType(b.ty) }

func (b *Box) Type() reflect.Type { return b.ty }

func (b *Box) Inner() any { return b.inner }

func (b *Box) Clone() Value {
	return &Box{
		inner: clone.Clone(b.inner),
		ty:    b.ty,
	}
}

// BoxDisplay wraps a value that can additionally render itself as text. Use
// it when stored values need a human readable form without knowing their
// concrete type.
type BoxDisplay struct {
	inner any // always a *T
	ty    reflect.Type
}

// NewBoxDisplay wraps the given value, requiring fmt.Stringer.
func NewBoxDisplay[T fmt.Stringer](value T) *BoxDisplay {
	return &BoxDisplay{
		inner: &value,
		ty:    reflect.TypeFor[T](),
	}
}

func (b *BoxDisplay) TypeName() typereg.TypeName { return typereg.NameOfType(b.ty) }

func (b *BoxDisplay) Type() reflect.Type { return b.ty }

func (b *BoxDisplay) Inner() any { return b.inner }

func (b *BoxDisplay) Clone() Value {
	return &BoxDisplay{
		inner: clone.Clone(b.inner),
		ty:    b.ty,
	}
}

func (b *BoxDisplay) String() string {
	// the method set of *T includes T's value-receiver String
	if s, ok := b.inner.(fmt.Stringer); ok {
		return s.String()
	}

	// T is itself a pointer type, deref the extra level
	return reflect.ValueOf(b.inner).Elem().Interface().(fmt.Stringer).String()
}
