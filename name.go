// Package typereg provides serializable heterogeneous maps: values of
// arbitrary concrete types are stored behind a type-erased handle, the whole
// map serializes generically, and a caller-supplied registry reconstructs the
// concrete types on deserialization.
//
// The two dispatch protocols live in their own packages:
//
//   - untagged: the dispatch key is the outer map key, registered explicitly.
//   - tagged: each value serializes as {type-name: value} and the type name
//     selects the decoder.
//
// The wire format is abstracted behind the codec package.
package typereg

import "reflect"

// TypeName identifies a concrete Go type by its fully qualified name.
//
// Named types use their full package path, e.g. "github.com/foo/bar.Baz", so
// tags do not collide across packages with the same base name. Predeclared
// and unnamed types use their reflect string form, e.g. "uint32" or
// "[]string".
type TypeName string

// NameOf returns the TypeName for the type parameter T.
func NameOf[T any]() TypeName {
	return NameOfType(reflect.TypeFor[T]())
}

// NameOfType returns the TypeName for a reflect.Type.
func NameOfType(ty reflect.Type) TypeName {
	if ty.Name() != "" && ty.PkgPath() != "" {
		return TypeName(ty.PkgPath() + "." + ty.Name())
	}

	return TypeName(ty.String())
}
