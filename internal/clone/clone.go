// Package clone provides deep copies of arbitrary values via reflection.
package clone

import "reflect"

// Cloner lets a value control how it is deep copied. Values stored in a type
// map that hold state the reflective copy cannot reach, e.g. unexported
// reference fields, should implement this.
type Cloner interface {
	CloneValue() any
}

var clonerType = reflect.TypeFor[Cloner]()

// Clone returns a deep copy of value. Pointers, slices, maps, arrays, structs
// and interfaces are copied recursively; the result never aliases mutable
// state with the input.
//
// Unexported struct fields are carried over by the initial shallow copy but
// are not descended into, since reflection cannot set them. Channels and
// funcs are shared, not copied.
func Clone(value any) any {
	if value == nil {
		return nil
	}

	return cloneValue(reflect.ValueOf(value)).Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	if v.CanInterface() && v.Type().Implements(clonerType) {
		// a typed nil still implements the interface, guard against calling it
		if v.Kind() != reflect.Pointer || !v.IsNil() {
			cloned := reflect.ValueOf(v.Interface().(Cloner).CloneValue())

			// a value-receiver CloneValue reached through a pointer returns
			// the value type, re-wrap it
			if v.Kind() == reflect.Pointer && cloned.Type() == v.Type().Elem() {
				out := reflect.New(cloned.Type())
				out.Elem().Set(cloned)
				return out
			}

			return cloned.Convert(v.Type())
		}
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for idx := range v.Len() {
			out.Index(idx).Set(cloneValue(v.Index(idx)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(cloneValue(iter.Key()), cloneValue(iter.Value()))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for idx := range v.Len() {
			out.Index(idx).Set(cloneValue(v.Index(idx)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()

		// shallow copy first so unexported fields are carried over
		out.Set(v)

		for idx := range v.NumField() {
			field := out.Field(idx)
			if field.CanSet() {
				field.Set(cloneValue(v.Field(idx)))
			}
		}
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(cloneValue(v.Elem()))
		return out

	default:
		return v
	}
}
