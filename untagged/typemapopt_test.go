package untagged

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azriel91/type-reg/codec"
)

func TestTypeMapOptPutGet(t *testing.T) {
	m := NewTypeMapOpt[string]()

	one := uint32(1)
	_, existed := PutOpt(m, "one", &one)
	require.False(t, existed)

	_, existed = PutOpt[uint64](m, "two", nil)
	require.False(t, existed)

	t.Run("present value", func(t *testing.T) {
		value, ok := GetOpt[uint32](m, "one")
		require.True(t, ok)
		require.NotNil(t, value)
		require.Equal(t, uint32(1), *value)
	})

	t.Run("explicit null", func(t *testing.T) {
		value, ok := GetOpt[uint64](m, "two")
		require.True(t, ok)
		require.Nil(t, value)
	})

	t.Run("absent key", func(t *testing.T) {
		value, ok := GetOpt[uint32](m, "missing")
		require.False(t, ok)
		require.Nil(t, value)
	})

	t.Run("type mismatch is soft", func(t *testing.T) {
		value, ok := GetOpt[uint64](m, "one")
		require.True(t, ok)
		require.Nil(t, value)
	})
}

func TestTypeMapOptNullRoundTrip(t *testing.T) {
	for _, format := range []codec.Format{codec.YAML(), codec.JSON(), codec.CBOR()} {
		t.Run(format.Name(), func(t *testing.T) {
			reg := NewTypeReg[string]()
			Register[uint32](reg, "one")
			Register[uint64](reg, "two")

			source := NewTypeMapOpt[string]()
			one := uint32(1)
			PutOpt(source, "one", &one)
			PutOpt[uint64](source, "two", nil)

			encoded, err := source.Marshal(format)
			require.NoError(t, err)

			decoded, err := reg.UnmarshalMapOpt(format, encoded)
			require.NoError(t, err)

			value, ok := GetOpt[uint32](decoded, "one")
			require.True(t, ok)
			require.NotNil(t, value)
			require.Equal(t, uint32(1), *value)

			nullValue, ok := GetOpt[uint64](decoded, "two")
			require.True(t, ok)
			require.Nil(t, nullValue)

			// the null slot dispatches no decode, but the key is present
			rawValue, ok := decoded.GetRaw("two")
			require.True(t, ok)
			require.Nil(t, rawValue)
		})
	}
}

func TestTypeMapOptUnknownEntries(t *testing.T) {
	reg := NewTypeReg[string]().WithUnknownEntries()
	Register[uint32](reg, "one")

	encoded := []byte("one: 1\ntwo: 2\nthree: null\n")

	decoded, err := reg.UnmarshalMapOpt(codec.YAML(), encoded)
	require.NoError(t, err)

	value, ok := GetOpt[uint32](decoded, "one")
	require.True(t, ok)
	require.Equal(t, uint32(1), *value)

	unknown := decoded.UnknownEntries()
	require.NotNil(t, unknown)
	require.Equal(t, 2, unknown.Len())

	t.Run("unknown value captured raw", func(t *testing.T) {
		raw, ok := unknown.Get("two")
		require.True(t, ok)
		require.NotNil(t, raw)

		var two int
		require.NoError(t, raw.Decode(&two))
		require.Equal(t, 2, two)
	})

	t.Run("unknown null stays distinguishable", func(t *testing.T) {
		raw, ok := unknown.Get("three")
		require.True(t, ok)
		require.Nil(t, raw)

		_, ok = unknown.Get("absent")
		require.False(t, ok)
	})
}

func TestTypeMapOptCloneIndependence(t *testing.T) {
	original := NewTypeMapOpt[string]()
	account := accountB{Names: []string{"a"}}
	PutOpt(original, "account", &account)
	PutOpt[uint32](original, "null", nil)

	cloned := original.Clone()

	mutable, ok := GetOpt[accountB](cloned, "account")
	require.True(t, ok)
	mutable.Names[0] = "mutated"

	originalAccount, ok := GetOpt[accountB](original, "account")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, originalAccount.Names)

	nullValue, ok := GetOpt[uint32](cloned, "null")
	require.True(t, ok)
	require.Nil(t, nullValue)
}

func TestTypeMapOptInsertionOrderAndDelete(t *testing.T) {
	m := NewTypeMapOpt[string]()
	one := 1
	PutOpt(m, "zebra", &one)
	PutOpt[int](m, "apple", nil)
	PutOpt(m, "mango", &one)

	require.Equal(t, []string{"zebra", "apple", "mango"}, slices.Collect(m.Keys()))

	removed, existed := m.Delete("apple")
	require.True(t, existed)
	require.Nil(t, removed)
	require.Equal(t, []string{"zebra", "mango"}, slices.Collect(m.Keys()))

	_, existed = m.Delete("apple")
	require.False(t, existed)
}

func TestTypeMapOptString(t *testing.T) {
	m := NewTypeMapOpt[string]()
	one := uint32(1)
	PutOpt(m, "one", &one)
	PutOpt[uint64](m, "two", nil)

	require.Equal(t, "{one: uint32(1), two: null}", m.String())
}

func TestTypeMapOptMarshalNullYAML(t *testing.T) {
	m := NewTypeMapOpt[string]()
	one := uint32(1)
	PutOpt(m, "one", &one)
	PutOpt[uint64](m, "two", nil)

	encoded, err := m.Marshal(codec.YAML())
	require.NoError(t, err)
	require.Equal(t, "one: 1\ntwo: null\n", string(encoded))
}

func TestTypeMapOptIntoInner(t *testing.T) {
	m := NewTypeMapOpt[string]()
	one := uint32(1)
	PutOpt(m, "one", &one)

	inner, unknown := m.IntoInner()
	require.Len(t, inner, 1)
	require.Nil(t, unknown)
}
