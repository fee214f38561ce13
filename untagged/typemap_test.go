package untagged

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azriel91/type-reg/codec"
)

type accountA struct {
	N uint32 `yaml:"n" json:"n"`
}

type accountB struct {
	Names []string `yaml:"names" json:"names"`
}

func (b accountB) String() string {
	return fmt.Sprintf("accountB%v", b.Names)
}

func TestTypeMapPutGet(t *testing.T) {
	m := NewTypeMap[string]()

	require.Nil(t, Put(m, "one", uint32(1)))
	require.Nil(t, Put(m, "two", uint64(2)))
	require.Nil(t, Put(m, "three", accountA{N: 3}))

	one, ok := Get[uint32](m, "one")
	require.True(t, ok)
	require.Equal(t, uint32(1), *one)

	two, ok := Get[uint64](m, "two")
	require.True(t, ok)
	require.Equal(t, uint64(2), *two)

	three, ok := Get[accountA](m, "three")
	require.True(t, ok)
	require.Equal(t, accountA{N: 3}, *three)

	require.Equal(t, 3, m.Len())
}

func TestTypeMapDowncastSafety(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "one", uint32(1))

	t.Run("absent key", func(t *testing.T) {
		value, ok := Get[uint32](m, "missing")
		require.False(t, ok)
		require.Nil(t, value)
	})

	t.Run("type mismatch", func(t *testing.T) {
		value, ok := Get[uint64](m, "one")
		require.False(t, ok)
		require.Nil(t, value)
	})
}

func TestTypeMapGetMutatesInPlace(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "one", uint32(1))

	one, ok := Get[uint32](m, "one")
	require.True(t, ok)
	*one += 1

	again, ok := Get[uint32](m, "one")
	require.True(t, ok)
	require.Equal(t, uint32(2), *again)
}

func TestTypeMapOverwriteReturnsPrevious(t *testing.T) {
	m := NewTypeMap[string]()

	require.Nil(t, Put(m, "one", uint32(1)))
	previous := Put(m, "one", "now a string")
	require.NotNil(t, previous)

	n, ok := Downcast[uint32](previous)
	require.True(t, ok)
	require.Equal(t, uint32(1), *n)

	value, ok := Get[string](m, "one")
	require.True(t, ok)
	require.Equal(t, "now a string", *value)
	require.Equal(t, 1, m.Len())
}

func TestTypeMapInsertionOrder(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "zebra", 1)
	Put(m, "apple", 2)
	Put(m, "mango", 3)

	require.Equal(t, []string{"zebra", "apple", "mango"}, slices.Collect(m.Keys()))

	// overwriting must not move the key
	Put(m, "apple", 20)
	require.Equal(t, []string{"zebra", "apple", "mango"}, slices.Collect(m.Keys()))
}

func TestTypeMapDelete(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "one", uint32(1))
	Put(m, "two", uint64(2))

	removed := m.Delete("one")
	require.NotNil(t, removed)
	require.Equal(t, 1, m.Len())
	require.Equal(t, []string{"two"}, slices.Collect(m.Keys()))

	require.Nil(t, m.Delete("one"))
}

func TestTypeMapCloneIndependence(t *testing.T) {
	original := NewTypeMap[string]()
	Put(original, "account", accountB{Names: []string{"a"}})
	Put(original, "count", uint32(1))

	cloned := original.Clone()

	// mutate the clone through its typed accessor
	account, ok := Get[accountB](cloned, "account")
	require.True(t, ok)
	account.Names[0] = "mutated"

	count, ok := Get[uint32](cloned, "count")
	require.True(t, ok)
	*count = 99

	// the original must be untouched
	originalAccount, ok := Get[accountB](original, "account")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, originalAccount.Names)

	originalCount, ok := Get[uint32](original, "count")
	require.True(t, ok)
	require.Equal(t, uint32(1), *originalCount)
}

func TestTypeMapString(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "one", uint32(1))

	require.Equal(t, "{one: uint32(1)}", m.String())
}

func TestTypeMapMarshal(t *testing.T) {
	for _, format := range []codec.Format{codec.YAML(), codec.JSON(), codec.CBOR()} {
		t.Run(format.Name(), func(t *testing.T) {
			m := NewTypeMap[string]()
			Put(m, "one", uint32(1))
			Put(m, "two", uint64(2))

			encoded, err := m.Marshal(format)
			require.NoError(t, err)

			var decoded map[string]uint64
			require.NoError(t, format.Unmarshal(encoded, &decoded))
			require.Equal(t, map[string]uint64{"one": 1, "two": 2}, decoded)
		})
	}
}

func TestTypeMapMarshalYAMLOrder(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "zebra", 1)
	Put(m, "apple", 2)

	encoded, err := m.Marshal(codec.YAML())
	require.NoError(t, err)
	require.Equal(t, "zebra: 1\napple: 2\n", string(encoded))
}

func TestTypeMapRawAccess(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "one", uint32(1))

	raw, ok := m.GetRaw("one")
	require.True(t, ok)
	require.Equal(t, "uint32", string(raw.TypeName()))

	m2 := NewTypeMap[string]()
	m2.PutRaw("copied", raw)

	value, ok := Get[uint32](m2, "copied")
	require.True(t, ok)
	require.Equal(t, uint32(1), *value)
}

func TestTypeMapIntoInner(t *testing.T) {
	m := NewTypeMap[string]()
	Put(m, "one", uint32(1))

	inner, unknown := m.IntoInner()
	require.Len(t, inner, 1)
	require.Nil(t, unknown)
}
