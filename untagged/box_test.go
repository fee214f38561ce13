package untagged

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azriel91/type-reg/codec"
)

func TestBoxTypeIdentity(t *testing.T) {
	box := NewBox(uint32(1))

	require.Equal(t, "uint32", string(box.TypeName()))
	require.Equal(t, reflect.TypeFor[uint32](), box.Type())

	named := NewBox(accountA{N: 1})
	require.Equal(t, "github.com/azriel91/type-reg/untagged.accountA", string(named.TypeName()))
}

func TestBoxDowncast(t *testing.T) {
	box := NewBox(uint32(1))

	value, ok := Downcast[uint32](box)
	require.True(t, ok)
	require.Equal(t, uint32(1), *value)

	_, ok = Downcast[uint64](box)
	require.False(t, ok)

	_, ok = Downcast[uint32](nil)
	require.False(t, ok)
}

func TestBoxCloneIndependence(t *testing.T) {
	box := NewBox(accountB{Names: []string{"a"}})
	cloned := box.Clone()

	value, ok := Downcast[accountB](cloned)
	require.True(t, ok)
	value.Names[0] = "mutated"

	original, ok := Downcast[accountB](box)
	require.True(t, ok)
	require.Equal(t, []string{"a"}, original.Names)
}

func TestBoxDisplay(t *testing.T) {
	box := NewBoxDisplay(accountB{Names: []string{"a"}})

	require.Equal(t, "accountB[a]", box.String())
	require.Equal(t, "github.com/azriel91/type-reg/untagged.accountB", string(box.TypeName()))

	value, ok := Downcast[accountB](box)
	require.True(t, ok)
	require.Equal(t, []string{"a"}, value.Names)

	cloned, ok := Downcast[accountB](box.Clone())
	require.True(t, ok)
	cloned.Names[0] = "mutated"
	require.Equal(t, []string{"a"}, value.Names)
}

func TestRegisterDisplayProducesBoxDisplay(t *testing.T) {
	reg := NewTypeReg[string]()
	RegisterDisplay[accountB](reg, "account")

	value, err := reg.UnmarshalSingle(codec.YAML(), []byte("account:\n  names: [a, b]\n"))
	require.NoError(t, err)

	display, ok := value.(*BoxDisplay)
	require.True(t, ok)
	require.Equal(t, "accountB[a b]", display.String())
}
