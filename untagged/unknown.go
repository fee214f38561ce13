package untagged

import (
	"iter"

	"github.com/azriel91/type-reg/codec"
)

// UnknownEntries holds map entries whose dispatch key had no registered type
// during deserialization. Values are kept in their raw, round-trippable form
// instead of being discarded, so re-serializing the owning map preserves
// them.
//
// A key appears in either the typed map or this table, never both. For
// optional-value maps a nil Raw records a present-but-null entry.
type UnknownEntries[K comparable] struct {
	entries map[K]codec.Raw
	order   []K
}

func newUnknownEntries[K comparable]() *UnknownEntries[K] {
	return &UnknownEntries[K]{entries: map[K]codec.Raw{}}
}

// Get returns the raw value captured under key. For optional-value maps a
// (nil, true) result means the entry was present but null.
func (u *UnknownEntries[K]) Get(key K) (codec.Raw, bool) {
	raw, ok := u.entries[key]
	return raw, ok
}

// Len returns the number of captured entries.
func (u *UnknownEntries[K]) Len() int {
	return len(u.entries)
}

// Keys iterates over captured keys in capture order.
func (u *UnknownEntries[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, key := range u.order {
			if !yield(key) {
				return
			}
		}
	}
}

// All iterates over captured entries in capture order.
func (u *UnknownEntries[K]) All() iter.Seq2[K, codec.Raw] {
	return func(yield func(K, codec.Raw) bool) {
		for _, key := range u.order {
			if !yield(key, u.entries[key]) {
				return
			}
		}
	}
}

func (u *UnknownEntries[K]) put(key K, raw codec.Raw) {
	if _, exists := u.entries[key]; !exists {
		u.order = append(u.order, key)
	}
	u.entries[key] = raw
}

// clone shares the raw values, which are never mutated after capture.
func (u *UnknownEntries[K]) clone() *UnknownEntries[K] {
	cloned := &UnknownEntries[K]{
		entries: make(map[K]codec.Raw, len(u.entries)),
		order:   append([]K(nil), u.order...),
	}
	for key, raw := range u.entries {
		cloned.entries[key] = raw
	}

	return cloned
}
