// Package codec abstracts the structured-data formats a type map can be
// serialized to. The registry and map types only ever see the Format and Raw
// interfaces; the YAML, JSON and CBOR adapters live alongside them here.
package codec

// Format is one self-describing wire format.
//
// Marshal and Unmarshal behave like the format's usual top-level functions.
// Parse decodes bytes into a Raw cursor so a caller can inspect the shape of
// the data and defer the choice of concrete type.
type Format interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, out any) error
	Parse(data []byte) (Raw, error)
}

// Raw is a value decoded from a Format before its concrete type is known.
//
// A Raw is round-trippable: marshaling it through the Format that produced it
// re-emits the captured data unchanged. This is what makes it usable as the
// fallback representation for unknown map entries.
type Raw interface {
	// Decode decodes the captured value into out, exactly as the format's
	// Unmarshal would.
	Decode(out any) error

	// IsNull reports whether the captured value is the format's null.
	IsNull() bool

	// Entries returns the key/value pairs of a map value in input order, or
	// false if the value is not a map. Formats whose maps carry no order on
	// the wire (CBOR) return entries in a deterministic but unspecified
	// order.
	Entries() ([]RawEntry, bool)
}

// RawEntry is one key/value pair of an undecoded map.
type RawEntry struct {
	Key   Raw
	Value Raw
}

// Map is an insertion-ordered map tree. Every adapter in this package encodes
// a Map in entry order where the wire format permits it. Values may be plain
// Go values, nested Maps, or Raw cursors.
type Map []Entry

// Entry is one key/value pair of a Map. A nil Value encodes as the format's
// null.
type Entry struct {
	Key   any
	Value any
}
