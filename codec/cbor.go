package codec

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

type cborFormat struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns the CBOR format adapter (RFC 8949), backed by
// github.com/fxamacker/cbor/v2 with canonical encoding. CBOR maps carry no
// order on the wire; Entries returns them sorted by encoded key so iteration
// stays deterministic.
func CBOR() Format {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encode options: %v", err))
	}

	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor decode options: %v", err))
	}

	return &cborFormat{enc: enc, dec: dec}
}

func (*cborFormat) Name() string { return "cbor" }

func (f *cborFormat) Marshal(v any) ([]byte, error) { return f.enc.Marshal(v) }

func (f *cborFormat) Unmarshal(data []byte, out any) error { return f.dec.Unmarshal(data, out) }

func (f *cborFormat) Parse(data []byte) (Raw, error) {
	if err := f.dec.Wellformed(data); err != nil {
		return nil, err
	}

	raw := make(cbor.RawMessage, len(data))
	copy(raw, data)
	return &cborRaw{raw: raw, format: f}, nil
}

// cborRaw wraps an undecoded CBOR fragment.
type cborRaw struct {
	raw    cbor.RawMessage
	format *cborFormat
}

func (r *cborRaw) Decode(out any) error {
	return r.format.dec.Unmarshal(r.raw, out)
}

func (r *cborRaw) IsNull() bool {
	// null (0xf6) or undefined (0xf7)
	return len(r.raw) == 1 && (r.raw[0] == 0xf6 || r.raw[0] == 0xf7)
}

func (r *cborRaw) Entries() ([]RawEntry, bool) {
	if len(r.raw) == 0 {
		return nil, false
	}

	// major type 5 is a map, 0xbf is an indefinite-length map
	if r.raw[0]>>5 != 5 && r.raw[0] != 0xbf {
		return nil, false
	}

	var decoded map[any]cbor.RawMessage
	if err := r.format.dec.Unmarshal(r.raw, &decoded); err != nil {
		return nil, false
	}

	entries := make([]RawEntry, 0, len(decoded))
	for key, value := range decoded {
		encodedKey, err := r.format.enc.Marshal(key)
		if err != nil {
			return nil, false
		}

		entries = append(entries, RawEntry{
			Key:   &cborRaw{raw: encodedKey, format: r.format},
			Value: &cborRaw{raw: value, format: r.format},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Key.(*cborRaw).raw, entries[j].Key.(*cborRaw).raw) < 0
	})

	return entries, true
}

// MarshalCBOR re-emits the captured fragment.
func (r *cborRaw) MarshalCBOR() ([]byte, error) {
	return r.raw, nil
}

var cborMapEnc = func() cbor.EncMode {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encode options: %v", err))
	}
	return enc
}()

// MarshalCBOR writes the map header by hand so entries keep their order.
func (m Map) MarshalCBOR() ([]byte, error) {
	enc := cborMapEnc

	var buf bytes.Buffer
	writeCBORMapHeader(&buf, uint64(len(m)))

	for _, entry := range m {
		key, err := enc.Marshal(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("encode map key %v: %w", entry.Key, err)
		}
		buf.Write(key)

		value, err := cborValueBytes(enc, entry.Value)
		if err != nil {
			return nil, fmt.Errorf("encode map value for key %v: %w", entry.Key, err)
		}
		buf.Write(value)
	}

	return buf.Bytes(), nil
}

func cborValueBytes(enc cbor.EncMode, v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return []byte{0xf6}, nil

	case *cborRaw:
		return v.raw, nil

	case Raw:
		var plain any
		if err := v.Decode(&plain); err != nil {
			return nil, err
		}
		return cborValueBytes(enc, plain)

	default:
		return enc.Marshal(v)
	}
}

func writeCBORMapHeader(buf *bytes.Buffer, n uint64) {
	const majorMap = 5 << 5

	switch {
	case n < 24:
		buf.WriteByte(majorMap | byte(n))
	case n <= 0xff:
		buf.WriteByte(majorMap | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(majorMap | 25)
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	default:
		buf.WriteByte(majorMap | 26)
		buf.WriteByte(byte(n >> 24))
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	}
}
