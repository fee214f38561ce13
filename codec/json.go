package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonFormat struct{}

// JSON returns the JSON format adapter, backed by encoding/json. Map entries
// are emitted in insertion order; object keys are read back in document
// order via the token stream.
func JSON() Format { return jsonFormat{} }

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonFormat) Unmarshal(data []byte, out any) error { return json.Unmarshal(data, out) }

func (jsonFormat) Parse(data []byte) (Raw, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("parse json: invalid document")
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &jsonRaw{raw: raw}, nil
}

// jsonRaw wraps an undecoded JSON fragment.
type jsonRaw struct {
	raw json.RawMessage

	// set for object keys, which arrive as strings even when the map key
	// type is numeric
	isKey bool
}

func (r *jsonRaw) Decode(out any) error {
	if err := json.Unmarshal(r.raw, out); err != nil {
		if !r.isKey {
			return err
		}

		// stdlib encodes non-string map keys as quoted literals, retry with
		// the quotes stripped
		var literal string
		if uerr := json.Unmarshal(r.raw, &literal); uerr != nil {
			return err
		}
		if uerr := json.Unmarshal([]byte(literal), out); uerr != nil {
			return err
		}
	}

	return nil
}

func (r *jsonRaw) IsNull() bool {
	return bytes.Equal(bytes.TrimSpace(r.raw), []byte("null"))
}

func (r *jsonRaw) Entries() ([]RawEntry, bool) {
	trimmed := bytes.TrimSpace(r.raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}

	var entries []RawEntry
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, false
		}

		key, ok := keyToken.(string)
		if !ok {
			return nil, false
		}

		keyRaw, err := json.Marshal(key)
		if err != nil {
			return nil, false
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}

		entries = append(entries, RawEntry{
			Key:   &jsonRaw{raw: keyRaw, isKey: true},
			Value: &jsonRaw{raw: value},
		})
	}

	return entries, true
}

// MarshalJSON re-emits the captured fragment.
func (r *jsonRaw) MarshalJSON() ([]byte, error) {
	return r.raw, nil
}

func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for idx, entry := range m {
		if idx > 0 {
			buf.WriteByte(',')
		}

		key, err := jsonKeyBytes(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("encode map key %v: %w", entry.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := jsonValueBytes(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("encode map value for key %v: %w", entry.Key, err)
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonKeyBytes(key any) ([]byte, error) {
	encoded, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}

	// object keys must be strings, quote non-string keys like stdlib does
	// for map[int]T
	if len(encoded) > 0 && encoded[0] != '"' {
		quoted, err := json.Marshal(string(encoded))
		if err != nil {
			return nil, err
		}
		return quoted, nil
	}

	return encoded, nil
}

func jsonValueBytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return []byte("null"), nil

	case *jsonRaw:
		return v.raw, nil

	case Raw:
		var plain any
		if err := v.Decode(&plain); err != nil {
			return nil, err
		}
		return jsonValueBytes(plain)

	default:
		return json.Marshal(v)
	}
}
