package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlFormat struct{}

// YAML returns the YAML format adapter, backed by gopkg.in/yaml.v3. Map
// entries are emitted in insertion order.
func YAML() Format { return yamlFormat{} }

func (yamlFormat) Name() string { return "yaml" }

func (yamlFormat) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (yamlFormat) Unmarshal(data []byte, out any) error { return yaml.Unmarshal(data, out) }

func (yamlFormat) Parse(data []byte) (Raw, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	node := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		node = doc.Content[0]
	}

	return &yamlRaw{node: node}, nil
}

// yamlRaw wraps a parsed yaml.Node. The node keeps the original document
// structure, so re-marshaling preserves the captured value.
type yamlRaw struct {
	node *yaml.Node
}

func (r *yamlRaw) resolved() *yaml.Node {
	node := r.node
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func (r *yamlRaw) Decode(out any) error {
	return r.node.Decode(out)
}

func (r *yamlRaw) IsNull() bool {
	node := r.resolved()

	// an empty document parses to a zero node
	if node.Kind == 0 {
		return true
	}

	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func (r *yamlRaw) Entries() ([]RawEntry, bool) {
	node := r.resolved()
	if node.Kind != yaml.MappingNode {
		return nil, false
	}

	entries := make([]RawEntry, 0, len(node.Content)/2)
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		entries = append(entries, RawEntry{
			Key:   &yamlRaw{node: node.Content[idx]},
			Value: &yamlRaw{node: node.Content[idx+1]},
		})
	}

	return entries, true
}

// MarshalYAML re-emits the captured node.
func (r *yamlRaw) MarshalYAML() (any, error) {
	return r.node, nil
}

func (m Map) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, entry := range m {
		var key yaml.Node
		if err := key.Encode(entry.Key); err != nil {
			return nil, fmt.Errorf("encode map key %v: %w", entry.Key, err)
		}

		value, err := yamlValueNode(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("encode map value for key %v: %w", entry.Key, err)
		}

		out.Content = append(out.Content, &key, value)
	}

	return out, nil
}

func yamlValueNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case *yamlRaw:
		return v.node, nil

	case Raw:
		// a cursor captured by a different format, go through its plain value
		var plain any
		if err := v.Decode(&plain); err != nil {
			return nil, err
		}
		return yamlValueNode(plain)

	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return node, nil
	}
}
