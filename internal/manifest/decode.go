package manifest

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

// DecodeJSON parses a manifest document from JSON.
func DecodeJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	return &m, nil
}

// DecodeYAML parses a manifest document from YAML. YAML documents are
// normalized through JSON so tile pass-through fields decode identically in
// both formats.
func DecodeYAML(data []byte) (*Manifest, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	return DecodeJSON(jsonData)
}

// EncodeJSON serializes a manifest back to JSON.
func EncodeJSON(m *Manifest) ([]byte, error) {
	data, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}
