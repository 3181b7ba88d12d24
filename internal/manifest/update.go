package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UpdateRegion persists a selected region into the manifest file.
// The file is rewritten through a yaml.Node tree so comments, key order
// and formatting survive the round trip.
func UpdateRegion(path, region string) error {
	return UpdateField(path, "region", region)
}

// UpdateField sets a top-level scalar field in the manifest file.
func UpdateField(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest file %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse manifest file %s: %w", path, err)
	}

	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("manifest file %s is not a mapping", path)
	}

	setMappingValue(doc.Content[0], key, value)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat manifest file %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write manifest file %s: %w", path, err)
	}

	return nil
}

// setMappingValue updates key in a mapping node, appending it when absent.
func setMappingValue(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1].SetString(value)
			return
		}
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	valueNode := &yaml.Node{Kind: yaml.ScalarNode}
	valueNode.SetString(value)
	mapping.Content = append(mapping.Content, keyNode, valueNode)
}
