package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadConfigYAML parses a mapping declaration such as:
//
//	target_mode: collection
//	format: positional
//	entity_key: "1"
//	mappings:
//	  - address: "3"
//	    category: measurement
//	    field: occupancy
//
// Mappings are normalized: missing ids are assigned and fields that do not
// belong to their category are reset to the category default.
func LoadConfigYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse mapping config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// MarshalConfigYAML renders cfg in the format LoadConfigYAML reads.
func MarshalConfigYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
