package config

import (
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// decode parses the top level of a configuration file. Files ending in .toml are
// TOML; everything else is YAML.
func decode(file string, data []byte) (map[string]any, error) {
	sections := make(map[string]any)

	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		if err := toml.Unmarshal(data, &sections); err != nil {
			return nil, errors.Wrap(err, "invalid TOML")
		}
	default:
		if err := yaml.Unmarshal(data, &sections); err != nil {
			return nil, errors.Wrap(err, "invalid YAML")
		}
	}
	return sections, nil
}

// decodeSection converts a generic section into out by round-tripping through
// YAML, so TOML and YAML sections share the yaml struct tags.
func decodeSection(raw any, out any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "error marshalling to YAML")
	}
	return yaml.Unmarshal(data, out)
}
