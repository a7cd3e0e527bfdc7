package bindjson

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth bounds container nesting on decode.
const DefaultMaxDepth = 512

// DefaultDiscriminatorKey is the member name carrying the concrete type of a
// polymorphic value.
const DefaultDiscriminatorKey = "$type"

// Settings are the table-wide defaults applied when a type does not override
// them.
type Settings struct {
	UnknownPolicy      UnknownPolicy `yaml:"unknownPolicy"`
	DiscriminatorKey   string        `yaml:"discriminatorKey"`
	NumberMode         NumberMode    `yaml:"numberMode"`
	MaxDepth           int           `yaml:"maxDepth"`
	StructuralFallback bool          `yaml:"structuralFallback"`
	AllowArrayFormat   bool          `yaml:"allowArrayFormat"`
}

// DefaultSettings returns the defaults used when no settings are supplied.
func DefaultSettings() Settings {
	return Settings{
		UnknownPolicy:      UnknownIgnore,
		DiscriminatorKey:   DefaultDiscriminatorKey,
		NumberMode:         NumberFloat64,
		MaxDepth:           DefaultMaxDepth,
		StructuralFallback: true,
	}
}

// ParseSettings reads YAML settings on top of DefaultSettings. Keys that are
// absent keep their default.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	if s.DiscriminatorKey == "" {
		s.DiscriminatorKey = DefaultDiscriminatorKey
	}
	if s.MaxDepth < 0 {
		return Settings{}, fmt.Errorf("settings: maxDepth must not be negative (got %d)", s.MaxDepth)
	}
	return s, nil
}

// LoadSettings reads settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return ParseSettings(data)
}
