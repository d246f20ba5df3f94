package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the core focus configuration.
// Unknown top-level keys are allowed so extension sections (e.g. logging)
// pass validation; nested core sections are closed.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// Mirror of Config without the Extensions field.
	type BaseConfig struct {
		Version string        `yaml:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`
		Storage StorageConfig `yaml:"storage,omitempty" jsonschema:"description=Local key/value store settings"`
		Daemon  DaemonConfig  `yaml:"daemon,omitempty" jsonschema:"description=Daemon connection settings"`
		Focus   FocusConfig   `yaml:"focus,omitempty" jsonschema:"description=Focus session settings"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Focus Configuration"
	schema.Description = "Schema for focus.yml / focus.toml."
	schema.AdditionalProperties = jsonschema.TrueSchema

	return json.MarshalIndent(schema, "", "  ")
}
