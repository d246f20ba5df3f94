// Command schema-generator writes the JSON schemas for focus.yml: the core
// sections and the "logging" extension.
package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/focus/config"
	"github.com/grovetools/focus/logging"
	"github.com/invopop/jsonschema"
)

func main() {
	outputDir := "schema"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	coreSchema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}
	write(filepath.Join(outputDir, "focus.schema.json"), coreSchema)

	loggingSchema, err := generateLoggingSchema()
	if err != nil {
		log.Fatalf("Error generating logging schema: %v", err)
	}
	write(filepath.Join(outputDir, "logging.schema.json"), loggingSchema)
}

func generateLoggingSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&logging.Config{})
	schema.Title = "Focus Logging Configuration"
	schema.Description = "Schema for the 'logging' section of focus.yml."
	// Every logging setting is optional.
	schema.Required = nil

	return json.MarshalIndent(schema, "", "  ")
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}
	log.Printf("Successfully generated %s", path)
}
