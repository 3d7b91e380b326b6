package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DatasetSchema is the JSON Schema every dataset must satisfy before decoding.
const DatasetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["records"],
    "anyOf": [{"required": ["id"]}, {"required": ["name"]}],
    "properties": {
      "id": {"type": "string"},
      "name": {"type": "string"},
      "note": {"type": "string"},
      "coord": {
        "type": "array",
        "items": {"type": "number"},
        "minItems": 2,
        "maxItems": 2
      },
      "records": {"$ref": "#/definitions/records"},
      "monthly": {"$ref": "#/definitions/records"}
    },
    "additionalProperties": false
  },
  "definitions": {
    "records": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["period", "values"],
        "properties": {
          "period": {"type": "string", "minLength": 1},
          "values": {
            "type": "object",
            "additionalProperties": {"type": "number", "minimum": 0}
          },
          "per_capita": {"type": "number", "minimum": 0},
          "total": {"type": "number", "minimum": 0}
        },
        "additionalProperties": false
      }
    }
  }
}`

// DatasetValidator validates raw dataset payloads.
type DatasetValidator interface {
	ValidateDataset(raw []byte) error
}

// JSONSchemaValidator compiles a schema once and validates payloads against it.
type JSONSchemaValidator struct {
	name   string
	source string

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

var defaultDatasetValidator = NewJSONSchemaValidator("dataset.json", DatasetSchema)

// DefaultDatasetValidator returns the shared validator for DatasetSchema.
func DefaultDatasetValidator() *JSONSchemaValidator {
	return defaultDatasetValidator
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator(name, schema string) *JSONSchemaValidator {
	return &JSONSchemaValidator{name: name, source: schema}
}

// ValidateDataset ensures raw is valid JSON satisfying the schema.
func (v *JSONSchemaValidator) ValidateDataset(raw []byte) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("dashboard: dataset is not valid JSON: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: dataset failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(v.name, strings.NewReader(v.source)); err != nil {
			v.err = fmt.Errorf("dashboard: load schema %s: %w", v.name, err)
			return
		}
		v.compiled, v.err = compiler.Compile(v.name)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile schema %s: %w", v.name, v.err)
		}
	})
	return v.compiled, v.err
}
