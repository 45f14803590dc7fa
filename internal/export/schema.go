package export

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the catalogue written by WriteJSON.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "items": {
      "type": "object",
      "required": ["model", "engines", "transmissions"],
      "additionalProperties": false,
      "properties": {
        "model": {"type": "string", "minLength": 1},
        "engines": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/engine"}},
        "transmissions": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/transmission"}}
      }
    }
  },
  "definitions": {
    "engine": {
      "type": "object",
      "required": ["name", "cv", "nm", "code"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "cv": {"type": "string", "minLength": 1},
        "nm": {"type": "string", "minLength": 1},
        "rpm": {"type": "string"},
        "code": {"type": "string"}
      }
    },
    "transmission": {
      "type": "object",
      "required": ["name", "speeds", "retarder", "ratio", "code"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "speeds": {"type": "string", "pattern": "^[1-9][0-9]*$"},
        "retarder": {"type": "boolean"},
        "ratio": {"type": "string", "pattern": "^.* - .*$"},
        "code": {"type": "string"}
      }
    }
  }
}`

// Validate checks data against the catalogue schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("JSON validation failed: %s", strings.Join(errs, ", "))
}
