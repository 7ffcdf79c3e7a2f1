package rules

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/intakehq/referral-ocr/internal/common"
)

// Pack is an overlay rule file: a named batch of rules a deployment layers
// on top of the built-ins, typically at a higher priority.
type Pack struct {
	Name  string `json:"name"`
	Rules []Spec `json:"rules"`
}

const packSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "rules"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "rules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "field", "pattern"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "field": {"type": "string", "minLength": 1},
          "pattern": {"type": "string", "minLength": 1},
          "flags": {"type": "string"},
          "section": {"type": "string"},
          "window": {"type": "integer", "minimum": 1},
          "postprocess": {"type": "array", "items": {"type": "string"}},
          "priority": {"type": "integer"}
        }
      }
    }
  }
}`

var packSchemaCompiled = jsonschema.MustCompileString("rulepack.json", packSchema)

// ParsePack validates raw JSON against the rule-pack schema and decodes it.
// Schema validation catches shape errors; Compile later catches semantic
// ones (bad patterns, unknown fields).
func ParsePack(raw []byte) (*Pack, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, common.ValidationErrorf("rule pack is not valid JSON: %v", err)
	}
	if err := packSchemaCompiled.Validate(v); err != nil {
		return nil, common.ValidationErrorf("rule pack schema: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var p Pack
	if err := dec.Decode(&p); err != nil {
		return nil, common.ValidationErrorf("rule pack decode: %v", err)
	}
	return &p, nil
}

// LoadPack reads and parses a rule-pack file.
func LoadPack(path string) (*Pack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read rule pack")
	}
	return ParsePack(raw)
}

// Install compiles the pack's rules and adds them to the store atomically.
func (s *Store) Install(p *Pack) error {
	return s.Add(p.Rules...)
}
