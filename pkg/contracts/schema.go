package contracts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// interactionSchema constrains externally supplied interaction payloads.
// Governance readings are bounded in [0,1] so malformed metadata is rejected
// before it can skew scoring.
const interactionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["interaction_id", "input"],
  "properties": {
    "interaction_id": {"type": "string", "minLength": 1},
    "input": {
      "type": "object",
      "required": ["message"],
      "properties": {"message": {"type": "string"}}
    },
    "output": {
      "type": "object",
      "properties": {"response": {"type": "string"}}
    },
    "governance": {
      "type": "object",
      "properties": {
        "emotional_state": {
          "type": "object",
          "properties": {
            "overall_safety": {"type": "number", "minimum": 0, "maximum": 1},
            "confidence": {"type": "number", "minimum": 0, "maximum": 1}
          }
        },
        "policy_compliance": {
          "type": "object",
          "properties": {
            "overall_compliance": {"type": "number", "minimum": 0, "maximum": 1}
          }
        },
        "autonomous_thinking": {
          "type": "object",
          "properties": {
            "is_required": {"type": "boolean"},
            "permission_granted": {"type": "boolean"}
          }
        }
      }
    }
  }
}`

var compiledInteractionSchema = mustCompileInteractionSchema()

func mustCompileInteractionSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	const url = "https://aegis.schemas.local/interaction.schema.json"
	if err := c.AddResource(url, strings.NewReader(interactionSchema)); err != nil {
		panic(fmt.Sprintf("interaction schema load failed: %v", err))
	}
	return c.MustCompile(url)
}

// DecodeInteraction validates raw against the interaction schema and decodes
// it. Callers at the process boundary should use this rather than a bare
// json.Unmarshal so bad governance metadata is rejected early.
func DecodeInteraction(raw []byte) (*Interaction, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("interaction payload is not valid JSON: %w", err)
	}
	if err := compiledInteractionSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("interaction payload rejected: %w", err)
	}
	var in Interaction
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("interaction decode failed: %w", err)
	}
	return &in, nil
}
