package llm

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// clientRecordSchema pins the structured-output contract: exactly the seven
// client fields, each a string or null.
const clientRecordSchema = `{
  "type": "object",
  "properties": {
    "client_code":  {"type": ["string", "null"], "pattern": "^[0-9]{4,6}$"},
    "client_name":  {"type": ["string", "null"]},
    "contact_name": {"type": ["string", "null"]},
    "address":      {"type": ["string", "null"]},
    "postal_code":  {"type": ["string", "null"], "pattern": "^[0-9]+$"},
    "city":         {"type": ["string", "null"]},
    "country":      {"type": ["string", "null"]}
  },
  "required": ["client_code", "client_name", "contact_name", "address", "postal_code", "city", "country"],
  "additionalProperties": false
}`

var compiledClientSchema = jsonschema.MustCompileString("client_record.json", clientRecordSchema)

// validateClientJSON rejects model output that does not match the fixed
// seven-field shape.
func validateClientJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	return compiledClientSchema.Validate(value)
}
