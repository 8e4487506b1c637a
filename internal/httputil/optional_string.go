package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396):
//   - Present=false: field absent from JSON (keep current value)
//   - Present=true, Value=nil: field is JSON null (clear)
//   - Present=true, Value=&"x": field has a value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked when the field is present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// MarshalJSON writes the value, or null when absent or cleared
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
