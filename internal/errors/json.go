package errors

import (
	"bytes"
	"encoding/json"
)

// marshalMap encodes a map without HTML escaping, matching what
// render.Render produces for other responses.
func marshalMap(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
