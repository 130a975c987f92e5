// recovery.go - Best-effort recovery of a JSON record from model output

package ai

import (
	"encoding/json"
	"strings"
)

// RecoverFields extracts a flat string record from raw model output. The
// model is instructed to return a bare JSON object but empirically sometimes
// wraps it in prose, so recovery runs in two stages:
//
//  1. Trim whitespace; if the whole text parses as a JSON object, use it.
//  2. Otherwise take the substring from the first '{' to the last '}' and
//     parse that. Requiring the substring itself to parse keeps stray brace
//     characters from being accepted as a record.
//
// Text containing several separate objects spans from the first '{' to the
// last '}' and therefore usually fails stage 2; that blob is rejected rather
// than recovering the first object.
//
// A failed recovery returns ok=false and is treated by the orchestrator
// exactly like a transport failure: retryable, never fatal on its own.
func RecoverFields(raw string) (map[string]string, bool) {
	text := strings.TrimSpace(raw)

	if record, ok := decodeRecord(text); ok {
		return record, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}

	return decodeRecord(text[start : end+1])
}

// decodeRecord parses text as a single JSON object and coerces its values to
// strings. The model occasionally returns a bare number for amount or null
// for a missing field; both are tolerated (null becomes the empty string).
// An empty object is not a usable record.
func decodeRecord(text string) (map[string]string, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	// Reject trailing content after the object ("{...} hope this helps").
	if dec.More() {
		return nil, false
	}
	if len(obj) == 0 {
		return nil, false
	}

	record := make(map[string]string, len(obj))
	for key, value := range obj {
		switch v := value.(type) {
		case string:
			record[key] = v
		case nil:
			record[key] = ""
		case json.Number:
			record[key] = v.String()
		case bool:
			if v {
				record[key] = "true"
			} else {
				record[key] = "false"
			}
		default:
			// Nested objects/arrays are not part of the record shape; a
			// response built around them fails recovery.
			return nil, false
		}
	}
	return record, true
}
