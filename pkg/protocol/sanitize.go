package protocol

import (
	"encoding/json"
	"fmt"
)

// Sanitize converts v into a value that is guaranteed to marshal as JSON.
// Host objects (version handles, geometry ids) have no wire form; the
// policy is: keep anything json can already encode, otherwise prefer a
// Stringer's String(), otherwise fall back to the default %v rendering.
// Sanitize never fails, so a response can always be emitted.
func Sanitize(v any) any {
	switch t := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Sanitize(val)
		}
		return out
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	default:
		if _, err := json.Marshal(t); err == nil {
			return t
		}
		return fmt.Sprintf("%v", t)
	}
}

// SanitizeMap applies Sanitize to every value of a payload map.
func SanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Sanitize(v)
	}
	return out
}
