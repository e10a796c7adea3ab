package bridge

import (
	"encoding/json"

	"github.com/a01110946/RhinoMCP/internal/host"
)

// Parameter extraction is deliberately permissive: a missing or malformed
// field falls back to its documented default instead of failing the
// command. Robustness over strictness — an operator typo should produce a
// sphere at the origin, not a rejected request.

func numberParam(data map[string]any, key string, def float64) float64 {
	v, ok := data[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return def
}

func stringParam(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

// pointsParam decodes an array of {x, y, z} objects. Entries that are not
// objects are skipped; missing coordinates default to 0.
func pointsParam(data map[string]any, key string) []host.Point3 {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	points := make([]host.Point3, 0, len(raw))
	for _, entry := range raw {
		pt, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		points = append(points, host.Point3{
			X: numberParam(pt, "x", 0),
			Y: numberParam(pt, "y", 0),
			Z: numberParam(pt, "z", 0),
		})
	}
	return points
}
