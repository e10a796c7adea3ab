package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberParam(t *testing.T) {
	data := map[string]any{
		"float":  2.5,
		"int":    3,
		"number": json.Number("4.5"),
		"bad":    "nope",
	}

	assert.Equal(t, 2.5, numberParam(data, "float", 9))
	assert.Equal(t, 3.0, numberParam(data, "int", 9))
	assert.Equal(t, 4.5, numberParam(data, "number", 9))
	assert.Equal(t, 9.0, numberParam(data, "bad", 9), "malformed falls back to default")
	assert.Equal(t, 9.0, numberParam(data, "missing", 9), "missing falls back to default")
	assert.Equal(t, 9.0, numberParam(nil, "any", 9))
}

func TestStringParam(t *testing.T) {
	data := map[string]any{"s": "hello", "n": 1.0}
	assert.Equal(t, "hello", stringParam(data, "s"))
	assert.Equal(t, "", stringParam(data, "n"))
	assert.Equal(t, "", stringParam(data, "missing"))
}

func TestPointsParam(t *testing.T) {
	data := map[string]any{
		"points": []any{
			map[string]any{"x": 1.0, "y": 2.0, "z": 3.0},
			map[string]any{"x": 4.0},
			"garbage entry",
		},
	}

	points := pointsParam(data, "points")
	assert.Len(t, points, 2, "non-object entries are skipped")
	assert.Equal(t, 3.0, points[0].Z)
	assert.Equal(t, 0.0, points[1].Y, "missing coordinates default to 0")

	assert.Nil(t, pointsParam(map[string]any{"points": "nope"}, "points"))
	assert.Nil(t, pointsParam(nil, "points"))
}
