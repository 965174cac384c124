package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/geom"
	"github.com/VorpalBlade/smartmirror/internal/mirror"
	"github.com/VorpalBlade/smartmirror/internal/sketch"
)

func TestMirrorWithoutSketch(t *testing.T) {
	e := NewEngine(mirror.Options{})

	_, err := e.Mirror(context.Background())
	assert.ErrorIs(t, err, ErrNoSketch)
	assert.Equal(t, "null", e.GetSketch())
	assert.Equal(t, "[]", e.GetHistory())
}

func TestSampleSession(t *testing.T) {
	e := NewEngine(mirror.Options{})
	e.LoadSampleSketch()

	res, err := e.Mirror(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.GeometryMap, 5)
	assert.Equal(t, "null", e.GetSelection())

	var sk document.Sketch
	require.NoError(t, json.Unmarshal([]byte(e.GetSketch()), &sk))
	assert.Len(t, sk.Geometry, 11)

	var hist []sketch.TransactionRecord
	require.NoError(t, json.Unmarshal([]byte(e.GetHistory()), &hist))
	require.Len(t, hist, 1)
	assert.Equal(t, mirror.TransactionName, hist[0].Name)

	assert.Contains(t, e.GetLastResult(), `"geometryMap"`)
}

func TestMirrorKeepsSelectionOnError(t *testing.T) {
	e := NewEngine(mirror.Options{})
	e.LoadSampleSketch()
	e.SetSelection([]string{"Edge1"})

	_, err := e.Mirror(context.Background())
	require.Error(t, err)
	assert.True(t, mirror.IsUsageError(err))
	assert.Equal(t, `["Edge1"]`, e.GetSelection())
}

func TestSmartMirror(t *testing.T) {
	src := document.NewEmptySketch("sketch_wasm", "wasm")
	src.Geometry = []document.Geometry{document.NewPoint(geom.Vec(1, 2))}
	data, err := json.Marshal(src)
	require.NoError(t, err)

	out, err := SmartMirror(context.Background(), string(data), []string{"Vertex1", "H_Axis"}, mirror.Options{})
	require.NoError(t, err)

	var sk document.Sketch
	require.NoError(t, json.Unmarshal([]byte(out), &sk))
	require.Len(t, sk.Geometry, 2)
	assert.Equal(t, geom.Vec(1, -2), sk.Geometry[1].Point.Position)

	_, err = SmartMirror(context.Background(), "{", []string{"Vertex1", "H_Axis"}, mirror.Options{})
	assert.Error(t, err)
}

func TestSmartMirrorDecodesSparseConstraints(t *testing.T) {
	sketchJSON := `{
		"id": "sketch_sparse",
		"name": "sparse",
		"geometry": [
			{"kind": "Line", "line": {"start": {"x": 1, "y": 0}, "end": {"x": 2, "y": 0}}},
			{"kind": "Line", "line": {"start": {"x": 1, "y": 0}, "end": {"x": 2, "y": 1}}}
		],
		"constraints": [
			{"type": "Distance", "first": 0, "value": 1},
			{"type": "Angle", "first": 0, "second": 1, "value": 0.5}
		],
		"expressions": []
	}`

	out, err := SmartMirror(context.Background(), sketchJSON, []string{"Edge1", "Edge2", "V_Axis"}, mirror.Options{})
	require.NoError(t, err)

	var sk document.Sketch
	require.NoError(t, json.Unmarshal([]byte(out), &sk))
	require.Len(t, sk.Constraints, 4)

	assert.Equal(t, document.NewConstraint2(document.Equal, 0, document.RoleNone, 2, document.RoleNone), sk.Constraints[2])

	angle := sk.Constraints[3]
	assert.Equal(t, document.Angle, angle.Type)
	assert.Equal(t, 2, angle.First)
	assert.Equal(t, 3, angle.Second)
	assert.False(t, angle.HasThird())
	assert.Equal(t, -0.5, angle.Value)

	assert.Equal(t, []document.ExpressionLink{
		{Path: ".Constraints[3]", Expression: "-Constraints[1]"},
	}, sk.Expressions)
}
