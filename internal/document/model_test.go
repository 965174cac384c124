package document

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VorpalBlade/smartmirror/internal/geom"
)

func TestParseConstraintPath(t *testing.T) {
	tests := []struct {
		path    string
		want    ConstraintKey
		ok      bool
		wantErr bool
	}{
		{".Constraints[3]", IndexKey(3), true, false},
		{".Constraints.width", NameKey("width"), true, false},
		{".Constraints.width_2", NameKey("width_2"), true, false},
		{".Placement.Base.x", ConstraintKey{}, false, false},
		{".ConstraintsExtra", ConstraintKey{}, false, false},
		{".Constraints[x]", ConstraintKey{}, true, true},
		{".Constraints.2bad", ConstraintKey{}, true, true},
		{".Constraints[3].foo", ConstraintKey{}, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			key, ok, err := ParseConstraintPath(tc.path)
			assert.Equal(t, tc.ok, ok)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, key)
		})
	}
}

func TestConstraintKeyForms(t *testing.T) {
	assert.Equal(t, ".Constraints[7]", ConstraintPath(7))
	assert.Equal(t, "Constraints[7]", IndexKey(7).Reference())
	assert.Equal(t, ".Constraints.fillet", ConstraintPathByName("fillet"))
	assert.Equal(t, "Constraints.fillet", NameKey("fillet").Reference())
}

func TestGeometryPointAt(t *testing.T) {
	arc := NewArc(geom.Vec(0, 0), 2, 0, math.Pi/2)

	start, ok := arc.PointAt(RoleStart)
	require.True(t, ok)
	assert.True(t, start.ApproxEqual(geom.Vec(2, 0), 1e-12))

	end, ok := arc.PointAt(RoleEnd)
	require.True(t, ok)
	assert.True(t, end.ApproxEqual(geom.Vec(0, 2), 1e-12))

	_, ok = NewCircle(geom.Vec(0, 0), 1).PointAt(RoleStart)
	assert.False(t, ok)
}

func TestGeometryValidate(t *testing.T) {
	assert.NoError(t, NewLine(geom.Vec(0, 0), geom.Vec(1, 0)).Validate())
	assert.NoError(t, Geometry{Kind: KindArcOfParabola}.Validate())
	assert.ErrorIs(t, Geometry{Kind: KindCircle}.Validate(), ErrMissingPayload)
	assert.Error(t, Geometry{Kind: "Spiral"}.Validate())
}

func TestSketchCloneIsDeep(t *testing.T) {
	s := NewSampleSketch()
	c := s.Clone()

	c.Geometry[SampleBottom].Line.End = geom.Vec(99, 99)
	c.Constraints[0].Value = 42

	assert.Equal(t, geom.Vec(4, 0), s.Geometry[SampleBottom].Line.End)
	assert.Zero(t, s.Constraints[0].Value)
}

func TestSketchJSONRoundTripKeepsUnusedOperands(t *testing.T) {
	s := NewSampleSketch()
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Sketch
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Constraints[3].HasSecond())
	assert.Equal(t, s.Constraints, decoded.Constraints)
}

func TestConstraintJSONOmittedOperandsAreUnused(t *testing.T) {
	var cs []Constraint
	require.NoError(t, json.Unmarshal([]byte(`[
		{"type":"Distance","first":0,"value":1},
		{"type":"Angle","first":0,"second":1,"value":0.5},
		{"type":"Coincident","first":0,"firstPos":2,"second":1,"secondPos":1,"driving":false}
	]`), &cs))
	require.Len(t, cs, 3)

	assert.Equal(t, NewConstraint(Distance, 0, RoleNone).WithValue(1), cs[0])
	assert.False(t, cs[0].HasSecond())

	assert.Equal(t, NewConstraint2(Angle, 0, RoleNone, 1, RoleNone).WithValue(0.5), cs[1])
	assert.False(t, cs[1].HasThird())

	assert.Equal(t, 1, cs[2].Second)
	assert.Equal(t, RoleEnd, cs[2].FirstPos)
	assert.False(t, cs[2].Driving)
	assert.False(t, cs[2].HasThird())
}
