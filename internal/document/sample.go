package document

import (
	"math"

	"github.com/VorpalBlade/smartmirror/internal/geom"
	"github.com/VorpalBlade/smartmirror/internal/typeid"
)

// Geometry ids of the sample sketch.
const (
	SampleBottom = iota
	SampleSide
	SampleFillet
	SampleTop
	SampleCenterline
	SampleHole
)

// SampleSelection mirrors the whole profile about its construction centerline.
var SampleSelection = []string{"Edge1", "Edge2", "Edge3", "Edge4", "Edge6", "Edge5"}

// NewSampleSketch builds the right half of a symmetric plate profile, fully constrained
// against a vertical construction centerline at x = 0.
func NewSampleSketch() *Sketch {
	s := NewEmptySketch(typeid.NewSketchID(), "Half profile")

	s.Geometry = []Geometry{
		SampleBottom:     NewLine(geom.Vec(0, 0), geom.Vec(4, 0)),
		SampleSide:       NewLine(geom.Vec(4, 0), geom.Vec(4, 3)),
		SampleFillet:     NewArc(geom.Vec(2, 3), 2, 0, math.Pi/2),
		SampleTop:        NewLine(geom.Vec(0, 5), geom.Vec(2, 5)),
		SampleCenterline: NewLine(geom.Vec(0, -1), geom.Vec(0, 6)).AsConstruction(),
		SampleHole:       NewCircle(geom.Vec(2, 1.5), 0.5),
	}

	s.Constraints = []Constraint{
		NewConstraint2(Coincident, SampleBottom, RoleEnd, SampleSide, RoleStart),
		NewConstraint2(Coincident, SampleSide, RoleEnd, SampleFillet, RoleStart),
		NewConstraint2(Coincident, SampleFillet, RoleEnd, SampleTop, RoleEnd),
		NewConstraint(Horizontal, SampleBottom, RoleNone),
		NewConstraint(Vertical, SampleSide, RoleNone),
		NewConstraint(Horizontal, SampleTop, RoleNone),
		NewConstraint(Distance, SampleBottom, RoleNone).WithValue(4).WithName("width"),
		NewConstraint(DistanceY, SampleSide, RoleNone).WithValue(3).WithName("height"),
		NewConstraint(Radius, SampleFillet, RoleNone).WithValue(2).WithName("fillet"),
		NewConstraint(Radius, SampleHole, RoleNone).WithValue(0.5).WithName("hole"),
		NewConstraint2(PointOnObject, SampleBottom, RoleStart, SampleCenterline, RoleNone),
		NewConstraint2(PointOnObject, SampleTop, RoleStart, SampleCenterline, RoleNone),
		NewConstraint2(Tangent, SampleSide, RoleEnd, SampleFillet, RoleStart),
		NewConstraint2(DistanceX, SampleBottom, RoleStart, SampleHole, RoleMid).WithValue(2),
		NewConstraint2(DistanceY, SampleBottom, RoleStart, SampleHole, RoleMid).WithValue(1.5),
	}

	s.Expressions = []ExpressionLink{
		{Path: ConstraintPathByName("hole"), Expression: "Constraints.fillet / 4"},
	}

	return s
}
