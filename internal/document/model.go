package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/VorpalBlade/smartmirror/internal/geom"
)

// Sketch is a 2D parametric sketch: an append-only list of geometry, the constraints between
// them and the expression bindings that drive constraint values.
type Sketch struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Geometry    []Geometry       `json:"geometry"`
	Constraints []Constraint     `json:"constraints"`
	Expressions []ExpressionLink `json:"expressions"`
}

// Geometry ids below zero are reserved.
const (
	HorizontalAxis = -1
	VerticalAxis   = -2

	// ExternalGeoThreshold is the first id of external (reference) geometry; every id at or
	// below it refers to geometry projected from outside the sketch.
	ExternalGeoThreshold = -3

	// GeoUndef marks an unused constraint operand.
	GeoUndef = -2000
)

// PointRole selects a characteristic point of a geometry.
type PointRole int

const (
	RoleNone PointRole = iota
	RoleStart
	RoleEnd
	RoleMid
)

func (r PointRole) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleStart:
		return "start"
	case RoleEnd:
		return "end"
	case RoleMid:
		return "mid"
	default:
		return fmt.Sprintf("PointRole(%d)", int(r))
	}
}

// PointRef references a geometry, optionally one of its characteristic points.
type PointRef struct {
	GeoID int       `json:"geoId"`
	Role  PointRole `json:"role"`
}

// RootPoint is the sketch origin, addressed as the start of the horizontal axis.
var RootPoint = PointRef{GeoID: HorizontalAxis, Role: RoleStart}

// IsAxis reports whether id is one of the two reference axes.
func IsAxis(id int) bool {
	return id == HorizontalAxis || id == VerticalAxis
}

// IsExternal reports whether id refers to external geometry.
func IsExternal(id int) bool {
	return id <= ExternalGeoThreshold && id != GeoUndef
}

type GeometryKind string

const (
	KindLine           GeometryKind = "Line"
	KindCircle         GeometryKind = "Circle"
	KindArc            GeometryKind = "Arc"
	KindEllipse        GeometryKind = "Ellipse"
	KindBSpline        GeometryKind = "BSpline"
	KindPoint          GeometryKind = "Point"
	KindArcOfEllipse   GeometryKind = "ArcOfEllipse"
	KindArcOfHyperbola GeometryKind = "ArcOfHyperbola"
	KindArcOfParabola  GeometryKind = "ArcOfParabola"
)

// Geometry is a tagged variant: exactly one payload matching Kind is set. The unsupported
// conic arc kinds carry no payload in this model.
type Geometry struct {
	Kind         GeometryKind `json:"kind"`
	Construction bool         `json:"construction,omitempty"`

	Line    *LineSegment `json:"line,omitempty"`
	Circle  *Circle      `json:"circle,omitempty"`
	Arc     *Arc         `json:"arc,omitempty"`
	Ellipse *Ellipse     `json:"ellipse,omitempty"`
	BSpline *BSpline     `json:"bspline,omitempty"`
	Point   *Point       `json:"point,omitempty"`
}

type LineSegment struct {
	Start geom.Vector `json:"start"`
	End   geom.Vector `json:"end"`
}

type Circle struct {
	Center geom.Vector `json:"center"`
	Radius float64     `json:"radius"`
}

// Arc is a circular arc running counter-clockwise from StartAngle to EndAngle (radians).
type Arc struct {
	Center     geom.Vector `json:"center"`
	Radius     float64     `json:"radius"`
	StartAngle float64     `json:"startAngle"`
	EndAngle   float64     `json:"endAngle"`
}

// Ellipse stores its major axis as a unit direction.
type Ellipse struct {
	Center      geom.Vector `json:"center"`
	MajorAxis   geom.Vector `json:"majorAxis"`
	MajorRadius float64     `json:"majorRadius"`
	MinorRadius float64     `json:"minorRadius"`
}

type BSpline struct {
	Poles    []geom.Vector `json:"poles"`
	Weights  []float64     `json:"weights,omitempty"`
	Knots    []float64     `json:"knots,omitempty"`
	Mults    []int         `json:"mults,omitempty"`
	Degree   int           `json:"degree"`
	Periodic bool          `json:"periodic,omitempty"`
}

type Point struct {
	Position geom.Vector `json:"position"`
}

// StartPoint returns the point at StartAngle.
func (a *Arc) StartPoint() geom.Vector {
	return geom.PolarPoint(a.Center, a.Radius, a.StartAngle)
}

// EndPoint returns the point at EndAngle.
func (a *Arc) EndPoint() geom.Vector {
	return geom.PolarPoint(a.Center, a.Radius, a.EndAngle)
}

// FocalDistance returns the distance from the center to either focus.
func (e *Ellipse) FocalDistance() float64 {
	d := e.MajorRadius*e.MajorRadius - e.MinorRadius*e.MinorRadius
	if d <= 0 {
		return 0
	}
	return math.Sqrt(d)
}

// MinorAxis returns the unit direction of the minor axis (major axis rotated +90°).
func (e *Ellipse) MinorAxis() geom.Vector {
	return geom.Vec(-e.MajorAxis.Y, e.MajorAxis.X)
}

// PointAt returns the position of a characteristic point of g.
func (g Geometry) PointAt(role PointRole) (geom.Vector, bool) {
	switch g.Kind {
	case KindLine:
		switch role {
		case RoleStart:
			return g.Line.Start, true
		case RoleEnd:
			return g.Line.End, true
		case RoleMid:
			return g.Line.Start.Add(g.Line.End).Scale(0.5), true
		}
	case KindCircle:
		if role == RoleMid {
			return g.Circle.Center, true
		}
	case KindArc:
		switch role {
		case RoleStart:
			return g.Arc.StartPoint(), true
		case RoleEnd:
			return g.Arc.EndPoint(), true
		case RoleMid:
			return g.Arc.Center, true
		}
	case KindEllipse:
		if role == RoleMid {
			return g.Ellipse.Center, true
		}
	case KindBSpline:
		if len(g.BSpline.Poles) == 0 {
			return geom.Vector{}, false
		}
		switch role {
		case RoleStart:
			return g.BSpline.Poles[0], true
		case RoleEnd:
			return g.BSpline.Poles[len(g.BSpline.Poles)-1], true
		}
	case KindPoint:
		if role == RoleStart {
			return g.Point.Position, true
		}
	}
	return geom.Vector{}, false
}

// Roles lists the characteristic points a geometry exposes as vertices, in vertex order.
func (g Geometry) Roles() []PointRole {
	switch g.Kind {
	case KindLine, KindBSpline:
		return []PointRole{RoleStart, RoleEnd}
	case KindCircle, KindEllipse:
		return []PointRole{RoleMid}
	case KindArc, KindArcOfEllipse, KindArcOfHyperbola, KindArcOfParabola:
		return []PointRole{RoleStart, RoleEnd, RoleMid}
	case KindPoint:
		return []PointRole{RoleStart}
	default:
		return nil
	}
}

type ConstraintType string

const (
	Coincident        ConstraintType = "Coincident"
	Horizontal        ConstraintType = "Horizontal"
	Vertical          ConstraintType = "Vertical"
	Parallel          ConstraintType = "Parallel"
	Tangent           ConstraintType = "Tangent"
	Distance          ConstraintType = "Distance"
	DistanceX         ConstraintType = "DistanceX"
	DistanceY         ConstraintType = "DistanceY"
	Angle             ConstraintType = "Angle"
	Perpendicular     ConstraintType = "Perpendicular"
	Radius            ConstraintType = "Radius"
	Equal             ConstraintType = "Equal"
	PointOnObject     ConstraintType = "PointOnObject"
	Symmetric         ConstraintType = "Symmetric"
	InternalAlignment ConstraintType = "InternalAlignment"
	SnellsLaw         ConstraintType = "SnellsLaw"
	Block             ConstraintType = "Block"
	Diameter          ConstraintType = "Diameter"
	Weight            ConstraintType = "Weight"
)

// InternalAlignment kinds tying exposed control geometry to its owner.
const (
	AlignEllipseMajorDiameter = "EllipseMajorDiameter"
	AlignEllipseMinorDiameter = "EllipseMinorDiameter"
	AlignEllipseFocus1        = "EllipseFocus1"
	AlignEllipseFocus2        = "EllipseFocus2"
	AlignBSplineControlPoint  = "BSplineControlPoint"
)

// Constraint relates up to three geometry operands. Unused operands hold GeoUndef.
// A constraint is identified by its index in Sketch.Constraints and optionally by Name.
type Constraint struct {
	Type      ConstraintType `json:"type"`
	Name      string         `json:"name,omitempty"`
	First     int            `json:"first"`
	FirstPos  PointRole      `json:"firstPos"`
	Second    int            `json:"second"`
	SecondPos PointRole      `json:"secondPos"`
	Third     int            `json:"third"`
	ThirdPos  PointRole      `json:"thirdPos"`
	Value     float64        `json:"value,omitempty"`
	Driving   bool           `json:"driving"`

	AlignmentType  string `json:"alignmentType,omitempty"`
	AlignmentIndex int    `json:"alignmentIndex,omitempty"`
}

// NewConstraint creates a driving constraint on a single operand.
func NewConstraint(typ ConstraintType, first int, firstPos PointRole) Constraint {
	return Constraint{
		Type:     typ,
		First:    first,
		FirstPos: firstPos,
		Second:   GeoUndef,
		Third:    GeoUndef,
		Driving:  true,
	}
}

// NewConstraint2 creates a driving constraint between two operands.
func NewConstraint2(typ ConstraintType, first int, firstPos PointRole, second int, secondPos PointRole) Constraint {
	c := NewConstraint(typ, first, firstPos)
	c.Second = second
	c.SecondPos = secondPos
	return c
}

// NewConstraint3 creates a driving constraint between three operands.
func NewConstraint3(typ ConstraintType, first int, firstPos PointRole, second int, secondPos PointRole, third int, thirdPos PointRole) Constraint {
	c := NewConstraint2(typ, first, firstPos, second, secondPos)
	c.Third = third
	c.ThirdPos = thirdPos
	return c
}

// WithValue returns a copy of c with its dimensional value set.
func (c Constraint) WithValue(v float64) Constraint {
	c.Value = v
	return c
}

// WithName returns a copy of c with its name set.
func (c Constraint) WithName(name string) Constraint {
	c.Name = name
	return c
}

func (c Constraint) HasSecond() bool { return c.Second != GeoUndef }
func (c Constraint) HasThird() bool  { return c.Third != GeoUndef }

// UnmarshalJSON treats omitted second/third operands as unused rather than as geometry 0,
// and an omitted driving flag as driving.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	type plain Constraint
	p := plain{Second: GeoUndef, Third: GeoUndef, Driving: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Constraint(p)
	return nil
}

// ExpressionLink binds the value addressed by Path to a formula.
type ExpressionLink struct {
	Path       string `json:"path"`
	Expression string `json:"expression"`
}

// NewEmptySketch creates a sketch with no geometry.
func NewEmptySketch(id, name string) *Sketch {
	return &Sketch{
		ID:          id,
		Name:        name,
		Geometry:    []Geometry{},
		Constraints: []Constraint{},
		Expressions: []ExpressionLink{},
	}
}

// Clone returns a deep copy of the sketch.
func (s *Sketch) Clone() *Sketch {
	out := &Sketch{
		ID:          s.ID,
		Name:        s.Name,
		Geometry:    make([]Geometry, len(s.Geometry)),
		Constraints: append([]Constraint{}, s.Constraints...),
		Expressions: append([]ExpressionLink{}, s.Expressions...),
	}
	for i, g := range s.Geometry {
		out.Geometry[i] = g.Clone()
	}
	return out
}

// Clone returns a copy of g that shares no memory with it.
func (g Geometry) Clone() Geometry {
	out := Geometry{Kind: g.Kind, Construction: g.Construction}
	if g.Line != nil {
		l := *g.Line
		out.Line = &l
	}
	if g.Circle != nil {
		c := *g.Circle
		out.Circle = &c
	}
	if g.Arc != nil {
		a := *g.Arc
		out.Arc = &a
	}
	if g.Ellipse != nil {
		e := *g.Ellipse
		out.Ellipse = &e
	}
	if g.BSpline != nil {
		b := *g.BSpline
		b.Poles = append([]geom.Vector(nil), g.BSpline.Poles...)
		b.Weights = append([]float64(nil), g.BSpline.Weights...)
		b.Knots = append([]float64(nil), g.BSpline.Knots...)
		b.Mults = append([]int(nil), g.BSpline.Mults...)
		out.BSpline = &b
	}
	if g.Point != nil {
		p := *g.Point
		out.Point = &p
	}
	return out
}
