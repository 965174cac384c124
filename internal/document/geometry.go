package document

import (
	"errors"
	"fmt"

	"github.com/VorpalBlade/smartmirror/internal/geom"
)

var ErrMissingPayload = errors.New("geometry payload does not match its kind")

func NewLine(start, end geom.Vector) Geometry {
	return Geometry{Kind: KindLine, Line: &LineSegment{Start: start, End: end}}
}

func NewCircle(center geom.Vector, radius float64) Geometry {
	return Geometry{Kind: KindCircle, Circle: &Circle{Center: center, Radius: radius}}
}

func NewArc(center geom.Vector, radius, startAngle, endAngle float64) Geometry {
	return Geometry{Kind: KindArc, Arc: &Arc{
		Center:     center,
		Radius:     radius,
		StartAngle: startAngle,
		EndAngle:   endAngle,
	}}
}

// NewEllipse normalises majorAxis before storing it.
func NewEllipse(center, majorAxis geom.Vector, majorRadius, minorRadius float64) Geometry {
	return Geometry{Kind: KindEllipse, Ellipse: &Ellipse{
		Center:      center,
		MajorAxis:   majorAxis.Normalize(),
		MajorRadius: majorRadius,
		MinorRadius: minorRadius,
	}}
}

// NewBSpline creates a non-periodic, non-rational clamped spline of the given degree.
func NewBSpline(degree int, poles ...geom.Vector) Geometry {
	weights := make([]float64, len(poles))
	for i := range weights {
		weights[i] = 1
	}
	return Geometry{Kind: KindBSpline, BSpline: &BSpline{
		Poles:   poles,
		Weights: weights,
		Degree:  degree,
	}}
}

func NewPoint(p geom.Vector) Geometry {
	return Geometry{Kind: KindPoint, Point: &Point{Position: p}}
}

// AsConstruction returns a copy of g flagged as construction geometry.
func (g Geometry) AsConstruction() Geometry {
	g.Construction = true
	return g
}

// Validate checks that the payload required by Kind is present.
func (g Geometry) Validate() error {
	var ok bool
	switch g.Kind {
	case KindLine:
		ok = g.Line != nil
	case KindCircle:
		ok = g.Circle != nil
	case KindArc:
		ok = g.Arc != nil
	case KindEllipse:
		ok = g.Ellipse != nil
	case KindBSpline:
		ok = g.BSpline != nil
	case KindPoint:
		ok = g.Point != nil
	case KindArcOfEllipse, KindArcOfHyperbola, KindArcOfParabola:
		ok = true
	default:
		return fmt.Errorf("unknown geometry kind %q", g.Kind)
	}
	if !ok {
		return fmt.Errorf("%s: %w", g.Kind, ErrMissingPayload)
	}
	return nil
}
