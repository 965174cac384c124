package mirror

import (
	"errors"
	"math"

	"github.com/VorpalBlade/smartmirror/internal/document"
)

// Mirrored is the reflected copy of one geometry.
type Mirrored struct {
	Geometry document.Geometry
	// Inverted is set when the copy's start point is the image of the original's end point.
	Inverted bool
	// NeedsExposure is set when the copy has internal control geometry to expose.
	NeedsExposure bool
}

// MirrorGeometry builds the reflection of g. g itself is never modified.
func MirrorGeometry(g document.Geometry, p *Projector) (Mirrored, error) {
	if err := g.Validate(); errors.Is(err, document.ErrMissingPayload) {
		return Mirrored{}, internal("mirror geometry", err)
	}

	out := g.Clone()
	switch g.Kind {
	case document.KindLine:
		out.Line.Start = p.Mirror(g.Line.Start)
		out.Line.End = p.Mirror(g.Line.End)
		return Mirrored{Geometry: out}, nil

	case document.KindCircle:
		out.Circle.Center = p.Mirror(g.Circle.Center)
		return Mirrored{Geometry: out}, nil

	case document.KindArc:
		return mirrorArc(g, out, p), nil

	case document.KindEllipse:
		e := g.Ellipse
		// Any point on the major axis fixes the direction; the focus coincides with the
		// center for a circular ellipse, so use the vertex there.
		axisPoint := e.Center.Add(e.MajorAxis.Scale(e.FocalDistance()))
		if e.FocalDistance() == 0 {
			axisPoint = e.Center.Add(e.MajorAxis.Scale(e.MajorRadius))
		}
		center := p.Mirror(e.Center)
		out.Ellipse.Center = center
		out.Ellipse.MajorAxis = p.Mirror(axisPoint).Sub(center).Normalize()
		return Mirrored{Geometry: out, NeedsExposure: true}, nil

	case document.KindBSpline:
		for i, pole := range g.BSpline.Poles {
			out.BSpline.Poles[i] = p.Mirror(pole)
		}
		return Mirrored{Geometry: out, NeedsExposure: true}, nil

	case document.KindPoint:
		out.Point.Position = p.Mirror(g.Point.Position)
		return Mirrored{Geometry: out}, nil

	default:
		return Mirrored{}, usageErrorf("Unsupported geometry type: %s", g.Kind)
	}
}

// mirrorArc rebuilds the angular range from the mirrored end points. A reflection about a
// line reverses the traversal direction, so the images of start and end swap roles.
// This only reconstructs the range, not the arc's orientation, which holds for the
// counter-clockwise arcs stored in a sketch.
func mirrorArc(g, out document.Geometry, p *Projector) Mirrored {
	a := g.Arc
	center := p.Mirror(a.Center)
	start := p.Mirror(a.StartPoint()).Sub(center).Angle()
	end := p.Mirror(a.EndPoint()).Sub(center).Angle()

	inverted := false
	if p.AboutLine() {
		start, end = end, start
		inverted = true
	}
	if end <= start {
		end += 2 * math.Pi
	}

	out.Arc.Center = center
	out.Arc.StartAngle = start
	out.Arc.EndAngle = end
	return Mirrored{Geometry: out, Inverted: inverted}
}
