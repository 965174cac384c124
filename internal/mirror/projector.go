package mirror

import (
	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/geom"
)

type ReferenceKind string

const (
	ReferenceLine  ReferenceKind = "line"
	ReferencePoint ReferenceKind = "point"
)

// Reference is the line or point a selection is mirrored about.
type Reference struct {
	Kind  ReferenceKind     `json:"kind"`
	Line  int               `json:"line,omitempty"`
	Point document.PointRef `json:"point"`
}

func AroundLine(geoID int) Reference {
	return Reference{Kind: ReferenceLine, Line: geoID}
}

func AroundPoint(ref document.PointRef) Reference {
	return Reference{Kind: ReferencePoint, Point: ref}
}

// GeometrySource resolves the geometry a reference points at.
type GeometrySource interface {
	Geometry(id int) (document.Geometry, error)
	PointPosition(ref document.PointRef) (geom.Vector, error)
}

// Projector projects points onto a fixed mirror reference.
type Projector struct {
	aboutLine bool
	base      geom.Vector // line start, or the mirror point
	dir       geom.Vector
}

// NewProjector resolves ref against src.
func NewProjector(src GeometrySource, ref Reference) (*Projector, error) {
	switch ref.Kind {
	case ReferenceLine:
		g, err := src.Geometry(ref.Line)
		if err != nil {
			return nil, internal("resolve mirror line", err)
		}
		if g.Kind != document.KindLine {
			return nil, usageErrorf("Mirror reference must be a line or a point, not %s", g.Kind)
		}
		return NewLineProjector(g.Line.Start, g.Line.End.Sub(g.Line.Start))
	case ReferencePoint:
		p, err := src.PointPosition(ref.Point)
		if err != nil {
			return nil, internal("resolve mirror point", err)
		}
		return NewPointProjector(p), nil
	default:
		return nil, &InternalError{Op: "unknown mirror reference kind " + string(ref.Kind)}
	}
}

// NewLineProjector projects onto the infinite line through base with direction dir.
func NewLineProjector(base, dir geom.Vector) (*Projector, error) {
	if dir.IsZero() {
		return nil, usageErrorf("Cannot mirror about a zero-length line")
	}
	return &Projector{aboutLine: true, base: base, dir: dir}, nil
}

// NewPointProjector projects every point onto p.
func NewPointProjector(p geom.Vector) *Projector {
	return &Projector{base: p}
}

// Project returns the orthogonal projection of p onto the reference.
func (pr *Projector) Project(p geom.Vector) geom.Vector {
	if !pr.aboutLine {
		return pr.base
	}
	t := p.Sub(pr.base).Dot(pr.dir) / pr.dir.Dot(pr.dir)
	return pr.base.Add(pr.dir.Scale(t))
}

// Mirror reflects p across the reference.
func (pr *Projector) Mirror(p geom.Vector) geom.Vector {
	return p.Add(pr.Project(p).Sub(p).Scale(2))
}

// AboutLine reports whether the reference is a line.
func (pr *Projector) AboutLine() bool { return pr.aboutLine }

// HVSafe reports whether horizontal/vertical constraints survive the reflection: always for
// a point, and for a line only when it is axis aligned.
func (pr *Projector) HVSafe() bool {
	if !pr.aboutLine {
		return true
	}
	return pr.dir.X == 0 || pr.dir.Y == 0
}
