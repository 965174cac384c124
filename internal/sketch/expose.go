package sketch

import (
	"fmt"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/geom"
)

// ExposeInternalGeometry adds the construction elements that make the control geometry of
// an ellipse (axes, foci) or a B-spline (poles) selectable, each tied to its owner with an
// InternalAlignment constraint. Elements that are already exposed are left alone.
func (s *Store) ExposeInternalGeometry(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.geometryLocked(id)
	if err != nil {
		return err
	}

	switch g.Kind {
	case document.KindEllipse:
		s.exposeEllipseLocked(id, g.Ellipse)
	case document.KindBSpline:
		s.exposeBSplineLocked(id, g.BSpline)
	default:
		return fmt.Errorf("geometry %d (%s): %w", id, g.Kind, ErrNothingToExpose)
	}
	return nil
}

func (s *Store) exposeEllipseLocked(id int, e *document.Ellipse) {
	major := e.MajorAxis.Scale(e.MajorRadius)
	minor := e.MinorAxis().Scale(e.MinorRadius)
	focus := e.MajorAxis.Scale(e.FocalDistance())

	elements := []struct {
		alignment string
		geometry  document.Geometry
		role      document.PointRole
	}{
		{document.AlignEllipseMajorDiameter, document.NewLine(e.Center.Sub(major), e.Center.Add(major)), document.RoleNone},
		{document.AlignEllipseMinorDiameter, document.NewLine(e.Center.Sub(minor), e.Center.Add(minor)), document.RoleNone},
		{document.AlignEllipseFocus1, document.NewPoint(e.Center.Add(focus)), document.RoleStart},
		{document.AlignEllipseFocus2, document.NewPoint(e.Center.Sub(focus)), document.RoleStart},
	}

	for _, el := range elements {
		if s.alignedLocked(id, el.alignment, 0) {
			continue
		}
		elID := s.appendGeometryLocked(el.geometry.AsConstruction())
		c := document.NewConstraint2(document.InternalAlignment, elID, el.role, id, document.RoleNone)
		c.AlignmentType = el.alignment
		s.appendConstraintLocked(c)
	}
}

func (s *Store) exposeBSplineLocked(id int, b *document.BSpline) {
	for i, pole := range b.Poles {
		if s.alignedLocked(id, document.AlignBSplineControlPoint, i) {
			continue
		}
		elID := s.appendGeometryLocked(document.NewCircle(pole, poleRadius(b, i)).AsConstruction())
		c := document.NewConstraint2(document.InternalAlignment, elID, document.RoleMid, id, document.RoleNone)
		c.AlignmentType = document.AlignBSplineControlPoint
		c.AlignmentIndex = i
		s.appendConstraintLocked(c)
	}
}

// alignedLocked reports whether owner already has an element aligned as alignment/index.
func (s *Store) alignedLocked(owner int, alignment string, index int) bool {
	for _, c := range s.sketch.Constraints {
		if c.Type == document.InternalAlignment && c.Second == owner &&
			c.AlignmentType == alignment && c.AlignmentIndex == index {
			return true
		}
	}
	return false
}

// poleRadius sizes a pole circle by the pole weight, scaled to the spline's extent.
func poleRadius(b *document.BSpline, i int) float64 {
	weight := 1.0
	if i < len(b.Weights) && b.Weights[i] > 0 {
		weight = b.Weights[i]
	}

	var minP, maxP geom.Vector
	for j, p := range b.Poles {
		if j == 0 {
			minP, maxP = p, p
			continue
		}
		minP = geom.Vec(min(minP.X, p.X), min(minP.Y, p.Y))
		maxP = geom.Vec(max(maxP.X, p.X), max(maxP.Y, p.Y))
	}
	extent := maxP.Sub(minP).Length()
	if extent == 0 {
		extent = 1
	}
	return weight * extent / 20
}
