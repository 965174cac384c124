package sketch

import (
	"regexp"
	"strconv"

	"github.com/VorpalBlade/smartmirror/internal/document"
)

// Display tokens used by the sketch editor to name selectable elements.
const (
	TokenHorizontalAxis = "H_Axis"
	TokenVerticalAxis   = "V_Axis"
	TokenRootPoint      = "RootPoint"
)

var elementTokenRe = regexp.MustCompile(`^(Edge|ExternalEdge|Vertex)([1-9][0-9]*)$`)

// ResolveDisplayID maps a display token to the geometry (and point) it names.
// Tokens are 1-based: Edge1 is geometry 0, ExternalEdge1 is geometry -3.
func (s *Store) ResolveDisplayID(token string) (document.PointRef, bool) {
	switch token {
	case TokenHorizontalAxis:
		return document.PointRef{GeoID: document.HorizontalAxis, Role: document.RoleNone}, true
	case TokenVerticalAxis:
		return document.PointRef{GeoID: document.VerticalAxis, Role: document.RoleNone}, true
	case TokenRootPoint:
		return document.RootPoint, true
	}

	m := elementTokenRe.FindStringSubmatch(token)
	if m == nil {
		return document.PointRef{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return document.PointRef{}, false
	}

	switch m[1] {
	case "Edge":
		s.mu.RLock()
		defer s.mu.RUnlock()
		if n > len(s.sketch.Geometry) {
			return document.PointRef{}, false
		}
		return document.PointRef{GeoID: n - 1, Role: document.RoleNone}, true
	case "ExternalEdge":
		return document.PointRef{GeoID: document.ExternalGeoThreshold - (n - 1), Role: document.RoleNone}, true
	case "Vertex":
		return s.vertex(n - 1)
	}
	return document.PointRef{}, false
}

// vertex returns the index-th vertex, counting characteristic points of every geometry in
// id order.
func (s *Store) vertex(index int) (document.PointRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, g := range s.sketch.Geometry {
		roles := g.Roles()
		if index < len(roles) {
			return document.PointRef{GeoID: id, Role: roles[index]}, true
		}
		index -= len(roles)
	}
	return document.PointRef{}, false
}
