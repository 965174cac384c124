package mirror

import (
	"fmt"

	"github.com/VorpalBlade/smartmirror/internal/document"
)

// DefaultNameSuffix marks constraint names generated for mirrored copies.
const DefaultNameSuffix = "_mirrored"

// ConstraintRewriter decides, for every constraint of a sketch, whether and how it is
// duplicated onto the mirrored geometry.
type ConstraintRewriter struct {
	// GeometryMap maps each mirrored geometry id to the id of its copy. Its keys are the
	// mirror set.
	GeometryMap map[int]int
	// Inverted holds the start/end inversion flag of each mirrored geometry.
	Inverted  map[int]bool
	HVSafe    bool
	AboutLine bool
}

// Rewritten is a planned constraint copy, not yet added to the sketch.
type Rewritten struct {
	OriginalIndex int
	Original      document.Constraint
	Constraint    document.Constraint
	// BindValue ties the copy's value to the original's through an expression.
	BindValue bool
	// Negated is set when the copy's value is the original's with its sign flipped.
	Negated bool
}

// twoGeometryTypes are duplicated when both operands are mirrored.
var twoGeometryTypes = map[document.ConstraintType]bool{
	document.Coincident:    true,
	document.Perpendicular: true,
	document.Parallel:      true,
	document.Tangent:       true,
	document.Distance:      true,
	document.Equal:         true,
	document.Radius:        true,
	document.Diameter:      true,
	document.Weight:        true,
	document.Angle:         true,
	document.PointOnObject: true,
}

// valueBoundTypes get their copy's value driven by the original.
var valueBoundTypes = map[document.ConstraintType]bool{
	document.Angle:     true,
	document.Diameter:  true,
	document.Radius:    true,
	document.DistanceX: true,
	document.DistanceY: true,
}

func isHVType(t document.ConstraintType) bool {
	switch t {
	case document.DistanceX, document.DistanceY, document.Horizontal, document.Vertical:
		return true
	}
	return false
}

func (r ConstraintRewriter) mirrored(id int) bool {
	_, ok := r.GeometryMap[id]
	return ok
}

// remap returns the copy's operand for an original operand, swapping start and end on
// geometry whose parameterisation was inverted.
func (r ConstraintRewriter) remap(id int, role document.PointRole) (int, document.PointRole) {
	if r.Inverted[id] {
		switch role {
		case document.RoleStart:
			role = document.RoleEnd
		case document.RoleEnd:
			role = document.RoleStart
		}
	}
	return r.GeometryMap[id], role
}

// Rewrite plans at most one copy per constraint, in the original order.
func (r ConstraintRewriter) Rewrite(constraints []document.Constraint) []Rewritten {
	var out []Rewritten
	for i, c := range constraints {
		if rw, ok := r.rewriteOne(c); ok {
			rw.OriginalIndex = i
			rw.Original = c
			out = append(out, rw)
		}
	}
	return out
}

func (r ConstraintRewriter) rewriteOne(c document.Constraint) (Rewritten, bool) {
	if !r.mirrored(c.First) {
		return Rewritten{}, false
	}

	switch {
	case !c.HasSecond():
		return r.rewriteSingle(c)
	case r.mirrored(c.Second) && !c.HasThird():
		return r.rewritePair(c)
	case c.HasThird() && r.mirrored(c.Second) && r.mirrored(c.Third):
		n := c
		n.Name = ""
		n.First, n.FirstPos = r.remap(c.First, c.FirstPos)
		n.Second, n.SecondPos = r.remap(c.Second, c.SecondPos)
		n.Third, n.ThirdPos = r.remap(c.Third, c.ThirdPos)
		return Rewritten{Constraint: n}, true
	default:
		return Rewritten{}, false
	}
}

func (r ConstraintRewriter) rewriteSingle(c document.Constraint) (Rewritten, bool) {
	switch {
	case c.Type == document.Distance || c.Type == document.Radius:
		// Both halves keep the same size rather than being dimensioned separately.
		eq := document.NewConstraint2(document.Equal, c.First, document.RoleNone, r.GeometryMap[c.First], document.RoleNone)
		return Rewritten{Constraint: eq}, true
	case isHVType(c.Type) && !r.HVSafe:
		return Rewritten{}, false
	default:
		n := c
		n.Name = ""
		n.First, n.FirstPos = r.remap(c.First, c.FirstPos)
		return Rewritten{Constraint: n}, true
	}
}

func (r ConstraintRewriter) rewritePair(c document.Constraint) (Rewritten, bool) {
	allowed := twoGeometryTypes[c.Type] ||
		(r.HVSafe && (c.Type == document.DistanceX || c.Type == document.DistanceY))
	if !allowed {
		return Rewritten{}, false
	}

	n := c
	n.Name = ""
	n.First, n.FirstPos = r.remap(c.First, c.FirstPos)
	n.Second, n.SecondPos = r.remap(c.Second, c.SecondPos)

	rw := Rewritten{Constraint: n, BindValue: valueBoundTypes[c.Type]}
	if c.Type == document.Angle && r.AboutLine {
		rw.Constraint = rw.Constraint.WithValue(-c.Value)
		rw.Negated = true
	}
	return rw, true
}

// ConstraintCopy records one duplicated constraint.
type ConstraintCopy struct {
	OriginalIndex int                     `json:"originalIndex"`
	Original      document.ConstraintKey  `json:"original"`
	OriginalType  document.ConstraintType `json:"originalType"`
	CopyIndex     int                     `json:"copyIndex"`
	Copy          document.ConstraintKey  `json:"copy"`
	CopyType      document.ConstraintType `json:"copyType"`
	Negated       bool                    `json:"negated,omitempty"`
}

// Binding is the formula that drives the copy's value from the original.
func (c ConstraintCopy) Binding() string {
	if c.Negated {
		return "-" + c.Original.Reference()
	}
	return c.Original.Reference()
}

// constraintSink is the part of a sketch the rewritten constraints are written to.
type constraintSink interface {
	AppendConstraint(c document.Constraint) (int, error)
	ConstraintNameTaken(name string) bool
	SetExpression(path, formula string) error
}

// CopyMap looks up constraint copies by the original's index or name.
type CopyMap map[document.ConstraintKey]ConstraintCopy

// applyRewritten adds the planned copies to the sketch and records them under both the
// original's index and, when it has one, its name.
func applyRewritten(sink constraintSink, planned []Rewritten, suffix string) (CopyMap, []ConstraintCopy, error) {
	copies := make(CopyMap)
	ordered := make([]ConstraintCopy, 0, len(planned))

	for _, rw := range planned {
		c := rw.Constraint
		if rw.Original.Name != "" {
			c.Name = copyName(sink, rw.Original.Name, suffix)
		}

		idx, err := sink.AppendConstraint(c)
		if err != nil {
			return nil, nil, internal(fmt.Sprintf("add copy of constraint %d", rw.OriginalIndex), err)
		}

		cp := ConstraintCopy{
			OriginalIndex: rw.OriginalIndex,
			Original:      document.IndexKey(rw.OriginalIndex),
			OriginalType:  rw.Original.Type,
			CopyIndex:     idx,
			Copy:          document.IndexKey(idx),
			CopyType:      c.Type,
			Negated:       rw.Negated,
		}
		if rw.Original.Name != "" {
			cp.Original = document.NameKey(rw.Original.Name)
			cp.Copy = document.NameKey(c.Name)
			copies[document.NameKey(rw.Original.Name)] = cp
		}
		copies[document.IndexKey(rw.OriginalIndex)] = cp
		ordered = append(ordered, cp)

		if rw.BindValue {
			if err := sink.SetExpression(cp.Copy.Path(), cp.Binding()); err != nil {
				return nil, nil, internal("bind copied value", err)
			}
		}
	}
	return copies, ordered, nil
}

// copyName derives a free name for the copy of a named constraint: name+suffix, then
// name+suffix+"2", name+suffix+"3" and so on when earlier copies already exist.
func copyName(sink constraintSink, name, suffix string) string {
	base := name + suffix
	candidate := base
	for n := 2; sink.ConstraintNameTaken(candidate); n++ {
		candidate = fmt.Sprintf("%s%d", base, n)
	}
	return candidate
}
