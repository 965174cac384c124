package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VorpalBlade/smartmirror/internal/document"
)

func TestRewriteSingleOperand(t *testing.T) {
	r := ConstraintRewriter{GeometryMap: map[int]int{0: 5}, HVSafe: false, AboutLine: true}

	tests := []struct {
		name string
		in   document.Constraint
		want *document.Constraint
	}{
		{
			name: "distance becomes equal",
			in:   document.NewConstraint(document.Distance, 0, document.RoleNone).WithValue(5),
			want: ptr(document.NewConstraint2(document.Equal, 0, document.RoleNone, 5, document.RoleNone)),
		},
		{
			name: "radius becomes equal",
			in:   document.NewConstraint(document.Radius, 0, document.RoleNone).WithValue(2),
			want: ptr(document.NewConstraint2(document.Equal, 0, document.RoleNone, 5, document.RoleNone)),
		},
		{
			name: "horizontal dropped when not hv safe",
			in:   document.NewConstraint(document.Horizontal, 0, document.RoleNone),
		},
		{
			name: "distance x dropped when not hv safe",
			in:   document.NewConstraint(document.DistanceX, 0, document.RoleNone).WithValue(3),
		},
		{
			name: "block copied",
			in:   document.NewConstraint(document.Block, 0, document.RoleNone),
			want: ptr(document.NewConstraint(document.Block, 5, document.RoleNone)),
		},
		{
			name: "unmirrored operand ignored",
			in:   document.NewConstraint(document.Block, 3, document.RoleNone),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Rewrite([]document.Constraint{tt.in})
			if tt.want == nil {
				assert.Empty(t, out)
				return
			}
			require.Len(t, out, 1)
			assert.Equal(t, *tt.want, out[0].Constraint)
			assert.False(t, out[0].BindValue)
		})
	}
}

func TestRewriteHVTypesWhenSafe(t *testing.T) {
	r := ConstraintRewriter{GeometryMap: map[int]int{0: 2, 1: 3}, HVSafe: true, AboutLine: true}

	out := r.Rewrite([]document.Constraint{
		document.NewConstraint(document.Vertical, 0, document.RoleNone),
		document.NewConstraint2(document.DistanceX, 0, document.RoleStart, 1, document.RoleEnd).WithValue(4),
	})
	require.Len(t, out, 2)
	assert.Equal(t, document.NewConstraint(document.Vertical, 2, document.RoleNone), out[0].Constraint)
	assert.Equal(t, 3, out[1].Constraint.Second)
	assert.True(t, out[1].BindValue)
	assert.Equal(t, 4.0, out[1].Constraint.Value)
}

func TestRewritePairRequiresBothMirrored(t *testing.T) {
	r := ConstraintRewriter{GeometryMap: map[int]int{0: 4}}

	out := r.Rewrite([]document.Constraint{
		document.NewConstraint2(document.Coincident, 0, document.RoleEnd, 1, document.RoleStart),
		document.NewConstraint2(document.PointOnObject, 0, document.RoleStart, document.VerticalAxis, document.RoleNone),
	})
	assert.Empty(t, out)
}

func TestRewriteFlipsRolesOfInvertedGeometry(t *testing.T) {
	r := ConstraintRewriter{
		GeometryMap: map[int]int{0: 2, 1: 3},
		Inverted:    map[int]bool{1: true},
		AboutLine:   true,
	}

	out := r.Rewrite([]document.Constraint{
		document.NewConstraint2(document.Coincident, 0, document.RoleEnd, 1, document.RoleStart),
		document.NewConstraint2(document.Tangent, 0, document.RoleEnd, 1, document.RoleMid),
	})
	require.Len(t, out, 2)

	assert.Equal(t, document.NewConstraint2(document.Coincident, 2, document.RoleEnd, 3, document.RoleEnd), out[0].Constraint)
	assert.Equal(t, document.RoleMid, out[1].Constraint.SecondPos, "mid is never flipped")
	assert.Equal(t, 1, out[1].OriginalIndex)
}

func TestRewriteSingleOperandFlipsRolesOfInvertedGeometry(t *testing.T) {
	r := ConstraintRewriter{
		GeometryMap: map[int]int{0: 5},
		Inverted:    map[int]bool{0: true},
		HVSafe:      true,
		AboutLine:   true,
	}

	out := r.Rewrite([]document.Constraint{
		document.NewConstraint(document.DistanceX, 0, document.RoleStart).WithValue(3),
	})
	require.Len(t, out, 1)

	// the copy's end is the image of the original's start
	assert.Equal(t, document.NewConstraint(document.DistanceX, 5, document.RoleEnd).WithValue(3), out[0].Constraint)
	assert.False(t, out[0].BindValue)
}

func TestRewriteAngle(t *testing.T) {
	angle := document.NewConstraint2(document.Angle, 0, document.RoleNone, 1, document.RoleNone).WithValue(0.5)

	aboutLine := ConstraintRewriter{GeometryMap: map[int]int{0: 2, 1: 3}, AboutLine: true}
	out := aboutLine.Rewrite([]document.Constraint{angle})
	require.Len(t, out, 1)
	assert.Equal(t, -0.5, out[0].Constraint.Value)
	assert.True(t, out[0].Negated)
	assert.True(t, out[0].BindValue)

	aboutPoint := ConstraintRewriter{GeometryMap: map[int]int{0: 2, 1: 3}}
	out = aboutPoint.Rewrite([]document.Constraint{angle})
	require.Len(t, out, 1)
	assert.Equal(t, 0.5, out[0].Constraint.Value)
	assert.False(t, out[0].Negated)
}

func TestRewriteThreeOperands(t *testing.T) {
	r := ConstraintRewriter{GeometryMap: map[int]int{0: 3, 1: 4, 2: 5}}
	sym := document.NewConstraint3(document.Symmetric, 0, document.RoleStart, 1, document.RoleEnd, 2, document.RoleNone)

	out := r.Rewrite([]document.Constraint{sym})
	require.Len(t, out, 1)
	assert.Equal(t, document.NewConstraint3(document.Symmetric, 3, document.RoleStart, 4, document.RoleEnd, 5, document.RoleNone), out[0].Constraint)

	partial := ConstraintRewriter{GeometryMap: map[int]int{0: 3, 1: 4}}
	assert.Empty(t, partial.Rewrite([]document.Constraint{sym}))
}

func TestRewriteDoesNotAliasOriginal(t *testing.T) {
	r := ConstraintRewriter{GeometryMap: map[int]int{0: 1}}
	in := []document.Constraint{document.NewConstraint(document.Block, 0, document.RoleNone).WithName("keep")}

	out := r.Rewrite(in)
	require.Len(t, out, 1)
	assert.Equal(t, "keep", in[0].Name)
	assert.Equal(t, 0, in[0].First)
	assert.Empty(t, out[0].Constraint.Name)
	assert.Equal(t, "keep", out[0].Original.Name)
}

type fakeSink struct {
	constraints []document.Constraint
	exprs       map[string]string
}

func newFakeSink(existing ...document.Constraint) *fakeSink {
	return &fakeSink{constraints: existing, exprs: make(map[string]string)}
}

func (f *fakeSink) AppendConstraint(c document.Constraint) (int, error) {
	f.constraints = append(f.constraints, c)
	return len(f.constraints) - 1, nil
}

func (f *fakeSink) ConstraintNameTaken(name string) bool {
	for _, c := range f.constraints {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeSink) SetExpression(path, formula string) error {
	f.exprs[path] = formula
	return nil
}

func TestApplyRewrittenNamesAndBindings(t *testing.T) {
	orig := document.NewConstraint2(document.Angle, 0, document.RoleNone, 1, document.RoleNone).WithValue(1).WithName("tilt")
	sink := newFakeSink(orig, document.NewConstraint(document.Block, 0, document.RoleNone).WithName("tilt_mirrored"))

	planned := []Rewritten{{
		OriginalIndex: 0,
		Original:      orig,
		Constraint:    orig.WithName("").WithValue(-1),
		BindValue:     true,
		Negated:       true,
	}}

	copies, ordered, err := applyRewritten(sink, planned, DefaultNameSuffix)
	require.NoError(t, err)
	require.Len(t, ordered, 1)

	cp := ordered[0]
	assert.Equal(t, 2, cp.CopyIndex)
	assert.Equal(t, "tilt_mirrored2", sink.constraints[2].Name)
	assert.Equal(t, document.NameKey("tilt_mirrored2"), cp.Copy)
	assert.Equal(t, "-Constraints.tilt", cp.Binding())
	assert.Equal(t, map[string]string{".Constraints.tilt_mirrored2": "-Constraints.tilt"}, sink.exprs)

	assert.Equal(t, cp, copies[document.IndexKey(0)])
	assert.Equal(t, cp, copies[document.NameKey("tilt")])
}

func TestApplyRewrittenUnnamed(t *testing.T) {
	orig := document.NewConstraint2(document.DistanceY, 0, document.RoleStart, 1, document.RoleMid).WithValue(1.5)
	sink := newFakeSink(orig)

	copies, ordered, err := applyRewritten(sink, []Rewritten{{Original: orig, Constraint: orig, BindValue: true}}, "_m")
	require.NoError(t, err)
	require.Len(t, ordered, 1)

	assert.Equal(t, document.IndexKey(1), ordered[0].Copy)
	assert.Equal(t, "Constraints[0]", sink.exprs[".Constraints[1]"])
	assert.Len(t, copies, 1)
}

func ptr[T any](v T) *T { return &v }
