package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorArithmetic(t *testing.T) {
	a := Vec(1, 2)
	b := Vec(3, -1)

	assert.Equal(t, Vec(4, 1), a.Add(b))
	assert.Equal(t, Vec(-2, 3), a.Sub(b))
	assert.Equal(t, Vec(2, 4), a.Scale(2))
	assert.InDelta(t, 1.0, a.Dot(b), 1e-12)
	assert.InDelta(t, 5.0, Vec(3, 4).Length(), 1e-12)
}

func TestNormalize(t *testing.T) {
	n := Vec(0, 10).Normalize()
	assert.True(t, n.ApproxEqual(Vec(0, 1), Epsilon))
	assert.True(t, Vector{}.Normalize().IsZero())
}

func TestAngle(t *testing.T) {
	tests := []struct {
		v    Vector
		want float64
	}{
		{Vec(1, 0), 0},
		{Vec(0, 1), math.Pi / 2},
		{Vec(-1, 0), math.Pi},
		{Vec(0, -1), 3 * math.Pi / 2},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, tc.v.Angle(), 1e-12, "angle of %v", tc.v)
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, math.Pi/2, NormalizeAngle(-3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, NormalizeAngle(5*math.Pi), 1e-12)
}

func TestPolarPoint(t *testing.T) {
	p := PolarPoint(Vec(1, 1), 2, math.Pi/2)
	assert.True(t, p.ApproxEqual(Vec(1, 3), 1e-12))
}
