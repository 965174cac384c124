package geom

import "math"

// Epsilon is the tolerance used for approximate comparisons of sketch coordinates.
const Epsilon = 1e-9

// Vector represents a 2D point or direction in sketch coordinates.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns a vector from its components.
func Vec(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by s.
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y }

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l == 0 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// IsZero reports whether both components are exactly zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Angle returns the polar angle of v normalised to [0, 2π).
func (v Vector) Angle() float64 {
	return NormalizeAngle(math.Atan2(v.Y, v.X))
}

// ApproxEqual checks if two vectors are equal within eps.
func (v Vector) ApproxEqual(o Vector, eps float64) bool {
	return math.Abs(v.X-o.X) < eps && math.Abs(v.Y-o.Y) < eps
}

// PolarPoint returns the point at the given radius and angle around center.
func PolarPoint(center Vector, radius, angle float64) Vector {
	return Vector{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// NormalizeAngle maps an angle in radians onto [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// math.Mod can round -tiny up to exactly 2π
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
