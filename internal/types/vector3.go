package types

import "math"

// Vector3 represents a point or direction in world space (y is up)
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) LengthSquared() float64 {
	return v.Dot(v)
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns the unit vector pointing the same way. The second result
// is false for zero-length or non-finite vectors, in which case the zero
// vector is returned.
func (v Vector3) Normalize() (Vector3, bool) {
	if !v.IsFinite() {
		return Vector3{}, false
	}
	length := v.Length()
	if length == 0 || math.IsInf(length, 0) {
		return Vector3{}, false
	}
	return v.Scale(1 / length), true
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Index returns the component on axis 0 (x), 1 (y) or 2 (z).
func (v Vector3) Index(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsFiniteFloat reports whether f is neither NaN nor infinite.
func IsFiniteFloat(f float64) bool {
	return isFinite(f)
}
