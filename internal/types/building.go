package types

import "math"

// Building is an axis-aligned box standing on the ground plane.
// X and Z locate the center of its footprint; it spans 0..Height vertically.
type Building struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
	HP     int     `json:"hp"`
}

func (b *Building) Min() Vector3 {
	return Vector3{X: b.X - b.Width/2, Y: 0, Z: b.Z - b.Depth/2}
}

func (b *Building) Max() Vector3 {
	return Vector3{X: b.X + b.Width/2, Y: b.Height, Z: b.Z + b.Depth/2}
}

func (b *Building) IsActive() bool {
	return b.HP > 0
}

// TakeDamage lowers hp by damage, clamped at zero, and reports whether the
// building has been destroyed.
func (b *Building) TakeDamage(damage int) bool {
	b.HP -= damage
	if b.HP < 0 {
		b.HP = 0
	}
	return b.HP <= 0
}

// ContainsXZ reports whether the footprint, grown by padding, covers (x, z).
func (b *Building) ContainsXZ(x, z, padding float64) bool {
	return math.Abs(x-b.X) <= b.Width/2+padding && math.Abs(z-b.Z) <= b.Depth/2+padding
}
