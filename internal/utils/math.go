package utils

import (
	"math"

	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

// ParallelEpsilon is the direction component below which a ray is treated
// as parallel to a slab.
const ParallelEpsilon = 1e-9

// Collision detection helpers
func CheckRectCollision(x1, y1, w1, h1, x2, y2, w2, h2 float64) bool {
	return x1 < x2+w2 && x1+w1 > x2 && y1 < y2+h2 && y1+h1 > y2
}

// RayAABB intersects the ray origin + t*dir with the box [min, max] using the
// slab method. It returns the entry parameter and whether the ray enters the
// box in front of the origin and before maxRange. A ray starting inside the
// box reports an entry of 0.
func RayAABB(origin, dir, min, max types.Vector3, maxRange float64) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := origin.Index(axis)
		d := dir.Index(axis)
		lo := min.Index(axis)
		hi := max.Index(axis)

		if math.Abs(d) < ParallelEpsilon {
			// Parallel to this slab: only a hit if already between its faces
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax <= 0 || tmin >= maxRange {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, true
}

// RayPoint tests whether the ray origin + t*dir passes strictly within radius
// of target at some 0 < t < maxRange. dir must be unit length. It returns the
// projection parameter of the closest approach.
func RayPoint(origin, dir, target types.Vector3, radius, maxRange float64) (float64, bool) {
	toTarget := target.Sub(origin)
	t := toTarget.Dot(dir)
	if t <= 0 || t >= maxRange {
		return t, false
	}

	closest := origin.Add(dir.Scale(t))
	distSq := target.Sub(closest).LengthSquared()
	return t, distSq < radius*radius
}
