package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateAxisNorm is the norm below which a rotation axis is treated as
// undefined and the rotation becomes a no-op.
const degenerateAxisNorm = 1e-12

// Rotate returns v rotated by angle radians about axis using a unit
// quaternion. The axis need not be normalised. A zero angle or an axis with
// near-zero magnitude (e.g. the cross product of parallel vectors) leaves v
// unchanged instead of producing NaNs.
func Rotate(v, axis r3.Vec, angle float64) r3.Vec {
	if angle == 0 || r3.Norm(axis) < degenerateAxisNorm {
		return v
	}
	return r3.NewRotation(angle, axis).Rotate(v)
}

// FromLatLon converts spherical coordinates (radians) to a position on the
// sphere of the given radius. Z points to the north pole.
func FromLatLon(lat, lon, radius float64) r3.Vec {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	return r3.Vec{
		X: cosLat * cosLon * radius,
		Y: cosLat * sinLon * radius,
		Z: sinLat * radius,
	}
}

// ToLatLon returns the latitude and longitude, in degrees, of a position on
// the sphere of the given radius.
func ToLatLon(pos r3.Vec, radius float64) (float64, float64) {
	s := pos.Z / radius
	// Rounding can push |z| a hair past the radius at the poles.
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	lat := math.Asin(s) * 180.0 / math.Pi
	lon := math.Atan2(pos.Y, pos.X) * 180.0 / math.Pi
	return lat, lon
}

// IsSunlit reports whether the star lies on or above the local horizon of
// pos, given the normalised direction from pos to the star. A star exactly on
// the horizon counts as lit.
func IsSunlit(pos, starDir r3.Vec) bool {
	return r3.Dot(starDir, pos) >= 0
}

// unitOrZero normalises v, returning the zero vector for degenerate input.
func unitOrZero(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < degenerateAxisNorm {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}
