package common

import (
	"math"
)

// Epsilon is the shared tolerance for degenerate-math guards: near-zero time
// deltas, near-zero quaternion lengths, and near-coincident blend points all
// compare against this threshold.
const Epsilon float32 = 1e-4

// slerpLinearThreshold is the quaternion dot product above which Slerp falls
// back to normalized linear interpolation. Near-parallel quaternions make the
// slerp denominator approach zero.
const slerpLinearThreshold float32 = 0.9995

// Clamp restricts v to the inclusive range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v clamped into [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
//
// Parameters:
//   - a: the start value
//   - b: the end value
//   - t: the blend factor (not clamped)
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Lerp3 linearly interpolates between two 3-component vectors by t.
//
// Parameters:
//   - a: the start vector
//   - b: the end vector
//   - t: the blend factor (not clamped)
//
// Returns:
//   - [3]float32: the interpolated vector
func Lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
		a[2] + t*(b[2]-a[2]),
	}
}

// Scale3 multiplies each component of v by s.
//
// Parameters:
//   - v: the vector to scale
//   - s: the scalar factor
//
// Returns:
//   - [3]float32: the scaled vector
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Hadamard3 multiplies two vectors component-wise.
//
// Parameters:
//   - a: the left vector
//   - b: the right vector
//
// Returns:
//   - [3]float32: the component-wise product
func Hadamard3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Add3 adds two vectors component-wise.
//
// Parameters:
//   - a: the left vector
//   - b: the right vector
//
// Returns:
//   - [3]float32: the component-wise sum
func Add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Dot4 returns the dot product of two quaternions stored as (x, y, z, w).
//
// Parameters:
//   - a: the left quaternion
//   - b: the right quaternion
//
// Returns:
//   - float32: the dot product
func Dot4(a, b [4]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// QuatIdentity returns the identity quaternion (0, 0, 0, 1).
//
// Returns:
//   - [4]float32: the identity quaternion
func QuatIdentity() [4]float32 {
	return [4]float32{0, 0, 0, 1}
}

// Normalize4 renormalizes a quaternion to unit length. A degenerate
// quaternion (length below Epsilon) resets to the identity rotation rather
// than propagating NaN.
//
// Parameters:
//   - q: the quaternion as (x, y, z, w)
//
// Returns:
//   - [4]float32: the unit-length quaternion, or identity if degenerate
func Normalize4(q [4]float32) [4]float32 {
	length := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if length < Epsilon {
		return QuatIdentity()
	}
	inv := 1.0 / length
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// QuatMul multiplies two quaternions, combining their rotations. The result
// applies b first, then a (standard Hamilton product a*b).
//
// Parameters:
//   - a: the left quaternion
//   - b: the right quaternion
//
// Returns:
//   - [4]float32: the product quaternion
func QuatMul(a, b [4]float32) [4]float32 {
	ax, ay, az, aw := a[0], a[1], a[2], a[3]
	bx, by, bz, bw := b[0], b[1], b[2], b[3]
	return [4]float32{
		aw*bx + ax*bw + ay*bz - az*by,
		aw*by - ax*bz + ay*bw + az*bx,
		aw*bz + ax*by - ay*bx + az*bw,
		aw*bw - ax*bx - ay*by - az*bz,
	}
}

// Slerp performs shortest-path spherical linear interpolation between two
// quaternions. If the inputs are nearly parallel (dot > 0.9995) it falls back
// to normalized linear interpolation to avoid a near-zero slerp denominator.
//
// Parameters:
//   - a: the start quaternion
//   - b: the end quaternion
//   - t: the blend factor in [0, 1]
//
// Returns:
//   - [4]float32: the interpolated unit-length quaternion
func Slerp(a, b [4]float32, t float32) [4]float32 {
	dot := Dot4(a, b)

	// Negate one endpoint when the rotations are on opposite hemispheres so
	// the interpolation takes the shorter great-circle path.
	if dot < 0 {
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
		dot = -dot
	}

	if dot > slerpLinearThreshold {
		return Normalize4([4]float32{
			a[0] + t*(b[0]-a[0]),
			a[1] + t*(b[1]-a[1]),
			a[2] + t*(b[2]-a[2]),
			a[3] + t*(b[3]-a[3]),
		})
	}

	theta0 := float32(math.Acos(float64(dot)))
	theta := theta0 * t
	sinTheta := float32(math.Sin(float64(theta)))
	sinTheta0 := float32(math.Sin(float64(theta0)))

	s0 := float32(math.Cos(float64(theta))) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return [4]float32{
		a[0]*s0 + b[0]*s1,
		a[1]*s0 + b[1]*s1,
		a[2]*s0 + b[2]*s1,
		a[3]*s0 + b[3]*s1,
	}
}

// Hermite evaluates the cubic Hermite basis at t for endpoint values p0, p1
// and tangents m0, m1. Tangents must already be scaled by the keyframe time
// delta.
//
// Parameters:
//   - p0: the start value
//   - m0: the start tangent (scaled by the time delta)
//   - p1: the end value
//   - m1: the end tangent (scaled by the time delta)
//   - t: the normalized blend factor in [0, 1]
//
// Returns:
//   - float32: the interpolated value
func Hermite(p0, m0, p1, m1, t float32) float32 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*p0 + h10*m0 + h01*p1 + h11*m1
}

// Hermite3 evaluates the cubic Hermite basis component-wise over 3-vectors.
//
// Parameters:
//   - p0: the start vector
//   - m0: the start tangent (scaled by the time delta)
//   - p1: the end vector
//   - m1: the end tangent (scaled by the time delta)
//   - t: the normalized blend factor in [0, 1]
//
// Returns:
//   - [3]float32: the interpolated vector
func Hermite3(p0, m0, p1, m1 [3]float32, t float32) [3]float32 {
	return [3]float32{
		Hermite(p0[0], m0[0], p1[0], m1[0], t),
		Hermite(p0[1], m0[1], p1[1], m1[1], t),
		Hermite(p0[2], m0[2], p1[2], m1[2], t),
	}
}
