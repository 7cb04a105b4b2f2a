package common

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol float32, msg string) {
	t.Helper()
	if diff := float64(got - want); math.Abs(diff) > float64(tol) {
		t.Fatalf("%s: got %v, want %v (tol %v)", msg, got, want, tol)
	}
}

func quatLength(q [4]float32) float32 {
	return float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
}

func TestClamp(t *testing.T) {
	if got := Clamp(-1, 0, 1); got != 0 {
		t.Fatalf("Clamp(-1,0,1) = %v, want 0", got)
	}
	if got := Clamp(2, 0, 1); got != 1 {
		t.Fatalf("Clamp(2,0,1) = %v, want 1", got)
	}
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Fatalf("Clamp(0.5,0,1) = %v, want 0.5", got)
	}
}

func TestHermiteZeroTangentsIsLinear(t *testing.T) {
	approx(t, Hermite(0, 0, 1, 0, 0.5), 0.5, 1e-6, "midpoint")
	approx(t, Hermite(0, 0, 1, 0, 0), 0, 1e-6, "start")
	approx(t, Hermite(0, 0, 1, 0, 1), 1, 1e-6, "end")
	approx(t, Hermite(2, 0, 6, 0, 0.25), 3, 1e-6, "quarter")
}

func TestHermiteTangents(t *testing.T) {
	// Unit tangents matching the endpoint slope reproduce the straight line.
	approx(t, Hermite(0, 1, 1, 1, 0.25), 0.25, 1e-6, "matched tangents")
}

func TestSlerpEndpoints(t *testing.T) {
	a := QuatIdentity()
	b := [4]float32{0, float32(math.Sin(math.Pi / 4)), 0, float32(math.Cos(math.Pi / 4))}
	r0 := Slerp(a, b, 0)
	r1 := Slerp(a, b, 1)
	for i := 0; i < 4; i++ {
		approx(t, r0[i], a[i], 1e-4, "t=0")
		approx(t, r1[i], b[i], 1e-4, "t=1")
	}
}

func TestSlerpHalfway(t *testing.T) {
	// Halfway between identity and a 90 degree Y rotation is 45 degrees.
	a := QuatIdentity()
	b := [4]float32{0, float32(math.Sin(math.Pi / 4)), 0, float32(math.Cos(math.Pi / 4))}
	r := Slerp(a, b, 0.5)
	approx(t, r[1], float32(math.Sin(math.Pi/8)), 1e-4, "y component")
	approx(t, r[3], float32(math.Cos(math.Pi/8)), 1e-4, "w component")
	approx(t, quatLength(r), 1, 1e-3, "unit length")
}

func TestSlerpShortestPath(t *testing.T) {
	// q and -q are the same rotation; interpolation must not swing the long
	// way around.
	a := QuatIdentity()
	b := [4]float32{0, 0, 0, -1}
	r := Slerp(a, b, 0.5)
	approx(t, quatLength(r), 1, 1e-3, "unit length")
	if r[3] < 0.99 && r[3] > -0.99 {
		t.Fatalf("Slerp took the long path: %v", r)
	}
}

func TestSlerpNearParallelFallback(t *testing.T) {
	a := QuatIdentity()
	b := Normalize4([4]float32{0.001, 0, 0, 1})
	r := Slerp(a, b, 0.5)
	approx(t, quatLength(r), 1, 1e-3, "unit length")
}

func TestNormalize4Degenerate(t *testing.T) {
	r := Normalize4([4]float32{0, 0, 0, 0})
	if r != QuatIdentity() {
		t.Fatalf("degenerate quaternion should reset to identity, got %v", r)
	}
}

func TestNormalize4(t *testing.T) {
	r := Normalize4([4]float32{0, 3, 0, 4})
	approx(t, r[1], 0.6, 1e-5, "y")
	approx(t, r[3], 0.8, 1e-5, "w")
}

func TestQuatMulIdentity(t *testing.T) {
	q := Normalize4([4]float32{1, 2, 3, 4})
	r := QuatMul(QuatIdentity(), q)
	for i := 0; i < 4; i++ {
		approx(t, r[i], q[i], 1e-5, "left identity")
	}
	r = QuatMul(q, QuatIdentity())
	for i := 0; i < 4; i++ {
		approx(t, r[i], q[i], 1e-5, "right identity")
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	// Two 45 degree Y rotations compose to 90 degrees.
	half := [4]float32{0, float32(math.Sin(math.Pi / 8)), 0, float32(math.Cos(math.Pi / 8))}
	r := QuatMul(half, half)
	approx(t, r[1], float32(math.Sin(math.Pi/4)), 1e-4, "y component")
	approx(t, r[3], float32(math.Cos(math.Pi/4)), 1e-4, "w component")
	approx(t, quatLength(r), 1, 1e-3, "unit length")
}

func TestLerp3(t *testing.T) {
	r := Lerp3([3]float32{0, 0, 0}, [3]float32{2, 4, 6}, 0.5)
	if r != ([3]float32{1, 2, 3}) {
		t.Fatalf("Lerp3 midpoint = %v", r)
	}
}

func TestHadamard3(t *testing.T) {
	r := Hadamard3([3]float32{1, 2, 3}, [3]float32{2, 2, 2})
	if r != ([3]float32{2, 4, 6}) {
		t.Fatalf("Hadamard3 = %v", r)
	}
}
