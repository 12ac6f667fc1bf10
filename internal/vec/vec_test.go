package vec

import (
	"math"
	"testing"
)

const tol = 1e-12

func approx(a, b float64) bool { return math.Abs(a-b) <= tol }

func approxVec(a, b Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestSphericalRoundTrip(t *testing.T) {
	v := Spherical(2.5, 1.1, -0.4)
	if !approx(v.Norm(), 2.5) {
		t.Errorf("norm = %v, want 2.5", v.Norm())
	}
	if !approx(v.Theta(), 1.1) {
		t.Errorf("theta = %v, want 1.1", v.Theta())
	}
	if !approx(v.Phi(), -0.4) {
		t.Errorf("phi = %v, want -0.4", v.Phi())
	}
}

func TestPhiAxisCases(t *testing.T) {
	if got := K.Scale(3).Phi(); !approx(got, math.Pi/2) {
		t.Errorf("phi of +z = %v, want pi/2", got)
	}
	if got := K.Scale(-3).Phi(); !approx(got, -math.Pi/2) {
		t.Errorf("phi of -z = %v, want -pi/2", got)
	}
	if got := Zero.Phi(); got != 0 {
		t.Errorf("phi of zero = %v, want 0", got)
	}
}

func TestPolar(t *testing.T) {
	if got := Polar(2, math.Pi/2); !approxVec(got, J.Scale(2)) {
		t.Errorf("Polar(2, pi/2) = %+v, want 2j", got)
	}
}

func TestDistanceAndAngle(t *testing.T) {
	a, b := I.Scale(3), J.Scale(4)
	if got := a.DistanceSq(b); !approx(got, 25) {
		t.Errorf("distance sq = %v, want 25", got)
	}
	if got := a.Distance(b); !approx(got, 5) {
		t.Errorf("distance = %v, want 5", got)
	}
	if got := a.AngleBetween(b); !approx(got, math.Pi/2) {
		t.Errorf("angle = %v, want pi/2", got)
	}
	if got := a.AngleBetween(a.Neg()); !approx(got, math.Pi) {
		t.Errorf("opposed angle = %v, want pi", got)
	}
	if got := a.AngleBetween(Zero); got != 0 {
		t.Errorf("angle to zero = %v, want 0", got)
	}
}

func TestRotated(t *testing.T) {
	// A quarter turn in the xy-plane carries x onto y.
	if got := I.RotatedZ(math.Pi / 2); !approxVec(got, J) {
		t.Errorf("i rotated pi/2 = %+v, want j", got)
	}
	// Raising the inclination by pi/2 carries x onto z.
	if got := I.Rotated(0, math.Pi/2); !approxVec(got, K) {
		t.Errorf("i raised pi/2 = %+v, want k", got)
	}

	v := Spherical(1.75, 0.3, 0.2)
	got := v.Rotated(0.5, -0.1)
	if !approx(got.Norm(), 1.75) {
		t.Errorf("rotation changed the norm: %v", got.Norm())
	}
	if !approx(got.Theta(), 0.8) || !approx(got.Phi(), 0.1) {
		t.Errorf("rotated angles = %v,%v, want 0.8,0.1", got.Theta(), got.Phi())
	}
}

func TestCrossAntiCommutes(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{-0.5, 4, 1.25}
	if got := a.Cross(b); !approxVec(got, b.Cross(a).Neg()) {
		t.Errorf("a x b = %v, -(b x a) = %v", got, b.Cross(a).Neg())
	}
	if got := I.Cross(J); !approxVec(got, K) {
		t.Errorf("i x j = %v, want k", got)
	}
}

func TestNormalizedZero(t *testing.T) {
	if got := Zero.Normalized(); got != Zero {
		t.Errorf("normalized zero = %v, want zero", got)
	}
	if got := Zero.WithNorm(5); got != Zero {
		t.Errorf("zero with norm 5 = %v, want zero", got)
	}
}

func TestWithNorm(t *testing.T) {
	v := Vec3{3, 4, 0}.WithNorm(10)
	if !approxVec(v, Vec3{6, 8, 0}) {
		t.Errorf("got %v, want (6 8 0)", v)
	}
}

func TestDotAndSqSum(t *testing.T) {
	a := Vec3{1, -2, 3}
	if got := a.Dot(a); !approx(got, 14) {
		t.Errorf("a.a = %v, want 14", got)
	}
	if got := a.SqSum(); !approxVec(got, Vec3{1, 4, 9}) {
		t.Errorf("sq = %v, want (1 4 9)", got)
	}
}
