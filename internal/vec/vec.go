// Package vec provides the 3D value vectors used for spins, fluxes and
// magnetizations throughout the simulator.
package vec

import "math"

// Vec3 is an immutable 3D vector. All methods return new values.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero = Vec3{0, 0, 0}
	I    = Vec3{1, 0, 0}
	J    = Vec3{0, 1, 0}
	K    = Vec3{0, 0, 1}
)

// Cylindrical builds a vector from radius r, azimuth theta and height z.
func Cylindrical(r, theta, z float64) Vec3 {
	return Vec3{r * math.Cos(theta), r * math.Sin(theta), z}
}

// Polar builds a vector in the xy-plane from radius r and azimuth theta.
func Polar(r, theta float64) Vec3 {
	return Cylindrical(r, theta, 0)
}

// Spherical builds a vector from magnitude rho, azimuth theta and
// inclination phi measured from the xy-plane.
func Spherical(rho, theta, phi float64) Vec3 {
	return Cylindrical(rho*math.Cos(phi), theta, rho*math.Sin(phi))
}

func (v Vec3) Add(u Vec3) Vec3 { return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z} }
func (v Vec3) Sub(u Vec3) Vec3 { return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z} }
func (v Vec3) Neg() Vec3       { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{k * v.X, k * v.Y, k * v.Z} }

func (v Vec3) Dot(u Vec3) float64 { return v.X*u.X + v.Y*u.Y + v.Z*u.Z }

// Cross returns v x u. Anti-commutative: u.Cross(v) == v.Cross(u).Neg().
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		v.Y*u.Z - v.Z*u.Y,
		v.Z*u.X - v.X*u.Z,
		v.X*u.Y - v.Y*u.X,
	}
}

func (v Vec3) NormSq() float64 { return v.Dot(v) }
func (v Vec3) Norm() float64   { return math.Sqrt(v.NormSq()) }

// DistanceSq returns the squared distance between v and u.
func (v Vec3) DistanceSq(u Vec3) float64 { return v.Sub(u).NormSq() }

// Distance returns the distance between v and u.
func (v Vec3) Distance(u Vec3) float64 { return math.Sqrt(v.DistanceSq(u)) }

// AngleBetween returns the angle between v and u in [0, pi]. The angle
// to the zero vector is 0.
func (v Vec3) AngleBetween(u Vec3) float64 {
	d := v.Norm() * u.Norm()
	if d == 0 {
		return 0
	}
	c := v.Dot(u) / d
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// Normalized returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Zero
	}
	return v.Scale(1 / n)
}

// WithNorm rescales v to magnitude rho, preserving direction.
func (v Vec3) WithNorm(rho float64) Vec3 {
	return v.Normalized().Scale(rho)
}

// Theta is the azimuthal angle in the xy-plane, in (-pi, pi].
func (v Vec3) Theta() float64 { return math.Atan2(v.Y, v.X) }

// Phi is the inclination from the xy-plane. A vector on the z-axis has
// phi of +-pi/2; the zero vector has phi of 0.
func (v Vec3) Phi() float64 {
	r := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if r == 0 {
		if v.Z == 0 {
			return 0
		}
		if v.Z > 0 {
			return math.Pi / 2
		}
		return -math.Pi / 2
	}
	return math.Atan(v.Z / r)
}

// Rotated shifts v's azimuth by theta and its inclination by phi,
// preserving the magnitude.
func (v Vec3) Rotated(theta, phi float64) Vec3 {
	return Spherical(v.Norm(), v.Theta()+theta, v.Phi()+phi)
}

// RotatedZ rotates v about the z-axis by theta.
func (v Vec3) RotatedZ(theta float64) Vec3 {
	return v.Rotated(theta, 0)
}

// SqSum returns the componentwise square of v, used for anisotropy terms.
func (v Vec3) SqSum() Vec3 { return Vec3{v.X * v.X, v.Y * v.Y, v.Z * v.Z} }
