package mapping

import (
	"math"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// Spherical is the standard latitude-longitude mapping: φ = 2πu, θ = πv, +Z at v = 0
type Spherical struct{}

// SphericalAngles returns (φ, θ) for uv
func SphericalAngles(uv core.Vec2) core.Vec2 {
	return core.NewVec2(core.TwoPi*uv.X, math.Pi*uv.Y)
}

func (Spherical) Forward(uv core.Vec2) core.Vec3 {
	w, _ := Spherical{}.ForwardSinTheta(uv)
	return w
}

// ForwardSinTheta maps uv to a direction and also returns sin(θ)
func (Spherical) ForwardSinTheta(uv core.Vec2) (core.Vec3, float64) {
	angles := SphericalAngles(uv)
	sinTheta := math.Sin(angles.Y)
	return core.NewVec3(
		math.Cos(angles.X)*sinTheta,
		math.Sin(angles.X)*sinTheta,
		math.Cos(angles.Y),
	), sinTheta
}

func (Spherical) Inverse(w core.Vec3) core.Vec2 {
	uv, _ := Spherical{}.InverseSinTheta(w)
	return uv
}

// InverseSinTheta maps a unit direction back to uv and also returns sin(θ) computed from w
func (Spherical) InverseSinTheta(w core.Vec3) (core.Vec2, float64) {
	phi, theta, sinTheta := directionAngles(w)
	return core.NewVec2(phi*core.InvTwoPi, theta*core.InvPi), sinTheta
}

// Jacobian is |2π·π·sin(θ)|, exactly 0 at the poles
func (Spherical) Jacobian(uv core.Vec2) float64 {
	jacobian, _ := Spherical{}.JacobianSinTheta(uv)
	return jacobian
}

// JacobianSinTheta returns the Jacobian at uv and sin(θ)
func (Spherical) JacobianSinTheta(uv core.Vec2) (float64, float64) {
	sinTheta := math.Sin(SphericalAngles(uv).Y)
	return math.Abs(core.TwoPiSquared * sinTheta), sinTheta
}

func (Spherical) RcpJacobian(w core.Vec3) float64 {
	sinTheta := math.Sqrt(w.X*w.X + w.Y*w.Y)
	if sinTheta == 0 {
		return 0
	}
	return math.Abs(1 / (core.TwoPiSquared * sinTheta))
}

func (Spherical) SolidAngle() float64 {
	return core.FourPi
}

// directionAngles returns φ in [0, 2π), θ in [0, π] and sin(θ) for a unit direction.
// At the poles φ is 0.
func directionAngles(w core.Vec3) (phi, theta, sinTheta float64) {
	sinTheta = math.Sqrt(w.X*w.X + w.Y*w.Y)
	phi = math.Atan2(w.Y, w.X)
	theta = math.Atan2(sinTheta, w.Z)
	if phi < 0 {
		phi += core.TwoPi
	}
	return phi, theta, sinTheta
}
