package mapping

import (
	"math"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// Hemispherical maps [0,1)² onto the +Z hemisphere: φ = 2πu, θ = (π/2)v
type Hemispherical struct{}

// HemisphericalAngles returns (φ, θ) for uv
func HemisphericalAngles(uv core.Vec2) core.Vec2 {
	return core.NewVec2(core.TwoPi*uv.X, core.HalfPi*uv.Y)
}

func (Hemispherical) Forward(uv core.Vec2) core.Vec3 {
	w, _ := Hemispherical{}.ForwardSinTheta(uv)
	return w
}

// ForwardSinTheta maps uv to a direction and also returns sin(θ)
func (Hemispherical) ForwardSinTheta(uv core.Vec2) (core.Vec3, float64) {
	angles := HemisphericalAngles(uv)
	sinTheta := math.Sin(angles.Y)
	return core.NewVec3(
		math.Cos(angles.X)*sinTheta,
		math.Sin(angles.X)*sinTheta,
		math.Cos(angles.Y),
	), sinTheta
}

func (Hemispherical) Inverse(w core.Vec3) core.Vec2 {
	uv, _ := Hemispherical{}.InverseSinTheta(w)
	return uv
}

// InverseSinTheta maps a unit direction back to uv and also returns sin(θ) computed from w
func (Hemispherical) InverseSinTheta(w core.Vec3) (core.Vec2, float64) {
	phi, theta, sinTheta := directionAngles(w)
	return core.NewVec2(phi*core.InvTwoPi, theta*core.TwoOverPi), sinTheta
}

// Jacobian is 2π·(π/2)·sin(θ) = π²·sin(θ)
func (Hemispherical) Jacobian(uv core.Vec2) float64 {
	return math.Sin(HemisphericalAngles(uv).Y) * core.PiSquared
}

func (Hemispherical) RcpJacobian(w core.Vec3) float64 {
	sinTheta := math.Sqrt(w.X*w.X + w.Y*w.Y)
	if sinTheta == 0 {
		return 0
	}
	return 1 / (sinTheta * core.PiSquared)
}

func (Hemispherical) SolidAngle() float64 {
	return core.TwoPi
}
