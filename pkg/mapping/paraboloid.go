package mapping

import (
	"github.com/df07/go-importance-sampler/pkg/core"
)

// Paraboloid maps the square onto the +Z hemisphere through a paraboloid centered on +Z.
// Only the unit disk of NDC belongs to the hemisphere: the corners of the square
// reach below it, and the Jacobian there is 0.
type Paraboloid struct{}

// ParaboloidNormal returns the (unnormalized) paraboloid normal N = (ndc, 1) for uv
func ParaboloidNormal(uv core.Vec2) core.Vec3 {
	ndc := NDC(uv, core.NewVec2(1, 1))
	return core.NewVec3(ndc.X, ndc.Y, 1)
}

// reflectParaboloid returns 2N/(N·N) - (0, 0, N.z), the direction reflected by the paraboloid
func reflectParaboloid(n core.Vec3) core.Vec3 {
	scale := 2 / n.LengthSquared()
	return n.Multiply(scale).Subtract(core.NewVec3(0, 0, n.Z))
}

// paraboloidJacobian is dω/d(ndc) = 4/(N·N)² scaled by the ndc-per-uv area factor, 0 outside the disk
func paraboloidJacobian(n core.Vec3, ndcPerUV float64) float64 {
	if n.X*n.X+n.Y*n.Y > 1 {
		return 0
	}
	d := n.LengthSquared()
	return ndcPerUV * 4 / (d * d)
}

func (Paraboloid) Forward(uv core.Vec2) core.Vec3 {
	return reflectParaboloid(ParaboloidNormal(uv))
}

// Inverse is undefined at -Z, which the mapping never reaches; it returns (0, 0) there
func (Paraboloid) Inverse(w core.Vec3) core.Vec2 {
	denom := w.Z + 1
	if denom == 0 {
		return core.Vec2{}
	}
	return NDCToUV(core.NewVec2(w.X/denom, w.Y/denom))
}

// Jacobian is 16/(N·N)² inside the unit disk
func (Paraboloid) Jacobian(uv core.Vec2) float64 {
	return paraboloidJacobian(ParaboloidNormal(uv), 4)
}

func (Paraboloid) RcpJacobian(w core.Vec3) float64 {
	if w.Z < 0 {
		return 0
	}
	// N·N = 1 + |ndc|² = 2/(1+w.z)
	d := 2 / (w.Z + 1)
	return d * d / 16
}

func (Paraboloid) SolidAngle() float64 {
	return core.TwoPi
}
