package mapping

import (
	"github.com/df07/go-importance-sampler/pkg/core"
)

// DualParaboloid packs two paraboloids side by side.
// u < 0.5 is the front lobe (+Z hemisphere); u >= 0.5 is the back lobe
// (-Z hemisphere) with x mirrored. Inside each half only the inscribed disk
// is owned by the lobe; the Jacobian is 0 elsewhere.
type DualParaboloid struct{}

// DualParaboloidNormal returns the paraboloid normal of the lobe owning uv
func DualParaboloidNormal(uv core.Vec2) core.Vec3 {
	half := core.NewVec2(0.5, 1)
	if uv.X < 0.5 {
		ndc := NDC(uv, half)
		return core.NewVec3(ndc.X, ndc.Y, 1)
	}
	ndc := NDC(uv.Subtract(core.NewVec2(0.5, 0)), half)
	return core.NewVec3(-ndc.X, ndc.Y, -1)
}

func (DualParaboloid) Forward(uv core.Vec2) core.Vec3 {
	return reflectParaboloid(DualParaboloidNormal(uv))
}

// Inverse sends w.z > 0 to the front lobe and everything else to the back lobe
func (DualParaboloid) Inverse(w core.Vec3) core.Vec2 {
	if w.Z > 0 {
		denom := w.Z + 1
		nx, ny := w.X/denom, w.Y/denom
		return core.NewVec2(0.25*(nx+1), 0.5*(ny+1))
	}
	denom := 1 - w.Z
	nx, ny := w.X/denom, w.Y/denom
	return core.NewVec2(0.5+0.25*(-nx+1), 0.5*(ny+1))
}

// Jacobian is 32/(N·N)² inside the disk of each lobe: each half is 0.5 wide, so
// one unit of uv area is 8 units of NDC area
func (DualParaboloid) Jacobian(uv core.Vec2) float64 {
	return paraboloidJacobian(DualParaboloidNormal(uv), 8)
}

// RcpJacobian is always evaluated for the lobe owning w, so it is never 0.
// It is 1/Jacobian(uv) only when uv lies inside its lobe's disk: a corner uv has
// Jacobian 0 but Forward sends it into the other hemisphere, where the owning
// lobe has a finite Jacobian.
func (DualParaboloid) RcpJacobian(w core.Vec3) float64 {
	// N·N = 2/(1+|w.z|) for the lobe owning w
	denom := 1 + w.Z
	if w.Z <= 0 {
		denom = 1 - w.Z
	}
	d := 2 / denom
	return d * d / 32
}

func (DualParaboloid) SolidAngle() float64 {
	return core.FourPi
}
