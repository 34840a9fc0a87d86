// Package mapping provides bijections between the unit square of image
// coordinates and directions on the unit sphere, with the Jacobians needed to
// move densities between the two.
package mapping

import "github.com/df07/go-importance-sampler/pkg/core"

// Mapping parameterizes (part of) the unit sphere by [0,1)².
//
// Jacobian(uv) is dω/d(uv): a density over uv converts to a solid angle
// density by dividing by it. RcpJacobian(w) is its reciprocal evaluated at a
// direction, and both are 0 where the mapping degenerates.
type Mapping interface {
	Forward(uv core.Vec2) core.Vec3
	Inverse(w core.Vec3) core.Vec2
	Jacobian(uv core.Vec2) float64
	RcpJacobian(w core.Vec3) float64
	// SolidAngle is the measure of the set of directions covered
	SolidAngle() float64
}

// ToSolidAnglePDF converts a density over uv into a density over solid angle at Forward(uv)
func ToSolidAnglePDF(m Mapping, pdfUV float64, uv core.Vec2) float64 {
	jacobian := m.Jacobian(uv)
	if jacobian == 0 {
		return 0
	}
	return pdfUV / jacobian
}

// FromSolidAnglePDF converts a solid angle density at w into a density over uv at Inverse(w)
func FromSolidAnglePDF(m Mapping, pdfSolidAngle float64, w core.Vec3) float64 {
	rcpJacobian := m.RcpJacobian(w)
	if rcpJacobian == 0 {
		return 0
	}
	return pdfSolidAngle / rcpJacobian
}

// ToSolidAnglePDFAt converts a density over uv into a density over solid angle,
// evaluating the Jacobian at the direction w instead of at its uv
func ToSolidAnglePDFAt(m Mapping, pdfUV float64, w core.Vec3) float64 {
	return pdfUV * m.RcpJacobian(w)
}
