package sampling

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/mapping"
)

// UVToSphericalAnglesPDF converts a density over [0,1)² to one over (φ, θ) ∈ [0,2π)×[0,π)
func UVToSphericalAnglesPDF(pdfUV float64) float64 {
	return pdfUV * core.InvTwoPi * core.InvPi
}

// SphericalAnglesToSolidAnglePDF divides a (φ, θ) density by sin(θ)
func SphericalAnglesToSolidAnglePDF(pdfAngles, rcpSinTheta float64) float64 {
	return pdfAngles * rcpSinTheta
}

// SolidAngleToAreaPDF converts a solid angle density to an area density at a surface
// whose normal makes cos(θ) = cosNormal with the sampled direction. Back-facing gives 0.
func SolidAngleToAreaPDF(pdfSolidAngle, rcpSqrDist, cosNormal float64) float64 {
	return pdfSolidAngle * math.Max(0, cosNormal) * rcpSqrDist
}

// AreaToSolidAnglePDF is the inverse of SolidAngleToAreaPDF; it is 0 when cosNormal <= 0
func AreaToSolidAnglePDF(pdfArea, sqrDist, cosNormal float64) float64 {
	if cosNormal <= 0 {
		return 0
	}
	return pdfArea * sqrDist / cosNormal
}

// SampleMapped draws a direction from a distribution laid out over the uv
// square of a mapping. The density is converted to solid angle through the
// mapping's Jacobian; points where the Jacobian vanishes give invalid samples.
func SampleMapped[T constraints.Float](dist Distribution2D[T], m mapping.Mapping, sample core.Vec2) DirectionSample {
	s := dist.SampleContinuous(T(sample.X), T(sample.Y))
	if !s.Valid() {
		return ZeroSample[core.Vec3, SolidAngle]()
	}
	p := s.Value()
	uv := core.NewVec2(float64(p.X)/float64(dist.Width()), float64(p.Y)/float64(dist.Height()))
	return NewSample[core.Vec3, SolidAngle](m.Forward(uv), mapping.ToSolidAnglePDF(m, s.Density(), uv))
}

// PDFMapped returns the solid angle density SampleMapped reports for direction w
func PDFMapped[T constraints.Float](dist Distribution2D[T], m mapping.Mapping, w core.Vec3) float64 {
	uv := m.Inverse(w)
	p := Point2[T]{X: T(uv.X * float64(dist.Width())), Y: T(uv.Y * float64(dist.Height()))}
	return mapping.ToSolidAnglePDFAt(m, dist.PDFContinuous(p), w)
}
