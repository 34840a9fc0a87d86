package sampling

import (
	"math"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// sphericalDirection builds a unit vector around +Z from φ and cos(θ)
func sphericalDirection(phi, cosTheta, sinTheta float64) core.Vec3 {
	return core.NewVec3(math.Cos(phi)*sinTheta, math.Sin(phi)*sinTheta, cosTheta)
}

// aroundNormal rotates a sample taken around +Z so that +Z maps to normal
func aroundNormal(s DirectionSample, normal core.Vec3) DirectionSample {
	return NewSampleRcp[core.Vec3, SolidAngle](core.FrameZ(normal).ToWorld(s.Value()), s.RcpDensity())
}

// azimuthUV returns φ/2π in [0, 1) for a direction
func azimuthUV(d core.Vec3) float64 {
	u := math.Atan2(d.Y, d.X) * core.InvTwoPi
	if u < 0 {
		u += 1
	}
	return u
}

// Sphere

// UniformSampleSphere samples the unit sphere with constant density 1/4π
func UniformSampleSphere(sample core.Vec2) DirectionSample {
	phi := core.TwoPi * sample.X
	cosTheta := 1 - 2*sample.Y
	sinTheta := 2 * core.SafeSqrt(sample.Y*(1-sample.Y))
	return NewSample[core.Vec3, SolidAngle](sphericalDirection(phi, cosTheta, sinTheta), core.InvFourPi)
}

func UniformSampleSpherePDF() float64 {
	return core.InvFourPi
}

// RcpUniformSampleSphere returns the sample that UniformSampleSphere maps to d
func RcpUniformSampleSphere(d core.Vec3) core.Vec2 {
	return core.NewVec2(azimuthUV(d), 0.5*(1-d.Z))
}

// CosineSampleSphere samples the full sphere proportionally to |cos(θ)| around +Z.
// v < 0.5 gives the lower hemisphere.
func CosineSampleSphere(sample core.Vec2) DirectionSample {
	phi := core.TwoPi * sample.X
	vv := 2 * (sample.Y - 0.5)
	cosTheta := math.Copysign(math.Sqrt(math.Abs(vv)), vv)
	sinTheta := core.Cos2Sin(cosTheta)
	return NewSample[core.Vec3, SolidAngle](
		sphericalDirection(phi, cosTheta, sinTheta),
		math.Abs(cosTheta)*core.InvTwoPi,
	)
}

func CosineSampleSpherePDF(d core.Vec3) float64 {
	return math.Abs(d.Z) * core.InvTwoPi
}

func CosineSampleSphereAround(sample core.Vec2, normal core.Vec3) DirectionSample {
	return aroundNormal(CosineSampleSphere(sample), normal)
}

func CosineSampleSpherePDFAround(d, normal core.Vec3) float64 {
	return math.Abs(d.Dot(normal)) * core.InvTwoPi
}

// Hemisphere

// UniformSampleHemisphere samples the +Z hemisphere with constant density 1/2π
func UniformSampleHemisphere(sample core.Vec2) DirectionSample {
	phi := core.TwoPi * sample.X
	cosTheta := sample.Y
	return NewSample[core.Vec3, SolidAngle](
		sphericalDirection(phi, cosTheta, core.Cos2Sin(cosTheta)),
		core.InvTwoPi,
	)
}

func UniformSampleHemispherePDF(d core.Vec3) float64 {
	if d.Z < 0 {
		return 0
	}
	return core.InvTwoPi
}

func UniformSampleHemisphereAround(sample core.Vec2, normal core.Vec3) DirectionSample {
	return aroundNormal(UniformSampleHemisphere(sample), normal)
}

func UniformSampleHemispherePDFAround(d, normal core.Vec3) float64 {
	if d.Dot(normal) < 0 {
		return 0
	}
	return core.InvTwoPi
}

// CosineSampleHemisphere samples the +Z hemisphere with density cos(θ)/π.
// The sample is invalid when v = 0 (a direction on the horizon).
func CosineSampleHemisphere(sample core.Vec2) DirectionSample {
	phi := core.TwoPi * sample.X
	cosTheta := math.Sqrt(sample.Y)
	sinTheta := core.SafeSqrt(1 - sample.Y)
	return NewSample[core.Vec3, SolidAngle](
		sphericalDirection(phi, cosTheta, sinTheta),
		cosTheta*core.InvPi,
	)
}

// RcpCosineSampleHemisphere returns the sample that CosineSampleHemisphere maps to d
func RcpCosineSampleHemisphere(d core.Vec3) core.Vec2 {
	return core.NewVec2(azimuthUV(d), d.Z*d.Z)
}

func CosineSampleHemispherePDF(d core.Vec3) float64 {
	return math.Max(0, d.Z*core.InvPi)
}

func CosineSampleHemisphereAround(sample core.Vec2, normal core.Vec3) DirectionSample {
	return aroundNormal(CosineSampleHemisphere(sample), normal)
}

// RcpCosineSampleHemisphereAround inverts CosineSampleHemisphereAround using the same frame
func RcpCosineSampleHemisphereAround(d, normal core.Vec3) core.Vec2 {
	return RcpCosineSampleHemisphere(core.FrameZ(normal).ToLocal(d))
}

func CosineSampleHemispherePDFAround(d, normal core.Vec3) float64 {
	return math.Max(0, d.Dot(normal)*core.InvPi)
}

// PowerCosineSampleHemisphere samples the +Z hemisphere with density (n+1)·cos(θ)^n / 2π
func PowerCosineSampleHemisphere(sample core.Vec2, exponent float64) DirectionSample {
	phi := core.TwoPi * sample.X
	cosTheta := math.Pow(sample.Y, 1/(exponent+1))
	return NewSample[core.Vec3, SolidAngle](
		sphericalDirection(phi, cosTheta, core.Cos2Sin(cosTheta)),
		powerCosinePDF(cosTheta, exponent),
	)
}

func powerCosinePDF(cosTheta, exponent float64) float64 {
	if cosTheta < 0 {
		return 0
	}
	return (exponent + 1) * math.Pow(cosTheta, exponent) * core.InvTwoPi
}

func PowerCosineSampleHemispherePDF(d core.Vec3, exponent float64) float64 {
	return powerCosinePDF(d.Z, exponent)
}

func PowerCosineSampleHemisphereAround(sample core.Vec2, normal core.Vec3, exponent float64) DirectionSample {
	return aroundNormal(PowerCosineSampleHemisphere(sample, exponent), normal)
}

func PowerCosineSampleHemispherePDFAround(d, normal core.Vec3, exponent float64) float64 {
	return powerCosinePDF(d.Dot(normal), exponent)
}

// Cone

// conePDF is 1/(2π(1 - cos(angle))), written with the half-angle sine to stay
// accurate for narrow cones. A zero angle has no density.
func conePDF(angle float64) float64 {
	return core.Rcp(core.FourPi * core.Sqr(math.Sin(0.5*angle)))
}

// UniformSampleCone samples directions within angle radians of +Z uniformly
func UniformSampleCone(sample core.Vec2, angle float64) DirectionSample {
	phi := core.TwoPi * sample.X
	cosTheta := 1 - sample.Y*(1-math.Cos(angle))
	return NewSample[core.Vec3, SolidAngle](
		sphericalDirection(phi, cosTheta, core.Cos2Sin(cosTheta)),
		conePDF(angle),
	)
}

func UniformSampleConePDF(d core.Vec3, angle float64) float64 {
	if d.Z < math.Cos(angle) {
		return 0
	}
	return conePDF(angle)
}

func UniformSampleConeAround(sample core.Vec2, angle float64, axis core.Vec3) DirectionSample {
	return aroundNormal(UniformSampleCone(sample, angle), axis)
}

func UniformSampleConePDFAround(d core.Vec3, angle float64, axis core.Vec3) float64 {
	if d.Dot(axis) < math.Cos(angle) {
		return 0
	}
	return conePDF(angle)
}

// Triangle

// TriangleArea returns the area of the planar triangle ABC
func TriangleArea(a, b, c core.Vec3) float64 {
	return 0.5 * b.Subtract(a).Cross(c.Subtract(a)).Length()
}

// UniformSampleTriangleUVs returns the barycentric weights of A and B for a uniform point
func UniformSampleTriangleUVs(sample core.Vec2) core.Vec2 {
	su := math.Sqrt(sample.X)
	return core.NewVec2(1-su, sample.Y*su)
}

// UniformSampleTriangle samples a point of triangle ABC with density 1/area.
// A degenerate triangle gives an invalid sample.
func UniformSampleTriangle(sample core.Vec2, a, b, c core.Vec3) PointSample {
	uv := UniformSampleTriangleUVs(sample)
	p := c.Add(a.Subtract(c).Multiply(uv.X)).Add(b.Subtract(c).Multiply(uv.Y))
	return NewSampleRcp[core.Vec3, Area](p, TriangleArea(a, b, c))
}

// Disk

// UniformSampleDisk samples a disk of the given radius with density 1/(π·radius²)
func UniformSampleDisk(sample core.Vec2, radius float64) DiskSample {
	r := radius * math.Sqrt(sample.X)
	theta := core.TwoPi * sample.Y
	return NewSampleRcp[core.Vec2, Area](
		core.NewVec2(r*math.Cos(theta), r*math.Sin(theta)),
		math.Pi*radius*radius,
	)
}

// ConcentricSampleDisk maps the unit square to the unit disk with Shirley's concentric mapping.
// This avoids rejection sampling and keeps strata compact.
func ConcentricSampleDisk(sample core.Vec2) core.Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	offset := core.NewVec2(2*sample.X-1, 2*sample.Y-1)
	if offset.X == 0 && offset.Y == 0 {
		return core.Vec2{}
	}

	var theta, r float64
	if math.Abs(offset.X) > math.Abs(offset.Y) {
		r = offset.X
		theta = math.Pi / 4 * (offset.Y / offset.X)
	} else {
		r = offset.Y
		theta = math.Pi/2 - math.Pi/4*(offset.X/offset.Y)
	}
	return core.NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// Spherical triangle

// sphericalTriangleAngles returns the interior angles at A, B and C and the
// cosine of the angle at A. ok is false when two vertices coincide or are antipodal.
func sphericalTriangleAngles(a, b, c core.Vec3) (alpha, beta, gamma, cosAlpha float64, ok bool) {
	crossAB, crossBC, crossCA := a.Cross(b), b.Cross(c), c.Cross(a)
	if crossAB.LengthSquared() == 0 || crossBC.LengthSquared() == 0 || crossCA.LengthSquared() == 0 {
		return 0, 0, 0, 0, false
	}
	normalAB, normalBC, normalCA := crossAB.Normalize(), crossBC.Normalize(), crossCA.Normalize()

	cosAlpha = core.Clamp(-normalAB.Dot(normalCA), -1, 1)
	alpha = math.Acos(cosAlpha)
	beta = core.SafeAcos(-normalBC.Dot(normalAB))
	gamma = core.SafeAcos(-normalBC.Dot(normalCA))
	return alpha, beta, gamma, cosAlpha, true
}

// sphericalExcess is the area of a spherical triangle from its interior angles (Girard's theorem)
func sphericalExcess(alpha, beta, gamma float64) float64 {
	return math.Max(0, alpha+beta+gamma-math.Pi)
}

// SphericalTriangleArea returns the solid angle subtended by the spherical triangle
// ABC. The vertices must be unit vectors.
func SphericalTriangleArea(a, b, c core.Vec3) float64 {
	alpha, beta, gamma, _, ok := sphericalTriangleAngles(a, b, c)
	if !ok {
		return 0
	}
	return sphericalExcess(alpha, beta, gamma)
}

func UniformSampleSphericalTrianglePDF(a, b, c core.Vec3) float64 {
	return core.Rcp(SphericalTriangleArea(a, b, c))
}

// orthogonalComponent returns the normalized part of x orthogonal to the unit vector y
func orthogonalComponent(x, y core.Vec3) core.Vec3 {
	return x.Subtract(y.Multiply(x.Dot(y))).Normalize()
}

// UniformSampleSphericalTriangle samples the spherical triangle ABC uniformly
// (Arvo, "Stratified sampling of spherical triangles", 1995). The vertices
// must be unit vectors. sample.X selects the sub-triangle area and sample.Y
// the position along the arc from B.
//
// The reciprocal density is the triangle area, so Density() equals
// UniformSampleSphericalTrianglePDF exactly. A zero area gives an invalid sample.
func UniformSampleSphericalTriangle(sample core.Vec2, a, b, c core.Vec3) DirectionSample {
	alpha, beta, gamma, cosAlpha, ok := sphericalTriangleAngles(a, b, c)
	if !ok {
		return ZeroSample[core.Vec3, SolidAngle]()
	}
	area := sphericalExcess(alpha, beta, gamma)
	if area == 0 {
		return ZeroSample[core.Vec3, SolidAngle]()
	}

	// Sub-triangle of area sample.X * area
	subArea := sample.X * area
	s := math.Sin(subArea - alpha)
	t := math.Cos(subArea - alpha)
	sinAlpha := math.Sin(alpha)
	cosC := a.Dot(b)
	u := t - cosAlpha
	v := s + sinAlpha*cosC

	q := 1.0
	if denom := (v*s + u*t) * sinAlpha; denom != 0 {
		q = core.Clamp(((v*t-u*s)*cosAlpha-v)/denom, -1, 1)
	}

	newC := a.Multiply(q).Add(orthogonalComponent(c, a).Multiply(core.SafeSqrt(1 - q*q)))
	z := 1 - sample.Y*(1-newC.Dot(b))
	p := b.Multiply(z).Add(orthogonalComponent(newC, b).Multiply(core.SafeSqrt(1 - z*z)))

	return NewSampleRcp[core.Vec3, SolidAngle](p, area)
}
