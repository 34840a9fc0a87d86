package lights

import (
	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/sampling"
)

// GradientEnvironment blends linearly from bottomColor at -Z to topColor at +Z
type GradientEnvironment struct {
	topColor    core.Vec3
	bottomColor core.Vec3
}

// NewGradientEnvironment creates a new gradient environment
func NewGradientEnvironment(topColor, bottomColor core.Vec3) *GradientEnvironment {
	return &GradientEnvironment{topColor: topColor, bottomColor: bottomColor}
}

// NewSkyEnvironment returns the blue-to-white sky used when no environment is given
func NewSkyEnvironment() *GradientEnvironment {
	return NewGradientEnvironment(core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1.0, 1.0, 1.0))
}

func (ge *GradientEnvironment) Radiance(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Z + 1.0) // Map Z from [-1,1] to [0,1]
	return ge.bottomColor.Multiply(1.0 - t).Add(ge.topColor.Multiply(t))
}

// Sample samples the whole sphere uniformly; the gradient is too smooth to be worth importance sampling
func (ge *GradientEnvironment) Sample(sample core.Vec2) sampling.DirectionSample {
	return sampling.UniformSampleSphere(sample)
}

func (ge *GradientEnvironment) PDF(direction core.Vec3) float64 {
	return sampling.UniformSampleSpherePDF()
}

// Power integrates the gradient: the mean of a linear function of z over the sphere is its value at z = 0
func (ge *GradientEnvironment) Power() float64 {
	return ge.Radiance(core.Vec3{}).Luminance() * core.FourPi
}
