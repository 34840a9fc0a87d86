package lights

import (
	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/sampling"
)

// UniformEnvironment emits the same radiance in all directions
type UniformEnvironment struct {
	emission core.Vec3
}

// NewUniformEnvironment creates a new uniform environment
func NewUniformEnvironment(emission core.Vec3) *UniformEnvironment {
	return &UniformEnvironment{emission: emission}
}

func (ue *UniformEnvironment) Radiance(direction core.Vec3) core.Vec3 {
	return ue.emission
}

// Sample samples the whole sphere uniformly
func (ue *UniformEnvironment) Sample(sample core.Vec2) sampling.DirectionSample {
	return sampling.UniformSampleSphere(sample)
}

func (ue *UniformEnvironment) PDF(direction core.Vec3) float64 {
	return sampling.UniformSampleSpherePDF()
}

func (ue *UniformEnvironment) Power() float64 {
	return ue.emission.Luminance() * core.FourPi
}
