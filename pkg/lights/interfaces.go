package lights

import (
	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/sampling"
)

// Environment is light arriving from infinitely far away, indexed by direction
type Environment interface {
	// Radiance returns the radiance arriving from direction (a unit vector pointing away from the receiver)
	Radiance(direction core.Vec3) core.Vec3

	// Sample draws a direction with a solid angle density roughly proportional to the radiance.
	// Invalid samples carry no density and must be skipped.
	Sample(sample core.Vec2) sampling.DirectionSample

	// PDF returns the solid angle density Sample would report for direction
	PDF(direction core.Vec3) float64

	// Power is the luminance integrated over the sphere, used to weight environments against each other
	Power() float64
}
