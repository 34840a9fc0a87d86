// Package sampling turns weight functions and canonical shapes into samplers
// that return values together with their probability density.
//
// Densities are stored as reciprocals so that an invalid sample is simply one
// whose reciprocal density is zero. The measure a density is expressed in is a
// type parameter: a Sample[core.Vec3, SolidAngle] cannot be mixed up with a
// Sample[core.Vec3, Area] without an explicit conversion.
package sampling

import (
	"fmt"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// Measure is implemented by the zero-size tags naming the measure of a density
type Measure interface {
	MeasureName() string
}

// SolidAngle densities are per steradian
type SolidAngle struct{}

// Area densities are per unit of surface area
type Area struct{}

// Plane densities are per unit of [0,1)² parameter space
type Plane struct{}

// Line densities are per unit of [0,1) parameter space
type Line struct{}

// Discrete densities are probabilities of individual indices
type Discrete struct{}

// Unknown is used when the measure is not tracked
type Unknown struct{}

func (SolidAngle) MeasureName() string { return "solid angle" }
func (Area) MeasureName() string       { return "area" }
func (Plane) MeasureName() string      { return "plane" }
func (Line) MeasureName() string       { return "line" }
func (Discrete) MeasureName() string   { return "discrete" }
func (Unknown) MeasureName() string    { return "unknown" }

// Sample is a sampled value paired with its density in measure M
type Sample[V any, M Measure] struct {
	value      V
	rcpDensity float64
}

// DirectionSample is a direction with a solid angle density
type DirectionSample = Sample[core.Vec3, SolidAngle]

// PointSample is a point with an area density
type PointSample = Sample[core.Vec3, Area]

// DiskSample is a 2D point with an area density
type DiskSample = Sample[core.Vec2, Area]

// NewSample creates a sample from a density; a zero density yields an invalid sample
func NewSample[V any, M Measure](value V, density float64) Sample[V, M] {
	return Sample[V, M]{value: value, rcpDensity: core.Rcp(density)}
}

// NewSampleRcp creates a sample directly from its reciprocal density
func NewSampleRcp[V any, M Measure](value V, rcpDensity float64) Sample[V, M] {
	return Sample[V, M]{value: value, rcpDensity: rcpDensity}
}

// ZeroSample returns the zero-density sample used for degenerate inputs
func ZeroSample[V any, M Measure]() Sample[V, M] {
	return Sample[V, M]{}
}

// Value returns the sampled value
func (s Sample[V, M]) Value() V {
	return s.value
}

// Density returns the probability density, or 0 for an invalid sample
func (s Sample[V, M]) Density() float64 {
	if s.rcpDensity == 0 {
		return 0
	}
	return 1 / s.rcpDensity
}

// RcpDensity returns 1/density, or 0 for an invalid sample
func (s Sample[V, M]) RcpDensity() float64 {
	return s.rcpDensity
}

// Valid reports whether the sample carries a non-zero density.
// Callers skip invalid samples: the strategy that produced them contributes nothing.
func (s Sample[V, M]) Valid() bool {
	return s.rcpDensity > 0
}

func (s Sample[V, M]) String() string {
	var m M
	return fmt.Sprintf("[ %v, pdf = %g (%s) ]", s.value, s.Density(), m.MeasureName())
}
