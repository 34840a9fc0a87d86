package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/sampling"
)

// MixtureEnvironment is the sum of several environments. Sampling first picks
// an environment with fixed weights, then samples it; the density is that of
// the whole mixture so the result stays unbiased whichever member was picked.
type MixtureEnvironment struct {
	environments []Environment
	selection    sampling.Distribution1D[float64]
}

// NewMixtureEnvironment creates a mixture with the given selection weights.
// weights must have the same length as environments and be non-negative;
// all-zero weights select uniformly.
func NewMixtureEnvironment(environments []Environment, weights []float64) *MixtureEnvironment {
	if len(environments) != len(weights) {
		panic(fmt.Sprintf("environments length (%d) must match weights length (%d)", len(environments), len(weights)))
	}
	for _, weight := range weights {
		if weight < 0 {
			panic("weights must be non-negative")
		}
	}

	cdf := make([]float64, sampling.Distribution1DBufferSize(len(weights)))
	selection, total := sampling.BuildDistribution1DFromWeights(cdf, weights)
	if total == 0 {
		selection, _ = sampling.BuildDistribution1D(cdf, func(int) float64 { return 1 })
	}

	return &MixtureEnvironment{
		environments: environments,
		selection:    selection,
	}
}

// NewPowerMixtureEnvironment weights each environment by its power
func NewPowerMixtureEnvironment(environments ...Environment) *MixtureEnvironment {
	weights := make([]float64, len(environments))
	for i, env := range environments {
		weights[i] = env.Power()
	}
	return NewMixtureEnvironment(environments, weights)
}

func (me *MixtureEnvironment) Radiance(direction core.Vec3) core.Vec3 {
	var radiance core.Vec3
	for _, env := range me.environments {
		radiance = radiance.Add(env.Radiance(direction))
	}
	return radiance
}

// Sample reuses sample.X: once it has picked an environment it is rescaled to [0,1) inside the chosen cell
func (me *MixtureEnvironment) Sample(sample core.Vec2) sampling.DirectionSample {
	if len(me.environments) == 0 {
		return sampling.ZeroSample[core.Vec3, sampling.SolidAngle]()
	}
	choice := me.selection.SampleDiscrete(sample.X)
	if !choice.Valid() {
		return sampling.ZeroSample[core.Vec3, sampling.SolidAngle]()
	}
	i := choice.Value()
	remapped := (sample.X - me.selection.CDF(i)) / choice.Density()
	remapped = core.Clamp(remapped, 0, math.Nextafter(1, 0))

	s := me.environments[i].Sample(core.NewVec2(remapped, sample.Y))
	if !s.Valid() {
		return s
	}
	return sampling.NewSample[core.Vec3, sampling.SolidAngle](s.Value(), me.PDF(s.Value()))
}

func (me *MixtureEnvironment) PDF(direction core.Vec3) float64 {
	pdf := 0.0
	for i, env := range me.environments {
		if p := me.selection.PDFDiscrete(i); p > 0 {
			pdf += p * env.PDF(direction)
		}
	}
	return pdf
}

func (me *MixtureEnvironment) Power() float64 {
	power := 0.0
	for _, env := range me.environments {
		power += env.Power()
	}
	return power
}
