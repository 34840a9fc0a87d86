package sampling

import (
	"github.com/df07/go-importance-sampler/pkg/core"
)

// Jittered1D stratifies [0,1) into equal cells and places one sample per cell
type Jittered1D struct {
	delta float64
}

func NewJittered1D(cells int) Jittered1D {
	return Jittered1D{delta: 1 / float64(cells)}
}

// Sample returns the sample of cell i for the variate s in [0,1)
func (j Jittered1D) Sample(i int, s float64) float64 {
	return (float64(i) + s) * j.delta
}

// Generate draws count stratified samples, one variate per sample
func (j Jittered1D) Generate(count int, sampler core.Sampler) []float64 {
	samples := make([]float64, count)
	for i := range samples {
		samples[i] = j.Sample(i, sampler.Get1D())
	}
	return samples
}

// Jittered2D stratifies [0,1)² into a width x height grid
type Jittered2D struct {
	width, height int
	delta         core.Vec2
}

func NewJittered2D(width, height int) Jittered2D {
	return Jittered2D{
		width:  width,
		height: height,
		delta:  core.NewVec2(1/float64(width), 1/float64(height)),
	}
}

// Cells returns the number of cells in the grid
func (j Jittered2D) Cells() int {
	return j.width * j.height
}

// SampleCell returns the sample of cell (x, y) for the variates s
func (j Jittered2D) SampleCell(x, y int, s core.Vec2) core.Vec2 {
	return core.NewVec2(float64(x), float64(y)).Add(s).MultiplyVec(j.delta)
}

// Sample returns the sample of the i-th cell in row-major order
func (j Jittered2D) Sample(i int, s core.Vec2) core.Vec2 {
	return j.SampleCell(i%j.width, i/j.width, s)
}

// Generate draws count stratified samples, two variates per sample
func (j Jittered2D) Generate(count int, sampler core.Sampler) []core.Vec2 {
	samples := make([]core.Vec2, count)
	for i := range samples {
		samples[i] = j.Sample(i, sampler.Get2D())
	}
	return samples
}

// UniformDiscreteSample picks one of count indices with probability 1/count.
// An empty range gives an invalid sample.
func UniformDiscreteSample(s float64, count int) Sample[int, Discrete] {
	if count <= 0 {
		return ZeroSample[int, Discrete]()
	}
	i := core.ClampInt(int(s*float64(count)), 0, count-1)
	return NewSample[int, Discrete](i, 1/float64(count))
}

func UniformDiscretePDF(count int) float64 {
	if count <= 0 {
		return 0
	}
	return 1 / float64(count)
}
