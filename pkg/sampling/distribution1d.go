package sampling

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// Distribution1D is a piecewise-constant distribution over size cells, stored as
// its normalized CDF of size+1 entries. It is a view over caller-owned storage:
// sampling never allocates and never writes, so a built distribution can be
// shared by any number of goroutines.
type Distribution1D[T constraints.Float] []T

// Distribution1DBufferSize returns the number of entries needed for size cells
func Distribution1DBufferSize(size int) int {
	return size + 1
}

// BuildDistribution1D fills cdf with the normalized CDF of weight over len(cdf)-1 cells
// and returns it together with the sum of the weights.
//
// weight(i) is called once per index in increasing order. Each call happens
// after cdf[j] for j < i has been overwritten and before cdf[i] is, so weight may
// read cdf[i] (the buffer can hold precomputed weights) but must not read cdf[j], j < i.
//
// When the weights sum to zero every entry is set to 0, which marks the
// distribution as degenerate.
func BuildDistribution1D[T constraints.Float](cdf []T, weight func(i int) T) (Distribution1D[T], T) {
	size := len(cdf) - 1
	var sum T
	for i := 0; i < size; i++ {
		w := weight(i)
		cdf[i] = sum
		sum += w
	}
	cdf[size] = sum

	if sum > 0 {
		for i := range cdf {
			// Divide rather than multiply by 1/sum so cdf[size] is exactly 1
			cdf[i] /= sum
		}
	} else {
		for i := range cdf {
			cdf[i] = 0
		}
	}
	return Distribution1D[T](cdf), sum
}

// BuildDistribution1DFromWeights builds a distribution from precomputed weights.
// weights may alias cdf[:len(cdf)-1].
func BuildDistribution1DFromWeights[T constraints.Float](cdf, weights []T) (Distribution1D[T], T) {
	return BuildDistribution1D(cdf, func(i int) T { return weights[i] })
}

// Size returns the number of cells
func (d Distribution1D[T]) Size() int {
	return len(d) - 1
}

// IsDegenerate reports whether all weights were zero
func (d Distribution1D[T]) IsDegenerate() bool {
	return d[len(d)-1] == 0
}

// CDF returns the cumulative probability of the cells before i
func (d Distribution1D[T]) CDF(i int) T {
	return d[i]
}

// oneMinusEpsilon returns the largest value of T below 1
func oneMinusEpsilon[T constraints.Float]() T {
	if e := T(math.Nextafter(1, 0)); e < 1 {
		return e
	}
	return T(math.Nextafter32(1, 0))
}

// belowOne clamps a variate into [0, 1). A float64 variate close to 1 rounds
// to exactly 1 in float32, which would select a trailing zero-weight cell.
func belowOne[T constraints.Float](u T) T {
	return min(u, oneMinusEpsilon[T]())
}

// cell finds the largest i in [0, size-1] with cdf[i] <= u
func (d Distribution1D[T]) cell(u T) int {
	u = belowOne(u)
	size := d.Size()
	upper := sort.Search(size, func(i int) bool { return d[i] > u })
	return core.ClampInt(upper-1, 0, size-1)
}

// SampleContinuous inverts the CDF at u, interpolating linearly inside the selected cell.
// The value lies in [0, size); the density is relative to the normalized domain [0, 1).
func (d Distribution1D[T]) SampleContinuous(u T) Sample[T, Line] {
	if d.IsDegenerate() {
		return ZeroSample[T, Line]()
	}
	u = belowOne(u)
	size := d.Size()
	i := d.cell(u)
	p := d[i+1] - d[i]
	if p == 0 {
		return ZeroSample[T, Line]()
	}
	fraction := (u - d[i]) / p
	// Keep the value inside cell i when i+fraction rounds up
	x := min(T(i)+fraction, T(i+1)*oneMinusEpsilon[T]())
	return NewSample[T, Line](x, float64(p)*float64(size))
}

// SampleDiscrete selects a cell index with probability equal to its weight
func (d Distribution1D[T]) SampleDiscrete(u T) Sample[int, Discrete] {
	if d.IsDegenerate() {
		return ZeroSample[int, Discrete]()
	}
	i := d.cell(u)
	return NewSample[int, Discrete](i, float64(d[i+1]-d[i]))
}

// PDFContinuous returns the density SampleContinuous would report for a value x in [0, size)
func (d Distribution1D[T]) PDFContinuous(x T) float64 {
	size := d.Size()
	i := core.ClampInt(int(math.Floor(float64(x))), 0, size-1)
	return float64(d[i+1]-d[i]) * float64(size)
}

// PDFDiscrete returns the probability of cell i
func (d Distribution1D[T]) PDFDiscrete(i int) float64 {
	return float64(d[i+1] - d[i])
}

// combinedCDF averages entry j over several distributions of the same size
func combinedCDF[T constraints.Float](dists []Distribution1D[T], j int) T {
	var sum T
	for _, d := range dists {
		sum += d[j]
	}
	return sum / T(len(dists))
}

// SampleCombinedDiscrete samples the average of several equally sized distributions
// without materializing it
func SampleCombinedDiscrete[T constraints.Float](dists []Distribution1D[T], u T) Sample[int, Discrete] {
	if len(dists) == 0 {
		return ZeroSample[int, Discrete]()
	}
	size := dists[0].Size()
	if combinedCDF(dists, size) == 0 {
		return ZeroSample[int, Discrete]()
	}
	u = belowOne(u)
	upper := sort.Search(size, func(j int) bool { return combinedCDF(dists, j) > u })
	i := core.ClampInt(upper-1, 0, size-1)
	return NewSample[int, Discrete](i, PDFCombinedDiscrete(dists, i))
}

// PDFCombinedDiscrete returns the probability of cell i under the averaged distribution
func PDFCombinedDiscrete[T constraints.Float](dists []Distribution1D[T], i int) float64 {
	if len(dists) == 0 {
		return 0
	}
	return float64(combinedCDF(dists, i+1) - combinedCDF(dists, i))
}
