package sampling

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// Point2 is a continuous position in cell space: X in [0, width), Y in [0, height)
type Point2[T constraints.Float] struct {
	X, Y T
}

// Pixel is a discrete cell of a 2D distribution
type Pixel struct {
	X, Y int
}

// Distribution2D decomposes a width x height weight field into a marginal
// distribution over rows followed by one conditional distribution per row.
//
// Buffer layout: height+1 entries for the marginal CDF, then for each row y a
// block of width+1 entries holding that row's conditional CDF.
type Distribution2D[T constraints.Float] struct {
	buf           []T
	width, height int
}

// Distribution2DBufferSize returns the number of entries needed for a width x height field
func Distribution2DBufferSize(width, height int) int {
	return height + 1 + height*(width+1)
}

// NewDistribution2D wraps a buffer previously filled by BuildDistribution2D
func NewDistribution2D[T constraints.Float](buf []T, width, height int) Distribution2D[T] {
	if need := Distribution2DBufferSize(width, height); len(buf) < need {
		panic(fmt.Sprintf("distribution buffer too small: %d entries for %dx%d (need %d)", len(buf), width, height, need))
	}
	return Distribution2D[T]{buf: buf, width: width, height: height}
}

// BuildDistribution2D fills buf from weight and returns the distribution and the total weight.
// Rows are built in order, each writing its unnormalized sum into the marginal
// slot of that row; the marginal is normalized once every row is done.
func BuildDistribution2D[T constraints.Float](buf []T, width, height int, weight func(x, y int) T) (Distribution2D[T], T) {
	d := NewDistribution2D(buf, width, height)

	for y := 0; y < height; y++ {
		_, rowSum := BuildDistribution1D([]T(d.Conditional(y)), func(x int) T {
			return weight(x, y)
		})
		buf[y] = rowSum
	}

	// Row sums are read in place before being overwritten by the marginal CDF
	_, sum := BuildDistribution1D([]T(d.Marginal()), func(y int) T {
		return buf[y]
	})
	return d, sum
}

// Width returns the number of columns
func (d Distribution2D[T]) Width() int {
	return d.width
}

// Height returns the number of rows
func (d Distribution2D[T]) Height() int {
	return d.height
}

// Marginal returns the distribution over rows
func (d Distribution2D[T]) Marginal() Distribution1D[T] {
	return Distribution1D[T](d.buf[:d.height+1])
}

// Conditional returns the distribution over columns of row y
func (d Distribution2D[T]) Conditional(y int) Distribution1D[T] {
	start := d.height + 1 + y*(d.width+1)
	return Distribution1D[T](d.buf[start : start+d.width+1])
}

// IsDegenerate reports whether the whole field had zero weight
func (d Distribution2D[T]) IsDegenerate() bool {
	return d.Marginal().IsDegenerate()
}

// SampleContinuous picks a row with u2 then a column inside it with u1.
// The density is relative to the normalized domain [0, 1)².
func (d Distribution2D[T]) SampleContinuous(u1, u2 T) Sample[Point2[T], Plane] {
	marginal := d.Marginal()
	sy := marginal.SampleContinuous(u2)
	// The row comes from the search, not from the value: in float32 i+fraction can round up to i+1
	row := marginal.cell(u2)
	sx := d.Conditional(row).SampleContinuous(u1)

	return NewSampleRcp[Point2[T], Plane](
		Point2[T]{X: sx.Value(), Y: sy.Value()},
		sx.RcpDensity()*sy.RcpDensity(),
	)
}

// SampleDiscrete picks a cell with probability proportional to its weight
func (d Distribution2D[T]) SampleDiscrete(u1, u2 T) Sample[Pixel, Discrete] {
	sy := d.Marginal().SampleDiscrete(u2)
	row := sy.Value()
	sx := d.Conditional(row).SampleDiscrete(u1)

	return NewSampleRcp[Pixel, Discrete](
		Pixel{X: sx.Value(), Y: row},
		sx.RcpDensity()*sy.RcpDensity(),
	)
}

// PDFContinuous returns the density SampleContinuous would report at p
func (d Distribution2D[T]) PDFContinuous(p Point2[T]) float64 {
	row := core.ClampInt(int(math.Floor(float64(p.Y))), 0, d.height-1)
	return d.Conditional(row).PDFContinuous(p.X) * d.Marginal().PDFContinuous(p.Y)
}

// PDFDiscrete returns the probability of a cell
func (d Distribution2D[T]) PDFDiscrete(p Pixel) float64 {
	return d.Conditional(p.Y).PDFDiscrete(p.X) * d.Marginal().PDFDiscrete(p.Y)
}
