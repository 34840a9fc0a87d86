package lights

import (
	"fmt"
	"image"
	"math"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/loaders"
	"github.com/df07/go-importance-sampler/pkg/mapping"
	"github.com/df07/go-importance-sampler/pkg/sampling"
)

// ImageEnvironment is a latitude-longitude radiance map under the spherical
// mapping (+Z at the top row). Directions are importance sampled from a
// piecewise-constant distribution over the pixels, weighted by luminance and
// by sin(θ) so that the density is proportional to radiance per steradian.
type ImageEnvironment struct {
	image        *loaders.ImageData
	size         image.Point
	distribution sampling.Distribution2D[float32]
	power        float64
}

// NewImageEnvironment builds the importance table of a radiance map
func NewImageEnvironment(img *loaders.ImageData) (*ImageEnvironment, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("environment map is empty")
	}
	if len(img.Pixels) != img.Width*img.Height {
		return nil, fmt.Errorf("environment map has %d pixels, expected %dx%d", len(img.Pixels), img.Width, img.Height)
	}

	size := img.Size()
	buf := make([]float32, sampling.Distribution2DBufferSize(size.X, size.Y))
	distribution, sum := sampling.BuildDistribution2D(buf, size.X, size.Y, func(x, y int) float32 {
		uv := mapping.PixelCenterUV(image.Pt(x, y), size)
		_, sinTheta := mapping.Spherical{}.ForwardSinTheta(uv)
		return float32(math.Max(0, img.At(x, y).Luminance()) * sinTheta)
	})

	return &ImageEnvironment{
		image:        img,
		size:         size,
		distribution: distribution,
		// Each pixel covers 2π²/(W·H) of the (φ, θ) domain
		power: float64(sum) * core.TwoPiSquared / float64(size.X*size.Y),
	}, nil
}

// Radiance looks up the pixel containing direction
func (ie *ImageEnvironment) Radiance(direction core.Vec3) core.Vec3 {
	p := mapping.PixelFromUV(mapping.Spherical{}.Inverse(direction), ie.size)
	return ie.image.At(p.X, p.Y)
}

func (ie *ImageEnvironment) Sample(sample core.Vec2) sampling.DirectionSample {
	return sampling.SampleMapped(ie.distribution, mapping.Spherical{}, sample)
}

func (ie *ImageEnvironment) PDF(direction core.Vec3) float64 {
	return sampling.PDFMapped(ie.distribution, mapping.Spherical{}, direction)
}

func (ie *ImageEnvironment) Power() float64 {
	return ie.power
}

// Distribution exposes the importance table
func (ie *ImageEnvironment) Distribution() sampling.Distribution2D[float32] {
	return ie.distribution
}
