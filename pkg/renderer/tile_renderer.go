package renderer

import (
	"image"
	"math"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/lights"
	"github.com/df07/go-importance-sampler/pkg/mapping"
	"github.com/df07/go-importance-sampler/pkg/sampling"
)

// drawsPerSample is the number of scalars one estimate consumes: a 2D sample
// for the cosine lobe and a 2D sample for the environment
const drawsPerSample = 4

// TileRenderer estimates diffuse irradiance for the pixels of a lat-long output map.
// Pixel (x, y) stands for the surface normal the spherical mapping sends its center to.
type TileRenderer struct {
	env  lights.Environment
	size image.Point
}

// NewTileRenderer creates a tile renderer for an output of the given size
func NewTileRenderer(env lights.Environment, width, height int) *TileRenderer {
	return &TileRenderer{
		env:  env,
		size: image.Pt(width, height),
	}
}

// Normal returns the normal pixel (x, y) is prefiltered for
func (tr *TileRenderer) Normal(x, y int) core.Vec3 {
	return mapping.Spherical{}.Forward(mapping.PixelCenterUV(image.Pt(x, y), tr.size))
}

// RenderTileBounds adds samples to each pixel within bounds until it holds targetSamples.
// Pixels are visited row by row and every sample consumes drawsPerSample values from sampler.
// The samples a pixel takes in one call are stratified over pixelStrata.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[j][i]
			initialSampleCount := ps.SampleCount
			normal := tr.Normal(i, j)
			if count := targetSamples - initialSampleCount; count > 0 {
				strata := pixelStrata(count)
				for k := 0; k < count; k++ {
					ps.AddSample(tr.EstimateStratified(normal, sampler, strata, k))
				}
			}
			tr.updateStats(&stats, ps.SampleCount-initialSampleCount)
		}
	}

	tr.finalizeStats(&stats)
	return stats
}

// pixelStrata returns a jittered grid with exactly count cells, as close to
// square as the factors of count allow
func pixelStrata(count int) sampling.Jittered2D {
	width := int(math.Sqrt(float64(count)))
	for count%width != 0 {
		width--
	}
	return sampling.NewJittered2D(width, count/width)
}

// Estimate returns a one-sample estimate of ∫ L(ω) cos(θ)/π dω over the
// hemisphere around normal, combining a cosine-weighted sample and an
// environment sample with the power heuristic. It always consumes
// drawsPerSample values, whether or not the samples turn out valid.
func (tr *TileRenderer) Estimate(normal core.Vec3, sampler core.Sampler) core.Vec3 {
	u1 := sampler.Get2D()
	u2 := sampler.Get2D()
	return tr.estimate(normal, u1, u2)
}

// EstimateStratified is Estimate with both variates placed in cells of strata.
// The cosine sample uses cell k and the environment sample cell count-1-k.
func (tr *TileRenderer) EstimateStratified(normal core.Vec3, sampler core.Sampler, strata sampling.Jittered2D, k int) core.Vec3 {
	u1 := strata.Sample(k, sampler.Get2D())
	u2 := strata.Sample(strata.Cells()-1-k, sampler.Get2D())
	return tr.estimate(normal, u1, u2)
}

func (tr *TileRenderer) estimate(normal core.Vec3, u1, u2 core.Vec2) core.Vec3 {
	var result core.Vec3

	// Cosine lobe: f/pdf is 1, only the MIS weight remains
	if s := sampling.CosineSampleHemisphereAround(u1, normal); s.Valid() {
		w := s.Value()
		weight := sampling.PowerHeuristic(1, s.Density(), 1, tr.env.PDF(w))
		result = result.Add(tr.env.Radiance(w).Multiply(weight))
	}

	// Environment
	if s := tr.env.Sample(u2); s.Valid() {
		w := s.Value()
		if cosTheta := w.Dot(normal); cosTheta > 0 {
			bsdfPDF := cosTheta * core.InvPi
			weight := sampling.PowerHeuristic(1, s.Density(), 1, bsdfPDF)
			result = result.Add(tr.env.Radiance(w).Multiply(bsdfPDF * weight * s.RcpDensity()))
		}
	}

	if math.IsNaN(result.X) || math.IsNaN(result.Y) || math.IsNaN(result.Z) {
		return core.Vec3{}
	}
	return result
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  maxSamples,
		MinSamples:  maxSamples, // Start with max, will be reduced
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
