package sampling

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/mapping"
)

func TestMeasureConversions(t *testing.T) {
	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"uv to spherical angles", UVToSphericalAnglesPDF(1), 1 / core.TwoPiSquared},
		{"spherical angles to solid angle", SphericalAnglesToSolidAnglePDF(0.5, 4), 2},
		{"solid angle to area", SolidAngleToAreaPDF(2, 0.25, 0.5), 0.25},
		{"solid angle to area, back facing", SolidAngleToAreaPDF(2, 0.25, -0.5), 0},
		{"area to solid angle", AreaToSolidAnglePDF(0.25, 4, 0.5), 2},
		{"area to solid angle, back facing", AreaToSolidAnglePDF(0.25, 4, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-12 {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}

	// Area and solid angle conversions are inverses of each other
	pdfSA := 0.37
	sqrDist, cosNormal := 2.5, 0.8
	roundTrip := AreaToSolidAnglePDF(SolidAngleToAreaPDF(pdfSA, 1/sqrDist, cosNormal), sqrDist, cosNormal)
	if math.Abs(roundTrip-pdfSA) > 1e-12 {
		t.Errorf("Round trip gave %v, expected %v", roundTrip, pdfSA)
	}
}

// cellFraction returns how far x lies inside its cell, folded to [0, 0.5]
func cellFraction(x float64) float64 {
	f := x - math.Floor(x)
	return math.Min(f, 1-f)
}

func TestSampleMapped_MatchesPDFMapped(t *testing.T) {
	const width, height = 32, 16
	tests := []struct {
		name    string
		mapping mapping.Mapping
	}{
		{"spherical", mapping.Spherical{}},
		{"hemispherical", mapping.Hemispherical{}},
		{"dual paraboloid", mapping.DualParaboloid{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]float32, Distribution2DBufferSize(width, height))
			dist, _ := BuildDistribution2D(buf, width, height, func(x, y int) float32 {
				uv := core.NewVec2((float64(x)+0.5)/width, (float64(y)+0.5)/height)
				if tt.mapping.Jacobian(uv) == 0 {
					return 0
				}
				return float32(1 + x%5 + y%3)
			})
			random := rand.New(rand.NewSource(42))

			for k := 0; k < 1000; k++ {
				s := SampleMapped(dist, tt.mapping, randomVec2(random))
				if !s.Valid() {
					continue
				}
				w := s.Value()
				if math.Abs(w.Length()-1) > 1e-6 {
					t.Fatalf("Sampled direction %v is not unit length", w)
				}

				// Cell boundaries are ambiguous after a round trip through the mapping
				uv := tt.mapping.Inverse(w)
				if cellFraction(uv.X*width) < 1e-4 || cellFraction(uv.Y*height) < 1e-4 {
					continue
				}
				pdf := PDFMapped(dist, tt.mapping, w)
				if math.Abs(pdf-s.Density()) > 1e-4*s.Density() {
					t.Errorf("Direction %v: sample density %v, PDFMapped %v", w, s.Density(), pdf)
				}
			}
		})
	}
}

func TestSampleMapped_UniformWeightsGiveUniformDensity(t *testing.T) {
	// Weighting a lat-long grid by sin(θ) at pixel centers approximates the uniform sphere
	const width, height = 64, 32
	buf := make([]float64, Distribution2DBufferSize(width, height))
	dist, _ := BuildDistribution2D(buf, width, height, func(x, y int) float64 {
		return math.Sin(math.Pi * (float64(y) + 0.5) / height)
	})
	random := rand.New(rand.NewSource(42))

	for k := 0; k < 1000; k++ {
		s := SampleMapped(dist, mapping.Spherical{}, randomVec2(random))
		if !s.Valid() {
			t.Fatalf("Sample %d is invalid", k)
		}
		// Away from the poles sin(θ) barely changes across a row
		if math.Abs(s.Value().Z) > 0.5 {
			continue
		}
		if math.Abs(s.Density()-core.InvFourPi) > 0.05*core.InvFourPi {
			t.Errorf("Direction %v: density %v, expected about %v", s.Value(), s.Density(), core.InvFourPi)
		}
	}
}

func TestSampleMapped_Degenerate(t *testing.T) {
	buf := make([]float64, Distribution2DBufferSize(4, 4))
	dist, _ := BuildDistribution2D(buf, 4, 4, func(x, y int) float64 { return 0 })

	if s := SampleMapped(dist, mapping.Spherical{}, core.NewVec2(0.5, 0.5)); s.Valid() {
		t.Errorf("Expected an invalid sample, got %v", s)
	}
	if pdf := PDFMapped(dist, mapping.Spherical{}, core.NewVec3(0, 1, 0)); pdf != 0 {
		t.Errorf("Expected zero density, got %v", pdf)
	}
}

func TestSampleMapped_Float32BlackRightColumn(t *testing.T) {
	const width, height = 4, 2
	buf := make([]float32, Distribution2DBufferSize(width, height))
	dist, _ := BuildDistribution2D(buf, width, height, func(x, y int) float32 {
		if x == width-1 {
			return 0
		}
		return 1
	})

	// 1-2^-32 is the largest value a 32-bit stream returns
	s := SampleMapped(dist, mapping.Spherical{}, core.NewVec2(1-math.Pow(2, -32), 0.5))
	if !s.Valid() || s.Density() <= 0 {
		t.Fatalf("Expected a valid sample, got %v", s)
	}
	uv := mapping.Spherical{}.Inverse(s.Value())
	if uv.X >= 0.75 {
		t.Errorf("Sample %v maps to u = %v, inside the black column", s.Value(), uv.X)
	}
	if pdf := PDFMapped(dist, mapping.Spherical{}, s.Value()); math.Abs(pdf-s.Density()) > 1e-4*s.Density() {
		t.Errorf("Sample density %v, PDFMapped %v", s.Density(), pdf)
	}
}
