package renderer

import "fmt"

// PrefilterConfig contains configuration for progressive prefiltering
type PrefilterConfig struct {
	Width              int    // Width of the output lat-long map
	Height             int    // Height of the output lat-long map
	TileSize           int    // Size of each tile (32x32 recommended)
	InitialSamples     int    // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int    // Maximum total samples per pixel
	MaxPasses          int    // Maximum number of passes
	NumWorkers         int    // Number of parallel workers (0 = use CPU count)
	Seed               uint32 // Base seed; the same seed reproduces the same output
}

// DefaultPrefilterConfig returns sensible default values
func DefaultPrefilterConfig() PrefilterConfig {
	return PrefilterConfig{
		Width:              128,
		Height:             64,
		TileSize:           32,
		InitialSamples:     1,
		MaxSamplesPerPixel: 64,
		MaxPasses:          7, // 1, 11, 21, 31, 41, 51, 64
		NumWorkers:         0, // Auto-detect CPU count
		Seed:               0,
	}
}

// Validate reports the first invalid setting
func (c PrefilterConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid output size %dx%d", c.Width, c.Height)
	case c.TileSize <= 0:
		return fmt.Errorf("invalid tile size %d", c.TileSize)
	case c.MaxPasses <= 0:
		return fmt.Errorf("invalid pass count %d", c.MaxPasses)
	case c.InitialSamples <= 0:
		return fmt.Errorf("invalid initial sample count %d", c.InitialSamples)
	case c.MaxSamplesPerPixel < c.InitialSamples:
		return fmt.Errorf("max samples per pixel (%d) is below the initial sample count (%d)", c.MaxSamplesPerPixel, c.InitialSamples)
	case c.MaxPasses > 1 && c.MaxSamplesPerPixel-c.InitialSamples < c.MaxPasses-1:
		return fmt.Errorf("%d samples per pixel cannot be spread over %d passes", c.MaxSamplesPerPixel, c.MaxPasses)
	case c.NumWorkers < 0:
		return fmt.Errorf("invalid worker count %d", c.NumWorkers)
	}
	return nil
}

// getSamplesForPass calculates the target total samples after a given pass; pass 0 is the empty image
func (c PrefilterConfig) getSamplesForPass(passNumber int) int {
	if passNumber <= 0 {
		return 0
	}

	// Special case: if only 1 pass, use all samples
	if c.MaxPasses == 1 {
		return c.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return c.InitialSamples
	}

	// For the final pass, use all remaining samples
	if passNumber >= c.MaxPasses {
		return c.MaxSamplesPerPixel
	}

	// Divide remaining samples evenly across remaining passes
	samplesPerPass := (c.MaxSamplesPerPixel - c.InitialSamples) / (c.MaxPasses - 1)
	return c.InitialSamples + (passNumber-1)*samplesPerPass
}
