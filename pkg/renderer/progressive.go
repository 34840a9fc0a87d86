package renderer

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/lights"
	"github.com/df07/go-importance-sampler/pkg/loaders"
	"github.com/df07/go-importance-sampler/pkg/random"
)

// DefaultLogger implements core.Logger by writing to Out, or to stdout when Out is nil
type DefaultLogger struct {
	Out io.Writer
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	if dl.Out == nil {
		fmt.Printf(format, args...)
		return
	}
	fmt.Fprintf(dl.Out, format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// NewWriterLogger creates a logger writing to w
func NewWriterLogger(w io.Writer) core.Logger {
	return &DefaultLogger{Out: w}
}

// Prefilter convolves an environment with a cosine lobe, producing a lat-long
// irradiance map over several passes. Each pass adds samples to every pixel;
// tiles are sampled in parallel, each from its own seeded stream, so the
// output depends only on the configuration.
type Prefilter struct {
	env         lights.Environment
	config      PrefilterConfig
	tiles       []*Tile
	currentPass int            // Last completed pass
	pixelStats  [][]PixelStats // Shared pixel statistics array (global image coordinates)
	renderer    *TileRenderer  // Used for replay; workers own their renderers
	workerPool  *WorkerPool
	logger      core.Logger
	closed      bool
}

// NewPrefilter validates config and creates a prefilter for env
func NewPrefilter(env lights.Environment, config PrefilterConfig, logger core.Logger) (*Prefilter, error) {
	if env == nil {
		return nil, fmt.Errorf("no environment to prefilter")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prefilter config: %w", err)
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	tiles := NewTileGrid(config.Width, config.Height, config.TileSize)

	pixelStats := make([][]PixelStats, config.Height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, config.Width)
	}

	return &Prefilter{
		env:        env,
		config:     config,
		tiles:      tiles,
		pixelStats: pixelStats,
		renderer:   NewTileRenderer(env, config.Width, config.Height),
		workerPool: NewWorkerPool(env, config.Width, config.Height, len(tiles), config.NumWorkers),
		logger:     logger,
	}, nil
}

// Config returns the configuration the prefilter was created with
func (pf *Prefilter) Config() PrefilterConfig {
	return pf.config
}

// CurrentPass returns the number of completed passes
func (pf *Prefilter) CurrentPass() int {
	return pf.currentPass
}

// size returns the output dimensions
func (pf *Prefilter) size() image.Point {
	return image.Pt(pf.config.Width, pf.config.Height)
}

// tileSeed is the seed of the stream tile is sampled with during passNumber
func (pf *Prefilter) tileSeed(tile *Tile, passNumber int) uint32 {
	frameID := pf.config.Seed*uint32(pf.config.MaxPasses) + uint32(passNumber-1)
	return random.TileSeed(frameID, tile.Bounds, pf.size())
}

// RenderPass runs the next progressive pass using parallel processing.
// Passes must be run in order, starting at 1.
func (pf *Prefilter) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*loaders.ImageData, RenderStats, error) {
	if pf.closed {
		return nil, RenderStats{}, fmt.Errorf("prefilter is closed")
	}
	if passNumber != pf.currentPass+1 || passNumber > pf.config.MaxPasses {
		return nil, RenderStats{}, fmt.Errorf("cannot run pass %d after pass %d of %d", passNumber, pf.currentPass, pf.config.MaxPasses)
	}

	targetSamples := pf.config.getSamplesForPass(passNumber)

	pf.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, pf.workerPool.GetNumWorkers())

	pf.workerPool.Start()

	// Submit all tiles as tasks
	for taskID, tile := range pf.tiles {
		pf.workerPool.SubmitTask(TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        taskID,
			Seed:          pf.tileSeed(tile, passNumber),
			PixelStats:    pf.pixelStats,
		})
	}

	// Wait for all tiles to complete and dispatch tile callbacks from this goroutine only
	for i := 0; i < len(pf.tiles); i++ {
		result, ok := pf.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		tile := pf.tiles[result.TaskID]
		tile.PassesCompleted++

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / pf.config.TileSize,
				TileY:      tile.Bounds.Min.Y / pf.config.TileSize,
				Bounds:     tile.Bounds,
				PassNumber: passNumber,
				Stats:      result.Stats,

				TileNumber:  i + 1,
				TotalTiles:  len(pf.tiles),
				TotalPasses: pf.config.MaxPasses,
			})
		}
	}

	pf.currentPass = passNumber
	img, stats := pf.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// Close stops the workers. It is safe to call more than once.
func (pf *Prefilter) Close() {
	pf.closed = true
	pf.workerPool.Stop()
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *loaders.ImageData // Linear irradiance estimates
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	Bounds     image.Rectangle // Pixel bounds of the tile
	PassNumber int             // Which pass this tile was sampled in
	Stats      RenderStats     // Statistics of this tile for this pass

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive runs all passes in a goroutine and reports them over channels.
// The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel is closed immediately.
// The prefilter is closed when the goroutine finishes.
func (pf *Prefilter) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pf.Close()

		pf.logger.Printf("Starting progressive prefiltering with %d passes...\n", pf.config.MaxPasses)

		for pass := pf.currentPass + 1; pass <= pf.config.MaxPasses; pass++ {
			// Check for cancellation before starting this pass
			select {
			case <-ctx.Done():
				pf.logger.Printf("Prefiltering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, drop the update
					}
				}
			}

			img, stats, err := pf.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pf.logger.Printf("Pass %d completed in %v (%.0f samples/pixel)\n",
				pass, time.Since(startTime), stats.AverageSamples)

			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     pass == pf.config.MaxPasses,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Image returns the current estimates
func (pf *Prefilter) Image() *loaders.ImageData {
	img, _ := pf.assembleCurrentImage(pf.config.getSamplesForPass(pf.currentPass))
	return img
}

// assembleCurrentImage creates an image from the current state of the shared pixel stats
// and calculates render statistics in a single pass
func (pf *Prefilter) assembleCurrentImage(targetSamples int) (*loaders.ImageData, RenderStats) {
	img := loaders.NewImageData(pf.config.Width, pf.config.Height)

	stats := RenderStats{
		TotalPixels: pf.config.Width * pf.config.Height,
		MaxSamples:  targetSamples,
		MinSamples:  pf.config.MaxSamplesPerPixel, // Start high, will be reduced
	}

	varianceSum := 0.0
	for y := 0; y < pf.config.Height; y++ {
		for x := 0; x < pf.config.Width; x++ {
			pixel := &pf.pixelStats[y][x]
			img.Pixels[y*img.Width+x] = pixel.GetColor()

			stats.TotalSamples += pixel.SampleCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)
			varianceSum += pixel.Variance()
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	stats.MeanVariance = varianceSum / float64(stats.TotalPixels)
	return img, stats
}

// PixelStats returns the accumulated statistics of pixel (x, y)
func (pf *Prefilter) PixelStats(x, y int) PixelStats {
	return pf.pixelStats[y][x]
}

// ReplaySample recomputes sample k that pixel (x, y) received during passNumber.
// It seeds a fresh stream the way the pass seeded the pixel's tile and
// discards the draws of every earlier sample in that tile.
func (pf *Prefilter) ReplaySample(x, y, passNumber, k int) (core.Vec3, error) {
	if !image.Pt(x, y).In(image.Rect(0, 0, pf.config.Width, pf.config.Height)) {
		return core.Vec3{}, fmt.Errorf("pixel (%d, %d) is outside the %dx%d output", x, y, pf.config.Width, pf.config.Height)
	}
	if passNumber < 1 || passNumber > pf.config.MaxPasses {
		return core.Vec3{}, fmt.Errorf("invalid pass %d", passNumber)
	}
	samplesThisPass := pf.config.getSamplesForPass(passNumber) - pf.config.getSamplesForPass(passNumber-1)
	if k < 0 || k >= samplesThisPass {
		return core.Vec3{}, fmt.Errorf("pass %d takes %d samples per pixel, sample %d does not exist", passNumber, samplesThisPass, k)
	}

	tile := pf.tileAt(x, y)
	bounds := tile.Bounds
	pixelInTile := (y-bounds.Min.Y)*bounds.Dx() + (x - bounds.Min.X)

	stream := random.NewStream(pf.tileSeed(tile, passNumber))
	stream.Discard(uint64(pixelInTile*samplesThisPass+k) * drawsPerSample)
	return pf.renderer.EstimateStratified(pf.renderer.Normal(x, y), stream, pixelStrata(samplesThisPass), k), nil
}

// tileAt returns the tile containing pixel (x, y)
func (pf *Prefilter) tileAt(x, y int) *Tile {
	tilesX := (pf.config.Width + pf.config.TileSize - 1) / pf.config.TileSize
	return pf.tiles[(y/pf.config.TileSize)*tilesX+x/pf.config.TileSize]
}

// Tile represents a rectangular region of the output to be sampled
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image, row by row
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
