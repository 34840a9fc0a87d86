package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/df07/go-importance-sampler/pkg/core"
	"github.com/df07/go-importance-sampler/pkg/lights"
	"github.com/df07/go-importance-sampler/pkg/loaders"
	"github.com/df07/go-importance-sampler/pkg/renderer"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, prefilters the requested environment and writes the result as a PNG
func run(args []string, stdout io.Writer) error {
	defaults := renderer.DefaultPrefilterConfig()

	flags := flag.NewFlagSet("prefilter", flag.ContinueOnError)
	flags.SetOutput(stdout)
	envFile := flags.String("env", "", "Lat-long environment map (PNG, JPEG, TIFF or BMP)")
	uniform := flags.String("uniform", "", "Constant radiance 'r,g,b', added to -env when both are given")
	width := flags.Int("width", defaults.Width, "Width of the irradiance map")
	height := flags.Int("height", defaults.Height, "Height of the irradiance map")
	spp := flags.Int("spp", defaults.MaxSamplesPerPixel, "Samples per pixel")
	passes := flags.Int("passes", defaults.MaxPasses, "Number of progressive passes")
	workers := flags.Int("workers", defaults.NumWorkers, "Number of workers (0 = CPU count)")
	tileSize := flags.Int("tile", defaults.TileSize, "Tile size in pixels")
	seed := flags.Uint("seed", uint(defaults.Seed), "Random seed")
	maxEnvWidth := flags.Int("max-env-width", 1024, "Downscale wider environment maps before building the importance table (0 = never)")
	srgb := flags.Bool("srgb", true, "Decode the environment map and encode the output with the sRGB curve")
	out := flags.String("out", "", "Output file (default output/irradiance_<timestamp>.png)")
	help := flags.Bool("help", false, "Show help information")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *help {
		fmt.Fprintln(stdout, "Environment Prefilter")
		fmt.Fprintln(stdout, "Usage: prefilter [options]")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Options:")
		flags.PrintDefaults()
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Without -env or -uniform a blue-to-white sky gradient is prefiltered.")
		fmt.Fprintln(stdout, "Output is a diffuse irradiance lat-long map, +Z at the top row.")
		return nil
	}

	if *seed > math.MaxUint32 {
		return fmt.Errorf("seed %d does not fit in 32 bits", *seed)
	}

	env, err := createEnvironment(*envFile, *uniform, loaders.LoadOptions{MaxWidth: *maxEnvWidth, SRGB: *srgb})
	if err != nil {
		return err
	}

	config := renderer.PrefilterConfig{
		Width:              *width,
		Height:             *height,
		TileSize:           *tileSize,
		InitialSamples:     defaults.InitialSamples,
		MaxSamplesPerPixel: *spp,
		MaxPasses:          *passes,
		NumWorkers:         *workers,
		Seed:               uint32(*seed),
	}
	if config.MaxPasses == 1 || config.MaxSamplesPerPixel < config.MaxPasses {
		config.InitialSamples = config.MaxSamplesPerPixel
		config.MaxPasses = 1
	}

	logger := renderer.NewWriterLogger(stdout)
	prefilter, err := renderer.NewPrefilter(env, config, logger)
	if err != nil {
		return err
	}

	filename, err := outputFilename(*out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	img, err := prefilterProgressive(ctx, prefilter, stdout)
	if img == nil {
		return err
	}
	if err != nil {
		// Keep what finished before the interruption
		fmt.Fprintf(stdout, "Prefiltering stopped early: %v\n", err)
	}
	fmt.Fprintf(stdout, "Prefiltering completed in %v\n", time.Since(startTime))

	if err := loaders.SavePNG(filename, img, *srgb); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Irradiance map saved as %s\n", filename)
	return nil
}

// prefilterProgressive runs every pass and returns the last completed image.
// Tile progress is shown on a single line when stdout is a terminal.
func prefilterProgressive(ctx context.Context, prefilter *renderer.Prefilter, stdout io.Writer) (*loaders.ImageData, error) {
	interactive := isTerminal(stdout)
	passChan, tileChan, errChan := prefilter.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: interactive})

	tilesDone := make(chan struct{})
	go func() {
		defer close(tilesDone)
		for tile := range tileChan {
			fmt.Fprintf(stdout, "\rPass %d/%d: tile %d/%d", tile.PassNumber, tile.TotalPasses, tile.TileNumber, tile.TotalTiles)
			if tile.TileNumber == tile.TotalTiles {
				fmt.Fprint(stdout, "\r\033[K")
			}
		}
	}()

	var last *loaders.ImageData
	for result := range passChan {
		last = result.Image
	}
	<-tilesDone

	if err := <-errChan; err != nil {
		return last, fmt.Errorf("prefiltering failed: %w", err)
	}
	return last, nil
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputFilename returns out, or a timestamped name under output/ when out is empty.
// The parent directory is created if needed.
func outputFilename(out string) (string, error) {
	if out == "" {
		timestamp := time.Now().Format("20060102_150405")
		out = filepath.Join("output", fmt.Sprintf("irradiance_%s.png", timestamp))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	return out, nil
}

// createEnvironment builds the environment to prefilter: an image, a constant,
// both mixed by power, or the default sky when neither is given
func createEnvironment(envPath, uniform string, opts loaders.LoadOptions) (lights.Environment, error) {
	var environments []lights.Environment

	if envPath != "" {
		imageData, err := loaders.LoadImageWithOptions(envPath, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load environment map %s: %w", envPath, err)
		}
		env, err := lights.NewImageEnvironment(imageData)
		if err != nil {
			return nil, fmt.Errorf("failed to build environment from %s: %w", envPath, err)
		}
		environments = append(environments, env)
	}

	if uniform != "" {
		radiance, err := parseColor(uniform)
		if err != nil {
			return nil, err
		}
		environments = append(environments, lights.NewUniformEnvironment(radiance))
	}

	switch len(environments) {
	case 0:
		return lights.NewSkyEnvironment(), nil
	case 1:
		return environments[0], nil
	default:
		return lights.NewPowerMixtureEnvironment(environments...), nil
	}
}

// parseColor parses "r,g,b" into non-negative radiance
func parseColor(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("invalid color %q: expected r,g,b", s)
	}
	var c [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		if v < 0 {
			return core.Vec3{}, errors.New("color components must be non-negative")
		}
		c[i] = v
	}
	return core.NewVec3(c[0], c[1], c[2]), nil
}
