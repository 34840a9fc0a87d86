package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// testImage returns a 2x2 image: white, red / green, blue
func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	return img
}

func checkTestImage(t *testing.T, imageData *ImageData) {
	t.Helper()

	if imageData.Width != 2 || imageData.Height != 2 {
		t.Fatalf("Expected 2x2 image, got %dx%d", imageData.Width, imageData.Height)
	}
	if len(imageData.Pixels) != 4 {
		t.Fatalf("Expected 4 pixels, got %d", len(imageData.Pixels))
	}

	checkColor := func(name string, got, expected core.Vec3) {
		const tolerance = 0.01
		if abs(got.X-expected.X) > tolerance ||
			abs(got.Y-expected.Y) > tolerance ||
			abs(got.Z-expected.Z) > tolerance {
			t.Errorf("%s: expected %v, got %v", name, expected, got)
		}
	}

	// Row-major order
	checkColor("Top-left (white)", imageData.Pixels[0], core.NewVec3(1.0, 1.0, 1.0))
	checkColor("Top-right (red)", imageData.Pixels[1], core.NewVec3(1.0, 0.0, 0.0))
	checkColor("Bottom-left (green)", imageData.Pixels[2], core.NewVec3(0.0, 1.0, 0.0))
	checkColor("Bottom-right (blue)", imageData.Pixels[3], core.NewVec3(0.0, 0.0, 1.0))
}

// TestLoadImage creates a test PNG and verifies loading
func TestLoadImage(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.png")

	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		f.Close()
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	f.Close()

	imageData, err := LoadImage(testFile)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	checkTestImage(t, imageData)
}

// TestDecodeImage_Formats verifies the extra decoders are registered
func TestDecodeImage_Formats(t *testing.T) {
	tests := []struct {
		name   string
		encode func(buf *bytes.Buffer, img image.Image) error
	}{
		{"png", func(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }},
		{"tiff", func(buf *bytes.Buffer, img image.Image) error { return tiff.Encode(buf, img, nil) }},
		{"bmp", func(buf *bytes.Buffer, img image.Image) error { return bmp.Encode(buf, img) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf, testImage()); err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			imageData, err := DecodeImage(&buf, LoadOptions{})
			if err != nil {
				t.Fatalf("DecodeImage failed: %v", err)
			}
			checkTestImage(t, imageData)
		})
	}
}

func TestDecodeImage_Downscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: 128, G: 64, B: 32, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}

	imageData, err := DecodeImage(&buf, LoadOptions{MaxWidth: 16})
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if imageData.Width != 16 || imageData.Height != 8 {
		t.Fatalf("Expected 16x8 after downscaling, got %dx%d", imageData.Width, imageData.Height)
	}

	// A constant image stays constant
	expected := core.NewVec3(128.0/255, 64.0/255, 32.0/255)
	for i, p := range imageData.Pixels {
		if p.Subtract(expected).Length() > 0.01 {
			t.Fatalf("Pixel %d is %v, expected %v", i, p, expected)
		}
	}
}

func TestDecodeImage_SmallerThanMaxWidth(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	imageData, err := DecodeImage(&buf, LoadOptions{MaxWidth: 512})
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	checkTestImage(t, imageData)
}

func TestDecodeImage_InvalidInput(t *testing.T) {
	if _, err := DecodeImage(bytes.NewReader([]byte("not an image")), LoadOptions{}); err == nil {
		t.Error("Expected error for garbage input, got nil")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	if _, err := DecodeImage(&buf, LoadOptions{MaxWidth: -1}); err == nil {
		t.Error("Expected error for a negative max width, got nil")
	}
}

func TestSRGBConversions(t *testing.T) {
	tests := []struct {
		srgb, linear float64
	}{
		{0, 0},
		{0.04045, 0.04045 / 12.92},
		{0.5, 0.21404114048223255},
		{1, 1},
	}

	for _, tt := range tests {
		if got := SRGBToLinear(tt.srgb); math.Abs(got-tt.linear) > 1e-9 {
			t.Errorf("SRGBToLinear(%v) = %v, expected %v", tt.srgb, got, tt.linear)
		}
		if got := LinearToSRGB(tt.linear); math.Abs(got-tt.srgb) > 1e-6 {
			t.Errorf("LinearToSRGB(%v) = %v, expected %v", tt.linear, got, tt.srgb)
		}
	}
}

func TestSavePNG_RoundTrip(t *testing.T) {
	data := NewImageData(3, 1)
	data.Pixels[0] = core.NewVec3(0, 0, 0)
	data.Pixels[1] = core.NewVec3(0.25, 0.5, 1)
	data.Pixels[2] = core.NewVec3(4, -1, 0.5) // clamped

	filename := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(filename, data, true); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	loaded, err := LoadImageWithOptions(filename, LoadOptions{SRGB: true})
	if err != nil {
		t.Fatalf("LoadImageWithOptions failed: %v", err)
	}
	expected := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(0.25, 0.5, 1),
		core.NewVec3(1, 0, 0.5),
	}
	for i, want := range expected {
		if got := loaded.Pixels[i]; got.Subtract(want).Length() > 0.01 {
			t.Errorf("Pixel %d: expected %v, got %v", i, want, got)
		}
	}
}

// TestLoadImageNotFound verifies error handling for missing files
func TestLoadImageNotFound(t *testing.T) {
	_, err := LoadImage("nonexistent.png")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
