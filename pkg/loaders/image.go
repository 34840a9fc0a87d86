package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-importance-sampler/pkg/core"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewImageData allocates a black image
func NewImageData(width, height int) *ImageData {
	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the pixel at (x, y)
func (d *ImageData) At(x, y int) core.Vec3 {
	return d.Pixels[y*d.Width+x]
}

// Size returns the dimensions of the image
func (d *ImageData) Size() image.Point {
	return image.Pt(d.Width, d.Height)
}

// LoadOptions controls how an image is turned into radiance values
type LoadOptions struct {
	// MaxWidth downscales wider images, keeping the aspect ratio. 0 keeps the original size.
	MaxWidth int
	// SRGB decodes the sRGB transfer curve so pixels are linear
	SRGB bool
}

// LoadImage loads a PNG, JPEG, TIFF or BMP image and converts it to Vec3 color array
func LoadImage(filename string) (*ImageData, error) {
	return LoadImageWithOptions(filename, LoadOptions{})
}

// LoadImageWithOptions loads an image, optionally downscaling it and linearizing sRGB values
func LoadImageWithOptions(filename string, opts LoadOptions) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return DecodeImage(file, opts)
}

// DecodeImage decodes an image from r (format detected from its header)
func DecodeImage(r io.Reader, opts LoadOptions) (*ImageData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if opts.MaxWidth < 0 {
		return nil, fmt.Errorf("invalid max width %d", opts.MaxWidth)
	}
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = downscale(img, opts.MaxWidth)
	}

	bounds := img.Bounds()
	data := NewImageData(bounds.Dx(), bounds.Dy())

	for y := 0; y < data.Height; y++ {
		for x := 0; x < data.Width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			c := core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
			if opts.SRGB {
				c = core.NewVec3(SRGBToLinear(c.X), SRGBToLinear(c.Y), SRGBToLinear(c.Z))
			}
			data.Pixels[y*data.Width+x] = c
		}
	}

	return data, nil
}

// downscale resizes img to the given width with bilinear filtering, keeping 16 bits per channel
func downscale(img image.Image, width int) image.Image {
	src := img.Bounds()
	height := max(1, int(math.Round(float64(src.Dy())*float64(width)/float64(src.Dx()))))
	dst := image.NewRGBA64(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// SRGBToLinear decodes one sRGB channel
func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes one linear channel with the sRGB transfer curve
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// ToRGBA converts linear values to an 8 bit image, clamping to [0, 1].
// With srgb the sRGB curve is applied, otherwise a gamma of 2.
func (d *ImageData) ToRGBA(srgb bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := d.At(x, y).Clamp(0, 1)
			if srgb {
				c = core.NewVec3(LinearToSRGB(c.X), LinearToSRGB(c.Y), LinearToSRGB(c.Z))
			} else {
				c = c.GammaCorrect(2.0)
			}
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255*c.X + 0.5),
				G: uint8(255*c.Y + 0.5),
				B: uint8(255*c.Z + 0.5),
				A: 255,
			})
		}
	}
	return img
}

// SavePNG writes the image as an 8 bit PNG
func SavePNG(filename string, data *ImageData, srgb bool) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := png.Encode(file, data.ToRGBA(srgb)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}
