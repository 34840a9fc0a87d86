package mapping

import (
	"image"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// PixelIndex returns the row-major index of pixel (x, y)
func PixelIndex(x, y int, size image.Point) int {
	return x + y*size.X
}

// PixelFromIndex is the inverse of PixelIndex
func PixelFromIndex(index int, size image.Point) image.Point {
	return image.Pt(index%size.X, index/size.X)
}

// PixelFromUV returns the pixel containing uv, clamped to the image
func PixelFromUV(uv core.Vec2, size image.Point) image.Point {
	return RasterToPixel(core.NewVec2(uv.X*float64(size.X), uv.Y*float64(size.Y)), size)
}

// RasterToPixel returns the pixel containing a raster position, clamped to the image
func RasterToPixel(raster core.Vec2, size image.Point) image.Point {
	return image.Pt(
		core.ClampInt(int(raster.X), 0, size.X-1),
		core.ClampInt(int(raster.Y), 0, size.Y-1),
	)
}

// UVFromRaster normalizes a raster position by the image size
func UVFromRaster(raster core.Vec2, size image.Point) core.Vec2 {
	return core.NewVec2(raster.X/float64(size.X), raster.Y/float64(size.Y))
}

// PixelCenterUV returns the uv of the center of pixel p
func PixelCenterUV(p image.Point, size image.Point) core.Vec2 {
	return UVFromRaster(core.NewVec2(float64(p.X)+0.5, float64(p.Y)+0.5), size)
}

// NDCToUV maps [-1,1]² to [0,1]²
func NDCToUV(ndc core.Vec2) core.Vec2 {
	return core.NewVec2(0.5*(ndc.X+1), 0.5*(ndc.Y+1))
}

// UVToNDC maps [0,1]² to [-1,1]²
func UVToNDC(uv core.Vec2) core.Vec2 {
	return core.NewVec2(2*uv.X-1, 2*uv.Y-1)
}

// NDC maps a position inside an extent of the given size to [-1,1]²
func NDC(position, extent core.Vec2) core.Vec2 {
	return core.NewVec2(-1+2*position.X/extent.X, -1+2*position.Y/extent.Y)
}
