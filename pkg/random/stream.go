// Package random provides the deterministic per-worker random streams used by
// the renderer. A stream is owned by exactly one goroutine; reproducibility
// comes from seeding, never from sharing.
package random

import (
	"image"

	"gonum.org/v1/gonum/mathext/prng"

	"github.com/df07/go-importance-sampler/pkg/core"
)

// rcpUint32Range maps a 32 bit draw to [0, 1)
const rcpUint32Range = 1.0 / (1 << 32)

// Stream is a seeded Mersenne Twister that counts the draws it has made.
// Every scalar costs exactly one draw, so a position in the stream can be
// reached again with Discard.
type Stream struct {
	engine    *prng.MT19937
	seed      uint32
	callCount uint64
}

// NewStream creates a stream seeded with seed
func NewStream(seed uint32) *Stream {
	s := &Stream{engine: prng.NewMT19937()}
	s.SetSeed(seed)
	return s
}

// Seed returns the seed of the stream
func (s *Stream) Seed() uint32 {
	return s.seed
}

// SetSeed restarts the stream from seed and resets its call count
func (s *Stream) SetSeed(seed uint32) {
	s.seed = seed
	s.callCount = 0
	s.engine.Seed(uint64(seed))
}

// CallCount returns the number of draws made since the last seeding
func (s *Stream) CallCount() uint64 {
	return s.callCount
}

// Uint32 returns the next raw 32 bit draw
func (s *Stream) Uint32() uint32 {
	s.callCount++
	return s.engine.Uint32()
}

// Get1D returns a float64 in [0, 1)
func (s *Stream) Get1D() float64 {
	return float64(s.Uint32()) * rcpUint32Range
}

// Get2D returns two values in [0, 1), X drawn first
func (s *Stream) Get2D() core.Vec2 {
	x := s.Get1D()
	return core.NewVec2(x, s.Get1D())
}

// Get3D returns three values in [0, 1) drawn in X, Y, Z order
func (s *Stream) Get3D() core.Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return core.NewVec3(x, y, s.Get1D())
}

// Discard skips n draws, leaving the stream where it would be after n calls to Get1D
func (s *Stream) Discard(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.engine.Uint32()
	}
	s.callCount += n
}

// NewStreams creates count independent streams; stream i is seeded with seed*count + i
func NewStreams(count int, seed uint32) []*Stream {
	streams := make([]*Stream, count)
	for i := range streams {
		streams[i] = NewStream(streamSeed(seed, count, i))
	}
	return streams
}

// ReseedStreams reseeds streams created by NewStreams with a new base seed
func ReseedStreams(streams []*Stream, seed uint32) {
	for i, s := range streams {
		s.SetSeed(streamSeed(seed, len(streams), i))
	}
}

func streamSeed(seed uint32, count, i int) uint32 {
	return seed*uint32(count) + uint32(i)
}

// TileSeed derives the seed of the tile whose top-left corner is viewport.Min in
// frame frameID of an image of imageSize pixels. Distinct tiles of a frame get
// distinct seeds as long as they have distinct corners.
func TileSeed(frameID uint32, viewport image.Rectangle, imageSize image.Point) uint32 {
	w, h := uint32(imageSize.X), uint32(imageSize.Y)
	return uint32(viewport.Min.X) + uint32(viewport.Min.Y)*w + frameID*w*h
}
