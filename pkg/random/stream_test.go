package random

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-importance-sampler/pkg/core"
)

var _ core.Sampler = (*Stream)(nil)

func TestStream_ReferenceSequence(t *testing.T) {
	// First outputs of the reference MT19937 with its default seed
	s := NewStream(5489)
	expected := []uint32{3499211612, 581869302, 3890346734}
	for i, want := range expected {
		if got := s.Uint32(); got != want {
			t.Errorf("draw %d: got %d, expected %d", i, got, want)
		}
	}
	if s.CallCount() != 3 {
		t.Errorf("Expected call count 3, got %d", s.CallCount())
	}
}

func TestStream_Reproducible(t *testing.T) {
	a := NewStream(1234)
	b := NewStream(1234)
	for i := 0; i < 1000; i++ {
		if x, y := a.Get1D(), b.Get1D(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}

	c := NewStream(1235)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Get1D() == c.Get1D() {
			same++
		}
	}
	if same > 1 {
		t.Errorf("Streams with different seeds agree on %d of 100 draws", same)
	}
}

func TestStream_Range(t *testing.T) {
	s := NewStream(42)
	for i := 0; i < 100000; i++ {
		if v := s.Get1D(); v < 0 || v >= 1 {
			t.Fatalf("Get1D returned %v outside [0, 1)", v)
		}
	}
	if v := float64(^uint32(0)) * rcpUint32Range; v >= 1 {
		t.Errorf("Largest draw maps to %v", v)
	}
}

func TestStream_CallCount(t *testing.T) {
	s := NewStream(7)
	s.Get1D()
	s.Get2D()
	s.Get3D()
	s.Uint32()
	if s.CallCount() != 7 {
		t.Errorf("Expected 7 draws, got %d", s.CallCount())
	}

	s.SetSeed(8)
	if s.CallCount() != 0 || s.Seed() != 8 {
		t.Errorf("SetSeed should reset the count: count %d, seed %d", s.CallCount(), s.Seed())
	}
}

func TestStream_DiscardEquivalence(t *testing.T) {
	tests := []uint64{0, 1, 5, 623, 624, 625, 2000}

	for _, n := range tests {
		reference := NewStream(99)
		for i := uint64(0); i < n; i++ {
			reference.Get1D()
		}

		skipped := NewStream(99)
		skipped.Discard(n)

		if skipped.CallCount() != reference.CallCount() {
			t.Errorf("n=%d: call count %d, expected %d", n, skipped.CallCount(), reference.CallCount())
		}
		want := []float64{reference.Get1D(), reference.Get1D(), reference.Get1D()}
		got := []float64{skipped.Get1D(), skipped.Get1D(), skipped.Get1D()}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("n=%d: draws after Discard differ (-want +got):\n%s", n, diff)
		}
	}
}

func TestStream_SetSeedRestarts(t *testing.T) {
	s := NewStream(3)
	first := s.Get3D()
	s.Get2D()
	s.SetSeed(3)
	if again := s.Get3D(); again != first {
		t.Errorf("Reseeding should replay the stream: %v vs %v", first, again)
	}
}

func TestNewStreams(t *testing.T) {
	streams := NewStreams(4, 10)
	if len(streams) != 4 {
		t.Fatalf("Expected 4 streams, got %d", len(streams))
	}
	for i, s := range streams {
		if want := uint32(10*4 + i); s.Seed() != want {
			t.Errorf("stream %d: seed %d, expected %d", i, s.Seed(), want)
		}
	}

	ReseedStreams(streams, 11)
	for i, s := range streams {
		if want := uint32(11*4 + i); s.Seed() != want || s.CallCount() != 0 {
			t.Errorf("stream %d after reseed: seed %d, count %d", i, s.Seed(), s.CallCount())
		}
	}
}

func TestTileSeed(t *testing.T) {
	size := image.Pt(64, 32)
	tests := []struct {
		name     string
		frame    uint32
		viewport image.Rectangle
		expected uint32
	}{
		{"origin", 0, image.Rect(0, 0, 16, 16), 0},
		{"second column", 0, image.Rect(16, 0, 32, 16), 16},
		{"second row", 0, image.Rect(0, 16, 16, 32), 16 * 64},
		{"next frame", 2, image.Rect(16, 16, 32, 32), 16 + 16*64 + 2*64*32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TileSeed(tt.frame, tt.viewport, size); got != tt.expected {
				t.Errorf("got %d, expected %d", got, tt.expected)
			}
		})
	}

	// Every tile of every frame gets its own seed
	seen := make(map[uint32]bool)
	for frame := uint32(0); frame < 3; frame++ {
		for y := 0; y < size.Y; y += 16 {
			for x := 0; x < size.X; x += 16 {
				seed := TileSeed(frame, image.Rect(x, y, x+16, y+16), size)
				if seen[seed] {
					t.Errorf("Duplicate seed %d for frame %d tile (%d, %d)", seed, frame, x, y)
				}
				seen[seed] = true
			}
		}
	}
}
