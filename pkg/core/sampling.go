package core

// Sampler provides uniform variates in [0, 1) to sampling routines
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// FixedSampler replays a fixed list of variates, cycling when exhausted
type FixedSampler struct {
	Values []float64
	next   int
}

// NewFixedSampler creates a sampler returning values in order
func NewFixedSampler(values ...float64) *FixedSampler {
	return &FixedSampler{Values: values}
}

// Get1D returns the next value
func (f *FixedSampler) Get1D() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

// Get2D returns the next two values
func (f *FixedSampler) Get2D() Vec2 {
	return NewVec2(f.Get1D(), f.Get1D())
}

// Get3D returns the next three values
func (f *FixedSampler) Get3D() Vec3 {
	return NewVec3(f.Get1D(), f.Get1D(), f.Get1D())
}
