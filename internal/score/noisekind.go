package score

// NoiseKind selects a colored-noise generator for a Noise event
// (spec §4.3).
type NoiseKind uint8

const (
	White NoiseKind = iota
	Pink
	Brown
	Blue
	Green
	Perlin
)
