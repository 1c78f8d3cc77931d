package neural

import "math"

// EncodeInto appends the positional encoding of coord to dst and returns the
// extended slice: [coord, sin(f0 c), cos(f0 c), ..., sin(f_{b-1} c), cos(f_{b-1} c)]
// with f0 = 1 and frequencies doubling. The ordering and frequency schedule
// must match the shader implementations exactly.
func EncodeInto(dst []float32, coord float32, bands int) []float32 {
	dst = append(dst, coord)
	freq := float64(1)
	c := float64(coord)
	for b := 0; b < bands; b++ {
		s, cs := math.Sincos(freq * c)
		dst = append(dst, float32(s), float32(cs))
		freq *= 2
	}
	return dst
}

// Encode returns the positional encoding of coord as a fresh slice of
// length 1+2*bands.
func Encode(coord float32, bands int) []float32 {
	return EncodeInto(make([]float32, 0, 1+2*bands), coord, bands)
}
