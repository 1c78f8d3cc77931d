package resonance

import "math"

// FNV-1a constants plus a multiplicative/XOR finisher. Scores only need to
// be stable and well spread, not cryptographic.
const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211

	scoreMin  = 100
	scoreSpan = 9900 // scores land in [100, 9999]
)

// captureScore hashes the orb's properties together with a strided sample of
// the weight vector and reduces the result into the bounded score range.
// Identical weight state and orb always score the same.
func captureScore(orb Orb, weights []float32, stride int) int {
	h := uint64(fnvOffset)

	mix := func(v uint64) {
		h ^= v
		h *= fnvPrime
	}

	mix(uint64(math.Float32bits(orb.Position[0])))
	mix(uint64(math.Float32bits(orb.Position[2])))
	mix(uint64(math.Float32bits(orb.Intensity)))
	mix(orb.WorldHash)

	for i := 0; i < len(weights); i += stride {
		mix(uint64(math.Float32bits(weights[i])))
	}

	// Finisher: fold the high bits down before bounding.
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33

	return scoreMin + int(h%scoreSpan)
}

// weightHash is the world-state fingerprint stored on each orb at spawn
// time, an FNV-1a accumulation over the same strided sample the detector
// statistics use.
func weightHash(weights []float32, stride int) uint64 {
	h := uint64(fnvOffset)
	for i := 0; i < len(weights); i += stride {
		h ^= uint64(math.Float32bits(weights[i]))
		h *= fnvPrime
	}
	return h
}
