package neural

import (
	"fmt"
	"math"
	"math/rand"
)

// Store owns one network's weight state: the live vector the kernel mutates
// and the immutable initial vector that decay relaxes toward. Both are
// allocated once and never resized.
type Store struct {
	cfg     NetworkConfig
	current []float32
	initial []float32
}

// NewStore allocates and initializes a weight store for cfg. Each weight
// block is drawn from a zero-mean Gaussian (Box-Muller) scaled by
// sqrt(2/fanIn)*scale; biases are uniform in [-biasInit, biasInit] to break
// symmetry without large offsets. current starts identical to initial.
func NewStore(cfg NetworkConfig, scale, biasInit float32, rng *rand.Rand) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := cfg.WeightCount()
	s := &Store{
		cfg:     cfg,
		current: make([]float32, n),
		initial: make([]float32, n),
	}

	for _, layer := range []Layer{LayerHidden1, LayerHidden2, LayerOutput} {
		ws := cfg.HeScale(layer) * scale
		rows, cols := layerShape(cfg, layer)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				s.initial[cfg.WeightIndex(layer, r, c)] = boxMuller(rng) * ws
			}
			s.initial[cfg.BiasIndex(layer, r)] = (rng.Float32()*2 - 1) * biasInit
		}
	}

	copy(s.current, s.initial)
	return s, nil
}

func layerShape(cfg NetworkConfig, layer Layer) (rows, cols int) {
	switch layer {
	case LayerHidden1:
		return cfg.Hidden1Size, cfg.InputSize
	case LayerHidden2:
		return cfg.Hidden2Size, cfg.Hidden1Size
	default:
		return cfg.OutputSize, cfg.Hidden2Size
	}
}

// boxMuller draws one standard normal sample from two independent uniforms.
func boxMuller(rng *rand.Rand) float32 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return float32(math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2))
}

// Config returns the network configuration.
func (s *Store) Config() NetworkConfig { return s.cfg }

// Current returns the live weight vector. Callers must respect the frame
// contract: the mutation kernel writes it once per frame, everything else
// reads it afterwards.
func (s *Store) Current() []float32 { return s.current }

// Initial returns the immutable reference vector.
func (s *Store) Initial() []float32 { return s.initial }

// Reset overwrites current with initial verbatim. This is an exact copy,
// not a blend; after Reset the vectors compare bitwise equal.
func (s *Store) Reset() {
	copy(s.current, s.initial)
}

// SetCurrent replaces the live vector, failing fast on a length mismatch.
func (s *Store) SetCurrent(w []float32) error {
	if len(w) != len(s.current) {
		return fmt.Errorf("neural: weight vector length %d does not match configuration count %d",
			len(w), len(s.current))
	}
	copy(s.current, w)
	return nil
}

// Departure returns the mean absolute difference between current and
// initial, a cheap measure of how perturbed the field is.
func (s *Store) Departure() float32 {
	var sum float32
	for i, w := range s.current {
		d := w - s.initial[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float32(len(s.current))
}
