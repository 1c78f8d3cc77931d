package neural

import "math"

// Evaluator runs the two-hidden-layer forward pass over a flat weight vector.
// It owns scratch buffers sized to one configuration, so a single Evaluator
// must not be shared across goroutines; each worker allocates its own.
type Evaluator struct {
	cfg NetworkConfig
	h1  []float32
	h2  []float32
	out []float32
}

// Activation selects the hidden-layer non-linearity.
type Activation int

const (
	ActReLU Activation = iota
	ActTanh
)

// NewEvaluator creates an evaluator for the given configuration.
func NewEvaluator(cfg NetworkConfig) *Evaluator {
	return &Evaluator{
		cfg: cfg,
		h1:  make([]float32, cfg.Hidden1Size),
		h2:  make([]float32, cfg.Hidden2Size),
		out: make([]float32, cfg.OutputSize),
	}
}

// Forward computes the raw (linear) network output for the given input.
// weights must have length cfg.WeightCount() and input length cfg.InputSize;
// both are enforced by construction at the call sites. The returned slice is
// the evaluator's scratch buffer, valid until the next call.
func (e *Evaluator) Forward(weights, input []float32, act Activation) []float32 {
	cfg := e.cfg

	denseLayer(e.h1, weights[cfg.w1Off():], weights[cfg.b1Off():], input, cfg.InputSize)
	activate(e.h1, act)

	denseLayer(e.h2, weights[cfg.w2Off():], weights[cfg.b2Off():], e.h1, cfg.Hidden1Size)
	activate(e.h2, act)

	denseLayer(e.out, weights[cfg.w3Off():], weights[cfg.b3Off():], e.h2, cfg.Hidden2Size)
	return e.out
}

// denseLayer computes out[o] = bias[o] + sum_i w[o*inSize+i] * in[i].
func denseLayer(out, w, bias, in []float32, inSize int) {
	for o := range out {
		sum := bias[o]
		row := w[o*inSize:]
		for i := 0; i < inSize; i++ {
			sum += row[i] * in[i]
		}
		out[o] = sum
	}
}

func activate(v []float32, act Activation) {
	if act == ActReLU {
		for i, x := range v {
			if x < 0 {
				v[i] = 0
			}
		}
		return
	}
	for i, x := range v {
		v[i] = tanh32(x)
	}
}

// tanh32 matches the shader's tanh to within float32 rounding.
func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

// sigmoid32 is the logistic function used to bound color channels to [0,1].
func sigmoid32(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// HeightScale bounds the terrain height output: height = tanh(raw) * 4,
// guaranteeing [-4, 4] regardless of weight magnitude.
const HeightScale = 4.0

// BoundHeight applies the terrain output activation.
func BoundHeight(raw float32) float32 {
	return tanh32(raw) * HeightScale
}

// BoundColor applies the per-channel logistic activation to the color
// network's raw output, writing into rgb.
func BoundColor(rgb *[3]float32, raw []float32) {
	rgb[0] = sigmoid32(raw[0])
	rgb[1] = sigmoid32(raw[1])
	rgb[2] = sigmoid32(raw[2])
}
