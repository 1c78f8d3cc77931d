// Package neural implements the micro-MLP field networks that generate the
// landscape: positional encoding, the two-hidden-layer evaluator, the weight
// store with its mutation/decay kernel, and the host-side terrain sampler.
//
// The same evaluation algorithm runs in three places: the vertex shader
// (terrain), the fragment shader (color), and here on the CPU for gameplay
// queries. The flat weight layout below is the contract all three share.
package neural

import (
	"fmt"
	"math"
)

// Positional encoding constants shared with the shaders.
// Each coordinate expands to [c, sin(c), cos(c), sin(2c), cos(2c), sin(4c), cos(4c)].
const (
	PosBands    = 3
	PosPerCoord = 1 + 2*PosBands
)

// Terrain network dimensions.
// Input: posEncode(x,z) = 14, time phase, local player influence = 16.
// Output: height plus a 3-component normal perturbation.
const (
	TerrainInputSize   = 2*PosPerCoord + 2
	TerrainHidden1Size = 32
	TerrainHidden2Size = 32
	TerrainOutputSize  = 4
)

// Color network dimensions.
// Input: posEncode(x,y,z) = 21, surface normal (3), view direction (3), time phase.
// Output: RGB.
const (
	ColorInputSize   = 3*PosPerCoord + 7
	ColorHidden1Size = 24
	ColorHidden2Size = 24
	ColorOutputSize  = 3
)

// Layer identifies a section of the flat weight vector.
type Layer int

const (
	LayerHidden1 Layer = iota
	LayerHidden2
	LayerOutput
)

// NetworkConfig is the compile-time-fixed shape of one field network.
// The flat weight vector is laid out as W1, B1, W2, B2, W3, B3 with each
// weight block row-major: W[out, in] at offset + out*inSize + in.
type NetworkConfig struct {
	InputSize   int
	Hidden1Size int
	Hidden2Size int
	OutputSize  int
}

// TerrainNet is the terrain network configuration (1732 weights).
var TerrainNet = NetworkConfig{TerrainInputSize, TerrainHidden1Size, TerrainHidden2Size, TerrainOutputSize}

// ColorNet is the color network configuration (1371 weights).
var ColorNet = NetworkConfig{ColorInputSize, ColorHidden1Size, ColorHidden2Size, ColorOutputSize}

// Validate checks that all dimensions are positive.
func (c NetworkConfig) Validate() error {
	if c.InputSize < 1 || c.Hidden1Size < 1 || c.Hidden2Size < 1 || c.OutputSize < 1 {
		return fmt.Errorf("neural: invalid network config %+v: all dimensions must be positive", c)
	}
	return nil
}

// WeightCount returns the total flat parameter count.
func (c NetworkConfig) WeightCount() int {
	return c.Hidden1Size*(c.InputSize+1) +
		c.Hidden2Size*(c.Hidden1Size+1) +
		c.OutputSize*(c.Hidden2Size+1)
}

// Section offsets into the flat weight vector.

func (c NetworkConfig) w1Off() int { return 0 }
func (c NetworkConfig) b1Off() int { return c.Hidden1Size * c.InputSize }
func (c NetworkConfig) w2Off() int { return c.b1Off() + c.Hidden1Size }
func (c NetworkConfig) b2Off() int { return c.w2Off() + c.Hidden2Size*c.Hidden1Size }
func (c NetworkConfig) w3Off() int { return c.b2Off() + c.Hidden2Size }
func (c NetworkConfig) b3Off() int { return c.w3Off() + c.OutputSize*c.Hidden2Size }

// WeightIndex maps (layer, row, col) to the flat index of a weight.
// Row is the output neuron, col the input neuron.
func (c NetworkConfig) WeightIndex(layer Layer, row, col int) int {
	switch layer {
	case LayerHidden1:
		return c.w1Off() + row*c.InputSize + col
	case LayerHidden2:
		return c.w2Off() + row*c.Hidden1Size + col
	default:
		return c.w3Off() + row*c.Hidden2Size + col
	}
}

// BiasIndex maps (layer, row) to the flat index of a bias.
func (c NetworkConfig) BiasIndex(layer Layer, row int) int {
	switch layer {
	case LayerHidden1:
		return c.b1Off() + row
	case LayerHidden2:
		return c.b2Off() + row
	default:
		return c.b3Off() + row
	}
}

// LayerOf returns which layer a flat index belongs to. Used by the mutation
// kernel to pick per-layer perturbation gains.
func (c NetworkConfig) LayerOf(idx int) Layer {
	switch {
	case idx < c.w2Off():
		return LayerHidden1
	case idx < c.w3Off():
		return LayerHidden2
	default:
		return LayerOutput
	}
}

// FanIn returns the input count of a layer, used for He-scaled initialization.
func (c NetworkConfig) FanIn(layer Layer) int {
	switch layer {
	case LayerHidden1:
		return c.InputSize
	case LayerHidden2:
		return c.Hidden1Size
	default:
		return c.Hidden2Size
	}
}

// HeScale returns sqrt(2/fanIn) for the given layer.
func (c NetworkConfig) HeScale(layer Layer) float32 {
	return float32(math.Sqrt(2.0 / float64(c.FanIn(layer))))
}
