package neural

import (
	"fmt"
	"math"
)

// TerrainField evaluates the terrain network on the host. It is the CPU
// mirror of the vertex shader: camera following, collision, and slope
// queries read heights from here instead of stalling on a GPU readback, so
// any divergence from the shader is a correctness bug, not an approximation.
//
// A TerrainField is not safe for concurrent use; each goroutine that needs
// one allocates its own over the shared store.
type TerrainField struct {
	store     *Store
	eval      *Evaluator
	eps       float32 // finite-difference epsilon: half the grid spacing
	phaseRate float32
	infl      Influence
	in        []float32
}

// NewTerrainField creates a host-side sampler over the given store.
func NewTerrainField(store *Store, eps, phaseRate float32) (*TerrainField, error) {
	if store.Config() != TerrainNet {
		return nil, fmt.Errorf("neural: terrain field requires the terrain configuration, got %+v", store.Config())
	}
	if eps <= 0 {
		return nil, fmt.Errorf("neural: finite-difference epsilon must be positive, got %g", eps)
	}
	return &TerrainField{
		store:     store,
		eval:      NewEvaluator(TerrainNet),
		eps:       eps,
		phaseRate: phaseRate,
		in:        make([]float32, 0, TerrainInputSize),
	}, nil
}

// SetInfluence installs the frame's player influence state. The shader
// receives the same values through its uniform block, keeping the local
// influence input identical on both substrates.
func (f *TerrainField) SetInfluence(in Influence) { f.infl = in }

// Influence returns the currently installed influence state.
func (f *TerrainField) Influence() Influence { return f.infl }

// forward runs the terrain network for one (x, z, t) query and returns the
// raw output vector (height channel unbounded, perturbation channels raw).
func (f *TerrainField) forward(x, z, t float32) []float32 {
	phase := float32(math.Sin(float64(t * f.phaseRate)))

	in := f.in[:0]
	in = EncodeInto(in, x, PosBands)
	in = EncodeInto(in, z, PosBands)
	in = append(in, phase, f.infl.LocalAt(x, z))
	f.in = in

	return f.eval.Forward(f.store.Current(), in, ActReLU)
}

// HeightAt returns the terrain height at (x, z), bounded to [-4, 4].
func (f *TerrainField) HeightAt(x, z, t float32) float32 {
	return BoundHeight(f.forward(x, z, t)[0])
}

// SmoothHeightAt returns a 5-tap box-filtered height: the center sample
// counted twice plus four axis offsets at ±radius. Used for camera
// following so the focus height does not jitter across sharp features.
func (f *TerrainField) SmoothHeightAt(x, z, t, radius float32) float32 {
	sum := 2 * f.HeightAt(x, z, t)
	sum += f.HeightAt(x+radius, z, t)
	sum += f.HeightAt(x-radius, z, t)
	sum += f.HeightAt(x, z+radius, t)
	sum += f.HeightAt(x, z-radius, t)
	return sum / 6
}

// normalPerturbScale controls how strongly the network's perturbation
// channels bend the finite-difference normal.
const normalPerturbScale = 0.3

// Sample returns the height and surface normal at (x, z). The normal comes
// from central finite differences at ±eps along each horizontal axis, then
// the network's own perturbation channels bend it before renormalization.
func (f *TerrainField) Sample(x, z, t float32) (height float32, normal [3]float32) {
	out := f.forward(x, z, t)
	height = BoundHeight(out[0])

	px := tanh32(out[1]) * normalPerturbScale
	py := tanh32(out[2]) * normalPerturbScale
	pz := tanh32(out[3]) * normalPerturbScale

	hL := f.HeightAt(x-f.eps, z, t)
	hR := f.HeightAt(x+f.eps, z, t)
	hD := f.HeightAt(x, z-f.eps, t)
	hU := f.HeightAt(x, z+f.eps, t)

	nx := hL - hR
	ny := 2 * f.eps
	nz := hD - hU

	nx += px
	ny += py
	nz += pz

	inv := 1 / float32(math.Sqrt(float64(nx*nx+ny*ny+nz*nz)))
	normal = [3]float32{nx * inv, ny * inv, nz * inv}
	return height, normal
}

// Gradient returns the finite-difference slope (dh/dx, dh/dz) at (x, z).
// The mote layer drifts downhill along the negated gradient.
func (f *TerrainField) Gradient(x, z, t float32) (dx, dz float32) {
	hL := f.HeightAt(x-f.eps, z, t)
	hR := f.HeightAt(x+f.eps, z, t)
	hD := f.HeightAt(x, z-f.eps, t)
	hU := f.HeightAt(x, z+f.eps, t)
	return (hR - hL) / (2 * f.eps), (hU - hD) / (2 * f.eps)
}
