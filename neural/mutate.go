package neural

import (
	"math"
	"runtime"
	"sync"
)

// Influence is the per-frame player influence state. It is written once per
// frame by the input layer and treated as read-only by everything else.
type Influence struct {
	Position    [3]float32
	Radius      float32
	Strength    float32
	Interacting bool
}

// LocalAt returns the influence scalar at a world position: the interaction
// strength shaped by a smoothstep falloff inside the influence radius. The
// shaders compute the identical expression.
func (in Influence) LocalAt(x, z float32) float32 {
	if !in.Interacting || in.Radius <= 0 {
		return 0
	}
	dx := x - in.Position[0]
	dz := z - in.Position[2]
	d := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	t := 1 - d/in.Radius
	if t <= 0 {
		return 0
	}
	return in.Strength * t * t * (3 - 2*t)
}

// KernelParams are the tuning constants of the mutation/decay rule.
type KernelParams struct {
	DecayRate    float32 // fractional relaxation toward initial per second
	Clamp        float32 // symmetric weight bound applied after perturbation
	BaseStrength float32 // global perturbation multiplier
	HiddenGain   float32 // gain for the second hidden layer
	OutputGain   float32 // gain for the output layer
}

// layerPhase offsets decorrelate the perturbation pattern across layers so
// the three weight blocks do not drift in lockstep.
var layerPhase = [3]float32{0, 17.31, 51.79}

// Kernel applies the per-element mutation/decay update across a weight
// vector in parallel. Element i's new value depends only on element i, the
// frame-stable Influence, dt, and the fixed params, so chunks never need
// synchronization.
type Kernel struct {
	params KernelParams

	numWorkers int
	workChan   chan kernelChunk
	doneChan   chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

// parallelThreshold is the minimum element count to use the worker pool.
// Below this, single-threaded is faster than goroutine dispatch.
const parallelThreshold = 2048

type kernelChunk struct {
	cfg        NetworkConfig
	current    []float32
	initial    []float32
	start, end int
	infl       Influence
	dt         float32
	scale      float32
}

// NewKernel creates a mutation kernel with the given parameters.
func NewKernel(params KernelParams) *Kernel {
	return &Kernel{
		params:     params,
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// Params returns the kernel's tuning constants.
func (k *Kernel) Params() KernelParams { return k.params }

// Apply runs one kernel pass over the store's current vector. scale lets the
// caller weaken the perturbation for a network (the color net mutates more
// gently than terrain); decay always applies at full rate. Apply returns
// only after every element has been updated, which is the ordering barrier
// between "mutation complete" and "evaluation begins" each frame.
func (k *Kernel) Apply(s *Store, infl Influence, dt, scale float32) {
	n := len(s.current)
	if n < parallelThreshold || k.numWorkers < 2 {
		k.applyRange(s.cfg, s.current, s.initial, 0, n, infl, dt, scale)
		return
	}

	if !k.running {
		k.startWorkers()
	}

	chunkSize := (n + k.numWorkers - 1) / k.numWorkers
	dispatched := 0
	for w := 0; w < k.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		k.workChan <- kernelChunk{
			cfg: s.cfg, current: s.current, initial: s.initial,
			start: start, end: end, infl: infl, dt: dt, scale: scale,
		}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-k.doneChan
	}
}

// startWorkers launches the persistent worker goroutines.
func (k *Kernel) startWorkers() {
	k.workChan = make(chan kernelChunk, k.numWorkers)
	k.doneChan = make(chan struct{}, k.numWorkers)
	k.stopChan = make(chan struct{})
	k.running = true

	for i := 0; i < k.numWorkers; i++ {
		k.wg.Add(1)
		go k.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (k *Kernel) Stop() {
	if !k.running {
		return
	}
	close(k.stopChan)
	k.wg.Wait()
	close(k.workChan)
	close(k.doneChan)
	k.running = false
}

func (k *Kernel) worker() {
	defer k.wg.Done()
	for {
		select {
		case <-k.stopChan:
			return
		case c, ok := <-k.workChan:
			if !ok {
				return
			}
			k.applyRange(c.cfg, c.current, c.initial, c.start, c.end, c.infl, c.dt, c.scale)
			k.doneChan <- struct{}{}
		}
	}
}

// applyRange updates elements [start, end).
func (k *Kernel) applyRange(cfg NetworkConfig, current, initial []float32, start, end int, infl Influence, dt, scale float32) {
	p := k.params

	decay := p.DecayRate * dt
	if decay > 1 {
		decay = 1
	}

	for i := start; i < end; i++ {
		w := current[i]

		if infl.Interacting {
			layer := cfg.LayerOf(i)
			gain := p.BaseStrength * scale
			switch layer {
			case LayerHidden2:
				gain *= p.HiddenGain
			case LayerOutput:
				gain *= p.OutputGain
			}

			// Deterministic pseudo-random perturbation: a pure function of
			// the element index and the player's position, so replays and
			// tests reproduce exactly.
			h := hash11(float32(i)*0.731 +
				infl.Position[0]*1.372 +
				infl.Position[2]*2.113 +
				layerPhase[layer])
			w += (h*2 - 1) * gain * infl.Strength * dt

			if w > p.Clamp {
				w = p.Clamp
			} else if w < -p.Clamp {
				w = -p.Clamp
			}
		}

		// Exponential relaxation toward the initial configuration. This is
		// what keeps the system globally stable: absent interaction every
		// element converges back to initial.
		w += (initial[i] - w) * decay

		current[i] = w
	}
}

// hash11 maps a float to a deterministic pseudo-random value in [0, 1).
// Same construction as the common shader hash: fract(sin(x) * 43758.5453).
func hash11(x float32) float32 {
	v := math.Sin(float64(x)) * 43758.5453
	return float32(v - math.Floor(v))
}
