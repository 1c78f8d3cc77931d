package neural

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// The forward pass runs per gameplay query on the hot path. These benchmarks
// compare the hand-rolled layer loop against BLAS to keep the scalar
// implementation honest; at these sizes the scalar loop has been winning
// because Gemv's dispatch overhead dominates 32x16 matrices.

func benchLayer(n, m int) (w, bias, in, out []float32) {
	rng := rand.New(rand.NewSource(1))
	w = make([]float32, n*m)
	bias = make([]float32, n)
	in = make([]float32, m)
	out = make([]float32, n)
	for i := range w {
		w[i] = rng.Float32()*2 - 1
	}
	for i := range bias {
		bias[i] = rng.Float32()*2 - 1
	}
	for i := range in {
		in[i] = rng.Float32()*2 - 1
	}
	return w, bias, in, out
}

func BenchmarkDenseLayerScalar(b *testing.B) {
	w, bias, in, out := benchLayer(TerrainHidden1Size, TerrainInputSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		denseLayer(out, w, bias, in, TerrainInputSize)
	}
}

func BenchmarkDenseLayerBLAS(b *testing.B) {
	w, bias, in, out := benchLayer(TerrainHidden1Size, TerrainInputSize)

	a := blas32.General{
		Rows:   TerrainHidden1Size,
		Cols:   TerrainInputSize,
		Stride: TerrainInputSize,
		Data:   w,
	}
	x := blas32.Vector{N: TerrainInputSize, Inc: 1, Data: in}
	y := blas32.Vector{N: TerrainHidden1Size, Inc: 1, Data: out}
	bv := blas32.Vector{N: TerrainHidden1Size, Inc: 1, Data: bias}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		blas32.Copy(bv, y)
		blas32.Gemv(blas.NoTrans, 1, a, x, 1, y)
	}
}

func BenchmarkTerrainForward(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewStore(TerrainNet, 0.8, 0.01, rng)
	if err != nil {
		b.Fatalf("NewStore: %v", err)
	}
	e := NewEvaluator(TerrainNet)
	in := make([]float32, TerrainNet.InputSize)
	for i := range in {
		in[i] = rng.Float32()*2 - 1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Forward(s.Current(), in, ActReLU)
	}
}

func BenchmarkKernelApply(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewStore(TerrainNet, 0.8, 0.01, rng)
	if err != nil {
		b.Fatalf("NewStore: %v", err)
	}
	k := NewKernel(KernelParams{
		DecayRate:    0.15,
		Clamp:        6,
		BaseStrength: 1,
		HiddenGain:   1.2,
		OutputGain:   2,
	})
	defer k.Stop()

	infl := Influence{
		Position:    [3]float32{1, 0, 2},
		Radius:      8,
		Strength:    2.5,
		Interacting: true,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Apply(s, infl, 1.0/60.0, 1)
	}
}
