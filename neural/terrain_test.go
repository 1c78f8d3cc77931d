package neural

import (
	"math"
	"math/rand"
	"testing"
)

// The functions below re-derive the terrain forward pass the way the vertex
// shader writes it: hardcoded offsets, explicit loops, no shared helpers.
// Any drift between TerrainField and this transliteration would also be a
// drift between CPU and GPU.

const (
	glB1 = 512
	glW2 = 544
	glB2 = 1568
	glW3 = 1600
	glB3 = 1728
)

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

func shaderLocalInfluence(x, z float32, infl Influence) float32 {
	if !infl.Interacting {
		return 0
	}
	dx := x - infl.Position[0]
	dz := z - infl.Position[2]
	d := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	t := 1 - d/infl.Radius
	if t <= 0 {
		return 0
	}
	return infl.Strength * t * t * (3 - 2*t)
}

func shaderTerrainForward(w []float32, x, z, tm, phaseRate float32, infl Influence) [4]float32 {
	var in [16]float32
	idx := 0
	for _, c := range [2]float32{x, z} {
		in[idx] = c
		idx++
		freq := float64(1)
		for b := 0; b < 3; b++ {
			f := freq * float64(c)
			in[idx] = float32(math.Sin(f))
			idx++
			in[idx] = float32(math.Cos(f))
			idx++
			freq *= 2
		}
	}
	in[14] = sin32(tm * phaseRate)
	in[15] = shaderLocalInfluence(x, z, infl)

	var h1 [32]float32
	for o := 0; o < 32; o++ {
		s := w[glB1+o]
		for i := 0; i < 16; i++ {
			s += w[o*16+i] * in[i]
		}
		if s < 0 {
			s = 0
		}
		h1[o] = s
	}

	var h2 [32]float32
	for o := 0; o < 32; o++ {
		s := w[glB2+o]
		for i := 0; i < 32; i++ {
			s += w[glW2+o*32+i] * h1[i]
		}
		if s < 0 {
			s = 0
		}
		h2[o] = s
	}

	var out [4]float32
	for o := 0; o < 4; o++ {
		s := w[glB3+o]
		for i := 0; i < 32; i++ {
			s += w[glW3+o*32+i] * h2[i]
		}
		out[o] = s
	}
	return out
}

func shaderHeightAt(w []float32, x, z, tm, phaseRate float32, infl Influence) float32 {
	raw := shaderTerrainForward(w, x, z, tm, phaseRate, infl)[0]
	return float32(math.Tanh(float64(raw))) * 4
}

func newTestTerrainField(t *testing.T, seed int64) (*TerrainField, *Store) {
	t.Helper()
	s, err := NewStore(TerrainNet, 0.8, 0.01, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	f, err := NewTerrainField(s, 0.25, 0.1)
	if err != nil {
		t.Fatalf("NewTerrainField: %v", err)
	}
	return f, s
}

func TestTerrainFieldMatchesShaderTransliteration(t *testing.T) {
	const tol = 1e-4

	f, s := newTestTerrainField(t, 42)
	infl := Influence{
		Position:    [3]float32{2, 0, -3},
		Radius:      8,
		Strength:    2.5,
		Interacting: true,
	}
	f.SetInfluence(infl)

	for _, tm := range []float32{0, 1.3, 7.7} {
		for iz := -4; iz <= 4; iz += 2 {
			for ix := -4; ix <= 4; ix += 2 {
				x := float32(ix) * 1.7
				z := float32(iz) * 1.3

				want := shaderHeightAt(s.Current(), x, z, tm, 0.1, infl)
				got := f.HeightAt(x, z, tm)
				if math.Abs(float64(got-want)) > tol {
					t.Fatalf("height diverged at (%g, %g, t=%g): cpu %f, shader %f",
						x, z, tm, got, want)
				}
			}
		}
	}
}

func TestTerrainHeightBounded(t *testing.T) {
	f, s := newTestTerrainField(t, 1)

	// Saturate every weight at the clamp bound.
	cur := s.Current()
	for i := range cur {
		if i%2 == 0 {
			cur[i] = 6
		} else {
			cur[i] = -6
		}
	}

	rng := rand.New(rand.NewSource(2))
	for trial := 0; trial < 100; trial++ {
		x := rng.Float32()*64 - 32
		z := rng.Float32()*64 - 32
		h := f.HeightAt(x, z, rng.Float32()*10)
		if h < -4 || h > 4 || math.IsNaN(float64(h)) {
			t.Fatalf("height %f at (%g, %g) escaped [-4, 4]", h, x, z)
		}
	}
}

func TestTerrainFlatFieldScenario(t *testing.T) {
	// Zero weights with a 0.5 height bias give a flat plateau at
	// tanh(0.5) * 4 with a straight-up normal everywhere.
	s, err := NewStore(TerrainNet, 0, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	w := make([]float32, TerrainNet.WeightCount())
	w[TerrainNet.BiasIndex(LayerOutput, 0)] = 0.5
	if err := s.SetCurrent(w); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}

	f, err := NewTerrainField(s, 0.25, 0.1)
	if err != nil {
		t.Fatalf("NewTerrainField: %v", err)
	}

	want := float32(math.Tanh(0.5)) * 4
	for _, p := range [][2]float32{{0, 0}, {5, -3}, {-20, 14}} {
		h, n := f.Sample(p[0], p[1], 2.5)
		if math.Abs(float64(h-want)) > 1e-4 {
			t.Errorf("height at (%g, %g) = %f, want %f", p[0], p[1], h, want)
		}
		if n[0] != 0 || n[1] != 1 || n[2] != 0 {
			t.Errorf("normal at (%g, %g) = %v, want (0, 1, 0)", p[0], p[1], n)
		}
	}

	// Flat field has zero slope.
	dx, dz := f.Gradient(3, 3, 0)
	if dx != 0 || dz != 0 {
		t.Errorf("gradient on flat field = (%f, %f), want (0, 0)", dx, dz)
	}
}

func TestSampleNormalUnitLength(t *testing.T) {
	f, _ := newTestTerrainField(t, 5)
	rng := rand.New(rand.NewSource(6))

	for trial := 0; trial < 50; trial++ {
		x := rng.Float32()*32 - 16
		z := rng.Float32()*32 - 16
		_, n := f.Sample(x, z, 1.0)

		l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if math.Abs(l-1) > 1e-5 {
			t.Fatalf("normal at (%g, %g) has length %f", x, z, l)
		}
	}
}

func TestSmoothHeightAt(t *testing.T) {
	f, _ := newTestTerrainField(t, 8)

	const x, z, tm, r = 1.5, -2.25, 3.0, 0.5
	want := (2*f.HeightAt(x, z, tm) +
		f.HeightAt(x+r, z, tm) + f.HeightAt(x-r, z, tm) +
		f.HeightAt(x, z+r, tm) + f.HeightAt(x, z-r, tm)) / 6

	if got := f.SmoothHeightAt(x, z, tm, r); math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("SmoothHeightAt = %f, want %f", got, want)
	}
}

func TestGradientSign(t *testing.T) {
	// A pass-through net whose height tracks the raw x coordinate must have
	// a positive dh/dx near the origin where tanh is increasing.
	s, err := NewStore(TerrainNet, 0, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	w := make([]float32, TerrainNet.WeightCount())
	w[TerrainNet.WeightIndex(LayerHidden1, 0, 0)] = 1
	w[TerrainNet.BiasIndex(LayerHidden1, 0)] = 10 // keep ReLU active for x > -10
	w[TerrainNet.WeightIndex(LayerHidden2, 0, 0)] = 1
	w[TerrainNet.WeightIndex(LayerOutput, 0, 0)] = 0.1
	w[TerrainNet.BiasIndex(LayerOutput, 0)] = -1
	if err := s.SetCurrent(w); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}

	f, err := NewTerrainField(s, 0.25, 0)
	if err != nil {
		t.Fatalf("NewTerrainField: %v", err)
	}

	dx, dz := f.Gradient(0, 0, 0)
	if dx <= 0 {
		t.Errorf("dh/dx = %f, want > 0", dx)
	}
	if dz != 0 {
		t.Errorf("dh/dz = %f, want 0", dz)
	}
}

func TestNewTerrainFieldRejectsWrongConfig(t *testing.T) {
	s, err := NewStore(ColorNet, 0.8, 0.01, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := NewTerrainField(s, 0.25, 0.1); err == nil {
		t.Error("NewTerrainField accepted a color-configured store")
	}

	ts, err := NewStore(TerrainNet, 0.8, 0.01, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := NewTerrainField(ts, 0, 0.1); err == nil {
		t.Error("NewTerrainField accepted a non-positive epsilon")
	}
}

func TestHeightDeterministic(t *testing.T) {
	f, _ := newTestTerrainField(t, 99)
	a := f.HeightAt(3.7, -1.2, 5.5)
	b := f.HeightAt(3.7, -1.2, 5.5)
	if math.Float32bits(a) != math.Float32bits(b) {
		t.Errorf("repeated query returned %f then %f", a, b)
	}
}
