package game

import (
	"math"
	"os"
	"testing"

	"github.com/pthm-cable/reverie/config"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

func newHeadless(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(Options{Seed: 42, Headless: true})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessSoak(t *testing.T) {
	g := newHeadless(t)

	const frames = 600 // ten simulated seconds
	for i := 0; i < frames; i++ {
		g.UpdateHeadless()
	}

	if g.Frame() != frames {
		t.Errorf("frame counter = %d, want %d", g.Frame(), frames)
	}
	if math.Abs(g.SimTime()-10) > 0.01 {
		t.Errorf("sim time = %f, want ~10", g.SimTime())
	}

	// The scripted probe interacts on a duty cycle, so the terrain weights
	// must have drifted from initial while staying inside the clamp.
	if g.terrainStore.Departure() == 0 {
		t.Error("headless interaction left the terrain weights untouched")
	}
	clamp := float32(config.Cfg().Mutation.Clamp)
	for i, w := range g.terrainStore.Current() {
		if w > clamp || w < -clamp || math.IsNaN(float64(w)) {
			t.Fatalf("terrain weight[%d] = %f escaped clamp ±%g", i, w, clamp)
		}
	}
}

func TestHeadlessDeterministic(t *testing.T) {
	run := func() []float32 {
		g, err := NewGame(Options{Seed: 42, Headless: true})
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		defer g.Unload()
		for i := 0; i < 120; i++ {
			g.UpdateHeadless()
		}
		out := make([]float32, len(g.terrainStore.Current()))
		copy(out, g.terrainStore.Current())
		return out
	}

	a, b := run(), run()
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			t.Fatalf("seeded runs diverged at weight %d", i)
		}
	}
}

func TestResetRestoresInitialWeights(t *testing.T) {
	g := newHeadless(t)

	for i := 0; i < 120; i++ {
		g.UpdateHeadless()
	}
	if g.terrainStore.Departure() == 0 {
		t.Fatal("setup failed to perturb the weights")
	}

	g.Reset()
	if d := g.terrainStore.Departure(); d != 0 {
		t.Errorf("terrain departure after reset = %f, want 0", d)
	}
	if d := g.colorStore.Departure(); d != 0 {
		t.Errorf("color departure after reset = %f, want 0", d)
	}
}

func TestCaptureOutOfRangeIsNoop(t *testing.T) {
	g := newHeadless(t)
	g.Capture()
	if g.Score() != 0 {
		t.Errorf("score = %d after capture with no orbs, want 0", g.Score())
	}
}

func TestCameraStaysInWorld(t *testing.T) {
	g := newHeadless(t)
	ext := config.Cfg().Derived.WorldExtent

	for i := 0; i < 300; i++ {
		g.UpdateHeadless()
		if g.cam.X < -ext || g.cam.X > ext || g.cam.Z < -ext || g.cam.Z > ext {
			t.Fatalf("camera focus (%f, %f) escaped world extent %f", g.cam.X, g.cam.Z, ext)
		}
	}
}
