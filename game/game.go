// Package game wires the neural field engine together: the weight stores,
// the mutation kernel, the CPU mirror sampler, the resonance detector, the
// camera, and the renderer.
//
// Frame contract: the mutation kernel writes both weight vectors exactly
// once at the top of the frame; everything afterwards (shader upload, camera
// follow, detector, motes) only reads them. That ordering is the entire
// synchronization story.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reverie/camera"
	"github.com/pthm-cable/reverie/components"
	"github.com/pthm-cable/reverie/config"
	"github.com/pthm-cable/reverie/neural"
	"github.com/pthm-cable/reverie/renderer"
	"github.com/pthm-cable/reverie/resonance"
	"github.com/pthm-cable/reverie/telemetry"
)

// maxFrameDT clamps delta-time after pauses and window drags so a single
// frame can never apply minutes of decay or perturbation.
const maxFrameDT = 0.1

// Options configures a game instance.
type Options struct {
	Seed      int64 // weight init seed (0 = config default)
	Headless  bool
	LogStats  bool
	OutputDir string
}

// Game holds the complete engine state.
type Game struct {
	opts Options
	rng  *rand.Rand

	// Weight state and kernels
	terrainStore *neural.Store
	colorStore   *neural.Store
	kernel       *neural.Kernel
	colorScale   float32

	// Host-side mirror and detector
	field    *neural.TerrainField
	detector *resonance.Detector

	// Camera and player influence
	cam  *camera.Camera
	infl neural.Influence

	// Mote layer
	world      *ecs.World
	moteMapper *ecs.Map2[components.Position, components.Drift]
	moteFilter *ecs.Filter2[components.Position, components.Drift]

	// Rendering (nil in headless mode)
	terrain *renderer.Terrain
	sky     *renderer.Sky

	// Telemetry
	collector   *telemetry.Collector
	output      *telemetry.OutputManager
	windowScore int

	// State
	simTime   float64
	frame     int64
	paused    bool
	score     int
	lastScore int
	scoreAge  float32
	showPanel bool

	// HUD-adjustable copy of the interaction strength.
	strength float32
}

// NewGame creates a game instance. In headless mode no raylib resources are
// touched, so it can run without a window.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Field.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	terrainStore, err := neural.NewStore(neural.TerrainNet,
		float32(cfg.Field.InitScale), float32(cfg.Field.BiasInit), rng)
	if err != nil {
		return nil, fmt.Errorf("creating terrain store: %w", err)
	}
	colorStore, err := neural.NewStore(neural.ColorNet,
		float32(cfg.Field.InitScale), float32(cfg.Field.BiasInit), rng)
	if err != nil {
		return nil, fmt.Errorf("creating color store: %w", err)
	}

	field, err := neural.NewTerrainField(terrainStore,
		cfg.Derived.NormalEps, float32(cfg.Field.TimePhaseHz))
	if err != nil {
		return nil, fmt.Errorf("creating terrain sampler: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()

	g := &Game{
		opts:         opts,
		rng:          rng,
		terrainStore: terrainStore,
		colorStore:   colorStore,
		colorScale:   float32(cfg.Mutation.ColorStrength),
		kernel: neural.NewKernel(neural.KernelParams{
			DecayRate:    float32(cfg.Mutation.DecayRate),
			Clamp:        float32(cfg.Mutation.Clamp),
			BaseStrength: float32(cfg.Mutation.BaseStrength),
			HiddenGain:   float32(cfg.Mutation.HiddenGain),
			OutputGain:   float32(cfg.Mutation.OutputGain),
		}),
		field: field,
		detector: resonance.New(resonance.Params{
			MaxOrbs:          cfg.Resonance.MaxOrbs,
			OrbLifetime:      float32(cfg.Resonance.OrbLifetime),
			Cadence:          float32(cfg.Resonance.Cadence),
			SampleStride:     cfg.Resonance.SampleStride,
			HistorySize:      cfg.Resonance.HistorySize,
			StabilityWindow:  cfg.Resonance.StabilityWindow,
			StabilityEpsilon: float32(cfg.Resonance.StabilityEpsilon),
			MinVariance:      float32(cfg.Resonance.MinVariance),
			MinSpread:        float32(cfg.Resonance.MinSpread),
			MinOrbSpacing:    float32(cfg.Resonance.MinOrbSpacing),
			CaptureRadius:    float32(cfg.Resonance.CaptureRadius),
			MaxIntensity:     float32(cfg.Resonance.MaxIntensity),
			WorldExtent:      cfg.Derived.WorldExtent,
		}),
		cam: camera.New(
			float32(cfg.Camera.Distance),
			float32(cfg.Camera.Height),
			float32(cfg.Camera.FollowSmooth),
			float32(cfg.Camera.SampleRadius),
			cfg.Derived.WorldExtent,
		),
		world:      world,
		moteMapper: ecs.NewMap2[components.Position, components.Drift](world),
		moteFilter: ecs.NewFilter2[components.Position, components.Drift](world),
		collector:  telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		output:     output,
		strength:   float32(cfg.Influence.Strength),
	}

	if !opts.Headless {
		g.terrain = renderer.NewTerrain()
		g.sky = renderer.NewSky(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
	}

	g.spawnMotes()
	g.cam.SnapToTerrain(g.smoothHeight)

	if err := output.WriteConfigSnapshot(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	slog.Info("world initialized",
		"seed", seed,
		"terrain_weights", terrainStore.Config().WeightCount(),
		"color_weights", colorStore.Config().WeightCount(),
	)

	return g, nil
}

// smoothHeight adapts the mirror's smoothed query to the camera's HeightFunc.
func (g *Game) smoothHeight(x, z float32) float32 {
	return g.field.SmoothHeightAt(x, z, float32(g.simTime), g.cam.SampleRadius)
}

// heightAt adapts the mirror's point query for the detector and motes.
func (g *Game) heightAt(x, z float32) float32 {
	return g.field.HeightAt(x, z, float32(g.simTime))
}

// Update advances one graphical frame: input, simulation step, telemetry.
func (g *Game) Update() {
	dt := rl.GetFrameTime()
	if dt > maxFrameDT {
		dt = maxFrameDT
	}

	g.handleInput(dt)

	if g.paused {
		return
	}
	g.step(dt)
}

// UpdateHeadless advances one fixed step with a scripted influence: the
// probe orbits the world center, interacting on a slow duty cycle. Used for
// soak runs and telemetry collection without a window.
func (g *Game) UpdateHeadless() {
	const dt = float32(1.0 / 60.0)

	t := g.simTime
	angle := t * 0.3
	radius := float64(config.Cfg().Derived.WorldExtent) * 0.4
	g.infl = neural.Influence{
		Position: [3]float32{
			float32(math.Cos(angle) * radius),
			0,
			float32(math.Sin(angle) * radius),
		},
		Radius:      float32(config.Cfg().Influence.Radius),
		Strength:    g.strength,
		Interacting: math.Sin(t*0.5) > 0,
	}

	g.step(dt)
}

// step runs one simulation frame under the frame contract.
func (g *Game) step(dt float32) {
	frameStart := time.Now()

	g.simTime += float64(dt)
	now := float32(g.simTime)

	// 1. Mutation: the frame's only write to the weight vectors. Apply
	// returns after every element is updated, so everything below sees the
	// finished state.
	g.kernel.Apply(g.terrainStore, g.infl, dt, 1)
	g.kernel.Apply(g.colorStore, g.infl, dt, g.colorScale)

	// 2. Readers.
	g.field.SetInfluence(g.infl)
	g.cam.Update(dt, g.smoothHeight)
	g.detector.Update(g.terrainStore.Current(), g.cam.Focus(), g.heightAt, now)
	g.updateMotes(dt)

	if g.scoreAge > 0 {
		g.scoreAge -= dt
	}

	g.frame++
	frameMs := float64(time.Since(frameStart)) / float64(time.Millisecond)
	if g.collector.Frame(g.simTime, g.infl.Interacting, frameMs) {
		g.flushStats()
	}
}

// flushStats finalizes the telemetry window and emits it.
func (g *Game) flushStats() {
	stats := g.collector.Flush(g.simTime, g.frame)

	ws := g.detector.Stats(g.terrainStore.Current())
	stats.TerrainDeparture = float64(g.terrainStore.Departure())
	stats.ColorDeparture = float64(g.colorStore.Departure())
	stats.WeightMean = ws.Mean
	stats.WeightVariance = ws.Variance
	stats.ActiveOrbs = g.detector.ActiveCount()
	stats.OrbsSpawned = g.detector.Spawned
	stats.OrbsExpired = g.detector.Expired
	stats.Captures = g.detector.Captures
	stats.Score = g.windowScore
	g.windowScore = 0

	if g.opts.LogStats {
		stats.LogStats()
	}
	if err := g.output.WriteStats(stats); err != nil {
		slog.Warn("failed to write stats", "error", err)
	}
}

// Reset restores both networks to their initial weights and snaps the
// camera back onto the settled terrain.
func (g *Game) Reset() {
	g.terrainStore.Reset()
	g.colorStore.Reset()
	g.cam.SnapToTerrain(g.smoothHeight)
	slog.Info("world reset", "frame", g.frame)
}

// Capture attempts to capture the nearest resonance orb.
func (g *Game) Capture() {
	score, ok := g.detector.CaptureNearest(g.cam.Focus(), g.terrainStore.Current())
	if !ok {
		return
	}
	g.score += score
	g.windowScore += score
	g.lastScore = score
	g.scoreAge = 2
	slog.Info("orb captured", "score", score, "total", g.score)
}

// Score returns the accumulated capture score.
func (g *Game) Score() int { return g.score }

// Frame returns the current frame counter.
func (g *Game) Frame() int64 { return g.frame }

// SimTime returns the accumulated simulation time in seconds.
func (g *Game) SimTime() float64 { return g.simTime }

// Unload stops the kernel workers and releases rendering resources.
func (g *Game) Unload() {
	g.kernel.Stop()
	if g.terrain != nil {
		g.terrain.Unload()
	}
	if err := g.output.Close(); err != nil {
		slog.Warn("failed to close output", "error", err)
	}
}
