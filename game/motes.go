package game

import (
	"math"

	"github.com/pthm-cable/reverie/components"
	"github.com/pthm-cable/reverie/config"
)

// spawnMotes scatters the ambient motes across the terrain.
func (g *Game) spawnMotes() {
	cfg := config.Cfg()
	ext := cfg.Derived.WorldExtent

	for i := 0; i < cfg.Motes.Count; i++ {
		x := (g.rng.Float32()*2 - 1) * ext
		z := (g.rng.Float32()*2 - 1) * ext
		pos := components.Position{
			X: x,
			Y: g.field.HeightAt(x, z, 0) + float32(cfg.Motes.Hover),
			Z: z,
		}
		drift := components.Drift{Phase: g.rng.Float32() * 2 * math.Pi}
		g.moteMapper.NewEntity(&pos, &drift)
	}
}

// updateMotes drifts motes downhill along the live terrain gradient and bobs
// them above the surface. Motes read the mirror sampler after the frame's
// mutation step, never GPU memory.
func (g *Game) updateMotes(dt float32) {
	cfg := config.Cfg().Motes
	ext := config.Cfg().Derived.WorldExtent
	speed := float32(cfg.DriftSpeed)
	hover := float32(cfg.Hover)
	bob := float32(cfg.Bob)
	now := float32(g.simTime)

	query := g.moteFilter.Query()
	for query.Next() {
		pos, drift := query.Get()

		gx, gz := g.field.Gradient(pos.X, pos.Z, now)

		// Ease velocity toward downhill; keeps motes pooling in valleys as
		// the landscape deforms under them.
		drift.VX += (-gx*speed - drift.VX) * dt
		drift.VZ += (-gz*speed - drift.VZ) * dt

		pos.X += drift.VX * dt
		pos.Z += drift.VZ * dt

		// Reflect at the world edge.
		if pos.X > ext || pos.X < -ext {
			drift.VX = -drift.VX
			pos.X = clampf(pos.X, -ext, ext)
		}
		if pos.Z > ext || pos.Z < -ext {
			drift.VZ = -drift.VZ
			pos.Z = clampf(pos.Z, -ext, ext)
		}

		drift.Phase += dt
		h := g.field.HeightAt(pos.X, pos.Z, now)
		pos.Y = h + hover + bob*float32(math.Sin(float64(drift.Phase)))
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
