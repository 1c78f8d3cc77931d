package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Draw renders one frame. Weight upload happens here, strictly after the
// frame's mutation step ran in Update.
func (g *Game) Draw() {
	now := float32(g.simTime)

	rl.BeginDrawing()
	g.sky.Draw(g.simTime)

	eye := g.cam.Eye()
	focus := g.cam.Focus()
	cam3d := rl.Camera3D{
		Position:   rl.Vector3{X: eye[0], Y: eye[1], Z: eye[2]},
		Target:     rl.Vector3{X: focus[0], Y: focus[1], Z: focus[2]},
		Up:         rl.Vector3{Y: 1},
		Fovy:       55,
		Projection: rl.CameraPerspective,
	}

	orbs := g.detector.Snapshot(now)

	g.terrain.UploadWeights(g.terrainStore.Current(), g.colorStore.Current())
	g.terrain.UploadFrame(now, g.infl, eye)
	g.terrain.UploadOrbs(orbs)

	rl.BeginMode3D(cam3d)
	g.terrain.Draw()

	// Orbs: a pulsing core plus a translucent halo, faded in over the
	// first second of life.
	for _, o := range orbs {
		pulse := 0.3 + 0.08*float32(math.Sin(float64(now*3+o.Age)))
		core := rl.Vector3{X: o.Position[0], Y: o.Position[1], Z: o.Position[2]}
		col := rl.Color{
			R: uint8(o.Color[0] * 255),
			G: uint8(o.Color[1] * 255),
			B: uint8(o.Color[2] * 255),
			A: uint8(o.FadeIn * 255),
		}
		rl.DrawSphere(core, pulse, col)
		halo := col
		halo.A = uint8(o.FadeIn * 70)
		rl.DrawSphere(core, pulse*2.2, halo)
	}

	// Motes as faint points of light.
	query := g.moteFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		rl.DrawSphere(rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, 0.05,
			rl.Color{R: 220, G: 225, B: 255, A: 160})
	}

	// Influence ring under the focus while interacting.
	if g.infl.Interacting {
		center := rl.Vector3{X: g.infl.Position[0], Y: g.heightAt(g.infl.Position[0], g.infl.Position[2]) + 0.05, Z: g.infl.Position[2]}
		rl.DrawCircle3D(center, g.infl.Radius,
			rl.Vector3{X: 1}, 90, rl.Color{R: 255, G: 255, B: 255, A: 120})
	}

	rl.EndMode3D()

	g.drawHUD(len(orbs))
	rl.EndDrawing()
}

// nearestOrbDistance returns the ground distance to the closest capturable
// orb, or -1 when none is in capture range.
func (g *Game) nearestOrbDistance() float32 {
	orb, ok := g.detector.Capturable(g.cam.Focus())
	if !ok {
		return -1
	}
	focus := g.cam.Focus()
	dx := orb.Position[0] - focus[0]
	dz := orb.Position[2] - focus[2]
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}
