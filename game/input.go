package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reverie/config"
	"github.com/pthm-cable/reverie/neural"
)

// handleInput polls the keyboard and rebuilds the frame's influence state.
// The influence struct is written here once and read-only for the rest of
// the frame.
func (g *Game) handleInput(dt float32) {
	cfg := config.Cfg()

	if rl.IsKeyPressed(rl.KeyP) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.showPanel = !g.showPanel
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		g.Capture()
	}

	// Camera movement: WASD relative to the view, Q/E orbit.
	var forward, strafe float32
	if rl.IsKeyDown(rl.KeyW) {
		forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		strafe++
	}
	if rl.IsKeyDown(rl.KeyA) {
		strafe--
	}
	if forward != 0 || strafe != 0 {
		g.cam.Move(forward, strafe, float32(cfg.Camera.MoveSpeed), dt)
	}
	if rl.IsKeyDown(rl.KeyQ) {
		g.cam.Turn(-float32(cfg.Camera.TurnSpeed) * dt)
	}
	if rl.IsKeyDown(rl.KeyE) {
		g.cam.Turn(float32(cfg.Camera.TurnSpeed) * dt)
	}

	// Holding space channels influence into the field under the camera
	// focus. Releasing it lets the decay pull the world home.
	focus := g.cam.Focus()
	g.infl = neural.Influence{
		Position:    [3]float32{focus[0], 0, focus[2]},
		Radius:      float32(cfg.Influence.Radius),
		Strength:    g.strength,
		Interacting: rl.IsKeyDown(rl.KeySpace),
	}
}
