package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reverie/config"
)

// drawHUD renders the text overlay and, when toggled, the tuning panel.
func (g *Game) drawHUD(orbCount int) {
	rl.DrawText(fmt.Sprintf("Score: %d", g.score), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Orbs: %d", orbCount), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("FPS: %d", rl.GetFPS()), 10, 60, 20, rl.Gray)

	if d := g.nearestOrbDistance(); d >= 0 {
		rl.DrawText("[F] capture", 10, 85, 20, rl.Yellow)
	}
	if g.scoreAge > 0 {
		rl.DrawText(fmt.Sprintf("+%d", g.lastScore),
			int32(config.Cfg().Screen.Width/2-30), 120, 40, rl.Gold)
	}
	if g.paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}
	if g.infl.Interacting {
		rl.DrawText("channeling...", 10, 135, 20, rl.SkyBlue)
	}

	rl.DrawText("WASD move  Q/E orbit  SPACE channel  R reset  TAB panel",
		10, int32(config.Cfg().Screen.Height)-30, 16, rl.Gray)

	if g.showPanel {
		g.drawPanel()
	}
}

// drawPanel shows the interaction tuning controls.
func (g *Game) drawPanel() {
	w := float32(config.Cfg().Screen.Width)
	x := w - 260

	gui.Panel(rl.Rectangle{X: x, Y: 10, Width: 250, Height: 110}, "Field")

	gui.Label(rl.Rectangle{X: x + 10, Y: 40, Width: 110, Height: 20}, "strength")
	g.strength = gui.SliderBar(rl.Rectangle{X: x + 90, Y: 40, Width: 120, Height: 20},
		"0", fmt.Sprintf("%.1f", g.strength), g.strength, 0, 8)

	stats := g.detector.Stats(g.terrainStore.Current())
	gui.Label(rl.Rectangle{X: x + 10, Y: 70, Width: 230, Height: 20},
		fmt.Sprintf("variance %.4f", stats.Variance))
	gui.Label(rl.Rectangle{X: x + 10, Y: 90, Width: 230, Height: 20},
		fmt.Sprintf("departure %.4f", g.terrainStore.Departure()))
}
