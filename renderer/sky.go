package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/reverie/config"
)

// Sky draws the background gradient. The hues drift slowly on coherent
// noise so the horizon never sits still, echoing the drifting field below.
type Sky struct {
	noise      opensimplex.Noise
	driftSpeed float64
	width      int32
	height     int32
}

// NewSky creates the background layer.
func NewSky(width, height int32) *Sky {
	cfg := config.Cfg().Sky
	return &Sky{
		noise:      opensimplex.New(cfg.Seed),
		driftSpeed: cfg.DriftSpeed,
		width:      width,
		height:     height,
	}
}

// Draw paints the vertical gradient for the current time. Call before
// BeginMode3D.
func (s *Sky) Draw(now float64) {
	t := now * s.driftSpeed

	top := rl.Color{
		R: uint8(18 + 14*s.noise.Eval2(t, 0)),
		G: uint8(22 + 12*s.noise.Eval2(t, 13.7)),
		B: uint8(46 + 18*s.noise.Eval2(t, 29.1)),
		A: 255,
	}
	bottom := rl.Color{
		R: uint8(52 + 20*s.noise.Eval2(t, 47.3)),
		G: uint8(38 + 16*s.noise.Eval2(t, 61.9)),
		B: uint8(74 + 22*s.noise.Eval2(t, 83.4)),
		A: 255,
	}

	rl.DrawRectangleGradientV(0, 0, s.width, s.height, top, bottom)
}
