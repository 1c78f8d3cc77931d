// Package telemetry aggregates per-window engine statistics and writes them
// to structured logs and CSV.
package telemetry

import "log/slog"

// WindowStats holds aggregated statistics for one time window.
type WindowStats struct {
	WindowEndFrame int64   `csv:"window_end"`
	SimTimeSec     float64 `csv:"sim_time"`

	// Weight field state at window end
	TerrainDeparture float64 `csv:"terrain_departure"` // mean |current - initial|
	ColorDeparture   float64 `csv:"color_departure"`
	WeightMean       float64 `csv:"weight_mean"`
	WeightVariance   float64 `csv:"weight_variance"`

	// Interaction during the window
	InteractFrames int     `csv:"interact_frames"`
	InteractRatio  float64 `csv:"interact_ratio"`

	// Resonance activity
	ActiveOrbs  int `csv:"active_orbs"`
	OrbsSpawned int `csv:"orbs_spawned"`
	OrbsExpired int `csv:"orbs_expired"`
	Captures    int `csv:"captures"`
	Score       int `csv:"score"`

	// Frame timing
	AvgFrameMs float64 `csv:"avg_frame_ms"`
	MaxFrameMs float64 `csv:"max_frame_ms"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("terrain_departure", s.TerrainDeparture),
		slog.Float64("color_departure", s.ColorDeparture),
		slog.Float64("weight_mean", s.WeightMean),
		slog.Float64("weight_variance", s.WeightVariance),
		slog.Int("interact_frames", s.InteractFrames),
		slog.Float64("interact_ratio", s.InteractRatio),
		slog.Int("active_orbs", s.ActiveOrbs),
		slog.Int("orbs_spawned", s.OrbsSpawned),
		slog.Int("orbs_expired", s.OrbsExpired),
		slog.Int("captures", s.Captures),
		slog.Int("score", s.Score),
		slog.Float64("avg_frame_ms", s.AvgFrameMs),
		slog.Float64("max_frame_ms", s.MaxFrameMs),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

// Collector accumulates frame samples into window records.
type Collector struct {
	windowSec float64

	windowStart    float64
	frames         int64
	interactFrames int
	spawnedAtStart int
	expiredAtStart int
	frameMsSum     float64
	frameMsMax     float64
}

// NewCollector creates a collector with the given window length in seconds.
func NewCollector(windowSec float64) *Collector {
	return &Collector{windowSec: windowSec}
}

// Frame records one frame sample. Returns true when the window has elapsed
// and the caller should Flush.
func (c *Collector) Frame(now float64, interacting bool, frameMs float64) bool {
	c.frames++
	if interacting {
		c.interactFrames++
	}
	c.frameMsSum += frameMs
	if frameMs > c.frameMsMax {
		c.frameMsMax = frameMs
	}
	return now-c.windowStart >= c.windowSec
}

// Flush finalizes the current window into stats and starts the next one.
// The caller fills in the field-state and resonance columns before logging.
func (c *Collector) Flush(now float64, frame int64) WindowStats {
	s := WindowStats{
		WindowEndFrame: frame,
		SimTimeSec:     now,
		InteractFrames: c.interactFrames,
	}
	if c.frames > 0 {
		s.InteractRatio = float64(c.interactFrames) / float64(c.frames)
		s.AvgFrameMs = c.frameMsSum / float64(c.frames)
	}
	s.MaxFrameMs = c.frameMsMax

	c.windowStart = now
	c.frames = 0
	c.interactFrames = 0
	c.frameMsSum = 0
	c.frameMsMax = 0
	return s
}
