// Package resonance watches the live terrain weight state for transient
// "interesting" configurations and marks them with capturable orbs. The
// detector is purely deterministic: orb placement, color, and score are all
// functions of the weight state, never of a random source.
package resonance

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Orb is a transient point of interest spawned from a stable-yet-nontrivial
// weight configuration.
type Orb struct {
	Position  [3]float32
	Color     [3]float32
	Intensity float32
	SpawnTime float32
	WorldHash uint64
	Captured  bool
}

// OrbView is the read-only snapshot consumers render from.
type OrbView struct {
	Position  [3]float32
	Color     [3]float32
	Intensity float32
	Age       float32
	FadeIn    float32 // age-normalized [0,1] ramp over the first second
	Captured  bool
}

// Params holds the detector's tuning constants.
type Params struct {
	MaxOrbs          int
	OrbLifetime      float32
	Cadence          float32
	SampleStride     int
	HistorySize      int
	StabilityWindow  int     // steps back for the stability compare
	StabilityEpsilon float32 // max relative variance change for "stable"
	MinVariance      float32 // variance floor for "interesting"
	MinSpread        float32 // peak-to-peak floor for "interesting"
	MinOrbSpacing    float32
	CaptureRadius    float32
	MaxIntensity     float32
	WorldExtent      float32 // placement clamp bound (half-width of the world)
}

// Fixed weight indices the placement rule reads. Arbitrary but stable:
// changing them changes where orbs land, not whether placement works.
const (
	angleIndex  = 17
	radiusIndex = 101
)

// HeightFunc resolves the terrain height at a world position so orbs can sit
// on the surface. Supplied by the CPU mirror sampler.
type HeightFunc func(x, z float32) float32

// WeightStats summarizes one strided pass over the weight vector.
type WeightStats struct {
	Mean       float64
	Variance   float64
	Spread     float64 // peak-to-peak over the sampled elements
	Smoothness float64 // inverse of the mean absolute adjacent difference
}

// Detector owns the active orb set and the rolling variance history.
type Detector struct {
	params Params

	orbs       []Orb
	history    []float64 // rolling variance, most recent last
	lastDetect float32
	sampled    bool      // guards the first-call cadence check
	samples    []float64 // scratch for strided sampling

	// Lifetime counters surfaced to telemetry.
	Spawned  int
	Expired  int
	Captures int
}

// New creates a detector with the given parameters.
func New(p Params) *Detector {
	return &Detector{
		params:  p,
		orbs:    make([]Orb, 0, p.MaxOrbs),
		history: make([]float64, 0, p.HistorySize),
	}
}

// Params returns the detector's tuning constants.
func (d *Detector) Params() Params { return d.params }

// Update runs one detector pass. Orb expiry happens every call; sampling,
// history tracking, and spawning only once per cadence interval. weights is
// a snapshot read of the terrain store taken after the frame's mutation
// step.
func (d *Detector) Update(weights []float32, playerPos [3]float32, heightAt HeightFunc, now float32) {
	d.expire(now)

	if d.sampled && now-d.lastDetect < d.params.Cadence {
		return
	}
	d.lastDetect = now
	d.sampled = true

	stats := d.sampleStats(weights)

	// Rolling variance history, fixed length.
	d.history = append(d.history, stats.Variance)
	if len(d.history) > d.params.HistorySize {
		d.history = d.history[1:]
	}

	if !d.stable() || !d.interesting(stats) {
		return
	}
	if len(d.orbs) >= d.params.MaxOrbs {
		return
	}

	pos, ok := d.place(weights, stats, playerPos, heightAt)
	if !ok {
		return
	}

	d.orbs = append(d.orbs, Orb{
		Position:  pos,
		Color:     orbColor(stats),
		Intensity: d.intensity(stats),
		SpawnTime: now,
		WorldHash: weightHash(weights, d.params.SampleStride),
	})
	d.Spawned++
}

// Stats computes the strided summary statistics for a weight snapshot
// without touching the detector's history. Telemetry reads the field state
// through this.
func (d *Detector) Stats(weights []float32) WeightStats {
	return d.sampleStats(weights)
}

// expire drops orbs older than the configured lifetime.
func (d *Detector) expire(now float32) {
	kept := d.orbs[:0]
	for _, o := range d.orbs {
		if now-o.SpawnTime <= d.params.OrbLifetime {
			kept = append(kept, o)
		} else {
			d.Expired++
		}
	}
	d.orbs = kept
}

// sampleStats computes summary statistics over a strided sample of the
// weight vector. The stride keeps the cost independent of vector size.
func (d *Detector) sampleStats(weights []float32) WeightStats {
	d.samples = d.samples[:0]
	for i := 0; i < len(weights); i += d.params.SampleStride {
		d.samples = append(d.samples, float64(weights[i]))
	}

	mean, variance := stat.MeanVariance(d.samples, nil)

	lo, hi := d.samples[0], d.samples[0]
	var diffSum float64
	for i, v := range d.samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		if i > 0 {
			diffSum += math.Abs(v - d.samples[i-1])
		}
	}
	avgDiff := diffSum / float64(len(d.samples)-1)

	return WeightStats{
		Mean:       mean,
		Variance:   variance,
		Spread:     hi - lo,
		Smoothness: 1 / (1 + avgDiff),
	}
}

// stable reports whether the variance has settled: the most recent value is
// within StabilityEpsilon (relative) of the one StabilityWindow steps back.
func (d *Detector) stable() bool {
	n := len(d.history)
	if n <= d.params.StabilityWindow {
		return false
	}
	recent := d.history[n-1]
	past := d.history[n-1-d.params.StabilityWindow]
	denom := math.Max(math.Abs(past), 1e-9)
	return math.Abs(recent-past)/denom < float64(d.params.StabilityEpsilon)
}

// interesting rejects near-uniform weight states: stability alone is not
// enough, the field must also carry structure.
func (d *Detector) interesting(s WeightStats) bool {
	return s.Variance > float64(d.params.MinVariance) && s.Spread > float64(d.params.MinSpread)
}

// place derives an orb position deterministically from the weight state:
// angle and radius come from two fixed weight indices and the variance,
// offset from the player, clamped into world bounds. Placement is rejected
// if it lands too close to a live orb.
func (d *Detector) place(weights []float32, s WeightStats, playerPos [3]float32, heightAt HeightFunc) ([3]float32, bool) {
	angle := float64(weights[angleIndex]) * 4 * math.Pi
	radius := 6 + math.Abs(float64(weights[radiusIndex]))*4 + s.Variance*10

	x := playerPos[0] + float32(math.Cos(angle)*radius)
	z := playerPos[2] + float32(math.Sin(angle)*radius)

	ext := d.params.WorldExtent
	x = clamp32(x, -ext, ext)
	z = clamp32(z, -ext, ext)

	minSq := d.params.MinOrbSpacing * d.params.MinOrbSpacing
	for _, o := range d.orbs {
		dx := o.Position[0] - x
		dz := o.Position[2] - z
		if dx*dx+dz*dz < minSq {
			return [3]float32{}, false
		}
	}

	y := heightAt(x, z) + 1.5
	return [3]float32{x, y, z}, true
}

// intensity maps the smoothness proxy into [0, MaxIntensity].
func (d *Detector) intensity(s WeightStats) float32 {
	v := float32(s.Smoothness) * 2.5
	if v > d.params.MaxIntensity {
		v = d.params.MaxIntensity
	}
	return v
}

// orbColor maps (mean, variance) through HSV. Hue cycles with the mean,
// saturation rises with variance, value stays bright.
func orbColor(s WeightStats) [3]float32 {
	hue := math.Mod(math.Abs(s.Mean)*6+s.Variance*2, 1) * 360
	sat := 0.5 + math.Min(s.Variance*4, 0.45)
	return hsvToRGB(float32(hue), float32(sat), 0.95)
}

// Snapshot returns a render-ready copy of the active orbs.
func (d *Detector) Snapshot(now float32) []OrbView {
	views := make([]OrbView, 0, len(d.orbs))
	for _, o := range d.orbs {
		age := now - o.SpawnTime
		fade := age
		if fade > 1 {
			fade = 1
		} else if fade < 0 {
			fade = 0
		}
		views = append(views, OrbView{
			Position:  o.Position,
			Color:     o.Color,
			Intensity: o.Intensity,
			Age:       age,
			FadeIn:    fade,
			Captured:  o.Captured,
		})
	}
	return views
}

// ActiveCount returns the number of live orbs.
func (d *Detector) ActiveCount() int { return len(d.orbs) }

// Capturable returns the nearest active, uncaptured orb within the capture
// radius of the player, or false if none qualifies.
func (d *Detector) Capturable(playerPos [3]float32) (Orb, bool) {
	idx := d.nearestCapturable(playerPos)
	if idx < 0 {
		return Orb{}, false
	}
	return d.orbs[idx], true
}

// CaptureNearest captures the nearest qualifying orb, removes it from the
// active set, and returns its score. Returns ok=false when nothing is in
// range.
func (d *Detector) CaptureNearest(playerPos [3]float32, weights []float32) (score int, ok bool) {
	idx := d.nearestCapturable(playerPos)
	if idx < 0 {
		return 0, false
	}

	orb := &d.orbs[idx]
	orb.Captured = true
	score = captureScore(*orb, weights, d.params.SampleStride)

	// A captured orb leaves the active set immediately.
	d.orbs = append(d.orbs[:idx], d.orbs[idx+1:]...)
	d.Captures++
	return score, true
}

func (d *Detector) nearestCapturable(playerPos [3]float32) int {
	best := -1
	bestSq := d.params.CaptureRadius * d.params.CaptureRadius
	for i, o := range d.orbs {
		if o.Captured {
			continue
		}
		dx := o.Position[0] - playerPos[0]
		dz := o.Position[2] - playerPos[2]
		sq := dx*dx + dz*dz
		if sq <= bestSq {
			best = i
			bestSq = sq
		}
	}
	return best
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// hsvToRGB converts hue [0,360), saturation and value [0,1] to RGB.
func hsvToRGB(h, s, v float32) [3]float32 {
	c := v * s
	hp := h / 60
	x := c * (1 - abs32(float32(math.Mod(float64(hp), 2))-1))
	m := v - c

	var r, g, b float32
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return [3]float32{r + m, g + m, b + m}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
