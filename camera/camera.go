// Package camera provides the terrain-following orbit camera.
//
// The camera never reads GPU memory: its focus height comes from the CPU
// mirror sampler, which by contract matches the rendered terrain exactly.
package camera

import "math"

// HeightFunc resolves the smoothed terrain height under the focus point.
type HeightFunc func(x, z float32) float32

// Camera orbits a focus point that glides over the neural terrain.
type Camera struct {
	// Focus position on the ground plane.
	X, Z float32

	// Yaw is the orbit angle around the focus, radians.
	Yaw float32

	// Orbit geometry.
	Distance float32
	Height   float32

	// FollowSmooth is the exponential rate at which the focus height tracks
	// the sampled terrain height. Higher is snappier.
	FollowSmooth float32

	// SampleRadius is passed through to the smoothed height query.
	SampleRadius float32

	// WorldExtent clamps the focus inside the terrain.
	WorldExtent float32

	focusY float32
}

// New creates a camera focused on the world origin.
func New(distance, height, followSmooth, sampleRadius, worldExtent float32) *Camera {
	return &Camera{
		Distance:     distance,
		Height:       height,
		FollowSmooth: followSmooth,
		SampleRadius: sampleRadius,
		WorldExtent:  worldExtent,
	}
}

// Move translates the focus in camera-relative terms: forward along the
// view direction projected on the ground, strafe perpendicular to it.
func (c *Camera) Move(forward, strafe, speed, dt float32) {
	sin, cos := sincos32(c.Yaw)
	c.X += (forward*cos + strafe*-sin) * speed * dt
	c.Z += (forward*sin + strafe*cos) * speed * dt
	c.X = clamp(c.X, -c.WorldExtent, c.WorldExtent)
	c.Z = clamp(c.Z, -c.WorldExtent, c.WorldExtent)
}

// Turn rotates the orbit by delta radians.
func (c *Camera) Turn(delta float32) {
	c.Yaw += delta
	for c.Yaw > math.Pi {
		c.Yaw -= 2 * math.Pi
	}
	for c.Yaw < -math.Pi {
		c.Yaw += 2 * math.Pi
	}
}

// Update smooths the focus height toward the sampled terrain height.
// heightAt must be the mirror's SmoothHeightAt, so the camera rides the same
// surface the GPU renders.
func (c *Camera) Update(dt float32, heightAt HeightFunc) {
	target := heightAt(c.X, c.Z)
	f := c.FollowSmooth * dt
	if f > 1 {
		f = 1
	}
	c.focusY += (target - c.focusY) * f
}

// SnapToTerrain sets the focus height directly, skipping the smoothing.
// Used on startup and after a world reset.
func (c *Camera) SnapToTerrain(heightAt HeightFunc) {
	c.focusY = heightAt(c.X, c.Z)
}

// Focus returns the point the camera looks at.
func (c *Camera) Focus() [3]float32 {
	return [3]float32{c.X, c.focusY + 1, c.Z}
}

// Eye returns the camera position: behind and above the focus along the
// orbit angle.
func (c *Camera) Eye() [3]float32 {
	sin, cos := sincos32(c.Yaw)
	return [3]float32{
		c.X - cos*c.Distance,
		c.focusY + c.Height,
		c.Z - sin*c.Distance,
	}
}

// ViewDir returns the normalized direction from eye to focus.
func (c *Camera) ViewDir() [3]float32 {
	eye := c.Eye()
	focus := c.Focus()
	dx := focus[0] - eye[0]
	dy := focus[1] - eye[1]
	dz := focus[2] - eye[2]
	inv := 1 / float32(math.Sqrt(float64(dx*dx+dy*dy+dz*dz)))
	return [3]float32{dx * inv, dy * inv, dz * inv}
}

func sincos32(a float32) (sin, cos float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
