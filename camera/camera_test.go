package camera

import (
	"math"
	"testing"
)

func flat(h float32) HeightFunc {
	return func(x, z float32) float32 { return h }
}

func TestMoveForward(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)

	// Yaw 0: forward is +X.
	c.Move(1, 0, 10, 0.5)
	if math.Abs(float64(c.X-5)) > 1e-5 || c.Z != 0 {
		t.Errorf("forward move landed at (%f, %f), want (5, 0)", c.X, c.Z)
	}

	// Strafe is perpendicular: +Z at yaw 0.
	c = New(12, 8, 4, 0.5, 32)
	c.Move(0, 1, 10, 0.5)
	if c.X != 0 || math.Abs(float64(c.Z-5)) > 1e-5 {
		t.Errorf("strafe move landed at (%f, %f), want (0, 5)", c.X, c.Z)
	}
}

func TestMoveClampedToWorld(t *testing.T) {
	c := New(12, 8, 4, 0.5, 10)
	c.Move(1, 0, 100, 10)
	if c.X != 10 {
		t.Errorf("focus x = %f, want clamped to 10", c.X)
	}
	c.Move(-1, 0, 100, 10)
	c.Move(-1, 0, 100, 10)
	if c.X != -10 {
		t.Errorf("focus x = %f, want clamped to -10", c.X)
	}
}

func TestTurnWraps(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)
	c.Turn(3 * math.Pi)
	if c.Yaw > math.Pi || c.Yaw < -math.Pi {
		t.Errorf("yaw = %f, want wrapped into [-pi, pi]", c.Yaw)
	}
	if math.Abs(float64(c.Yaw)-math.Pi) > 1e-5 {
		t.Errorf("yaw = %f, want ~pi after 3pi turn", c.Yaw)
	}
}

func TestUpdateSmoothsTowardTerrain(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)
	c.SnapToTerrain(flat(0))

	// One smoothing step covers FollowSmooth*dt of the gap.
	c.Update(0.1, flat(10))
	want := float32(10 * 4 * 0.1)
	if math.Abs(float64(c.focusY-want)) > 1e-5 {
		t.Errorf("focus height after one step = %f, want %f", c.focusY, want)
	}

	// Repeated steps converge.
	for i := 0; i < 200; i++ {
		c.Update(0.1, flat(10))
	}
	if math.Abs(float64(c.focusY-10)) > 1e-3 {
		t.Errorf("focus height = %f, want converged to 10", c.focusY)
	}
}

func TestUpdateLargeStepClamped(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)
	// FollowSmooth*dt beyond 1 must not overshoot the target.
	c.Update(10, flat(5))
	if c.focusY != 5 {
		t.Errorf("focus height = %f, want snapped to 5", c.focusY)
	}
}

func TestSnapToTerrain(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)
	c.SnapToTerrain(flat(-2.5))
	if c.focusY != -2.5 {
		t.Errorf("focus height = %f, want -2.5", c.focusY)
	}
}

func TestEyeGeometry(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)
	c.SnapToTerrain(flat(0))

	eye := c.Eye()
	// Yaw 0: the eye sits Distance behind the focus along -X, Height above.
	if math.Abs(float64(eye[0]+12)) > 1e-5 || math.Abs(float64(eye[1]-8)) > 1e-5 || math.Abs(float64(eye[2])) > 1e-5 {
		t.Errorf("eye = %v, want (-12, 8, 0)", eye)
	}

	// Eye-to-focus distance is invariant under yaw.
	base := eyeFocusDist(c)
	c.Turn(1.2)
	if d := eyeFocusDist(c); math.Abs(float64(d-base)) > 1e-4 {
		t.Errorf("orbit distance changed under yaw: %f vs %f", d, base)
	}
}

func TestViewDirNormalized(t *testing.T) {
	c := New(12, 8, 4, 0.5, 32)
	c.SnapToTerrain(flat(1.5))
	c.Turn(0.7)

	v := c.ViewDir()
	l := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))
	if math.Abs(l-1) > 1e-5 {
		t.Errorf("view direction length = %f, want 1", l)
	}
	// The camera sits above its focus, so the view points downward.
	if v[1] >= 0 {
		t.Errorf("view direction y = %f, want negative", v[1])
	}
}

func eyeFocusDist(c *Camera) float32 {
	eye, focus := c.Eye(), c.Focus()
	dx := focus[0] - eye[0]
	dy := focus[1] - eye[1]
	dz := focus[2] - eye[2]
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}
