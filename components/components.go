// Package components defines the ECS components for the ambient mote layer.
package components

// Position is a mote's world position.
type Position struct {
	X, Y, Z float32
}

// Drift holds a mote's horizontal motion and bob state.
type Drift struct {
	VX, VZ float32
	Phase  float32 // bob phase offset so motes do not pulse in unison
}
