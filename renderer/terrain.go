// Package renderer owns the raylib-facing side of the engine: the terrain
// mesh whose shape and color are computed in the shaders, and the ambient
// sky layer.
package renderer

import (
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reverie/config"
	"github.com/pthm-cable/reverie/neural"
	"github.com/pthm-cable/reverie/resonance"
)

// int32sAsFloat32s reinterprets an int32 slice as float32 without copying.
// raylib's SetShaderValueV only accepts []float32 but forwards the raw bytes
// to GL, which reads them per the uniform type (here ShaderUniformInt).
func int32sAsFloat32s(v []int32) []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(&v[0])), len(v))
}

// Terrain renders the neural landscape. The mesh is a flat subdivided plane;
// the vertex shader displaces it with the terrain network and the fragment
// shader colors it with the color network. The host uploads both weight
// vectors each frame after the mutation kernel completes, which is the
// ordering barrier between mutation and evaluation.
type Terrain struct {
	shader rl.Shader
	model  rl.Model

	locTerrainWeights int32
	locColorWeights   int32
	locTime           int32
	locPhaseRate      int32
	locNormalEps      int32
	locPlayerPos      int32
	locRadius         int32
	locStrength       int32
	locInteracting    int32
	locViewPos        int32
	locOrbPositions   int32
	locOrbColors      int32
	locOrbIntensity   int32
	locOrbCount       int32

	// Scratch buffers reused across frames for orb uniform packing.
	orbPos  []float32
	orbCol  []float32
	orbInt  []float32
	maxOrbs int
}

// NewTerrain creates the terrain model and loads the field shaders.
func NewTerrain() *Terrain {
	cfg := config.Cfg()

	extent := cfg.Derived.WorldExtent * 2
	res := cfg.World.GridSize
	mesh := rl.GenMeshPlane(extent, extent, res, res)
	model := rl.LoadModelFromMesh(mesh)

	shader := rl.LoadShader("shaders/terrain.vs", "shaders/terrain.fs")
	model.Materials.Shader = shader

	maxOrbs := cfg.Resonance.MaxOrbs

	t := &Terrain{
		shader:  shader,
		model:   model,
		maxOrbs: maxOrbs,
		orbPos:  make([]float32, maxOrbs*3),
		orbCol:  make([]float32, maxOrbs*3),
		orbInt:  make([]float32, maxOrbs),

		locTerrainWeights: rl.GetShaderLocation(shader, "terrainWeights"),
		locColorWeights:   rl.GetShaderLocation(shader, "colorWeights"),
		locTime:           rl.GetShaderLocation(shader, "time"),
		locPhaseRate:      rl.GetShaderLocation(shader, "timePhaseRate"),
		locNormalEps:      rl.GetShaderLocation(shader, "normalEps"),
		locPlayerPos:      rl.GetShaderLocation(shader, "playerPos"),
		locRadius:         rl.GetShaderLocation(shader, "influenceRadius"),
		locStrength:       rl.GetShaderLocation(shader, "interactionStrength"),
		locInteracting:    rl.GetShaderLocation(shader, "isInteracting"),
		locViewPos:        rl.GetShaderLocation(shader, "viewPos"),
		locOrbPositions:   rl.GetShaderLocation(shader, "orbPositions"),
		locOrbColors:      rl.GetShaderLocation(shader, "orbColors"),
		locOrbIntensity:   rl.GetShaderLocation(shader, "orbIntensity"),
		locOrbCount:       rl.GetShaderLocation(shader, "orbCount"),
	}

	// Constants that never change after load.
	rl.SetShaderValue(shader, t.locPhaseRate, []float32{float32(cfg.Field.TimePhaseHz)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(shader, t.locNormalEps, []float32{cfg.Derived.NormalEps}, rl.ShaderUniformFloat)

	return t
}

// UploadWeights pushes both live weight vectors to the GPU. Called once per
// frame, strictly after the mutation kernel has finished.
func (t *Terrain) UploadWeights(terrain, color []float32) {
	rl.SetShaderValueV(t.shader, t.locTerrainWeights, terrain, rl.ShaderUniformFloat, int32(len(terrain)))
	rl.SetShaderValueV(t.shader, t.locColorWeights, color, rl.ShaderUniformFloat, int32(len(color)))
}

// UploadFrame pushes the per-frame uniforms: time, player influence state,
// and the camera position for view-dependent color.
func (t *Terrain) UploadFrame(now float32, infl neural.Influence, viewPos [3]float32) {
	rl.SetShaderValue(t.shader, t.locTime, []float32{now}, rl.ShaderUniformFloat)
	rl.SetShaderValue(t.shader, t.locPlayerPos, infl.Position[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(t.shader, t.locRadius, []float32{infl.Radius}, rl.ShaderUniformFloat)
	rl.SetShaderValue(t.shader, t.locStrength, []float32{infl.Strength}, rl.ShaderUniformFloat)
	interacting := []int32{0}
	if infl.Interacting {
		interacting[0] = 1
	}
	rl.SetShaderValueV(t.shader, t.locInteracting, int32sAsFloat32s(interacting), rl.ShaderUniformInt, 1)
	rl.SetShaderValue(t.shader, t.locViewPos, viewPos[:], rl.ShaderUniformVec3)
}

// UploadOrbs packs the orb snapshot into the glow uniforms.
func (t *Terrain) UploadOrbs(orbs []resonance.OrbView) {
	n := len(orbs)
	if n > t.maxOrbs {
		n = t.maxOrbs
	}
	for i := 0; i < n; i++ {
		o := orbs[i]
		copy(t.orbPos[i*3:], o.Position[:])
		copy(t.orbCol[i*3:], o.Color[:])
		t.orbInt[i] = o.Intensity * o.FadeIn
	}
	rl.SetShaderValueV(t.shader, t.locOrbPositions, t.orbPos, rl.ShaderUniformVec3, int32(t.maxOrbs))
	rl.SetShaderValueV(t.shader, t.locOrbColors, t.orbCol, rl.ShaderUniformVec3, int32(t.maxOrbs))
	rl.SetShaderValueV(t.shader, t.locOrbIntensity, t.orbInt, rl.ShaderUniformFloat, int32(t.maxOrbs))
	rl.SetShaderValueV(t.shader, t.locOrbCount, int32sAsFloat32s([]int32{int32(n)}), rl.ShaderUniformInt, 1)
}

// Draw renders the terrain model. Must be called inside BeginMode3D.
func (t *Terrain) Draw() {
	rl.DrawModel(t.model, rl.Vector3{}, 1, rl.White)
}

// Unload releases GPU resources.
func (t *Terrain) Unload() {
	rl.UnloadShader(t.shader)
	rl.UnloadModel(t.model)
}
