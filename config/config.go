// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Field     FieldConfig     `yaml:"field"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Influence InfluenceConfig `yaml:"influence"`
	Resonance ResonanceConfig `yaml:"resonance"`
	Camera    CameraConfig    `yaml:"camera"`
	Motes     MotesConfig     `yaml:"motes"`
	Sky       SkyConfig       `yaml:"sky"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the terrain grid dimensions.
// The grid is GridSize x GridSize vertices spaced GridSpacing apart,
// centered on the origin.
type WorldConfig struct {
	GridSize    int     `yaml:"grid_size"`
	GridSpacing float64 `yaml:"grid_spacing"`
}

// FieldConfig holds neural field parameters shared by both networks.
type FieldConfig struct {
	InitScale   float64 `yaml:"init_scale"`    // Multiplier on He-scaled weight init
	BiasInit    float64 `yaml:"bias_init"`     // Half-width of the uniform bias init range
	Seed        int64   `yaml:"seed"`          // Weight init seed (0 = time-based)
	TimePhaseHz float64 `yaml:"time_phase_hz"` // Angular rate of the time phase input
}

// MutationConfig holds mutation/decay kernel parameters.
type MutationConfig struct {
	DecayRate     float64 `yaml:"decay_rate"`     // Fractional relaxation toward initial per second
	Clamp         float64 `yaml:"clamp"`          // Symmetric weight bound after perturbation
	BaseStrength  float64 `yaml:"base_strength"`  // Perturbation magnitude multiplier
	HiddenGain    float64 `yaml:"hidden_gain"`    // Strength multiplier for the second hidden layer
	OutputGain    float64 `yaml:"output_gain"`    // Strength multiplier for the output layer
	ColorStrength float64 `yaml:"color_strength"` // Color net perturbation relative to terrain
}

// InfluenceConfig holds player influence parameters.
type InfluenceConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// ResonanceConfig holds resonance detector parameters.
type ResonanceConfig struct {
	MaxOrbs          int     `yaml:"max_orbs"`
	OrbLifetime      float64 `yaml:"orb_lifetime"`      // Seconds before an orb expires
	Cadence          float64 `yaml:"cadence"`           // Seconds between detector updates
	SampleStride     int     `yaml:"sample_stride"`     // Weight sampling stride
	HistorySize      int     `yaml:"history_size"`      // Rolling variance window length
	StabilityWindow  int     `yaml:"stability_window"`  // Steps back for the stability compare
	StabilityEpsilon float64 `yaml:"stability_epsilon"` // Max relative variance change for "stable"
	MinVariance      float64 `yaml:"min_variance"`      // Variance floor for "interesting"
	MinSpread        float64 `yaml:"min_spread"`        // Peak-to-peak floor for "interesting"
	MinOrbSpacing    float64 `yaml:"min_orb_spacing"`   // Reject placement closer than this to a live orb
	CaptureRadius    float64 `yaml:"capture_radius"`
	MaxIntensity     float64 `yaml:"max_intensity"`
}

// CameraConfig holds follow-camera parameters.
type CameraConfig struct {
	Distance     float64 `yaml:"distance"`      // Orbit distance from the focus point
	Height       float64 `yaml:"height"`        // Height above the terrain at the focus
	FollowSmooth float64 `yaml:"follow_smooth"` // Exponential smoothing rate for terrain following
	SampleRadius float64 `yaml:"sample_radius"` // Radius for the smoothed height query
	MoveSpeed    float64 `yaml:"move_speed"`
	TurnSpeed    float64 `yaml:"turn_speed"`
}

// MotesConfig holds ambient mote parameters.
type MotesConfig struct {
	Count      int     `yaml:"count"`
	Hover      float64 `yaml:"hover"`       // Height above the terrain surface
	DriftSpeed float64 `yaml:"drift_speed"` // Downhill drift speed
	Bob        float64 `yaml:"bob"`         // Vertical bob amplitude
}

// SkyConfig holds background drift parameters.
type SkyConfig struct {
	DriftSpeed float64 `yaml:"drift_speed"`
	Seed       int64   `yaml:"seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridSpacing32 float32 // World.GridSpacing as float32
	WorldExtent   float32 // Half-width of the terrain in world units
	NormalEps     float32 // Finite-difference epsilon: half the grid spacing
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.World.GridSize < 2 {
		return fmt.Errorf("world.grid_size must be at least 2, got %d", c.World.GridSize)
	}
	if c.World.GridSpacing <= 0 {
		return fmt.Errorf("world.grid_spacing must be positive, got %g", c.World.GridSpacing)
	}
	if c.Mutation.Clamp <= 0 {
		return fmt.Errorf("mutation.clamp must be positive, got %g", c.Mutation.Clamp)
	}
	if c.Mutation.DecayRate < 0 {
		return fmt.Errorf("mutation.decay_rate must be non-negative, got %g", c.Mutation.DecayRate)
	}
	if c.Resonance.SampleStride < 1 {
		return fmt.Errorf("resonance.sample_stride must be at least 1, got %d", c.Resonance.SampleStride)
	}
	if c.Resonance.HistorySize < 2 || c.Resonance.StabilityWindow < 1 ||
		c.Resonance.StabilityWindow >= c.Resonance.HistorySize {
		return fmt.Errorf("resonance history_size/stability_window invalid: %d/%d",
			c.Resonance.HistorySize, c.Resonance.StabilityWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GridSpacing32 = float32(c.World.GridSpacing)
	c.Derived.WorldExtent = float32(c.World.GridSpacing) * float32(c.World.GridSize) / 2
	c.Derived.NormalEps = float32(c.World.GridSpacing) / 2
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
