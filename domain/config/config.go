// Package config provides domain models for coordination configuration.
package config

// Config represents the complete coordination configuration.
type Config struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name" yaml:"name"`
	// Version is the configuration schema version.
	Version string `json:"version" yaml:"version"`
	// Description describes the scenario.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Intersection contains arbiter settings.
	Intersection IntersectionConfig `json:"intersection" yaml:"intersection"`
	// Safety contains local safety controller settings.
	Safety SafetyConfig `json:"safety" yaml:"safety"`
	// Logging contains logging settings.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Telemetry contains metrics settings.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
	// Store contains event store settings.
	Store StoreConfig `json:"store,omitempty" yaml:"store,omitempty"`
}

// IntersectionConfig contains arbiter settings.
type IntersectionConfig struct {
	// ApproachThreshold is the lane-position bound (meters) below which a
	// vehicle can qualify as approaching the conflict point.
	ApproachThreshold float64 `json:"approach_threshold,omitempty" yaml:"approach_threshold,omitempty"`
}

// BlockPolicy selects the reaction to a full path blockage.
type BlockPolicy string

const (
	// BlockPolicyStopInPlace stops the vehicle where it is.
	BlockPolicyStopInPlace BlockPolicy = "stop_in_place"

	// BlockPolicyReplanRoute recomputes the route around the blockage.
	BlockPolicyReplanRoute BlockPolicy = "replan_route"
)

// DirectionConvention fixes which lane-position ordering means "ahead".
type DirectionConvention string

const (
	// DirectionIncreasing treats larger lane positions as ahead.
	DirectionIncreasing DirectionConvention = "increasing"

	// DirectionDecreasing treats smaller lane positions as ahead.
	DirectionDecreasing DirectionConvention = "decreasing"
)

// ZoneConfig is the axis-aligned conflict-zone rectangle in map meters.
type ZoneConfig struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
}

// Contains reports whether a point lies inside the rectangle.
func (z ZoneConfig) Contains(x, y float64) bool {
	return z.XMin <= x && x <= z.XMax && z.YMin <= y && y <= z.YMax
}

// SafetyConfig contains local safety controller settings.
type SafetyConfig struct {
	// SafetyDistance is the minimum gap (meters) kept to other vehicles.
	SafetyDistance float64 `json:"safety_distance,omitempty" yaml:"safety_distance,omitempty"`
	// LookaheadRadius bounds the leader search (meters).
	LookaheadRadius float64 `json:"lookahead_radius,omitempty" yaml:"lookahead_radius,omitempty"`
	// CruiseSpeed is the nominal target speed (m/s) with a clear road.
	CruiseSpeed float64 `json:"cruise_speed,omitempty" yaml:"cruise_speed,omitempty"`
	// LowSpeedThreshold is the speed (m/s) under which a vehicle with no
	// leader accelerates toward CruiseSpeed.
	LowSpeedThreshold float64 `json:"low_speed_threshold,omitempty" yaml:"low_speed_threshold,omitempty"`
	// SlowdownFactor scales the leader's speed when closing a short gap.
	SlowdownFactor float64 `json:"slowdown_factor,omitempty" yaml:"slowdown_factor,omitempty"`
	// LaneChangeUrgency is the distance parameter for lane-change requests.
	LaneChangeUrgency float64 `json:"lane_change_urgency,omitempty" yaml:"lane_change_urgency,omitempty"`
	// ConflictZone is the shared intersection rectangle.
	ConflictZone ZoneConfig `json:"conflict_zone" yaml:"conflict_zone"`
	// BlockPolicy selects the full-blockage reaction.
	BlockPolicy BlockPolicy `json:"block_policy,omitempty" yaml:"block_policy,omitempty"`
	// Direction fixes the "ahead of" convention for leader detection.
	Direction DirectionConvention `json:"direction_convention,omitempty" yaml:"direction_convention,omitempty"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is the output format (json or console).
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig contains metrics settings.
type TelemetryConfig struct {
	// Enabled turns on OpenTelemetry metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MeterName overrides the default meter name.
	MeterName string `json:"meter_name,omitempty" yaml:"meter_name,omitempty"`
}

// StoreConfig contains event store settings.
type StoreConfig struct {
	// Backend selects the store backend (memory or badger).
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// Dir is the data directory for persistent backends.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a configuration with the reference tunables.
func Default() Config {
	return Config{
		Version: "1",
		Intersection: IntersectionConfig{
			ApproachThreshold: 30.0,
		},
		Safety: SafetyConfig{
			SafetyDistance:    20.0,
			LookaheadRadius:   50.0,
			CruiseSpeed:       13.9,
			LowSpeedThreshold: 5.0,
			SlowdownFactor:    0.8,
			LaneChangeUrgency: 25.0,
			ConflictZone:      ZoneConfig{XMin: 480, XMax: 520, YMin: 480, YMax: 520},
			BlockPolicy:       BlockPolicyReplanRoute,
			Direction:         DirectionIncreasing,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
	}
}

// ApplyDefaults fills zero-valued tunables from the defaults.
func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Intersection.ApproachThreshold == 0 {
		c.Intersection.ApproachThreshold = def.Intersection.ApproachThreshold
	}
	if c.Safety.SafetyDistance == 0 {
		c.Safety.SafetyDistance = def.Safety.SafetyDistance
	}
	if c.Safety.LookaheadRadius == 0 {
		c.Safety.LookaheadRadius = def.Safety.LookaheadRadius
	}
	if c.Safety.CruiseSpeed == 0 {
		c.Safety.CruiseSpeed = def.Safety.CruiseSpeed
	}
	if c.Safety.LowSpeedThreshold == 0 {
		c.Safety.LowSpeedThreshold = def.Safety.LowSpeedThreshold
	}
	if c.Safety.SlowdownFactor == 0 {
		c.Safety.SlowdownFactor = def.Safety.SlowdownFactor
	}
	if c.Safety.LaneChangeUrgency == 0 {
		c.Safety.LaneChangeUrgency = def.Safety.LaneChangeUrgency
	}
	if c.Safety.ConflictZone == (ZoneConfig{}) {
		c.Safety.ConflictZone = def.Safety.ConflictZone
	}
	if c.Safety.BlockPolicy == "" {
		c.Safety.BlockPolicy = def.Safety.BlockPolicy
	}
	if c.Safety.Direction == "" {
		c.Safety.Direction = def.Safety.Direction
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
}
