package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks the configuration and returns any errors found.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	add := func(path, msg string) {
		errs = append(errs, ValidationError{Path: path, Message: msg})
	}

	if c.Intersection.ApproachThreshold < 0 {
		add("intersection.approach_threshold", "must not be negative")
	}
	if c.Safety.SafetyDistance < 0 {
		add("safety.safety_distance", "must not be negative")
	}
	if c.Safety.LookaheadRadius < c.Safety.SafetyDistance {
		add("safety.lookahead_radius", "must not be smaller than safety_distance")
	}
	if c.Safety.SlowdownFactor < 0 || c.Safety.SlowdownFactor > 1 {
		add("safety.slowdown_factor", "must be in [0, 1]")
	}
	if c.Safety.CruiseSpeed < 0 {
		add("safety.cruise_speed", "must not be negative")
	}
	zone := c.Safety.ConflictZone
	if zone.XMin > zone.XMax || zone.YMin > zone.YMax {
		add("safety.conflict_zone", "rectangle bounds are inverted")
	}

	switch c.Safety.BlockPolicy {
	case BlockPolicyStopInPlace, BlockPolicyReplanRoute, "":
	default:
		add("safety.block_policy", fmt.Sprintf("unknown policy %q", c.Safety.BlockPolicy))
	}
	switch c.Safety.Direction {
	case DirectionIncreasing, DirectionDecreasing, "":
	default:
		add("safety.direction_convention", fmt.Sprintf("unknown convention %q", c.Safety.Direction))
	}

	switch c.Store.Backend {
	case "memory", "badger", "":
	default:
		add("store.backend", fmt.Sprintf("unknown backend %q", c.Store.Backend))
	}
	if c.Store.Backend == "badger" && c.Store.Dir == "" {
		add("store.dir", "required for the badger backend")
	}

	switch c.Logging.Format {
	case "console", "json", "":
	default:
		add("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format))
	}

	return errs
}
