package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/v2x-go/domain/config"
)

const sampleYAML = `
name: osm-crossing
version: "1"
intersection:
  approach_threshold: 30
safety:
  safety_distance: 15
  lookahead_radius: 50
  slowdown_factor: 0.8
  conflict_zone:
    x_min: 480
    x_max: 520
    y_min: 480
    y_max: 520
  block_policy: replan_route
  direction_convention: increasing
logging:
  level: debug
  format: console
store:
  backend: memory
`

func TestLoader_LoadString(t *testing.T) {
	cfg, err := NewLoader().LoadString(sampleYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	if cfg.Name != "osm-crossing" {
		t.Errorf("Name = %q, want osm-crossing", cfg.Name)
	}
	if cfg.Safety.SafetyDistance != 15 {
		t.Errorf("SafetyDistance = %v, want 15", cfg.Safety.SafetyDistance)
	}
	if cfg.Safety.BlockPolicy != config.BlockPolicyReplanRoute {
		t.Errorf("BlockPolicy = %q, want replan_route", cfg.Safety.BlockPolicy)
	}
	// Defaults must fill what the file omits.
	if cfg.Safety.CruiseSpeed == 0 {
		t.Error("CruiseSpeed default missing")
	}
	if cfg.Safety.LaneChangeUrgency != 25 {
		t.Errorf("LaneChangeUrgency = %v, want default 25", cfg.Safety.LaneChangeUrgency)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoader_LoadFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader().LoadFile(path)
	if !errors.Is(err, config.ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestLoader_ValidationFailure(t *testing.T) {
	bad := `
safety:
  slowdown_factor: 2.5
`
	_, err := NewLoader().LoadString(bad)
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}
}

func TestLoader_EnvExpansion(t *testing.T) {
	t.Setenv("V2X_LEVEL", "warn")

	yaml := `
logging:
  level: ${V2X_LEVEL}
  format: ${V2X_FORMAT:-json}
`
	cfg, err := NewLoader().LoadString(yaml)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn from env", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Format = %q, want json default", cfg.Logging.Format)
	}
}

func TestExpandEnvStrict_Missing(t *testing.T) {
	_, err := ExpandEnvStrict("${V2X_DOES_NOT_EXIST}")
	if !errors.Is(err, config.ErrMissingEnvVar) {
		t.Errorf("error = %v, want ErrMissingEnvVar", err)
	}
}

func TestExpandEnv_RequiredModifier(t *testing.T) {
	_, err := NewLoader().LoadString("name: ${V2X_REQUIRED:?set me}")
	if !errors.Is(err, config.ErrMissingEnvVar) {
		t.Errorf("error = %v, want ErrMissingEnvVar for :? modifier", err)
	}
}
