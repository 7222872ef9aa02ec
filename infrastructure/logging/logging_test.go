package logging

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// testLogger creates a logger that writes to a buffer for testing
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := bolt.NewJSONHandler(buf)
	logger := bolt.New(handler).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stdout {
		t.Errorf("Output = %v, want os.Stdout", config.Output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	le := &LogEvent{event: logger.Info()}
	le.Add(RunID("run-1")).
		Add(Tick(12)).
		Add(VehicleID("veh0")).
		Add(VerdictField(vehicle.VerdictHold)).
		Add(Blockage(event.KindLaneBlocked)).
		Add(Gap(14.5)).
		Add(PayloadSize(120)).
		Msg("verdict applied")

	out := buf.String()
	for _, want := range []string{
		`"run_id":"run-1"`,
		`"tick":12`,
		`"vehicle":"veh0"`,
		`"verdict":"hold"`,
		`"blockage":"lane_blocked"`,
		`"payload_bytes":120`,
		"verdict applied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestErrorField_Nil(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	le := &LogEvent{event: logger.Warn()}
	le.Add(ErrorField(nil)).Msg("no error")
	if strings.Contains(buf.String(), `"error"`) {
		t.Errorf("nil error must not add a field: %s", buf.String())
	}

	buf.Reset()
	le = &LogEvent{event: logger.Warn()}
	le.Add(ErrorField(errors.New("lane change rejected"))).Msg("recovered")
	if !strings.Contains(buf.String(), "lane change rejected") {
		t.Errorf("error field missing: %s", buf.String())
	}
}
