package intersection

import (
	"testing"

	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

func snap(id string, lanePos float64, prev *float64) vehicle.Snapshot {
	return vehicle.Snapshot{
		ID:                   id,
		LanePosition:         lanePos,
		PreviousLanePosition: prev,
	}
}

func prev(v float64) *float64 { return &v }

func TestDecide_UncontendedProceed(t *testing.T) {
	tests := []struct {
		name      string
		snapshots []vehicle.Snapshot
	}{
		{
			name: "no previous positions",
			snapshots: []vehicle.Snapshot{
				snap("a", 10, nil),
				snap("b", 20, nil),
			},
		},
		{
			name: "all receding",
			snapshots: []vehicle.Snapshot{
				snap("a", 25, prev(20)),
				snap("b", 40, prev(35)),
			},
		},
		{
			name: "closing but outside approach zone",
			snapshots: []vehicle.Snapshot{
				snap("a", 45, prev(50)),
				snap("b", 70, prev(80)),
			},
		},
		{
			name:      "empty registry",
			snapshots: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arb := New(30.0)
			for _, s := range tt.snapshots {
				arb.Register(s)
			}

			verdicts := arb.Decide()
			if len(verdicts) != len(tt.snapshots) {
				t.Fatalf("Decide() returned %d verdicts, want %d", len(verdicts), len(tt.snapshots))
			}
			for id, v := range verdicts {
				if v != vehicle.VerdictProceed {
					t.Errorf("verdict[%s] = %q, want proceed", id, v)
				}
			}
		})
	}
}

func TestDecide_SingleGrantee(t *testing.T) {
	arb := New(30.0)
	arb.Register(snap("far", 25, prev(28)))
	arb.Register(snap("near", 10, prev(14)))
	arb.Register(snap("mid", 18, prev(22)))
	arb.Register(snap("leaving", 50, prev(45)))

	verdicts := arb.Decide()

	want := map[string]vehicle.Verdict{
		"near":    vehicle.VerdictProceed,
		"mid":     vehicle.VerdictHold,
		"far":     vehicle.VerdictHold,
		"leaving": vehicle.VerdictProceed,
	}
	for id, v := range want {
		if verdicts[id] != v {
			t.Errorf("verdict[%s] = %q, want %q", id, verdicts[id], v)
		}
	}

	granted := 0
	for _, id := range []string{"near", "mid", "far"} {
		if verdicts[id] == vehicle.VerdictProceed {
			granted++
		}
	}
	if granted != 1 {
		t.Errorf("%d approaching vehicles granted, want exactly 1", granted)
	}
}

func TestDecide_TieBreaksOnID(t *testing.T) {
	// Identical lane positions must resolve deterministically to the
	// lexicographically smallest ID, regardless of registration order.
	for range 10 {
		arb := New(30.0)
		arb.Register(snap("veh2", 12, prev(15)))
		arb.Register(snap("veh1", 12, prev(15)))
		arb.Register(snap("veh3", 12, prev(15)))

		verdicts := arb.Decide()
		if verdicts["veh1"] != vehicle.VerdictProceed {
			t.Fatalf("verdict[veh1] = %q, want proceed on tie", verdicts["veh1"])
		}
		if verdicts["veh2"] != vehicle.VerdictHold || verdicts["veh3"] != vehicle.VerdictHold {
			t.Fatal("tie losers must hold")
		}
	}
}

func TestRegister_LastWriteWins(t *testing.T) {
	arb := New(30.0)
	arb.Register(snap("a", 40, prev(45)))
	arb.Register(snap("a", 10, prev(15))) // re-registration within the tick

	verdicts := arb.Decide()
	if len(verdicts) != 1 {
		t.Fatalf("registry holds %d vehicles, want 1", len(verdicts))
	}
	if verdicts["a"] != vehicle.VerdictProceed {
		t.Errorf("verdict[a] = %q, want proceed (sole approaching vehicle)", verdicts["a"])
	}
}

func TestSync_DropsVanishedVehicles(t *testing.T) {
	arb := New(30.0)
	arb.Register(snap("a", 10, prev(15)))
	arb.Register(snap("b", 20, prev(25)))

	arb.Sync(map[string]struct{}{"b": {}})

	if arb.Size() != 1 {
		t.Fatalf("Size() = %d after Sync, want 1", arb.Size())
	}
	verdicts := arb.Decide()
	if _, ok := verdicts["a"]; ok {
		t.Error("vanished vehicle must not receive a verdict")
	}
}

func TestDecide_StatelessAcrossTicks(t *testing.T) {
	// The arbiter must not remember past grants: the same registration
	// always yields the same verdicts.
	arb := New(30.0)
	arb.Register(snap("a", 10, prev(15)))
	arb.Register(snap("b", 12, prev(16)))

	first := arb.Decide()
	second := arb.Decide()

	for id := range first {
		if first[id] != second[id] {
			t.Errorf("verdict[%s] changed between identical decides: %q then %q",
				id, first[id], second[id])
		}
	}
}
