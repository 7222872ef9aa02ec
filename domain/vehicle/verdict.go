package vehicle

// Verdict is the arbiter's per-vehicle, per-tick access decision. Verdicts
// are computed fresh every tick and never persisted.
type Verdict string

const (
	// VerdictProceed releases the vehicle toward the conflict zone.
	VerdictProceed Verdict = "proceed"

	// VerdictHold commands the vehicle to stop short of the conflict zone.
	VerdictHold Verdict = "hold"
)

// IsValid returns true if the verdict is a recognized value.
func (v Verdict) IsValid() bool {
	return v == VerdictProceed || v == VerdictHold
}

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	return string(v)
}

// BlockageState is the per-vehicle blockage lifecycle state. Transitions
// are edge-triggered by injected events and self-clear once the safety
// controller has reacted, at most once per occurrence.
type BlockageState string

const (
	// BlockageClear means no pending blockage.
	BlockageClear BlockageState = "clear"

	// BlockageLane means a lane-blocked event is pending for the vehicle.
	BlockageLane BlockageState = "lane_blocked"

	// BlockagePath means a path-blocked event is pending for the vehicle.
	BlockagePath BlockageState = "path_blocked"
)

// IsValid returns true if the blockage state is a recognized value.
func (b BlockageState) IsValid() bool {
	switch b {
	case BlockageClear, BlockageLane, BlockagePath:
		return true
	default:
		return false
	}
}

// Pending reports whether a reaction is still owed for this state.
func (b BlockageState) Pending() bool {
	return b == BlockageLane || b == BlockagePath
}

// String returns the string representation of the blockage state.
func (b BlockageState) String() string {
	return string(b)
}
