package event

// Blockage is an injected road-blockage notification. It is a two-case
// tagged variant: exactly one of the case constructors below produces a
// valid value, and each case carries its own typed location.
type Blockage interface {
	// Kind returns the blockage kind tag.
	Kind() BlockageKind

	// Location returns the affected edge or lane identifier.
	Location() string
}

// BlockageKind tags the blockage variant.
type BlockageKind string

const (
	// KindPathBlocked marks a full blockage of an edge on the path.
	KindPathBlocked BlockageKind = "path_blocked"

	// KindLaneBlocked marks a blockage of a single lane.
	KindLaneBlocked BlockageKind = "lane_blocked"
)

// PathBlocked reports that an entire edge is impassable.
type PathBlocked struct {
	// Edge is the affected edge identifier.
	Edge string
}

// Kind returns KindPathBlocked.
func (PathBlocked) Kind() BlockageKind { return KindPathBlocked }

// Location returns the affected edge identifier.
func (b PathBlocked) Location() string { return b.Edge }

// LaneBlocked reports that a single lane is impassable.
type LaneBlocked struct {
	// Lane is the affected lane identifier.
	Lane string
}

// Kind returns KindLaneBlocked.
func (LaneBlocked) Kind() BlockageKind { return KindLaneBlocked }

// Location returns the affected lane identifier.
func (b LaneBlocked) Location() string { return b.Lane }
