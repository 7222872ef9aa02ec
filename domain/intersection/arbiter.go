// Package intersection provides the first-come-first-served access arbiter
// for the shared intersection zone.
package intersection

import (
	"sort"

	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Arbiter grants mutually exclusive access to the intersection using a
// first-come-first-served rule on approach distance. It holds no memory of
// past grants: Decide is a pure function of the registered snapshots, so a
// held-back vehicle can starve if a competitor keeps re-qualifying as
// closer every tick. That is an accepted limitation of the reference rule,
// not something this implementation papers over.
type Arbiter struct {
	threshold float64
	registry  map[string]approach
}

// approach is the slice of a snapshot the arbiter consumes.
type approach struct {
	lanePos  float64
	prevPos  *float64
}

// New creates an arbiter with the given approach threshold in meters.
func New(threshold float64) *Arbiter {
	return &Arbiter{
		threshold: threshold,
		registry:  make(map[string]approach),
	}
}

// Register upserts a vehicle's current approach state. Registering the same
// ID twice within a tick overwrites the earlier registration.
func (a *Arbiter) Register(s vehicle.Snapshot) {
	a.registry[s.ID] = approach{
		lanePos: s.LanePosition,
		prevPos: s.PreviousLanePosition,
	}
}

// Drop removes a vehicle from the registry.
func (a *Arbiter) Drop(id string) {
	delete(a.registry, id)
}

// Sync discards every registered vehicle not present in the observed set.
func (a *Arbiter) Sync(observed map[string]struct{}) {
	for id := range a.registry {
		if _, ok := observed[id]; !ok {
			delete(a.registry, id)
		}
	}
}

// Size returns the number of registered vehicles.
func (a *Arbiter) Size() int {
	return len(a.registry)
}

// approaching reports whether a vehicle is moving toward the conflict point
// and still inside the approach zone. A missing previous position means
// "not approaching", never an error. The predicate assumes lane positions
// that count down toward the conflict point on approach lanes; see the
// direction notes in the safety package for the matching convention.
func (a *Arbiter) approaching(st approach) bool {
	return st.prevPos != nil && st.lanePos < *st.prevPos && st.lanePos < a.threshold
}

// Decide computes a verdict for every registered vehicle. If nobody is
// approaching, the zone is uncontended and everyone proceeds. Otherwise the
// approaching vehicle closest to the conflict point is the sole grantee;
// ties on lane position resolve to the lexicographically smallest ID so the
// outcome never depends on map iteration order.
func (a *Arbiter) Decide() map[string]vehicle.Verdict {
	verdicts := make(map[string]vehicle.Verdict, len(a.registry))

	var candidates []string
	for id, st := range a.registry {
		if a.approaching(st) {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) == 0 {
		for id := range a.registry {
			verdicts[id] = vehicle.VerdictProceed
		}
		return verdicts
	}

	sort.Slice(candidates, func(i, j int) bool {
		pi := a.registry[candidates[i]].lanePos
		pj := a.registry[candidates[j]].lanePos
		if pi != pj {
			return pi < pj
		}
		return candidates[i] < candidates[j]
	})
	grantee := candidates[0]

	approachingSet := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		approachingSet[id] = struct{}{}
	}

	for id := range a.registry {
		switch {
		case id == grantee:
			verdicts[id] = vehicle.VerdictProceed
		case contains(approachingSet, id):
			verdicts[id] = vehicle.VerdictHold
		default:
			// Already past the zone or well outside it.
			verdicts[id] = vehicle.VerdictProceed
		}
	}
	return verdicts
}

func contains(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
