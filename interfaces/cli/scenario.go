package cli

import (
	"fmt"

	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
	"github.com/felixgeelhaar/v2x-go/infrastructure/simulator"
)

// approachDirection locates one arm of the demo intersection.
type approachDirection struct {
	edge   string
	exit   string
	dx, dy float64 // unit vector pointing away from the center
}

// demoCenter is the midpoint of the demo conflict zone (480..520 square).
const (
	demoCenter   = 500.0
	demoZoneHalf = 20.0
)

// demoScenario scripts four vehicles crossing an unsignalized four-way
// intersection, one per arm, with staggered arrivals so the arbiter has
// real contention to resolve. Vehicles leave the network once they pass
// the junction, so a run drains naturally.
func demoScenario() *simulator.Scripted {
	directions := []approachDirection{
		{edge: "north_in", exit: "south_out", dx: 0, dy: 1},
		{edge: "east_in", exit: "west_out", dx: 1, dy: 0},
		{edge: "south_in", exit: "north_out", dx: 0, dy: -1},
		{edge: "west_in", exit: "east_out", dx: -1, dy: 0},
	}

	sim := simulator.NewScripted()
	for _, d := range directions {
		sim.SetLaneCount(d.edge, 2)
		sim.SetRouteTable(d.edge, d.exit, []string{d.edge, d.exit})
	}

	// Staggered entry distances; every vehicle closes 10 m per tick.
	starts := []float64{55, 62, 69, 76}
	const step = 10.0

	for tick := 0; ; tick++ {
		var observations []simulator.Observation
		for i, d := range directions {
			lanePos := starts[i] - float64(tick)*step
			if lanePos < 0 {
				continue // past the junction, gone from the network
			}
			// Lane position measures remaining distance to the stop line;
			// the map position sits that far plus the zone half-width out.
			offset := lanePos + demoZoneHalf
			observations = append(observations, simulator.Observation{
				ID:           fmt.Sprintf("veh%d", i),
				EdgeID:       d.edge,
				LaneID:       d.edge + "_0",
				LaneIndex:    0,
				LanePosition: lanePos,
				Speed:        step,
				Route:        []string{d.edge, d.exit},
				Length:       5,
				TypeID:       "passenger",
				Position: vehicle.Position{
					X: demoCenter + d.dx*offset,
					Y: demoCenter + d.dy*offset,
				},
			})
		}
		if len(observations) == 0 {
			break
		}
		sim.AddTick(observations...)
	}

	return sim
}
