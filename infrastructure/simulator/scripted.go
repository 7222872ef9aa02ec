package simulator

import (
	"context"
	"fmt"
	"sync"
)

// CommandKind identifies a simulator command in the journal.
type CommandKind string

// Command kinds recorded by the scripted client.
const (
	CommandStep       CommandKind = "step"
	CommandSetSpeed   CommandKind = "set_speed"
	CommandChangeLane CommandKind = "change_lane"
	CommandSetRoute   CommandKind = "set_route"
)

// Command is one journaled simulator command.
type Command struct {
	Tick      int
	Kind      CommandKind
	VehicleID string
	Speed     float64
	Lane      int
	Urgency   float64
	Edges     []string
}

// Scripted is an in-memory Client fed from pre-scripted per-tick
// observations. Every command is journaled so tests can assert exactly
// what the coordination layer asked the simulator to do.
type Scripted struct {
	ticks      []map[string]Observation
	tick       int
	journal    []Command
	routes     map[string][]string // "from->to" -> edges
	laneCounts map[string]int
	failures   map[CommandKind]error
	closed     bool
	mu         sync.Mutex
}

// NewScripted creates an empty scripted client. Add ticks and topology
// before stepping.
func NewScripted() *Scripted {
	return &Scripted{
		routes:     make(map[string][]string),
		laneCounts: make(map[string]int),
		failures:   make(map[CommandKind]error),
	}
}

// AddTick appends one tick's worth of observations. The first added tick
// is the state visible before the first Step call.
func (s *Scripted) AddTick(observations ...Observation) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]Observation, len(observations))
	for _, o := range observations {
		byID[o.ID] = o
	}
	s.ticks = append(s.ticks, byID)
	return s
}

// SetLaneCount declares the number of lanes on an edge.
func (s *Scripted) SetLaneCount(edge string, lanes int) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.laneCounts[edge] = lanes
	return s
}

// SetRouteTable declares the edge sequence FindRoute returns for a pair.
func (s *Scripted) SetRouteTable(from, to string, edges []string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[from+"->"+to] = edges
	return s
}

// FailNext makes the next command of the given kind return err once.
func (s *Scripted) FailNext(kind CommandKind, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[kind] = err
	return s
}

// Journal returns a copy of all commands recorded so far.
func (s *Scripted) Journal() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Command, len(s.journal))
	copy(out, s.journal)
	return out
}

// Tick returns the current tick index.
func (s *Scripted) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// consumeFailure pops an injected error for the kind, if any (must hold lock).
func (s *Scripted) consumeFailure(kind CommandKind) error {
	if err, ok := s.failures[kind]; ok {
		delete(s.failures, kind)
		return err
	}
	return nil
}

// current returns the observations for the current tick (must hold lock).
func (s *Scripted) current() map[string]Observation {
	if s.tick >= len(s.ticks) {
		return nil
	}
	return s.ticks[s.tick]
}

// Step advances to the next scripted tick.
func (s *Scripted) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.consumeFailure(CommandStep); err != nil {
		return err
	}

	s.journal = append(s.journal, Command{Tick: s.tick, Kind: CommandStep})
	if s.tick < len(s.ticks) {
		s.tick++
	}
	return nil
}

// VehicleIDs returns the IDs present in the current tick.
func (s *Scripted) VehicleIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	cur := s.current()
	ids := make([]string, 0, len(cur))
	for id := range cur {
		ids = append(ids, id)
	}
	return ids, nil
}

// Observe returns the scripted observation for a vehicle at the current tick.
func (s *Scripted) Observe(ctx context.Context, id string) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Observation{}, ErrClosed
	}

	o, ok := s.current()[id]
	if !ok {
		return Observation{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}
	return o, nil
}

// SetSpeed journals a speed command.
func (s *Scripted) SetSpeed(ctx context.Context, id string, speed float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.consumeFailure(CommandSetSpeed); err != nil {
		return err
	}

	s.journal = append(s.journal, Command{
		Tick: s.tick, Kind: CommandSetSpeed, VehicleID: id, Speed: speed,
	})
	return nil
}

// ChangeLane journals a lane change command.
func (s *Scripted) ChangeLane(ctx context.Context, id string, lane int, urgency float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.consumeFailure(CommandChangeLane); err != nil {
		return err
	}

	s.journal = append(s.journal, Command{
		Tick: s.tick, Kind: CommandChangeLane, VehicleID: id, Lane: lane, Urgency: urgency,
	})
	return nil
}

// SetRoute journals a route replacement command.
func (s *Scripted) SetRoute(ctx context.Context, id string, edges []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.consumeFailure(CommandSetRoute); err != nil {
		return err
	}

	s.journal = append(s.journal, Command{
		Tick: s.tick, Kind: CommandSetRoute, VehicleID: id, Edges: edges,
	})
	return nil
}

// FindRoute looks up the scripted route table.
func (s *Scripted) FindRoute(ctx context.Context, from, to string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	edges, ok := s.routes[from+"->"+to]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRoute, from, to)
	}
	return edges, nil
}

// LaneCount returns the declared lane count for an edge.
func (s *Scripted) LaneCount(ctx context.Context, edge string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	lanes, ok := s.laneCounts[edge]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrEdgeNotFound, edge)
	}
	return lanes, nil
}

// LaneIndex returns the vehicle's lane index at the current tick.
func (s *Scripted) LaneIndex(ctx context.Context, id string) (int, error) {
	o, err := s.Observe(ctx, id)
	if err != nil {
		return 0, err
	}
	return o.LaneIndex, nil
}

// ExpectedVehicles counts distinct vehicles at the current or any later
// tick. A run is over once this reaches zero.
func (s *Scripted) ExpectedVehicles(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	seen := make(map[string]struct{})
	for i := s.tick; i < len(s.ticks); i++ {
		for id := range s.ticks[i] {
			seen[id] = struct{}{}
		}
	}
	return len(seen), nil
}

// Close marks the client closed; all further calls fail.
func (s *Scripted) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure Scripted implements Client
var _ Client = (*Scripted)(nil)
