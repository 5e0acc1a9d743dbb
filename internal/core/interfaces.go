package core

import "math"

// Cost is an edge or path cost in fixed movement-cost units (1024 per
// "normal" cell, matching the fixed-point convention the movement-speed and
// turn-speed fields use elsewhere in this package).
type Cost int32

// InvalidCost is the sentinel returned when a step is forbidden outright
// (impassable terrain, a blocker, a failed height gate).
const InvalidCost Cost = math.MaxInt32

// NormalMovementCost is the cost of entering an unobstructed, flat cell:
// the unit every other cost (diagonal scaling, lane bias, octile distance)
// is expressed in multiples of.
const NormalMovementCost Cost = 1024

// Valid reports whether a cost represents a passable step.
func (c Cost) Valid() bool { return c != InvalidCost }

// WorldPos is a continuous-space position, used only at the boundary with
// the map/render collaborator (cell centers, subcell offsets).
type WorldPos struct {
	X, Y float64
}

// BlockerMask is a bitmask of terrain/blocker classes an agent ignores,
// mirroring the locomotor's own ignore-mask convention.
type BlockerMask uint32

// BlockerPredicate reports whether a cell is effectively occupied for the
// purposes of a single search step. Callers close over whatever blocker
// source is relevant (static immovable actors, all actors, or — for the
// cooperative variant — the reservation table at a projected tick).
type BlockerPredicate func(CPos) bool

// Locomotor is the per-terrain movement-cost oracle injected by the owning
// simulation. Reservations reach it only through the blocker predicates the
// caller supplies; CanMoveFreelyInto may also consult whatever actor
// occupancy the implementation tracks itself (the reference
// demo.UniformLocomotor treats every other actor in its world as a blocker).
type Locomotor interface {
	// MovementCostToEnter returns the base cost of entering cell, or
	// InvalidCost if the terrain forbids it. canEnter additionally vetoes
	// cells that are enterable by terrain but blocked by an actor.
	MovementCostToEnter(agent AgentMobilityTrait, cell CPos, ignore AgentID, canEnter BlockerPredicate) Cost

	// CanMoveFreelyInto reports whether cell is enterable without consulting
	// the reservation table.
	CanMoveFreelyInto(agent AgentMobilityTrait, cell CPos, ignore AgentID) bool

	// CanMoveFreelyIntoCooperative additionally consults reserved, which
	// reports whether some other agent holds cell at tick.
	CanMoveFreelyIntoCooperative(agent AgentMobilityTrait, cell CPos, tick WorldTick, ignore AgentID, reserved BlockerPredicate) bool
}

// Map is the terrain/geometry oracle injected by the owning simulation.
type Map interface {
	Contains(c CPos) bool
	CenterOfCell(c CPos) WorldPos
	FacingBetween(from, to CPos, fallback Facing) Facing
	Height(c CPos) int32
	FindTilesInCircle(center WorldPos, radius float64) []CPos
	OffsetOfSubcell(subcell int32) WorldPos
	BetweenCells(a, b CPos) WorldPos
	CustomLayers() []Layer
}

// AgentMobilityTrait is the per-agent movement/geometry state the engine
// reads from and drives. Implemented by the owning simulation's actor.
type AgentMobilityTrait interface {
	ID() AgentID
	FromCell() CPos
	ToCell() CPos
	FromSubcell() int32
	ToSubcell() int32
	Facing() Facing
	TurnSpeed() int32 // angle units per tick
	MovementSpeedForCell(c CPos) int32
	AlwaysTurnInPlace() bool
	Window() int32 // W
	ResetSpeed() int32
	IgnoreMask() BlockerMask
}

// MobilityCommand is the write half of AgentMobilityTrait: the mutation
// surface the Move activity drives while executing a committed step
// (updating cell/subcell/facing). Actor/trait composition is treated as an
// external collaborator, and typically only documents the read side of an
// agent's mobility — but the engine cannot execute a move without some way
// to command it, so this module's injected agent type must supply both
// halves.
type MobilityCommand interface {
	AgentMobilityTrait
	SetFromCell(CPos)
	SetToCell(CPos)
	SetFromSubcell(int32)
	SetToSubcell(int32)
	SetFacing(Facing)
}

// World is the simulation-wide capability surface the engine reads.
type World interface {
	WorldTick() WorldTick
	ActorsAt(c CPos) []AgentID
	CustomMovementLayers() []Layer
}
