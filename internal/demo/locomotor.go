package demo

import "github.com/fenwick-grid/whca/internal/core"

// UniformLocomotor is a Locomotor whose cost comes straight from the
// map's terrain sample, gated by a static blocked flag and, cooperatively,
// by the reservation-aware predicate callers supply. It does not itself
// distinguish agent types: every agent pays the same terrain cost, the
// simplest Locomotor the engine's contract allows.
type UniformLocomotor struct {
	Map   *StaticMap
	World *ActorMap
}

// NewUniformLocomotor creates a Locomotor reading terrain from m and
// dynamic occupancy from w. w may be nil, in which case only static
// terrain blocks movement.
func NewUniformLocomotor(m *StaticMap, w *ActorMap) *UniformLocomotor {
	return &UniformLocomotor{Map: m, World: w}
}

// MovementCostToEnter returns cell's terrain cost, or InvalidCost if the
// terrain forbids entry outright or canEnter vetoes it.
func (l *UniformLocomotor) MovementCostToEnter(agent core.AgentMobilityTrait, cell core.CPos, ignore core.AgentID, canEnter core.BlockerPredicate) core.Cost {
	t := l.Map.sample(cell)
	if t.Blocked {
		return core.InvalidCost
	}
	if canEnter != nil && !canEnter(cell) {
		return core.InvalidCost
	}
	if t.Cost > 0 {
		return t.Cost
	}
	return core.NormalMovementCost
}

// CanMoveFreelyInto reports whether cell is open terrain and unoccupied
// by any actor other than ignore.
func (l *UniformLocomotor) CanMoveFreelyInto(agent core.AgentMobilityTrait, cell core.CPos, ignore core.AgentID) bool {
	if l.Map.sample(cell).Blocked {
		return false
	}
	if l.World == nil {
		return true
	}
	for _, occupant := range l.World.ActorsAt(cell) {
		if occupant != ignore {
			return false
		}
	}
	return true
}

// CanMoveFreelyIntoCooperative additionally consults the reservation
// predicate at the projected tick.
func (l *UniformLocomotor) CanMoveFreelyIntoCooperative(agent core.AgentMobilityTrait, cell core.CPos, tick core.WorldTick, ignore core.AgentID, reserved core.BlockerPredicate) bool {
	if !l.CanMoveFreelyInto(agent, cell, ignore) {
		return false
	}
	if reserved != nil && reserved(cell) {
		return false
	}
	return true
}
