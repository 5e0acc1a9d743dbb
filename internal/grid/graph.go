package grid

import "github.com/fenwick-grid/whca/internal/core"

// Edge is a successor offered by the grid graph: a destination cell and the
// cost of the step that reaches it.
type Edge struct {
	To   core.CPos
	Cost core.Cost
}

// Graph answers "what can I step to, and what does it cost" queries for the
// grid/space-time graph. It holds no per-search state; a single
// Graph is shared by every search running against one map.
type Graph struct {
	Map      core.Map
	Loco     core.Locomotor
	LaneBias int32
	// ReverseLaneBias flips the parity test lane bias uses to pick a side,
	// so two opposing lanes of traffic settle on consistent, opposite sides.
	ReverseLaneBias bool
}

// NewGraph creates a Graph over the given terrain/locomotor capabilities.
func NewGraph(m core.Map, loco core.Locomotor, laneBias int32) *Graph {
	return &Graph{Map: m, Loco: loco, LaneBias: laneBias}
}

// octileDirections returns the neighborhood offered from current, pruned by
// the direction of travel that produced current. With no predecessor (a
// search root) the full 8-neighborhood is offered. Pruning admits only
// directions whose dot product with the incoming direction is
// non-negative: in a uniform grid under the octile metric, a neighbor
// strictly behind the direction of travel is never reached more cheaply
// through current than it would have been reached directly from the
// predecessor.
func octileDirections(incoming core.CVec, hasIncoming bool) []core.CVec {
	if !hasIncoming || incoming.IsZero() {
		return core.EightNeighborhood[:]
	}
	dirs := make([]core.CVec, 0, 8)
	for _, d := range core.EightNeighborhood {
		if int32(d.DX)*incoming.DX+int32(d.DY)*incoming.DY >= 0 {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Successors returns the outgoing edges from current. previous is the
// cell's recorded predecessor in the current search tree (nil at roots).
// cooperative selects the locomotor predicate used for dynamic occupancy:
// CanMoveFreelyInto for the Standard variant (RRA*, non-cooperative
// searches) or CanMoveFreelyIntoCooperative for the Cooperative variant
// (WHCA*), consulted through reserved at the successor's projected tick.
func (g *Graph) Successors(
	agent core.AgentMobilityTrait,
	current core.CPos,
	previous *core.CPos,
	ignore core.AgentID,
	cooperative bool,
	tick core.WorldTick,
	reserved core.BlockerPredicate,
) []Edge {
	var incoming core.CVec
	hasIncoming := previous != nil
	if hasIncoming {
		incoming = core.CVec{DX: current.X - previous.X, DY: current.Y - previous.Y}
	}

	canEnter := func(c core.CPos) bool {
		if cooperative {
			return g.Loco.CanMoveFreelyIntoCooperative(agent, c, tick, ignore, reserved)
		}
		return g.Loco.CanMoveFreelyInto(agent, c, ignore)
	}

	edges := make([]Edge, 0, 10)

	// Self-loop: required for WHCA* waiting; harmless to offer from
	// non-cooperative searches too, since they simply never take it.
	if canEnter(current) {
		edges = append(edges, Edge{To: current, Cost: g.waitCost(agent, current, ignore, canEnter)})
	}

	for _, d := range octileDirections(incoming, hasIncoming) {
		to := current.Add(d)
		if !g.Map.Contains(to) {
			continue
		}
		if d.IsDiagonal() {
			// Anti-corner-cutting: both orthogonal components of a
			// diagonal step must themselves be enterable.
			orthoA := current.Add(core.CVec{DX: d.DX, DY: 0})
			orthoB := current.Add(core.CVec{DX: 0, DY: d.DY})
			if !canEnter(orthoA) || !canEnter(orthoB) {
				continue
			}
		}
		cost := g.EdgeCost(agent, current, to, d.IsDiagonal(), ignore, canEnter)
		if !cost.Valid() {
			continue
		}
		edges = append(edges, Edge{To: to, Cost: cost})
	}

	edges = append(edges, g.layerTransitions(agent, current, ignore, canEnter)...)

	return edges
}

// waitCost is the cost of the "stay" self-loop: the same as the cost of
// re-entering the current cell's terrain, so waiting is never free unless a
// caller (WHCA*) special-cases it — which it does for the absorbing goal
// state.
func (g *Graph) waitCost(agent core.AgentMobilityTrait, current core.CPos, ignore core.AgentID, canEnter core.BlockerPredicate) core.Cost {
	return g.Loco.MovementCostToEnter(agent, current, ignore, canEnter)
}

// EdgeCost computes the cost of stepping from `from` to `to`: base
// locomotor cost, diagonal scaling, terrain-height gate, lane bias.
// Custom per-cell cost overrides are not modeled by this
// engine's reference Locomotor; a richer Locomotor may fold them into the
// value it returns from MovementCostToEnter, since this method treats that
// return value as already final apart from the diagonal/height/bias
// adjustments it applies itself.
func (g *Graph) EdgeCost(agent core.AgentMobilityTrait, from, to core.CPos, diagonal bool, ignore core.AgentID, canEnter core.BlockerPredicate) core.Cost {
	base := g.Loco.MovementCostToEnter(agent, to, ignore, canEnter)
	if !base.Valid() {
		return core.InvalidCost
	}

	cost := int64(base)
	if diagonal {
		cost = cost * 34 / 24
	}

	if from.Ground() && to.Ground() && from.Layer == to.Layer {
		dh := g.Map.Height(to) - g.Map.Height(from)
		if dh < 0 {
			dh = -dh
		}
		if dh > 1 {
			return core.InvalidCost
		}
	}

	if g.LaneBias != 0 {
		cost += int64(g.laneBiasPenalty(from, to))
	}

	if cost < 0 {
		cost = 0
	}
	if cost >= int64(core.InvalidCost) {
		return core.InvalidCost
	}
	return core.Cost(cost)
}

// laneBiasPenalty nudges cost by parity of (x [+1 if reversed], y [+1 if
// reversed]) and the sign of the step direction, so agents moving the same
// way through the same lane consistently favor one side over the other.
// The parity of the destination's x decides which vertical direction pays
// the bias, and the parity of its y which horizontal direction pays it.
func (g *Graph) laneBiasPenalty(from, to core.CPos) int32 {
	px, py := to.X, to.Y
	if g.ReverseLaneBias {
		px++
		py++
	}
	px, py = px&1, py&1
	dx, dy := to.X-from.X, to.Y-from.Y
	var penalty int32
	if (px == 0 && dy < 0) || (px == 1 && dy > 0) {
		penalty += g.LaneBias
	}
	if (py == 0 && dx < 0) || (py == 1 && dx > 0) {
		penalty += g.LaneBias
	}
	return penalty
}

// layerTransitions offers ground<->custom-layer teleport edges. On the
// ground layer, every enabled custom layer
// offers an edge onto itself at its EntryMovementCost; on a custom layer,
// the matching ground cell is offered at that layer's ExitMovementCost.
func (g *Graph) layerTransitions(agent core.AgentMobilityTrait, current core.CPos, ignore core.AgentID, canEnter core.BlockerPredicate) []Edge {
	var edges []Edge
	if current.Ground() {
		for _, l := range g.Map.CustomLayers() {
			if !l.Enabled {
				continue
			}
			to := core.CPos{X: current.X, Y: current.Y, Layer: l.ID}
			if !g.Map.Contains(to) || !canEnter(to) {
				continue
			}
			edges = append(edges, Edge{To: to, Cost: core.Cost(l.EntryMovementCost)})
		}
		return edges
	}

	for _, l := range g.Map.CustomLayers() {
		if l.ID != current.Layer {
			continue
		}
		to := core.CPos{X: current.X, Y: current.Y, Layer: 0}
		if g.Map.Contains(to) && canEnter(to) {
			edges = append(edges, Edge{To: to, Cost: core.Cost(l.ExitMovementCost)})
		}
		break
	}
	return edges
}

// Octile returns the admissible octile-distance lower bound between two
// cells on the same layer, in the same fixed-point cost units MovementCost
// uses for a "normal" (cost-1024) cell.
func Octile(a, b core.CPos) core.Cost {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	min, max := dx, dy
	if min > max {
		min, max = max, min
	}
	// max-min straight steps + min diagonal steps, each diagonal step costing
	// the same truncated 1024*34/24 that EdgeCost charges for it.
	return core.Cost(int64(max-min)*1024 + int64(min)*(1024*34/24))
}
