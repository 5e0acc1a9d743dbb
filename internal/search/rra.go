package search

import (
	"go.uber.org/zap"

	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/queue"
)

// DefaultHeuristicWeightPercent is the RRA* heuristic weight used when a
// caller does not override it: 100 keeps the heuristic admissible and
// RRA*/WHCA* jointly optimal.
const DefaultHeuristicWeightPercent = 100

// entry is a heap node wrapping a cell with the f value it was pushed
// with. invalid is set on the previous entry for a cell when a cheaper
// path supersedes it — the heap has no decrease-key, so the stale entry
// is left in place and discarded lazily when popped.
type entry struct {
	cell    core.CPos
	f       core.Cost
	invalid bool
}

func lessEntry(a, b *entry) bool { return a.f < b.f }

// RRAStar is a goal-rooted, resumable A* search used as WHCA*'s
// admissible heuristic. It is constructed once per agent move
// and resumed incrementally as WHCA* asks for the distance to cells it has
// not yet priced; work already done toward previously asked cells is never
// repeated, since the underlying cell-info graph persists across calls to
// ResumeUntilClosed until Dispose.
type RRAStar struct {
	graph  *grid.Graph
	pool   *grid.Pool
	cells  grid.Graph2D
	open   *queue.Queue[*entry]
	byCell map[core.CPos]*entry

	goal   core.CPos
	origin core.CPos // fixed at construction; never re-read from the live agent.

	agent         core.AgentMobilityTrait
	ignore        core.AgentID
	weightPercent int32

	log      core.Logger
	disposed bool
}

// NewRRAStar creates an RRA* search rooted at goal, with its internal
// heuristic pointed at the agent's current FromCell — captured once, here,
// as origin. weightPercent scales the heuristic (100 = admissible; >100
// trades optimality for speed). A weightPercent of 0 falls back to
// DefaultHeuristicWeightPercent.
func NewRRAStar(g *grid.Graph, pool *grid.Pool, agent core.AgentMobilityTrait, goal core.CPos, ignore core.AgentID, weightPercent int32, log core.Logger) *RRAStar {
	if weightPercent <= 0 {
		weightPercent = DefaultHeuristicWeightPercent
	}
	r := &RRAStar{
		graph:         g,
		pool:          pool,
		cells:         pool.Get2D(),
		byCell:        make(map[core.CPos]*entry),
		goal:          goal,
		origin:        agent.FromCell(),
		agent:         agent,
		ignore:        ignore,
		weightPercent: weightPercent,
		log:           log,
	}
	r.open = queue.New(lessEntry)

	root := r.cells.Get(goal)
	root.CostSoFar = 0
	root.Estimated = r.heuristic(goal)
	root.Status = grid.Open
	e := &entry{cell: goal, f: root.Estimated}
	r.byCell[goal] = e
	r.open.Add(e)
	return r
}

// heuristic is the octile distance from c to the agent's fixed origin
// cell, scaled by weightPercent/100.
func (r *RRAStar) heuristic(c core.CPos) core.Cost {
	h := grid.Octile(c, r.origin)
	return core.Cost(int64(h) * int64(r.weightPercent) / 100)
}

// IsClosed reports whether c has already been settled by this search,
// without forcing any further expansion. WHCA* uses this to restrict its
// own successor generation to cells RRA* has already priced, avoiding a
// resume call on the common path.
func (r *RRAStar) IsClosed(c core.CPos) bool {
	ci, ok := r.cells[c]
	return ok && ci.Status == grid.Closed
}

// ResumeUntilClosed returns the shortest-path cost from c to goal,
// expanding the search only as far as necessary. Once a cell is closed its
// cost is final and is returned immediately without further work. Returns
// core.InvalidCost if c is unreachable from goal (the open set emptied
// first) — the caller treats this the same as any other blocked step
// rather than failing the whole search.
func (r *RRAStar) ResumeUntilClosed(c core.CPos) core.Cost {
	if ci, ok := r.cells[c]; ok && ci.Status == grid.Closed {
		return ci.CostSoFar
	}

	for {
		e, err := r.open.Pop()
		if err != nil {
			r.log.Debug("rra*: open set exhausted before target closed",
				zap.Int32("x", c.X), zap.Int32("y", c.Y), zap.Int32("layer", c.Layer))
			return core.InvalidCost
		}
		if e.invalid {
			continue
		}
		ci := r.cells.Get(e.cell)
		if ci.Status == grid.Closed {
			continue
		}
		ci.Status = grid.Closed
		delete(r.byCell, e.cell)

		if e.cell == c {
			return ci.CostSoFar
		}
		r.expand(e.cell, ci)
	}
}

// expand relaxes every successor of cell (searched in the direction away
// from goal, toward wherever the agent might be). RRA* runs over the
// Standard (non-cooperative) successor set: it is a static heuristic, not
// itself subject to reservations.
func (r *RRAStar) expand(cell core.CPos, ci *grid.CellInfo) {
	var previous *core.CPos
	if ci.HasPrevious {
		previous = &ci.Previous
	}

	for _, edge := range r.graph.Successors(r.agent, cell, previous, r.ignore, false, 0, nil) {
		if edge.To == cell {
			continue // RRA* never waits; it is a static-graph distance field.
		}
		ng := ci.CostSoFar + edge.Cost
		to := r.cells.Get(edge.To)
		if to.Status == grid.Closed {
			continue
		}
		if to.Status != grid.Unvisited && ng >= to.CostSoFar {
			continue
		}

		to.CostSoFar = ng
		to.Estimated = ng + r.heuristic(edge.To)
		to.Previous = cell
		to.HasPrevious = true
		to.Status = grid.Open

		if old, ok := r.byCell[edge.To]; ok {
			old.invalid = true
		}
		ne := &entry{cell: edge.To, f: to.Estimated}
		r.byCell[edge.To] = ne
		r.open.Add(ne)
	}
}

// PathTo returns the shortest path from source to this search's goal, in
// the engine's Path convention (destination back to source), reusing
// whatever portion of the backward search is already closed and resuming
// the rest. Returns nil if source is unreachable. This is the cheap path
// find_path(search) takes: unlike FindUnitPath, it never runs a second,
// independent forward search — it simply walks the distances RRA* already
// computed.
func (r *RRAStar) PathTo(source core.CPos) []core.CPos {
	if r.ResumeUntilClosed(source) == core.InvalidCost {
		return nil
	}
	path := reconstruct2D(r.cells, source) // [source, ..., goal]
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Dispose releases the search's pooled cell-info graph back to pool.
// Idempotent.
func (r *RRAStar) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.pool.Put2D(r.cells)
	r.cells = nil
	r.byCell = nil
}
