package search

import (
	"go.uber.org/zap"

	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/engineerr"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/queue"
)

// stEntry is a heap node over the 3D (cell, t) graph.
type stEntry struct {
	key     grid.SpaceTimeKey
	f       core.Cost
	invalid bool
}

func lessSTEntry(a, b *stEntry) bool { return a.f < b.f }

// saturateAdd adds two costs, collapsing to core.InvalidCost on overflow or
// if either input is already invalid — an invalid heuristic or edge cost
// must never wrap around into a deceptively small sum.
func saturateAdd(a, b core.Cost) core.Cost {
	if a == core.InvalidCost || b == core.InvalidCost {
		return core.InvalidCost
	}
	sum := int64(a) + int64(b)
	if sum >= int64(core.InvalidCost) {
		return core.InvalidCost
	}
	return core.Cost(sum)
}

// WHCAStar runs the windowed cooperative forward search over the 3D
// (x, y, t) graph, for t in [0, W]. It is constructed fresh for
// every window and disposed at the end of it; the RRA* search supplying
// its heuristic outlives it, persisting across windows for the same move.
type WHCAStar struct {
	graph        *grid.Graph
	pool         *grid.Pool
	cells        grid.Graph3D
	open         *queue.Queue[*stEntry]
	byKey        map[grid.SpaceTimeKey]*stEntry
	rra          *RRAStar
	reservations Reserver
	window       int32
	goal         core.CPos
	agent        core.AgentMobilityTrait
	ignore       core.AgentID
	startTick    core.WorldTick
	log          core.Logger
}

// Reserver is the subset of the reservation table WHCA* needs to consult
// while searching: whether a cell is held by someone else at a tick.
type Reserver interface {
	Check(x, y int32, tick int64, ignore core.AgentID) bool
}

// NewWHCAStar creates a windowed cooperative search of length window,
// starting at absolute world tick startTick, using rra as its admissible
// heuristic toward goal.
func NewWHCAStar(g *grid.Graph, pool *grid.Pool, rra *RRAStar, reservations Reserver, agent core.AgentMobilityTrait, goal core.CPos, ignore core.AgentID, window int32, startTick core.WorldTick, log core.Logger) *WHCAStar {
	w := &WHCAStar{
		graph:        g,
		pool:         pool,
		cells:        pool.Get3D(),
		byKey:        make(map[grid.SpaceTimeKey]*stEntry),
		rra:          rra,
		reservations: reservations,
		window:       window,
		goal:         goal,
		agent:        agent,
		ignore:       ignore,
		startTick:    startTick,
		log:          log,
	}
	w.open = queue.New(lessSTEntry)
	return w
}

// Run searches for a length-window cooperative path starting at start
// (the agent's current cell, t=0). It returns the path for t=1..W in
// back-to-front (destination-first) order, per reconstruct3D, or
// engineerr.ErrWindowEmpty if the open set is exhausted before any node at
// t=window is reached.
func (w *WHCAStar) Run(start core.CPos) ([]core.CPos, error) {
	w.log.Debug("whca*: window search starting",
		zap.Int32("window", w.window), zap.Int64("start_tick", int64(w.startTick)))

	h0 := w.rra.ResumeUntilClosed(start)
	if h0 == core.InvalidCost {
		w.log.Warn("whca*: start cell unreachable from goal", zap.Int32("x", start.X), zap.Int32("y", start.Y))
		return nil, engineerr.ErrUnreachable
	}

	root := w.cells.Get(start, 0)
	root.CostSoFar = 0
	root.Estimated = h0
	root.Status = grid.Open
	root.ArrivalTick = w.startTick
	rootKey := grid.SpaceTimeKey{C: start, T: 0}
	e0 := &stEntry{key: rootKey, f: h0}
	w.byKey[rootKey] = e0
	w.open.Add(e0)

	for {
		e, err := w.open.Pop()
		if err != nil {
			w.log.Warn("whca*: window search exhausted open set before reaching the window horizon",
				zap.Int32("window", w.window))
			return nil, engineerr.ErrWindowEmpty
		}
		if e.invalid {
			continue
		}
		ci := w.cells.Get(e.key.C, e.key.T)
		if ci.Status == grid.Closed {
			continue
		}
		ci.Status = grid.Closed
		delete(w.byKey, e.key)

		if e.key.T == w.window {
			return reconstruct3D(w.cells, e.key.C, e.key.T), nil
		}
		w.expand(e.key.C, e.key.T, ci)
	}
}

// expand relaxes every successor of (cell, t), restricting successor
// generation to cells RRA* has already closed where that does not starve
// the frontier: the absorbing goal self-loop when
// cell is the destination, the full successor set while the node itself
// was reached by waiting, and a fallback to the full set whenever the
// RRA*-closed restriction would otherwise leave nothing but waiting or
// stepping back to the predecessor.
func (w *WHCAStar) expand(cell core.CPos, t int32, ci *grid.CellInfo3D) {
	absTick := int64(w.startTick) + int64(t) + 1

	var previous *core.CPos
	if ci.HasPrevious {
		previous = &ci.Previous
	}

	reserved := func(c core.CPos) bool {
		return w.reservations != nil && w.reservations.Check(c.X, c.Y, absTick, w.ignore)
	}

	full := w.graph.Successors(w.agent, cell, previous, w.ignore, true, core.WorldTick(absTick), reserved)

	var candidates []grid.Edge
	switch {
	case cell == w.goal:
		for _, edge := range full {
			if edge.To == cell {
				candidates = append(candidates, edge)
			}
		}
	case ci.HasPrevious && ci.Previous == cell:
		// Reached (cell, t) by waiting: the RRA*-closed restriction below
		// would trivially degenerate to "wait again", so search the full
		// neighborhood instead.
		candidates = full
	default:
		candidates = w.restrictToClosed(full, cell, ci)
	}

	for _, edge := range candidates {
		nt := t + 1
		g := ci.CostSoFar + edge.Cost
		if cell == w.goal && edge.To == cell {
			g = ci.CostSoFar // absorbing: sitting at the goal costs nothing further.
		}

		to := w.cells.Get(edge.To, nt)
		if to.Status == grid.Closed {
			continue
		}
		if to.Status != grid.Unvisited && g >= to.CostSoFar {
			continue
		}

		h := w.rra.ResumeUntilClosed(edge.To)
		if h == core.InvalidCost {
			continue
		}
		f := saturateAdd(g, h)

		to.CostSoFar = g
		to.Estimated = f
		to.Previous = cell
		to.PrevT = t
		to.HasPrevious = true
		to.Status = grid.Open
		to.ArrivalTick = w.arrivalTick(ci.ArrivalTick, cell, edge.To)

		key := grid.SpaceTimeKey{C: edge.To, T: nt}
		if old, ok := w.byKey[key]; ok {
			old.invalid = true
		}
		ne := &stEntry{key: key, f: f}
		w.byKey[key] = ne
		w.open.Add(ne)
	}
}

// restrictToClosed keeps only successors RRA* has already settled (plus
// the self-loop and the step back to the predecessor, which are always
// retained), falling back to the full successor set if that leaves no
// forward progress at all.
func (w *WHCAStar) restrictToClosed(full []grid.Edge, cell core.CPos, ci *grid.CellInfo3D) []grid.Edge {
	var restricted []grid.Edge
	sawForwardProgress := false
	for _, edge := range full {
		isWait := edge.To == cell
		isBackstep := ci.HasPrevious && edge.To == ci.Previous
		if isWait || isBackstep || w.rra.IsClosed(edge.To) {
			restricted = append(restricted, edge)
			if !isWait && !isBackstep {
				sawForwardProgress = true
			}
		}
	}
	if !sawForwardProgress {
		return full
	}
	return restricted
}

// arrivalTick estimates the absolute tick at which the agent reaches to
// from cell, given it reached cell at fromTick: the time to traverse a
// cell at the agent's speed there, plus a turn penalty if the step
// requires facing away from the agent's current heading and it cannot
// turn in place for free.
func (w *WHCAStar) arrivalTick(fromTick core.WorldTick, cell, to core.CPos) core.WorldTick {
	speed := w.agent.MovementSpeedForCell(cell)
	ticks := int64(core.NormalMovementCost)
	if speed > 0 {
		ticks = int64(core.NormalMovementCost) / int64(speed)
	}

	if to != cell && !w.agent.AlwaysTurnInPlace() {
		want := core.FacingFromVec(core.CVec{DX: to.X - cell.X, DY: to.Y - cell.Y})
		turnSpeed := w.agent.TurnSpeed()
		if turnSpeed > 0 {
			delta := want.Delta(w.agent.Facing())
			if delta > 0 {
				ticks += int64(delta) / int64(turnSpeed)
			}
		}
	}

	return fromTick + core.WorldTick(ticks)
}

// Dispose releases the search's pooled 3D cell-info graph. It does not
// dispose the RRA* heuristic it was given, since that outlives individual
// windows.
func (w *WHCAStar) Dispose() {
	w.pool.Put3D(w.cells)
	w.cells = nil
	w.byKey = nil
}
