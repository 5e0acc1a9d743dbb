// Package activity implements the per-agent move-activity state machine:
// the driver that consumes a windowed cooperative path one cell per tick,
// handling rewindowing, blockers, turning, waiting, and repathing.
package activity

import (
	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/pathfinder"
	"github.com/fenwick-grid/whca/internal/reservation"
	"github.com/fenwick-grid/whca/internal/search"
)

// Outcome is the terminal state a Move activity settles into once it
// stops requesting further ticks.
type Outcome int8

const (
	// Running is reported on every tick the activity has not finished.
	Running Outcome = iota
	// Arrived means the agent reached its destination (or a nudge-adjusted
	// stand-in for it) and the move finished cleanly. A move with no
	// destination, or whose destination has no enterable cell nearby, also
	// finishes as Arrived.
	Arrived
	// Abandoned means the move gave up: an unreachable goal, a window
	// search that produced nothing even after relaxing blockers, or an
	// external cancellation.
	Abandoned
)

type phase int8

const (
	phaseStartup phase = iota
	phaseWindowInit
	phaseStep
	phaseFinished
)

// MoveActivity drives one agent's move to a destination across many ticks.
type MoveActivity struct {
	agent core.MobilityCommand
	world core.World
	graph *grid.Graph
	pool  *grid.Pool
	pf    *pathfinder.Pathfinder
	rsv   *reservation.Table
	log   core.Logger

	ignore                 core.AgentID
	destination            core.CPos
	hasDestination         bool
	evaluateNearestMovable bool
	nearEnough             float64
	heuristicWeightPercent int32

	rra  *search.RRAStar
	path []core.CPos // consumption order is tail-first; tail = next step.
	w    int32       // -1 forces WindowInit.

	turnQueued      bool
	waitQueued      bool
	cancelRequested bool

	children []child
	phase    phase
	outcome  Outcome
}

// Config configures a new MoveActivity.
type Config struct {
	Agent                  core.MobilityCommand
	World                  core.World
	Graph                  *grid.Graph
	Pool                   *grid.Pool
	Pathfinder             *pathfinder.Pathfinder
	Reservations           *reservation.Table
	Log                    core.Logger
	Ignore                 core.AgentID
	Destination            core.CPos
	HasDestination         bool
	EvaluateNearestMovable bool
	NearEnough             float64 // cells; 0 disables the near-enough nudge/surrender path.
	HeuristicWeightPercent int32
}

// New creates a MoveActivity in its initial Startup phase.
func New(cfg Config) *MoveActivity {
	return &MoveActivity{
		agent:                  cfg.Agent,
		world:                  cfg.World,
		graph:                  cfg.Graph,
		pool:                   cfg.Pool,
		pf:                     cfg.Pathfinder,
		rsv:                    cfg.Reservations,
		log:                    cfg.Log,
		ignore:                 cfg.Ignore,
		destination:            cfg.Destination,
		hasDestination:         cfg.HasDestination,
		evaluateNearestMovable: cfg.EvaluateNearestMovable,
		nearEnough:             cfg.NearEnough,
		heuristicWeightPercent: cfg.HeuristicWeightPercent,
		w:                      -1,
		phase:                  phaseStartup,
	}
}

// Outcome reports the activity's terminal state. Meaningful once Done
// returns true.
func (m *MoveActivity) Outcome() Outcome { return m.outcome }

// Done reports whether the activity has finished (Arrived or Abandoned)
// and will no longer advance on Tick.
func (m *MoveActivity) Done() bool { return m.phase == phaseFinished }

// RequestCancel asks the activity to abandon its move at the next safe
// point — between half-steps, never mid-cell.
func (m *MoveActivity) RequestCancel() { m.cancelRequested = true }

// Tick advances the activity by one simulation tick.
func (m *MoveActivity) Tick(tick core.WorldTick) Outcome {
	if m.phase == phaseFinished {
		return m.outcome
	}
	if m.tickChildren() {
		return m.outcome
	}
	if m.cancelRequested {
		m.finish(Abandoned)
		return m.outcome
	}

	if m.phase == phaseStep && m.needsRewindow(tick) {
		m.phase = phaseWindowInit
	}

	switch m.phase {
	case phaseStartup:
		m.startup()
	case phaseWindowInit:
		m.windowInit(tick)
	case phaseStep:
		m.step(tick)
	}
	return m.outcome
}

// needsRewindow implements the WindowInit re-entry condition: w == -1,
// w >= W/2, or a global rewindow boundary that fires regardless of w.
func (m *MoveActivity) needsRewindow(tick core.WorldTick) bool {
	w := m.agent.Window()
	if m.w == -1 {
		return true
	}
	if w > 0 && m.w >= w/2 {
		return true
	}
	if reset := m.agent.ResetSpeed(); w > 0 && reset > 0 && int64(tick)%(int64(w)*int64(reset)) == 0 {
		return true
	}
	return false
}

func (m *MoveActivity) startup() {
	if !m.hasDestination {
		m.finish(Arrived)
		return
	}

	goal := m.destination
	if m.evaluateNearestMovable {
		snapped, ok := m.snapToNearestEnterable(goal)
		if !ok {
			m.finish(Arrived) // degenerate: nothing reachable near the destination.
			return
		}
		goal = snapped
		m.destination = snapped
	}

	m.rra = search.NewRRAStar(m.graph, m.pool, m.agent, goal, m.ignore, m.heuristicWeightPercent, m.log)
	m.w = -1
	m.phase = phaseWindowInit
}

// snapToNearestEnterable finds the nearest cell (by squared distance) to
// goal that the locomotor will let the agent enter, searching an
// expanding ring if goal itself is blocked.
func (m *MoveActivity) snapToNearestEnterable(goal core.CPos) (core.CPos, bool) {
	if m.graph.Loco.CanMoveFreelyInto(m.agent, goal, m.ignore) {
		return goal, true
	}
	center := m.graph.Map.CenterOfCell(goal)
	for radius := 1.0; radius <= 6.0; radius++ {
		best, bestDist, found := core.CPos{}, int64(0), false
		for _, c := range m.graph.Map.FindTilesInCircle(center, radius) {
			if !m.graph.Loco.CanMoveFreelyInto(m.agent, c, m.ignore) {
				continue
			}
			d := squaredDist(c, goal)
			if !found || d < bestDist {
				best, bestDist, found = c, d, true
			}
		}
		if found {
			return best, true
		}
	}
	return core.CPos{}, false
}

// windowInit tries WHCA* first respecting reservations, then ignoring
// them entirely, returning the first non-empty window. If both fail, the
// move ends cleanly as Abandoned, not as a fatal internal error. Any
// reservations still held from the previous window's now-obsolete suffix
// are freed first, so a rewindow or repath never leaves a phantom hold
// behind for other agents to trip over.
func (m *MoveActivity) windowInit(tick core.WorldTick) {
	m.rsv.FreeAgent(m.ignore)

	w := m.agent.Window()
	path, err := m.pf.FindPathWHCA(m.pool, m.agent, m.rra, m.destination, m.ignore, w, tick, true)
	if err != nil {
		path, err = m.pf.FindPathWHCA(m.pool, m.agent, m.rra, m.destination, m.ignore, w, tick, false)
	}
	if err != nil || len(path) == 0 {
		m.log.Warn("window search produced no path; abandoning move")
		m.finish(Abandoned)
		return
	}

	m.writeReservations(path, tick)
	m.path = path
	m.w = 0
	m.phase = phaseStep
}

// writeReservations commits the window path to the shared table for the
// ticks during which the agent will occupy each cell. path is ordered
// destination-first (t=W) back to t=1.
func (m *MoveActivity) writeReservations(path []core.CPos, tick core.WorldTick) {
	n := int64(len(path))
	for i, c := range path {
		at := int64(tick) + (n - int64(i))
		m.rsv.Reserve(c.X, c.Y, at, m.ignore)
	}
}

func (m *MoveActivity) step(tick core.WorldTick) {
	if len(m.path) == 0 {
		m.phase = phaseWindowInit
		return
	}

	current := m.agent.FromCell()
	if current == m.destination {
		m.finish(Arrived)
		return
	}
	next := m.path[len(m.path)-1]

	if !adjacentOrSame(current, next) {
		m.repath(tick)
		return
	}

	if next == current {
		if !m.waitQueued {
			m.path = m.path[:len(m.path)-1]
			m.queueWait(current)
		}
		return
	}

	canEnter := m.graph.Loco.CanMoveFreelyIntoCooperative(m.agent, next, tick+1, m.ignore, m.reservedAt(tick+1))
	if !canEnter {
		m.handleBlocked(tick, next)
		return
	}

	wantFacing := m.graph.Map.FacingBetween(current, next, m.agent.Facing())
	if !m.turnQueued && wantFacing.Delta(m.agent.Facing()) != 0 {
		m.queueTurn(wantFacing)
		return
	}
	m.turnQueued = false

	m.path = m.path[:len(m.path)-1]
	m.queueMoveFirstHalf(current, next)
}

// handleBlocked decides what to do when the next step in the window path
// is no longer enterable: near the destination, nudge sideways or
// surrender; otherwise repath.
func (m *MoveActivity) handleBlocked(tick core.WorldTick, next core.CPos) {
	if m.withinNearEnough() {
		if nudge, ok := m.nudgeCandidate(next); ok {
			m.path[len(m.path)-1] = nudge
			return
		}
		m.destination = m.agent.FromCell()
		m.finish(Arrived)
		return
	}
	m.repath(tick)
}

func (m *MoveActivity) withinNearEnough() bool {
	if m.nearEnough <= 0 {
		return false
	}
	from := m.graph.Map.CenterOfCell(m.agent.FromCell())
	dest := m.graph.Map.CenterOfCell(m.destination)
	dx, dy := from.X-dest.X, from.Y-dest.Y
	return dx*dx+dy*dy <= m.nearEnough*m.nearEnough
}

// nudgeCandidate looks for a neighbor of blocked that the agent can enter
// and that is no further from the destination than blocked itself.
func (m *MoveActivity) nudgeCandidate(blocked core.CPos) (core.CPos, bool) {
	base := squaredDist(blocked, m.destination)
	for _, d := range core.EightNeighborhood {
		c := blocked.Add(d)
		if !m.graph.Loco.CanMoveFreelyInto(m.agent, c, m.ignore) {
			continue
		}
		if squaredDist(c, m.destination) <= base {
			return c, true
		}
	}
	return core.CPos{}, false
}

// repath discards the current window and re-enters WindowInit this same
// tick. The reference Locomotor does not distinguish movable from
// immovable dynamic occupants, so this collapses the source's
// "immovable vs. last-resort all-blockers" distinction into WindowInit's
// own two-tier (reservations, then no reservations) relaxation.
func (m *MoveActivity) repath(tick core.WorldTick) {
	m.phase = phaseWindowInit
	m.windowInit(tick)
}

func (m *MoveActivity) reservedAt(tick core.WorldTick) core.BlockerPredicate {
	return func(c core.CPos) bool {
		return m.rsv.Check(c.X, c.Y, int64(tick), m.ignore)
	}
}

func (m *MoveActivity) finish(outcome Outcome) {
	m.rsv.FreeAgent(m.ignore)
	if m.rra != nil {
		m.rra.Dispose()
		m.rra = nil
	}
	m.path = nil
	m.pf.ForgetAgent(m.agent.ID())
	m.phase = phaseFinished
	m.outcome = outcome
}

func squaredDist(a, b core.CPos) int64 {
	dx, dy := int64(a.X-b.X), int64(a.Y-b.Y)
	return dx*dx + dy*dy
}

// adjacentOrSame reports whether b is reachable from a in a single step:
// either an 8-neighborhood step on the same layer, or a same-(x,y) layer
// transition.
func adjacentOrSame(a, b core.CPos) bool {
	if a.Layer != b.Layer {
		return a.X == b.X && a.Y == b.Y
	}
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1
}
