// Package pathfinder implements the facade the rest of the engine (and any
// external caller) talks to: it dispatches the exposed search operations
// and caches each agent's most recently computed path.
package pathfinder

import (
	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/reservation"
	"github.com/fenwick-grid/whca/internal/search"
)

// cached is the most recent path computed for an agent, kept so callers
// can cheaply tell, through LastPath, whether a previously returned path is
// still the one in force.
type cached struct {
	Goal   core.CPos
	Window int32
	Path   []core.CPos
}

// Pathfinder dispatches the engine's search variants and remembers each
// agent's last computed path.
type Pathfinder struct {
	graph         *grid.Graph
	reservations  *reservation.Table
	weightPercent int32
	log           core.Logger
	lastPath      map[core.AgentID]cached
}

// New creates a Pathfinder over graph, consulting reservations for the
// cooperative variants. weightPercent configures fresh RRA* instances this
// facade creates internally (the one-shot find_unit_path_whca/
// find_unit_path_to_range calls); callers that own a long-lived RRA* (the
// Move activity) configure it themselves at construction.
func New(graph *grid.Graph, reservations *reservation.Table, weightPercent int32, log core.Logger) *Pathfinder {
	return &Pathfinder{
		graph:         graph,
		reservations:  reservations,
		weightPercent: weightPercent,
		log:           log,
		lastPath:      make(map[core.AgentID]cached),
	}
}

// FindUnitPath runs a non-cooperative, single-shot A* from source to goal.
// Returns an empty slice — never an error — when goal is unreachable.
func (p *Pathfinder) FindUnitPath(pool *grid.Pool, agent core.AgentMobilityTrait, source, goal core.CPos, ignore core.AgentID) []core.CPos {
	path, err := search.FindUnitPath(p.graph, pool, agent, source, goal, ignore)
	if err != nil {
		return nil
	}
	p.remember(agent.ID(), goal, 0, path)
	return path
}

// FindUnitPathToRange behaves like FindUnitPath but accepts any cell
// within radius of goal.
func (p *Pathfinder) FindUnitPathToRange(pool *grid.Pool, agent core.AgentMobilityTrait, source, goal core.CPos, radius int32, ignore core.AgentID) []core.CPos {
	path, err := search.FindUnitPathToRange(p.graph, pool, agent, source, goal, radius, ignore)
	if err != nil {
		return nil
	}
	return path
}

// FindUnitPathWHCA runs a fresh, throwaway cooperative window search of
// length w from source toward goal. Unlike FindPathWHCA it owns its own
// RRA* heuristic for the duration of the call and disposes it before
// returning. On failure it pads with w copies of source rather than
// reporting an error, so callers always get a window-length path back.
func (p *Pathfinder) FindUnitPathWHCA(pool *grid.Pool, agent core.AgentMobilityTrait, source, goal core.CPos, ignore core.AgentID, w int32, tick core.WorldTick) []core.CPos {
	rra := search.NewRRAStar(p.graph, pool, agent, goal, ignore, p.weightPercent, p.log)
	defer rra.Dispose()

	whca := search.NewWHCAStar(p.graph, pool, rra, p.reservations, agent, goal, ignore, w, tick, p.log)
	defer whca.Dispose()

	path, err := whca.Run(source)
	if err != nil {
		return padWithSource(source, w)
	}
	p.remember(agent.ID(), goal, w, path)
	return path
}

// FindPath returns the shortest path from source to rra's goal, reusing
// rra's own (already partially or fully expanded) backward search rather
// than running an independent forward search. This is the form the Move
// activity uses once it already owns an RRA* for the current move.
func (p *Pathfinder) FindPath(agent core.AgentMobilityTrait, rra *search.RRAStar, source core.CPos) []core.CPos {
	path := rra.PathTo(source)
	if path == nil {
		return nil
	}
	p.remember(agent.ID(), path[0], 0, path)
	return path
}

// FindPathWHCA runs a windowed cooperative search of length w from the
// agent's current cell, using the agent's own long-lived rra as heuristic.
// respectReservations toggles whether the search consults the shared
// reservation table at all — the Move activity's WindowInit calls this
// twice, first respecting reservations, then without, as a two-tier
// blocker relaxation. Unlike FindUnitPathWHCA, failure is reported rather
// than padded: the caller decides how to react.
func (p *Pathfinder) FindPathWHCA(pool *grid.Pool, agent core.AgentMobilityTrait, rra *search.RRAStar, goal core.CPos, ignore core.AgentID, w int32, tick core.WorldTick, respectReservations bool) ([]core.CPos, error) {
	var reserver search.Reserver
	if respectReservations {
		reserver = p.reservations
	}

	whca := search.NewWHCAStar(p.graph, pool, rra, reserver, agent, goal, ignore, w, tick, p.log)
	defer whca.Dispose()

	path, err := whca.Run(agent.FromCell())
	if err != nil {
		return nil, err
	}
	p.remember(agent.ID(), goal, w, path)
	return path, nil
}

// LastPath returns the most recently cached path for agent, if any.
func (p *Pathfinder) LastPath(agent core.AgentID) ([]core.CPos, bool) {
	c, ok := p.lastPath[agent]
	if !ok {
		return nil, false
	}
	return c.Path, true
}

// ForgetAgent discards any cached path for agent, called when its Move
// activity finishes.
func (p *Pathfinder) ForgetAgent(agent core.AgentID) {
	delete(p.lastPath, agent)
}

func (p *Pathfinder) remember(id core.AgentID, goal core.CPos, w int32, path []core.CPos) {
	p.lastPath[id] = cached{Goal: goal, Window: w, Path: path}
}

// padWithSource returns w copies of source — the padding find_unit_path_whca
// falls back to when the target cannot be reached at all.
func padWithSource(source core.CPos, w int32) []core.CPos {
	if w <= 0 {
		return nil
	}
	pad := make([]core.CPos, w)
	for i := range pad {
		pad[i] = source
	}
	return pad
}
