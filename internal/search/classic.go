package search

import (
	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/engineerr"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/queue"
)

// FindUnitPath runs a single-shot, non-cooperative A* from source to goal
// and returns the path in the engine's Path convention: ordered from
// destination back to source. It does not consult the reservation table —
// this is the plain utility search used for pre-spawn reachability checks
// and other one-off queries that do not require cooperation.
func FindUnitPath(g *grid.Graph, pool *grid.Pool, agent core.AgentMobilityTrait, source, goal core.CPos, ignore core.AgentID) ([]core.CPos, error) {
	cells := pool.Get2D()
	defer pool.Put2D(cells)

	open := queue.New(lessEntry)
	byCell := make(map[core.CPos]*entry)

	root := cells.Get(source)
	root.CostSoFar = 0
	root.Estimated = grid.Octile(source, goal)
	root.Status = grid.Open
	e0 := &entry{cell: source, f: root.Estimated}
	byCell[source] = e0
	open.Add(e0)

	for {
		e, err := open.Pop()
		if err != nil {
			return nil, engineerr.ErrUnreachable
		}
		if e.invalid {
			continue
		}
		ci := cells.Get(e.cell)
		if ci.Status == grid.Closed {
			continue
		}
		ci.Status = grid.Closed
		delete(byCell, e.cell)

		if e.cell == goal {
			return reconstruct2D(cells, goal), nil
		}

		var previous *core.CPos
		if ci.HasPrevious {
			previous = &ci.Previous
		}
		for _, edge := range g.Successors(agent, e.cell, previous, ignore, false, 0, nil) {
			if edge.To == e.cell {
				continue
			}
			ng := ci.CostSoFar + edge.Cost
			to := cells.Get(edge.To)
			if to.Status == grid.Closed {
				continue
			}
			if to.Status != grid.Unvisited && ng >= to.CostSoFar {
				continue
			}
			to.CostSoFar = ng
			to.Estimated = ng + grid.Octile(edge.To, goal)
			to.Previous = e.cell
			to.HasPrevious = true
			to.Status = grid.Open

			if old, ok := byCell[edge.To]; ok {
				old.invalid = true
			}
			ne := &entry{cell: edge.To, f: to.Estimated}
			byCell[edge.To] = ne
			open.Add(ne)
		}
	}
}

// FindUnitPathToRange behaves like FindUnitPath but succeeds as soon as
// any cell within radius cells of goal (Chebyshev distance, matching the
// octile neighborhood) is reached.
func FindUnitPathToRange(g *grid.Graph, pool *grid.Pool, agent core.AgentMobilityTrait, source, goal core.CPos, radius int32, ignore core.AgentID) ([]core.CPos, error) {
	inRange := func(c core.CPos) bool {
		dx, dy := c.X-goal.X, c.Y-goal.Y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		if dx > dy {
			return dx <= radius
		}
		return dy <= radius
	}
	if inRange(source) {
		return []core.CPos{source}, nil
	}

	cells := pool.Get2D()
	defer pool.Put2D(cells)

	open := queue.New(lessEntry)
	byCell := make(map[core.CPos]*entry)

	root := cells.Get(source)
	root.CostSoFar = 0
	root.Estimated = grid.Octile(source, goal)
	root.Status = grid.Open
	e0 := &entry{cell: source, f: root.Estimated}
	byCell[source] = e0
	open.Add(e0)

	for {
		e, err := open.Pop()
		if err != nil {
			return nil, engineerr.ErrUnreachable
		}
		if e.invalid {
			continue
		}
		ci := cells.Get(e.cell)
		if ci.Status == grid.Closed {
			continue
		}
		ci.Status = grid.Closed
		delete(byCell, e.cell)

		if inRange(e.cell) {
			return reconstruct2D(cells, e.cell), nil
		}

		var previous *core.CPos
		if ci.HasPrevious {
			previous = &ci.Previous
		}
		for _, edge := range g.Successors(agent, e.cell, previous, ignore, false, 0, nil) {
			if edge.To == e.cell {
				continue
			}
			ng := ci.CostSoFar + edge.Cost
			to := cells.Get(edge.To)
			if to.Status == grid.Closed {
				continue
			}
			if to.Status != grid.Unvisited && ng >= to.CostSoFar {
				continue
			}
			to.CostSoFar = ng
			to.Estimated = ng + grid.Octile(edge.To, goal)
			to.Previous = e.cell
			to.HasPrevious = true
			to.Status = grid.Open

			if old, ok := byCell[edge.To]; ok {
				old.invalid = true
			}
			ne := &entry{cell: edge.To, f: to.Estimated}
			byCell[edge.To] = ne
			open.Add(ne)
		}
	}
}
