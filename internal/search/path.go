// Package search implements the grid/space-time searches: the goal-anchored
// Reverse Resumable A* heuristic (RRA*), the windowed cooperative forward
// search (WHCA*), and the path reconstruction they share.
package search

import (
	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/grid"
)

// reconstruct2D follows Previous links from terminal back toward the
// search root, in traversal order: [terminal, ..., root]. This is the
// engine's Path convention — ordered from destination back to source — so
// the Move activity can consume it tail-first.
func reconstruct2D(cells grid.Graph2D, terminal core.CPos) []core.CPos {
	path := []core.CPos{terminal}
	c := terminal
	for {
		ci, ok := cells[c]
		if !ok || !ci.HasPrevious {
			return path
		}
		c = ci.Previous
		path = append(path, c)
	}
}

// reconstruct3D follows Previous/PrevT links from the terminal (cell, t)
// node back toward t=0, returning the W cells for t=W..1 in that order
// (the t=0 node is the agent's current position, not a move, and is
// excluded, so a full window path has exactly W cells). Consumption
// order is back-to-front: the Move activity pops from the tail, which
// yields t=1 first, t=W last.
func reconstruct3D(cells grid.Graph3D, terminal core.CPos, terminalT int32) []core.CPos {
	var path []core.CPos
	c, t := terminal, terminalT
	for t > 0 {
		path = append(path, c)
		ci, ok := cells[grid.SpaceTimeKey{C: c, T: t}]
		if !ok || !ci.HasPrevious {
			return path
		}
		c, t = ci.Previous, ci.PrevT
	}
	return path
}
