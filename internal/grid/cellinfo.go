// Package grid implements the grid/space-time graph abstraction and the
// per-cell search bookkeeping it is built on.
package grid

import "github.com/fenwick-grid/whca/internal/core"

// Status is the lifecycle state of a cell-info record within a single
// search. Duplicate/Invalid exist because the priority queue (internal/
// queue) has no decrease-key operation: a better path to an already-open
// node is pushed as a fresh entry, and the stale one is marked so it is
// discarded when it is later popped.
type Status int8

const (
	Unvisited Status = iota
	Open
	Duplicate
	Closed
	Invalid
)

// CellInfo is the 2D per-cell search record used by classic A* and RRA*.
type CellInfo struct {
	CostSoFar   core.Cost // g
	Estimated   core.Cost // f = g + h
	Previous    core.CPos
	HasPrevious bool
	Status      Status
}

// CellInfo3D is the space-time per-(cell, timestep) search record used by
// WHCA*.
type CellInfo3D struct {
	CostSoFar    core.Cost
	Estimated    core.Cost
	Previous     core.CPos
	PrevT        int32
	HasPrevious  bool
	Status       Status
	ArrivalTick  core.WorldTick
}

// SpaceTimeKey identifies a node of the 3D (x, y, t) graph.
type SpaceTimeKey struct {
	C core.CPos
	T int32
}

// Graph2D is a pooled, per-search map from cell to its search record.
type Graph2D map[core.CPos]*CellInfo

// Graph3D is a pooled, per-search map from (cell, timestep) to its search
// record. It is sparse: only touched nodes are present.
type Graph3D map[SpaceTimeKey]*CellInfo3D

// Get returns the record for c, creating an Unvisited one if absent.
func (g Graph2D) Get(c core.CPos) *CellInfo {
	if ci, ok := g[c]; ok {
		return ci
	}
	ci := &CellInfo{}
	g[c] = ci
	return ci
}

// Get returns the record for (c, t), creating an Unvisited one if absent.
func (g Graph3D) Get(c core.CPos, t int32) *CellInfo3D {
	k := SpaceTimeKey{C: c, T: t}
	if ci, ok := g[k]; ok {
		return ci
	}
	ci := &CellInfo3D{}
	g[k] = ci
	return ci
}
