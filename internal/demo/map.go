// Package demo provides minimal, concrete implementations of every
// capability the engine expects an owning simulation to inject: Locomotor,
// Map, AgentMobilityTrait, World. It exists so the engine is runnable and
// testable standalone, and is used both by the engine's own tests and by
// cmd/whcadem.
package demo

import (
	"math"

	"github.com/fenwick-grid/whca/internal/core"
)

// TerrainSample is a single cell's movement cost, height, and blocker
// state, as stored by StaticMap.
type TerrainSample struct {
	Cost    core.Cost
	Height  int32
	Blocked bool
}

// StaticMap is a rectangular, sparse-overridden terrain grid: cells default
// to flat, unblocked, normal-cost terrain unless explicitly overridden via
// SetTerrain. It implements core.Map.
type StaticMap struct {
	Width     int32
	MapHeight int32
	cells     map[core.CPos]TerrainSample
	layers    []core.Layer
}

// NewStaticMap creates a width x height map of default (flat, open) terrain.
func NewStaticMap(width, height int32) *StaticMap {
	return &StaticMap{Width: width, MapHeight: height, cells: make(map[core.CPos]TerrainSample)}
}

// SetTerrain overrides the terrain sample at c.
func (m *StaticMap) SetTerrain(c core.CPos, t TerrainSample) {
	m.cells[c] = t
}

// SetLayers installs the map's custom movement layers (tunnels/bridges).
func (m *StaticMap) SetLayers(layers []core.Layer) {
	m.layers = layers
}

func (m *StaticMap) sample(c core.CPos) TerrainSample {
	if t, ok := m.cells[c]; ok {
		return t
	}
	return TerrainSample{Cost: core.NormalMovementCost}
}

// Contains reports whether c is within the map's bounds on a layer it has
// declared (ground is always in bounds; a custom layer must be enabled).
func (m *StaticMap) Contains(c core.CPos) bool {
	if c.X < 0 || c.Y < 0 || c.X >= m.Width || c.Y >= m.MapHeight {
		return false
	}
	if c.Ground() {
		return true
	}
	for _, l := range m.layers {
		if l.ID == c.Layer {
			return l.Enabled
		}
	}
	return false
}

// CenterOfCell returns the continuous-space center of c.
func (m *StaticMap) CenterOfCell(c core.CPos) core.WorldPos {
	return core.WorldPos{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5}
}

// FacingBetween returns the facing that points from from to to, or
// fallback if the two cells coincide.
func (m *StaticMap) FacingBetween(from, to core.CPos, fallback core.Facing) core.Facing {
	if from == to {
		return fallback
	}
	v := core.CVec{DX: sign32(to.X - from.X), DY: sign32(to.Y - from.Y)}
	return core.FacingFromVec(v)
}

// Height returns the terrain height at c.
func (m *StaticMap) Height(c core.CPos) int32 {
	return m.sample(c).Height
}

// FindTilesInCircle returns every in-bounds ground cell whose center lies
// within radius of center.
func (m *StaticMap) FindTilesInCircle(center core.WorldPos, radius float64) []core.CPos {
	var out []core.CPos
	minX, maxX := int32(math.Floor(center.X-radius)), int32(math.Ceil(center.X+radius))
	minY, maxY := int32(math.Floor(center.Y-radius)), int32(math.Ceil(center.Y+radius))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			c := core.CPos{X: x, Y: y}
			if !m.Contains(c) {
				continue
			}
			p := m.CenterOfCell(c)
			dx, dy := p.X-center.X, p.Y-center.Y
			if dx*dx+dy*dy <= radius*radius {
				out = append(out, c)
			}
		}
	}
	return out
}

// OffsetOfSubcell returns the continuous-space offset, relative to a
// cell's center, of one of its nine subcell positions (a 3x3 grid
// centered on the cell, subcell 4 being dead center).
func (m *StaticMap) OffsetOfSubcell(subcell int32) core.WorldPos {
	if subcell < 0 || subcell > 8 {
		subcell = 4
	}
	dx := float64(subcell%3-1) * (1.0 / 3.0)
	dy := float64(subcell/3-1) * (1.0 / 3.0)
	return core.WorldPos{X: dx, Y: dy}
}

// BetweenCells returns the continuous-space midpoint between a and b.
func (m *StaticMap) BetweenCells(a, b core.CPos) core.WorldPos {
	pa, pb := m.CenterOfCell(a), m.CenterOfCell(b)
	return core.WorldPos{X: (pa.X + pb.X) / 2, Y: (pa.Y + pb.Y) / 2}
}

// CustomLayers returns the map's declared custom movement layers.
func (m *StaticMap) CustomLayers() []core.Layer {
	return m.layers
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
