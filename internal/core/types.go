// Package core defines the shared data model for the cooperative pathfinding
// engine: cell positions, directions, facing, and the capability contracts
// injected by the owning simulation (locomotor, map, world, agent traits).
package core

import "github.com/google/uuid"

// CPos is an integer cell position. Layer 0 is the ground plane; nonzero
// layers are custom movement layers (tunnels, bridges) supplied by the map.
type CPos struct {
	X, Y  int32
	Layer int32
}

// Ground reports whether the position is on the ground plane.
func (c CPos) Ground() bool { return c.Layer == 0 }

// WithLayer returns the same (X, Y) on a different layer.
func (c CPos) WithLayer(layer int32) CPos { return CPos{X: c.X, Y: c.Y, Layer: layer} }

// CVec is a direction vector with components in {-1, 0, 1}.
type CVec struct {
	DX, DY int32
}

// Add returns the cell reached by stepping from c in direction v.
func (c CPos) Add(v CVec) CPos { return CPos{X: c.X + v.DX, Y: c.Y + v.DY, Layer: c.Layer} }

// IsDiagonal reports whether both components of the vector are nonzero.
func (v CVec) IsDiagonal() bool { return v.DX != 0 && v.DY != 0 }

// IsZero reports the "stay in place" self-loop vector.
func (v CVec) IsZero() bool { return v.DX == 0 && v.DY == 0 }

// EightNeighborhood is the full set of moves a cell offers, self excluded.
var EightNeighborhood = [8]CVec{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Facing is a 10-bit angle; 0-1023 maps to 0-360 degrees.
type Facing uint16

// FacingTurns is the modulus of the facing space.
const FacingTurns = 1024

// Delta returns the absolute angular distance between two facings, folded
// into [0, FacingTurns/2].
func (f Facing) Delta(other Facing) int {
	d := int(f) - int(other)
	if d < 0 {
		d = -d
	}
	if d > FacingTurns/2 {
		d = FacingTurns - d
	}
	return d
}

// FacingFromVec returns the facing closest to a unit direction vector.
func FacingFromVec(v CVec) Facing {
	switch {
	case v.DX == 1 && v.DY == 0:
		return 256
	case v.DX == 1 && v.DY == -1:
		return 192
	case v.DX == 0 && v.DY == -1:
		return 0
	case v.DX == -1 && v.DY == -1:
		return 960
	case v.DX == -1 && v.DY == 0:
		return 768
	case v.DX == -1 && v.DY == 1:
		return 704
	case v.DX == 0 && v.DY == 1:
		return 512
	case v.DX == 1 && v.DY == 1:
		return 320
	default:
		return 0
	}
}

// WorldTick is the monotonically increasing tick counter advanced by the
// external simulation loop.
type WorldTick int64

// AgentID uniquely identifies an agent across the reservation table and the
// pathfinder cache.
type AgentID string

// NewAgentID mints a fresh, stable agent identifier.
func NewAgentID() AgentID {
	return AgentID(uuid.New().String())
}

// Layer describes a custom movement layer (tunnel, bridge) above the ground
// plane, with asymmetric entry/exit costs.
type Layer struct {
	ID                int32
	Enabled           bool
	EntryMovementCost int32
	ExitMovementCost  int32
}
