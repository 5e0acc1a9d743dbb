package demo

import "github.com/fenwick-grid/whca/internal/core"

// Agent is the reference AgentMobilityTrait: a grid actor moving between
// two cells and two subcells at a fixed speed and turn rate.
type Agent struct {
	AgentID core.AgentID

	From, To        core.CPos
	FromSub, ToSub  int32
	FacingAngle     core.Facing
	TurnRate        int32
	Speed           int32
	TurnInPlaceOnly bool
	WindowSize      int32
	ResetSpeedValue int32
	Ignore          core.BlockerMask
}

// NewAgent creates an agent parked at start, facing facing, with the given
// window length and movement/turn speeds. ResetSpeedValue defaults to 1 (the
// rewindow-cadence multiplier, unrelated to movement speed); set the field
// directly to override it.
func NewAgent(id core.AgentID, start core.CPos, facing core.Facing, window, speed, turnRate int32) *Agent {
	return &Agent{
		AgentID:         id,
		From:            start,
		To:              start,
		FacingAngle:     facing,
		TurnRate:        turnRate,
		Speed:           speed,
		WindowSize:      window,
		ResetSpeedValue: 1,
	}
}

func (a *Agent) ID() core.AgentID        { return a.AgentID }
func (a *Agent) FromCell() core.CPos     { return a.From }
func (a *Agent) ToCell() core.CPos       { return a.To }
func (a *Agent) FromSubcell() int32      { return a.FromSub }
func (a *Agent) ToSubcell() int32        { return a.ToSub }
func (a *Agent) Facing() core.Facing     { return a.FacingAngle }
func (a *Agent) TurnSpeed() int32        { return a.TurnRate }
func (a *Agent) AlwaysTurnInPlace() bool { return a.TurnInPlaceOnly }
func (a *Agent) Window() int32           { return a.WindowSize }
func (a *Agent) ResetSpeed() int32       { return a.ResetSpeedValue }
func (a *Agent) IgnoreMask() core.BlockerMask { return a.Ignore }

// MovementSpeedForCell returns the agent's uniform movement speed,
// irrespective of which cell it is entering — a richer AgentMobilityTrait
// could vary this by terrain type.
func (a *Agent) MovementSpeedForCell(c core.CPos) int32 { return a.Speed }

func (a *Agent) SetFromCell(c core.CPos)    { a.From = c }
func (a *Agent) SetToCell(c core.CPos)      { a.To = c }
func (a *Agent) SetFromSubcell(s int32)     { a.FromSub = s }
func (a *Agent) SetToSubcell(s int32)       { a.ToSub = s }
func (a *Agent) SetFacing(f core.Facing)    { a.FacingAngle = f }

// SettleAt parks the agent at cell/subcell with no move in progress,
// facing facing.
func (a *Agent) SettleAt(cell core.CPos, subcell int32, facing core.Facing) {
	a.From, a.To = cell, cell
	a.FromSub, a.ToSub = subcell, subcell
	a.FacingAngle = facing
}
