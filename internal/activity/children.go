package activity

import "github.com/fenwick-grid/whca/internal/core"

// child is a single queued sub-activity: a closure ticked once per
// simulation tick until it reports done, then an optional completion
// hook. The Move activity's child activities (Turn, WaitFor, MoveFirstHalf,
// MoveSecondHalf) are modeled this way rather than as a second
// state-machine type — a stack of coroutine-like closures, each consuming
// whole ticks.
type child struct {
	tick func() bool
	done func()
}

func (m *MoveActivity) pushChild(c child) {
	m.children = append(m.children, c)
}

// tickChildren advances the top of the child stack, if any, popping and
// firing its completion hook once it reports done. Reports whether a
// child was present (and therefore consumed this tick).
func (m *MoveActivity) tickChildren() bool {
	n := len(m.children)
	if n == 0 {
		return false
	}
	top := m.children[n-1]
	if top.tick() {
		m.children = m.children[:n-1]
		if top.done != nil {
			top.done()
		}
	}
	return true
}

// queueTurn pushes a Turn child that rotates the agent's facing toward
// target over turn_angle/turn_speed ticks, snapping to target on
// completion.
func (m *MoveActivity) queueTurn(target core.Facing) {
	delta := target.Delta(m.agent.Facing())
	ticks := int64(1)
	if speed := m.agent.TurnSpeed(); speed > 0 {
		if n := int64(delta) / int64(speed); n > ticks {
			ticks = n
		}
	}
	remaining := ticks
	m.turnQueued = true
	m.pushChild(child{
		tick: func() bool {
			remaining--
			if remaining <= 0 {
				m.agent.SetFacing(target)
				return true
			}
			return false
		},
		done: func() { m.turnQueued = false },
	})
}

// queueWait pushes a WaitFor child that counts down 1024/movement_speed
// ticks, or fires early at the next rewindow boundary. w is incremented
// immediately, before the wait itself finishes.
func (m *MoveActivity) queueWait(cell core.CPos) {
	ticks := int64(core.NormalMovementCost)
	if speed := m.agent.MovementSpeedForCell(cell); speed > 0 {
		ticks = int64(core.NormalMovementCost) / int64(speed)
	}
	if ticks < 1 {
		ticks = 1
	}
	remaining := ticks
	m.w++
	m.waitQueued = true
	m.pushChild(child{
		tick: func() bool {
			remaining--
			if remaining <= 0 {
				return true
			}
			return m.atRewindowBoundary()
		},
		done: func() { m.waitQueued = false },
	})
}

// halfStepTicks is the duration of one half of a two-phase interpolated
// move between adjacent cells from->to.
func (m *MoveActivity) halfStepTicks(from, to core.CPos) int64 {
	total := int64(core.NormalMovementCost)
	if speed := m.agent.MovementSpeedForCell(to); speed > 0 {
		total = int64(core.NormalMovementCost) / int64(speed)
	}
	if from.X != to.X && from.Y != to.Y {
		total = total * 34 / 24
	}
	half := total / 2
	if half < 1 {
		half = 1
	}
	return half
}

// queueMoveFirstHalf pushes the first half of a two-phase interpolated
// move: the agent visually travels from its cell center toward the
// between-cells midpoint. ToCell is updated immediately so that
// concurrent queries (reservations, other agents' searches) see the
// commitment as soon as it is made.
func (m *MoveActivity) queueMoveFirstHalf(from, to core.CPos) {
	m.agent.SetToCell(to)
	half := m.halfStepTicks(from, to)
	remaining := half
	m.pushChild(child{
		tick: func() bool {
			remaining--
			return remaining <= 0
		},
		done: func() { m.onMoveFirstHalfDone(from, to, half) },
	})
}

// queueMoveSecondHalf pushes the second half of a two-phase interpolated
// move, which finalizes the agent's position in cell.
func (m *MoveActivity) queueMoveSecondHalf(cell core.CPos, ticks int64) {
	remaining := ticks
	m.pushChild(child{
		tick: func() bool {
			remaining--
			return remaining <= 0
		},
		done: func() { m.agent.SetFromCell(cell) },
	})
}

// onMoveFirstHalfDone fires once the first half of an interpolated move
// completes: w is incremented, and the activity either chains directly
// into another MoveFirstHalf (a sharp turn is imminent, or the agent
// cannot curve) or settles through MoveSecondHalf.
func (m *MoveActivity) onMoveFirstHalfDone(from, to core.CPos, half int64) {
	m.w++

	next, hasNext := m.peekNextStep()
	if hasNext && next != to {
		wantFacing := m.graph.Map.FacingBetween(to, next, m.agent.Facing())
		delta := wantFacing.Delta(m.agent.Facing())
		sharp := delta >= 384 && delta <= 640
		if sharp || m.agent.AlwaysTurnInPlace() {
			m.agent.SetFromCell(to)
			m.path = m.path[:len(m.path)-1]
			m.queueMoveFirstHalf(to, next)
			return
		}
	}

	m.queueMoveSecondHalf(to, half)
}

func (m *MoveActivity) atRewindowBoundary() bool {
	w, reset := m.agent.Window(), m.agent.ResetSpeed()
	if w <= 0 || reset <= 0 {
		return false
	}
	return int64(m.world.WorldTick())%(int64(w)*int64(reset)) == 0
}

func (m *MoveActivity) peekNextStep() (core.CPos, bool) {
	if len(m.path) == 0 {
		return core.CPos{}, false
	}
	return m.path[len(m.path)-1], true
}
