// Package reservation implements the shared space-time reservation table:
// a sparse map from (x, y, t mod T) to the agent that has committed to
// occupying that cell at that tick.
package reservation

import "github.com/fenwick-grid/whca/internal/core"

// DefaultTimeLength is the table's modulus. It must exceed any window size
// W in use so that wraparound cannot collide with live reservations.
const DefaultTimeLength = 4999

type key struct {
	X, Y int32
	T    int64
}

// Table is a per-player shared reservation table. It is mutated only by the
// currently-ticking agent; it is not safe for concurrent use.
type Table struct {
	length int64
	slots  map[key]core.AgentID
}

// New creates a reservation table with the given modulus. A modulus of 0
// falls back to DefaultTimeLength.
func New(timeLength int64) *Table {
	if timeLength <= 0 {
		timeLength = DefaultTimeLength
	}
	return &Table{length: timeLength, slots: make(map[key]core.AgentID)}
}

func (t *Table) wrap(tick int64) int64 {
	m := tick % t.length
	if m < 0 {
		m += t.length
	}
	return m
}

// Reserve records that agent occupies (x, y) at tick. Overwrites whatever
// previously held that wrapped slot, per the table's cyclic-overwrite
// semantics.
func (t *Table) Reserve(x, y int32, tick int64, agent core.AgentID) {
	t.slots[key{X: x, Y: y, T: t.wrap(tick)}] = agent
}

// Free clears the reservation at (x, y, tick), if any.
func (t *Table) Free(x, y int32, tick int64) {
	delete(t.slots, key{X: x, Y: y, T: t.wrap(tick)})
}

// Check reports whether (x, y, tick) is currently reserved by some agent
// other than ignore.
func (t *Table) Check(x, y int32, tick int64, ignore core.AgentID) bool {
	holder, ok := t.slots[key{X: x, Y: y, T: t.wrap(tick)}]
	if !ok {
		return false
	}
	return holder != ignore
}

// HolderAt returns the agent holding (x, y, tick), if any.
func (t *Table) HolderAt(x, y int32, tick int64) (core.AgentID, bool) {
	holder, ok := t.slots[key{X: x, Y: y, T: t.wrap(tick)}]
	return holder, ok
}

// FreeAgent clears every reservation currently held by agent. Used when an
// agent cancels or abandons a move and its remaining committed cells must
// be released.
func (t *Table) FreeAgent(agent core.AgentID) {
	for k, holder := range t.slots {
		if holder == agent {
			delete(t.slots, k)
		}
	}
}
