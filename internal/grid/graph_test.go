package grid

import (
	"testing"

	"github.com/fenwick-grid/whca/internal/core"
)

// fakeMap is a minimal open, flat, layer-free Map for graph tests.
type fakeMap struct {
	width, height int32
	blocked       map[core.CPos]bool
	heights       map[core.CPos]int32
	layers        []core.Layer
}

func newFakeMap(w, h int32) *fakeMap {
	return &fakeMap{width: w, height: h, blocked: map[core.CPos]bool{}, heights: map[core.CPos]int32{}}
}

func (m *fakeMap) Contains(c core.CPos) bool {
	if c.Layer != 0 {
		for _, l := range m.layers {
			if l.ID == c.Layer {
				return c.X >= 0 && c.Y >= 0 && c.X < m.width && c.Y < m.height
			}
		}
		return false
	}
	return c.X >= 0 && c.Y >= 0 && c.X < m.width && c.Y < m.height
}
func (m *fakeMap) CenterOfCell(c core.CPos) core.WorldPos { return core.WorldPos{X: float64(c.X), Y: float64(c.Y)} }
func (m *fakeMap) FacingBetween(from, to core.CPos, fallback core.Facing) core.Facing {
	if from == to {
		return fallback
	}
	return core.FacingFromVec(core.CVec{DX: sign(to.X - from.X), DY: sign(to.Y - from.Y)})
}
func (m *fakeMap) Height(c core.CPos) int32                              { return m.heights[c] }
func (m *fakeMap) FindTilesInCircle(core.WorldPos, float64) []core.CPos  { return nil }
func (m *fakeMap) OffsetOfSubcell(int32) core.WorldPos                   { return core.WorldPos{} }
func (m *fakeMap) BetweenCells(a, b core.CPos) core.WorldPos             { return core.WorldPos{} }
func (m *fakeMap) CustomLayers() []core.Layer                            { return m.layers }

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// fakeLoco is an open-terrain Locomotor, with an optional set of cells
// that are always impassable.
type fakeLoco struct {
	blocked map[core.CPos]bool
}

func newFakeLoco() *fakeLoco { return &fakeLoco{blocked: map[core.CPos]bool{}} }

func (l *fakeLoco) MovementCostToEnter(agent core.AgentMobilityTrait, cell core.CPos, ignore core.AgentID, canEnter core.BlockerPredicate) core.Cost {
	if l.blocked[cell] {
		return core.InvalidCost
	}
	if canEnter != nil && !canEnter(cell) {
		return core.InvalidCost
	}
	return core.NormalMovementCost
}
func (l *fakeLoco) CanMoveFreelyInto(agent core.AgentMobilityTrait, cell core.CPos, ignore core.AgentID) bool {
	return !l.blocked[cell]
}
func (l *fakeLoco) CanMoveFreelyIntoCooperative(agent core.AgentMobilityTrait, cell core.CPos, tick core.WorldTick, ignore core.AgentID, reserved core.BlockerPredicate) bool {
	if l.blocked[cell] {
		return false
	}
	return reserved == nil || !reserved(cell)
}

type fakeAgent struct{ id core.AgentID }

func (a fakeAgent) ID() core.AgentID               { return a.id }
func (a fakeAgent) FromCell() core.CPos            { return core.CPos{} }
func (a fakeAgent) ToCell() core.CPos              { return core.CPos{} }
func (a fakeAgent) FromSubcell() int32             { return 0 }
func (a fakeAgent) ToSubcell() int32               { return 0 }
func (a fakeAgent) Facing() core.Facing            { return 0 }
func (a fakeAgent) TurnSpeed() int32               { return 1024 }
func (a fakeAgent) MovementSpeedForCell(core.CPos) int32 { return 1024 }
func (a fakeAgent) AlwaysTurnInPlace() bool        { return false }
func (a fakeAgent) Window() int32                  { return 8 }
func (a fakeAgent) ResetSpeed() int32              { return 1 }
func (a fakeAgent) IgnoreMask() core.BlockerMask   { return 0 }

func TestSuccessorsFullAtRoot(t *testing.T) {
	g := NewGraph(newFakeMap(5, 5), newFakeLoco(), 0)
	edges := g.Successors(fakeAgent{}, core.CPos{X: 2, Y: 2}, nil, "", false, 0, nil)
	// 8 neighbors + self.
	if len(edges) != 9 {
		t.Fatalf("expected 9 edges at a root (8-neighborhood + self), got %d", len(edges))
	}
}

func TestSuccessorsPrunedAwayFromIncoming(t *testing.T) {
	g := NewGraph(newFakeMap(5, 5), newFakeLoco(), 0)
	prev := core.CPos{X: 1, Y: 2}
	cur := core.CPos{X: 2, Y: 2} // arrived moving +X
	edges := g.Successors(fakeAgent{}, cur, &prev, "", false, 0, nil)
	for _, e := range edges {
		if e.To.X < cur.X && e.To.Y == cur.Y {
			t.Fatalf("successor %v goes directly backward against travel direction", e.To)
		}
	}
}

func TestAntiCornerCutting(t *testing.T) {
	loco := newFakeLoco()
	loco.blocked[core.CPos{X: 3, Y: 2}] = true // orthogonal neighbor of the diagonal step
	g := NewGraph(newFakeMap(5, 5), loco, 0)

	edges := g.Successors(fakeAgent{}, core.CPos{X: 2, Y: 2}, nil, "", false, 0, nil)
	for _, e := range edges {
		if e.To == (core.CPos{X: 3, Y: 3}) {
			t.Fatalf("diagonal step %v should be rejected: one orthogonal neighbor is blocked", e.To)
		}
	}
}

func TestEdgeCostDiagonalScaling(t *testing.T) {
	g := NewGraph(newFakeMap(5, 5), newFakeLoco(), 0)
	straight := g.EdgeCost(fakeAgent{}, core.CPos{X: 0, Y: 0}, core.CPos{X: 1, Y: 0}, false, "", nil)
	diagonal := g.EdgeCost(fakeAgent{}, core.CPos{X: 0, Y: 0}, core.CPos{X: 1, Y: 1}, true, "", nil)
	if straight != core.NormalMovementCost {
		t.Fatalf("straight cost = %d, want %d", straight, core.NormalMovementCost)
	}
	want := core.Cost(int64(core.NormalMovementCost) * 34 / 24)
	if diagonal != want {
		t.Fatalf("diagonal cost = %d, want %d", diagonal, want)
	}
}

func TestEdgeCostHeightGate(t *testing.T) {
	m := newFakeMap(5, 5)
	m.heights[core.CPos{X: 1, Y: 0}] = 3
	g := NewGraph(m, newFakeLoco(), 0)
	cost := g.EdgeCost(fakeAgent{}, core.CPos{X: 0, Y: 0}, core.CPos{X: 1, Y: 0}, false, "", nil)
	if cost.Valid() {
		t.Fatalf("step onto a cell 3 higher should be rejected by the height gate, got %d", cost)
	}
}

func TestLaneBiasOpposesForOppositeTravel(t *testing.T) {
	g := NewGraph(newFakeMap(5, 5), newFakeLoco(), 4)
	forward := g.EdgeCost(fakeAgent{}, core.CPos{X: 0, Y: 0}, core.CPos{X: 1, Y: 0}, false, "", nil)
	backward := g.EdgeCost(fakeAgent{}, core.CPos{X: 1, Y: 0}, core.CPos{X: 0, Y: 0}, false, "", nil)
	if forward == backward {
		t.Fatalf("opposite-direction steps through the same lane should receive different bias, both got %d", forward)
	}
}

func TestLayerTransitions(t *testing.T) {
	m := newFakeMap(5, 5)
	m.layers = []core.Layer{{ID: 1, Enabled: true, EntryMovementCost: 512, ExitMovementCost: 768}}
	g := NewGraph(m, newFakeLoco(), 0)

	ground := core.CPos{X: 2, Y: 2}
	edges := g.Successors(fakeAgent{}, ground, nil, "", false, 0, nil)
	var sawEntry bool
	for _, e := range edges {
		if e.To == (core.CPos{X: 2, Y: 2, Layer: 1}) {
			sawEntry = true
			if e.Cost != 512 {
				t.Fatalf("layer entry cost = %d, want 512", e.Cost)
			}
		}
	}
	if !sawEntry {
		t.Fatalf("expected an edge onto the enabled custom layer from the ground cell")
	}

	onLayer := core.CPos{X: 2, Y: 2, Layer: 1}
	edges = g.Successors(fakeAgent{}, onLayer, nil, "", false, 0, nil)
	var sawExit bool
	for _, e := range edges {
		if e.To == ground {
			sawExit = true
			if e.Cost != 768 {
				t.Fatalf("layer exit cost = %d, want 768", e.Cost)
			}
		}
	}
	if !sawExit {
		t.Fatalf("expected an edge back onto the ground cell from the custom layer")
	}
}

func TestOctileAdmissibleOnOpenGrid(t *testing.T) {
	a, b := core.CPos{X: 0, Y: 0}, core.CPos{X: 4, Y: 3}
	h := Octile(a, b)
	want := core.Cost(3*(1024*34/24) + 1*1024)
	if h != want {
		t.Fatalf("Octile(%v,%v) = %d, want %d", a, b, h, want)
	}
}
