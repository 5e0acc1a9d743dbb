package search

import (
	"testing"

	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/demo"
	"github.com/fenwick-grid/whca/internal/grid"
)

func newOpenGraph(w, h int32) *grid.Graph {
	m := demo.NewStaticMap(w, h)
	loco := demo.NewUniformLocomotor(m, nil)
	return grid.NewGraph(m, loco, 0)
}

func TestRRAStarResumeFindsGoal(t *testing.T) {
	g := newOpenGraph(10, 10)
	pool := grid.NewPool()
	goal := core.CPos{X: 9, Y: 9}
	origin := core.CPos{X: 0, Y: 0}
	agent := demo.NewAgent("a1", origin, 0, 8, 1024, 1024)

	rra := NewRRAStar(g, pool, agent, goal, "a1", 100, core.NewNopLogger())
	defer rra.Dispose()

	cost := rra.ResumeUntilClosed(origin)
	if !cost.Valid() {
		t.Fatalf("origin should be reachable from goal on an open grid")
	}
	want := grid.Octile(origin, goal)
	if cost != want {
		t.Fatalf("RRA* cost %d != true octile distance %d on an open grid", cost, want)
	}
}

func TestRRAStarUnreachableReturnsInvalid(t *testing.T) {
	m := demo.NewStaticMap(5, 5)
	// Wall off the goal entirely.
	for y := int32(0); y < 5; y++ {
		m.SetTerrain(core.CPos{X: 2, Y: y}, demo.TerrainSample{Blocked: true})
	}
	loco := demo.NewUniformLocomotor(m, nil)
	g := grid.NewGraph(m, loco, 0)
	pool := grid.NewPool()

	goal := core.CPos{X: 4, Y: 2}
	agent := demo.NewAgent("a1", core.CPos{X: 0, Y: 2}, 0, 8, 1024, 1024)
	rra := NewRRAStar(g, pool, agent, goal, "a1", 100, core.NewNopLogger())
	defer rra.Dispose()

	cost := rra.ResumeUntilClosed(core.CPos{X: 0, Y: 2})
	if cost.Valid() {
		t.Fatalf("expected InvalidCost across a full wall, got %d", cost)
	}
}

func TestRRAStarResumeClosesOnlyWhatIsAsked(t *testing.T) {
	g := newOpenGraph(10, 10)
	pool := grid.NewPool()
	goal := core.CPos{X: 9, Y: 0}
	agent := demo.NewAgent("a1", core.CPos{X: 0, Y: 0}, 0, 8, 1024, 1024)
	rra := NewRRAStar(g, pool, agent, goal, "a1", 100, core.NewNopLogger())
	defer rra.Dispose()

	near := core.CPos{X: 8, Y: 0}
	far := core.CPos{X: 0, Y: 0}

	if rra.IsClosed(near) || rra.IsClosed(far) {
		t.Fatalf("nothing should be closed before any resume call")
	}
	if !rra.ResumeUntilClosed(near).Valid() {
		t.Fatalf("near cell should be reachable")
	}
	if !rra.IsClosed(near) {
		t.Fatalf("near cell should be closed immediately after being resumed to")
	}
	if rra.IsClosed(far) {
		t.Fatalf("far cell should not be closed as a side effect of resuming only to near")
	}

	if !rra.ResumeUntilClosed(far).Valid() {
		t.Fatalf("far cell should be reachable")
	}
	if !rra.IsClosed(far) {
		t.Fatalf("far cell should be closed after being explicitly resumed to")
	}
}

func TestRRAStarPathToReturnsDestinationFirst(t *testing.T) {
	g := newOpenGraph(6, 1)
	pool := grid.NewPool()
	goal := core.CPos{X: 5, Y: 0}
	source := core.CPos{X: 0, Y: 0}
	agent := demo.NewAgent("a1", source, 0, 8, 1024, 1024)
	rra := NewRRAStar(g, pool, agent, goal, "a1", 100, core.NewNopLogger())
	defer rra.Dispose()

	path := rra.PathTo(source)
	if len(path) == 0 {
		t.Fatalf("expected a non-empty path on an open corridor")
	}
	if path[0] != goal {
		t.Fatalf("path[0] = %v, want goal %v", path[0], goal)
	}
	if path[len(path)-1] != source {
		t.Fatalf("path[last] = %v, want source %v", path[len(path)-1], source)
	}
	if len(path) != 6 {
		t.Fatalf("expected 6 cells along a straight 6-wide corridor, got %d", len(path))
	}
}

func TestRRAStarHeuristicWeightScalesCost(t *testing.T) {
	g := newOpenGraph(10, 10)
	pool := grid.NewPool()
	goal := core.CPos{X: 9, Y: 9}
	origin := core.CPos{X: 0, Y: 0}
	probe := core.CPos{X: 3, Y: 1}
	agent := demo.NewAgent("a1", origin, 0, 8, 1024, 1024)

	rra := NewRRAStar(g, pool, agent, goal, "a1", 200, core.NewNopLogger())
	defer rra.Dispose()

	h := rra.heuristic(probe)
	want := core.Cost(int64(grid.Octile(probe, origin)) * 2)
	if h != want {
		t.Fatalf("weighted heuristic at %v = %d, want %d", probe, h, want)
	}
}
