package activity

import (
	"testing"

	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/demo"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/pathfinder"
	"github.com/fenwick-grid/whca/internal/reservation"
	"github.com/fenwick-grid/whca/internal/search"
)

// newEngine builds the shared plumbing (map, world, graph, reservations,
// pathfinder facade) a MoveActivity needs, over an open width x height grid.
func newEngine(width, height int32) (*demo.StaticMap, *demo.ActorMap, *grid.Graph, *grid.Pool, *reservation.Table, *pathfinder.Pathfinder) {
	m := demo.NewStaticMap(width, height)
	world := demo.NewActorMap(nil)
	loco := demo.NewUniformLocomotor(m, world)
	g := grid.NewGraph(m, loco, 0)
	pool := grid.NewPool()
	rsv := reservation.New(0)
	pf := pathfinder.New(g, rsv, search.DefaultHeuristicWeightPercent, core.NewNopLogger())
	return m, world, g, pool, rsv, pf
}

// runToCompletion drives activity exactly as a Scheduler would (advance the
// world, then tick the activity against the resulting tick), up to
// maxTicks times, failing the test if it never finishes.
func runToCompletion(t *testing.T, activity *MoveActivity, world *demo.ActorMap, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if activity.Done() {
			return
		}
		world.Advance()
		activity.Tick(world.WorldTick())
	}
	t.Fatalf("move activity did not finish within %d ticks (outcome=%v)", maxTicks, activity.Outcome())
}

func TestMoveActivityStraightCorridorArrives(t *testing.T) {
	_, world, g, pool, rsv, pf := newEngine(6, 1)
	start, goal := core.CPos{X: 0, Y: 0}, core.CPos{X: 5, Y: 0}
	id := core.AgentID("a1")
	agent := demo.NewAgent(id, start, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), 4, 1024, 1024)
	world.Place(id, start)

	m := New(Config{
		Agent:                  agent,
		World:                  world,
		Graph:                  g,
		Pool:                   pool,
		Pathfinder:             pf,
		Reservations:           rsv,
		Log:                    core.NewNopLogger(),
		Ignore:                 id,
		Destination:            goal,
		HasDestination:         true,
		NearEnough:             0,
		HeuristicWeightPercent: search.DefaultHeuristicWeightPercent,
	})

	runToCompletion(t, m, world, 500)
	if m.Outcome() != Arrived {
		t.Fatalf("outcome = %v, want Arrived", m.Outcome())
	}
	if agent.FromCell() != goal {
		t.Fatalf("agent settled at %v, want %v", agent.FromCell(), goal)
	}
}

func TestMoveActivityUnreachableGoalAbandons(t *testing.T) {
	m, world, _, pool, rsv, pf := newEngine(5, 1)
	m.SetTerrain(core.CPos{X: 2, Y: 0}, demo.TerrainSample{Blocked: true})
	g := grid.NewGraph(m, demo.NewUniformLocomotor(m, world), 0)

	start, goal := core.CPos{X: 0, Y: 0}, core.CPos{X: 4, Y: 0}
	id := core.AgentID("a1")
	agent := demo.NewAgent(id, start, 0, 4, 1024, 1024)
	world.Place(id, start)

	move := New(Config{
		Agent:                  agent,
		World:                  world,
		Graph:                  g,
		Pool:                   pool,
		Pathfinder:             pf,
		Reservations:           rsv,
		Log:                    core.NewNopLogger(),
		Ignore:                 id,
		Destination:            goal,
		HasDestination:         true,
		HeuristicWeightPercent: search.DefaultHeuristicWeightPercent,
	})

	runToCompletion(t, move, world, 500)
	if move.Outcome() != Abandoned {
		t.Fatalf("outcome = %v, want Abandoned", move.Outcome())
	}
}

func TestMoveActivityWaitsOutATemporaryBlocker(t *testing.T) {
	_, world, g, pool, rsv, pf := newEngine(7, 1)
	start, goal := core.CPos{X: 0, Y: 0}, core.CPos{X: 6, Y: 0}
	id := core.AgentID("a1")
	agent := demo.NewAgent(id, start, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), 4, 1024, 1024)
	world.Place(id, start)

	// Reserve the midpoint cell for a crosser's own committed window, the
	// way another agent's writeReservations would; once real ticks pass
	// the reserved range the cell is free again without any cleanup call.
	crosser, crossCell := core.AgentID("crosser"), core.CPos{X: 3, Y: 0}
	for tick := int64(1); tick <= 15; tick++ {
		rsv.Reserve(crossCell.X, crossCell.Y, tick, crosser)
	}

	m := New(Config{
		Agent:                  agent,
		World:                  world,
		Graph:                  g,
		Pool:                   pool,
		Pathfinder:             pf,
		Reservations:           rsv,
		Log:                    core.NewNopLogger(),
		Ignore:                 id,
		Destination:            goal,
		HasDestination:         true,
		HeuristicWeightPercent: search.DefaultHeuristicWeightPercent,
	})

	for i := 0; i < 400 && !m.Done(); i++ {
		world.Advance()
		m.Tick(world.WorldTick())
	}

	if !m.Done() {
		t.Fatalf("move activity never finished after the crosser's reservation window passed")
	}
	if m.Outcome() != Arrived {
		t.Fatalf("outcome = %v, want Arrived once the corridor cleared", m.Outcome())
	}
	if agent.FromCell() != goal {
		t.Fatalf("agent settled at %v, want %v", agent.FromCell(), goal)
	}
}

func TestHandleBlockedSurrendersWhenGoalItselfIsBlocked(t *testing.T) {
	_, world, g, pool, rsv, pf := newEngine(5, 1)
	goal := core.CPos{X: 4, Y: 0}
	id := core.AgentID("a1")
	agent := demo.NewAgent(id, core.CPos{X: 3, Y: 0}, 0, 4, 1024, 1024)

	m := New(Config{
		Agent:                  agent,
		World:                  world,
		Graph:                  g,
		Pool:                   pool,
		Pathfinder:             pf,
		Reservations:           rsv,
		Log:                    core.NewNopLogger(),
		Ignore:                 id,
		Destination:            goal,
		HasDestination:         true,
		NearEnough:             2.0,
		HeuristicWeightPercent: search.DefaultHeuristicWeightPercent,
	})
	m.phase = phaseStep
	m.path = []core.CPos{goal}

	m.handleBlocked(0, goal)

	if !m.Done() || m.Outcome() != Arrived {
		t.Fatalf("expected a clean surrender Arrived when the goal cell itself is blocked, got done=%v outcome=%v", m.Done(), m.Outcome())
	}
	if m.destination != agent.FromCell() {
		t.Fatalf("surrendering should settle the destination at the agent's current cell")
	}
}

func TestHandleBlockedNudgesAroundATransientBlocker(t *testing.T) {
	_, world, g, pool, rsv, pf := newEngine(5, 3)
	goal := core.CPos{X: 4, Y: 1}
	id := core.AgentID("a1")
	agent := demo.NewAgent(id, core.CPos{X: 2, Y: 1}, 0, 4, 1024, 1024)

	blocked := core.CPos{X: 3, Y: 1}
	world.Place("other", blocked)

	m := New(Config{
		Agent:                  agent,
		World:                  world,
		Graph:                  g,
		Pool:                   pool,
		Pathfinder:             pf,
		Reservations:           rsv,
		Log:                    core.NewNopLogger(),
		Ignore:                 id,
		Destination:            goal,
		HasDestination:         true,
		NearEnough:             3.0,
		HeuristicWeightPercent: search.DefaultHeuristicWeightPercent,
	})
	m.phase = phaseStep
	m.path = []core.CPos{blocked}

	m.handleBlocked(0, blocked)

	if m.Done() {
		t.Fatalf("a successful nudge should keep the move running, outcome=%v", m.Outcome())
	}
	if got := m.path[len(m.path)-1]; got != goal {
		t.Fatalf("expected the nudge to route directly onto the open goal cell, got %v", got)
	}
}

func TestOnMoveFirstHalfDoneChainsThroughASharpTurn(t *testing.T) {
	m := demo.NewStaticMap(5, 5)
	g := grid.NewGraph(m, demo.NewUniformLocomotor(m, nil), 0)
	agent := demo.NewAgent("a1", core.CPos{X: 1, Y: 0}, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), 8, 1024, 1024)

	move := &MoveActivity{agent: agent, graph: g, path: []core.CPos{{X: 0, Y: 0}}}
	move.onMoveFirstHalfDone(core.CPos{X: -1, Y: 0}, core.CPos{X: 1, Y: 0}, 3)

	if move.w != 1 {
		t.Fatalf("w = %d, want 1 after a half-step completes", move.w)
	}
	if len(move.children) != 1 {
		t.Fatalf("expected exactly one chained child, got %d", len(move.children))
	}
	if agent.FromCell() != (core.CPos{X: 1, Y: 0}) {
		t.Fatalf("sharp-turn branch should settle FromCell at the pivot cell immediately")
	}
	if agent.ToCell() != (core.CPos{X: 0, Y: 0}) {
		t.Fatalf("chained MoveFirstHalf should commit ToCell to the next step immediately")
	}
	if len(move.path) != 0 {
		t.Fatalf("the chained step should have been consumed from path, got %v", move.path)
	}
}

func TestOnMoveFirstHalfDoneSettlesThroughSecondHalfOnAGentleTurn(t *testing.T) {
	m := demo.NewStaticMap(5, 5)
	g := grid.NewGraph(m, demo.NewUniformLocomotor(m, nil), 0)
	agent := demo.NewAgent("a1", core.CPos{X: 0, Y: 0}, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), 8, 1024, 1024)

	move := &MoveActivity{agent: agent, graph: g, path: []core.CPos{{X: 2, Y: 0}}}
	move.onMoveFirstHalfDone(core.CPos{X: 0, Y: 0}, core.CPos{X: 1, Y: 0}, 3)

	if len(move.path) != 1 {
		t.Fatalf("gentle-turn branch should leave path untouched, got %v", move.path)
	}
	if len(move.children) != 1 {
		t.Fatalf("expected exactly one queued MoveSecondHalf child, got %d", len(move.children))
	}

	c := move.children[len(move.children)-1]
	for !c.tick() {
	}
	if agent.FromCell() == (core.CPos{X: 1, Y: 0}) {
		t.Fatalf("FromCell should not settle until the child's completion hook fires")
	}
	c.done()
	if agent.FromCell() != (core.CPos{X: 1, Y: 0}) {
		t.Fatalf("FromCell should settle at the pivot cell once MoveSecondHalf completes")
	}
}
