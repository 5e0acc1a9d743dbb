// Command whcadem runs a few demo scenarios against the cooperative
// pathfinding engine and prints their outcomes and timing. A plain main
// plus helper functions, no cobra/cli framework.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fenwick-grid/whca/internal/activity"
	"github.com/fenwick-grid/whca/internal/config"
	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/demo"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/pathfinder"
	"github.com/fenwick-grid/whca/internal/reservation"
)

func main() {
	width := flag.Int("width", 12, "corridor width in cells for the single-agent scenario")
	window := flag.Int("window", 4, "WHCA* window size (W)")
	maxTicks := flag.Int("max-ticks", 2000, "tick budget before a scenario is reported as stuck")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := newLogger(*verbose)
	defer log.Sync()
	engineLog := core.NewLogger(log)

	cfg := config.Default()
	cfg.Window = int32(*window)

	runSingleAgentCorridor(engineLog, cfg, int32(*width), *maxTicks)
	runTwoAgentCrossing(engineLog, cfg, *maxTicks)
	runUtilityQueries(engineLog, cfg)
}

// runSingleAgentCorridor drives one agent end to end across a corridor
// several windows long, via a real Scheduler, exercising rewindowing.
func runSingleAgentCorridor(log core.Logger, cfg config.Engine, width int32, maxTicks int) {
	m := demo.NewStaticMap(width, 1)
	world := demo.NewActorMap(nil)
	g := grid.NewGraph(m, demo.NewUniformLocomotor(m, world), cfg.LaneBias)
	pools := grid.NewWorldPools()
	pool := pools.For(world)
	rsv := reservation.New(cfg.TimeLength)
	pf := pathfinder.New(g, rsv, cfg.HeuristicWeightPercent, log)

	id := core.NewAgentID()
	start, goal := core.CPos{X: 0, Y: 0}, core.CPos{X: width - 1, Y: 0}
	agent := demo.NewAgent(id, start, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), cfg.Window, 1024, 1024)
	world.Place(id, start)

	move := activity.New(activity.Config{
		Agent: agent, World: world, Graph: g, Pool: pool, Pathfinder: pf,
		Reservations: rsv, Log: log, Ignore: id,
		Destination: goal, HasDestination: true,
		NearEnough:             cfg.NearEnough,
		HeuristicWeightPercent: cfg.HeuristicWeightPercent,
	})

	sched := activity.NewScheduler(world, world.WorldTick, log)
	sched.Add(id, move)

	fmt.Printf("single-agent corridor: width=%d window=%d start=%v goal=%v\n", width, cfg.Window, start, goal)
	began := time.Now()
	ticks := runScheduler(sched, func() bool { return move.Done() }, maxTicks)
	fmt.Printf("  outcome=%v settled=%v ticks=%d elapsed=%s\n", move.Outcome(), agent.FromCell(), ticks, time.Since(began))
}

// runTwoAgentCrossing drives two agents toward each other through a
// single-row corridor narrow enough that one must yield to the other,
// demonstrating cooperative avoidance through the shared reservation
// table rather than a collision.
func runTwoAgentCrossing(log core.Logger, cfg config.Engine, maxTicks int) {
	const width = 7

	m := demo.NewStaticMap(width, 1)
	world := demo.NewActorMap(nil)
	g := grid.NewGraph(m, demo.NewUniformLocomotor(m, world), cfg.LaneBias)
	pools := grid.NewWorldPools()
	pool := pools.For(world)
	rsv := reservation.New(cfg.TimeLength)
	pf := pathfinder.New(g, rsv, cfg.HeuristicWeightPercent, log)

	idA, idB := core.NewAgentID(), core.NewAgentID()
	startA, goalA := core.CPos{X: 0, Y: 0}, core.CPos{X: width - 1, Y: 0}
	startB, goalB := core.CPos{X: width - 1, Y: 0}, core.CPos{X: 0, Y: 0}

	agentA := demo.NewAgent(idA, startA, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), cfg.Window, 1024, 1024)
	agentB := demo.NewAgent(idB, startB, core.FacingFromVec(core.CVec{DX: -1, DY: 0}), cfg.Window, 1024, 1024)

	moveA := activity.New(activity.Config{
		Agent: agentA, World: world, Graph: g, Pool: pool, Pathfinder: pf,
		Reservations: rsv, Log: log, Ignore: idA,
		Destination: goalA, HasDestination: true,
		NearEnough:             cfg.NearEnough,
		HeuristicWeightPercent: cfg.HeuristicWeightPercent,
	})
	moveB := activity.New(activity.Config{
		Agent: agentB, World: world, Graph: g, Pool: pool, Pathfinder: pf,
		Reservations: rsv, Log: log, Ignore: idB,
		Destination: goalB, HasDestination: true,
		NearEnough:             cfg.NearEnough,
		HeuristicWeightPercent: cfg.HeuristicWeightPercent,
	})

	sched := activity.NewScheduler(world, world.WorldTick, log)
	sched.Add(idA, moveA) // added first: plans first within a tick, so b yields on conflict.
	sched.Add(idB, moveB)

	fmt.Printf("two-agent crossing: width=%d window=%d a=%v->%v b=%v->%v\n", width, cfg.Window, startA, goalA, startB, goalB)
	began := time.Now()
	ticks := runScheduler(sched, func() bool { return moveA.Done() && moveB.Done() }, maxTicks)
	fmt.Printf("  a outcome=%v settled=%v\n", moveA.Outcome(), agentA.FromCell())
	fmt.Printf("  b outcome=%v settled=%v\n", moveB.Outcome(), agentB.FromCell())
	fmt.Printf("  ticks=%d elapsed=%s\n", ticks, time.Since(began))
}

// runScheduler ticks sched until done reports true or maxTicks is spent,
// returning the number of ticks actually run.
func runScheduler(sched *activity.Scheduler, done func() bool, maxTicks int) int {
	i := 0
	for ; i < maxTicks && !done(); i++ {
		sched.Tick()
	}
	return i
}

// runUtilityQueries exercises the one-shot facade operations a Scheduler
// never touches: a direct windowed search and a plain reachability search.
func runUtilityQueries(log core.Logger, cfg config.Engine) {
	const width = 10

	m := demo.NewStaticMap(width, 1)
	world := demo.NewActorMap(nil)
	loco := demo.NewUniformLocomotor(m, world)
	g := grid.NewGraph(m, loco, cfg.LaneBias)
	rsv := reservation.New(cfg.TimeLength)
	pf := pathfinder.New(g, rsv, cfg.HeuristicWeightPercent, log)
	pools := grid.NewWorldPools()
	pool := pools.For(world)

	agentID := core.NewAgentID()
	start := core.CPos{X: 0, Y: 0}
	goal := core.CPos{X: width - 1, Y: 0}
	agent := demo.NewAgent(agentID, start, core.FacingFromVec(core.CVec{DX: 1, DY: 0}), cfg.Window, 1024, 1024)
	world.Place(agentID, start)

	fmt.Printf("utility queries: width=%d window=%d start=%v goal=%v\n", width, cfg.Window, start, goal)

	path := pf.FindUnitPathWHCA(pool, agent, start, goal, agentID, cfg.Window, world.WorldTick())
	fmt.Printf("  one-shot windowed path (destination-first, %d cells): %v\n", len(path), path)

	unit := pf.FindUnitPath(pool, agent, start, goal, agentID)
	fmt.Printf("  direct utility path (destination-first, %d cells): %v\n", len(unit), unit)
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		z, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, "whcadem: failed to build logger:", err)
			os.Exit(1)
		}
		return z
	}
	return zap.NewNop()
}
