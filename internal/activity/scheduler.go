package activity

import (
	"go.uber.org/zap"

	"github.com/fenwick-grid/whca/internal/core"
)

// Advanceable is the minimal world capability the Scheduler drives: the
// tick counter every agent's search and reservation write is stamped
// against.
type Advanceable interface {
	Advance()
}

// Scheduler owns the ordered list of agents and the monotonic world tick,
// ticking every agent's Move activity once per Scheduler.Tick call in a
// fixed, deterministic order: agents plan in the order they were added,
// every tick, so two runs over the same inputs produce the same result.
type Scheduler struct {
	world   Advanceable
	tickNow func() core.WorldTick
	order   []core.AgentID
	active  map[core.AgentID]*MoveActivity
	log     core.Logger
}

// NewScheduler creates a Scheduler over world (advanced once per Tick) and
// tickNow (read back after advancing, to stamp agent ticks).
func NewScheduler(world Advanceable, tickNow func() core.WorldTick, log core.Logger) *Scheduler {
	return &Scheduler{
		world:   world,
		tickNow: tickNow,
		active:  make(map[core.AgentID]*MoveActivity),
		log:     log,
	}
}

// Add registers activity under id, appending it to the deterministic
// iteration order if this is the first time id has been seen.
func (s *Scheduler) Add(id core.AgentID, activity *MoveActivity) {
	if _, exists := s.active[id]; !exists {
		s.order = append(s.order, id)
	}
	s.active[id] = activity
}

// Remove drops id from scheduling, freeing its slot in the iteration
// order on the next Tick.
func (s *Scheduler) Remove(id core.AgentID) {
	delete(s.active, id)
}

// Tick advances the world by one tick and runs every registered agent's
// Move activity once, in actor order. Activities that report Done are
// removed from scheduling after this pass.
func (s *Scheduler) Tick() {
	s.world.Advance()
	tick := s.tickNow()

	finished := s.order[:0:0]
	for _, id := range s.order {
		activity, ok := s.active[id]
		if !ok {
			continue
		}
		activity.Tick(tick)
		if activity.Done() {
			finished = append(finished, id)
		}
	}

	for _, id := range finished {
		s.log.Debug("move activity finished", zap.String("agent", string(id)))
		delete(s.active, id)
	}
	if len(s.order) != len(s.active) {
		s.order = compact(s.order, s.active)
	}
}

// compact drops ids no longer present in active, preserving order.
func compact(order []core.AgentID, active map[core.AgentID]*MoveActivity) []core.AgentID {
	out := order[:0]
	for _, id := range order {
		if _, ok := active[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
