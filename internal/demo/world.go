package demo

import "github.com/fenwick-grid/whca/internal/core"

// ActorMap is the reference World: it tracks which agents occupy which
// cells and the current world tick.
type ActorMap struct {
	tick      core.WorldTick
	occupants map[core.CPos][]core.AgentID
	layers    []core.Layer
}

// NewActorMap creates an empty world at tick 0 with the given custom
// movement layers.
func NewActorMap(layers []core.Layer) *ActorMap {
	return &ActorMap{occupants: make(map[core.CPos][]core.AgentID), layers: layers}
}

// WorldTick returns the current tick.
func (w *ActorMap) WorldTick() core.WorldTick { return w.tick }

// Advance moves the world forward one tick. Called by the Scheduler.
func (w *ActorMap) Advance() { w.tick++ }

// ActorsAt returns the agents currently occupying c.
func (w *ActorMap) ActorsAt(c core.CPos) []core.AgentID {
	return w.occupants[c]
}

// CustomMovementLayers returns the world's declared custom layers.
func (w *ActorMap) CustomMovementLayers() []core.Layer { return w.layers }

// Place adds agent to cell c's occupant list.
func (w *ActorMap) Place(agent core.AgentID, c core.CPos) {
	for _, a := range w.occupants[c] {
		if a == agent {
			return
		}
	}
	w.occupants[c] = append(w.occupants[c], agent)
}

// Remove deletes agent from cell c's occupant list, if present.
func (w *ActorMap) Remove(agent core.AgentID, c core.CPos) {
	list := w.occupants[c]
	for i, a := range list {
		if a == agent {
			w.occupants[c] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Move relocates agent from one cell to another in a single step.
func (w *ActorMap) Move(agent core.AgentID, from, to core.CPos) {
	w.Remove(agent, from)
	w.Place(agent, to)
}
