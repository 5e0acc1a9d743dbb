package grid

import "github.com/fenwick-grid/whca/internal/core"

// Pool hands out Graph2D/Graph3D layers for a single world, reusing cleared
// maps across searches to bound peak allocation. Acquisitions and releases
// are paired by whoever owns a search's disposal (RRA*, WHCA*).
type Pool struct {
	free2D []Graph2D
	free3D []Graph3D
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Get2D returns a cleared Graph2D, reusing a previously released one when
// available.
func (p *Pool) Get2D() Graph2D {
	if n := len(p.free2D); n > 0 {
		g := p.free2D[n-1]
		p.free2D = p.free2D[:n-1]
		return g
	}
	return make(Graph2D)
}

// Put2D clears and returns a Graph2D to the pool. It does not detect a map
// that is already pooled: putting the same map twice lists it twice, and
// two later Get2D calls then return that same map.
func (p *Pool) Put2D(g Graph2D) {
	if g == nil {
		return
	}
	for k := range g {
		delete(g, k)
	}
	p.free2D = append(p.free2D, g)
}

// Get3D returns a cleared Graph3D, reusing a previously released one when
// available.
func (p *Pool) Get3D() Graph3D {
	if n := len(p.free3D); n > 0 {
		g := p.free3D[n-1]
		p.free3D = p.free3D[:n-1]
		return g
	}
	return make(Graph3D)
}

// Put3D clears and returns a Graph3D to the pool.
func (p *Pool) Put3D(g Graph3D) {
	if g == nil {
		return
	}
	for k := range g {
		delete(g, k)
	}
	p.free3D = append(p.free3D, g)
}

// WorldPools maps a world to the Pool it owns. It is a strong mapping,
// disposed explicitly via Release at world teardown — an acceptable
// alternative to a weak map, since this module does not control the
// lifetime of core.World implementations.
type WorldPools struct {
	pools map[core.World]*Pool
}

// NewWorldPools creates an empty registry.
func NewWorldPools() *WorldPools {
	return &WorldPools{pools: make(map[core.World]*Pool)}
}

// For returns the pool owned by w, creating one on first use.
func (wp *WorldPools) For(w core.World) *Pool {
	if p, ok := wp.pools[w]; ok {
		return p
	}
	p := NewPool()
	wp.pools[w] = p
	return p
}

// Release discards the pool owned by w, reclaiming its free lists.
func (wp *WorldPools) Release(w core.World) {
	delete(wp.pools, w)
}
