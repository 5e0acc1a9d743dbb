package pathfinder

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fenwick-grid/whca/internal/core"
	"github.com/fenwick-grid/whca/internal/grid"
	"github.com/fenwick-grid/whca/internal/search"
)

// ReachabilityQuery is one independent pre-spawn/utility reachability
// check: can agent get from Source to Goal at all, ignoring cooperation.
type ReachabilityQuery struct {
	Agent  core.AgentMobilityTrait
	Source core.CPos
	Goal   core.CPos
	Ignore core.AgentID
}

// BatchReachable answers many independent ReachabilityQuery values
// concurrently. This is safe to parallelize — unlike the cooperative
// WHCA*/RRA* search, which must stay single-threaded and strictly ordered
// against the shared reservation table — because find_unit_path neither
// reads nor writes that table. Each goroutine gets its own throwaway
// cell-info graph rather than drawing from the shared per-world grid.Pool,
// since that pool's free list is not safe for concurrent use and pooling
// brings no benefit to a one-off pre-spawn check anyway.
func (p *Pathfinder) BatchReachable(ctx context.Context, queries []ReachabilityQuery) ([]bool, error) {
	results := make([]bool, len(queries))
	g, ctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scratch := grid.NewPool()
			path, err := search.FindUnitPath(p.graph, scratch, q.Agent, q.Source, q.Goal, q.Ignore)
			if err != nil {
				results[i] = false
				return nil
			}
			results[i] = len(path) > 0
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
