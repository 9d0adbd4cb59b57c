// Package unpin removes a pinned node from the content store and prunes the
// descendants that no remaining node links to.
package unpin

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/interfaces"
	"github.com/i5heu/pinforest/pkg/types"
)

type Config struct {
	Graph   *graph.Guarded
	Remover interfaces.PinRemover
	Logger  *logrus.Logger
}

type Unpinner struct {
	graph   *graph.Guarded
	remover interfaces.PinRemover
	log     *logrus.Logger
}

func New(config Config) *Unpinner {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Unpinner{
		graph:   config.Graph,
		remover: config.Remover,
		log:     config.Logger,
	}
}

// Unpin asks the content store to drop the pin on root and, only once that
// succeeds, removes root and its orphaned descendants from the graph. It
// returns the removed ids in discovery order. The pin removal is recursive
// and issued for root only.
func (u *Unpinner) Unpin(ctx context.Context, root types.ContentID) ([]types.ContentID, error) {
	var present bool
	u.graph.View(func(g *graph.Graph) {
		present = g.HasNode(root)
	})
	if !present {
		return nil, fmt.Errorf("error unpinning %s: %w", root, types.ErrNotFound)
	}

	if err := u.remover.RemovePin(ctx, root, true); err != nil {
		u.log.WithFields(logrus.Fields{
			"ref":   root.String(),
			"kind":  types.ErrorKind(err),
			"error": err,
		}).Warn("pin removal failed, graph left untouched")
		return nil, fmt.Errorf("error removing pin %s: %w", root, err)
	}

	var removed []types.ContentID
	u.graph.Update(func(g *graph.Graph) {
		removed = Prune(g, root)
	})

	u.log.WithFields(logrus.Fields{
		"ref":     root.String(),
		"removed": len(removed),
	}).Info("unpinned")

	return removed, nil
}

// Prune removes root and every node left without inbound edges once root is
// gone. It returns the removed ids; an absent root yields nil.
func Prune(g *graph.Graph, root types.ContentID) []types.ContentID {
	removed := Orphans(g, root)
	for _, id := range removed {
		g.RemoveNode(id)
	}
	return removed
}

// Orphans computes, without mutating g, root plus every descendant whose
// inbound edges all come from nodes in that same set. Traversal is depth
// first over out-edges in insertion order. Each node is visited at most once,
// so shared substructure and cycles terminate; a cycle still entered from
// outside the set survives.
func Orphans(g *graph.Graph, root types.ContentID) []types.ContentID {
	if !g.HasNode(root) {
		return nil
	}

	removed := map[types.ContentID]struct{}{root: {}}
	order := []types.ContentID{root}
	// inbound edges of a node not yet accounted for by removed parents
	remaining := make(map[types.ContentID]int)

	stack := []types.ContentID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var next []types.ContentID
		for _, e := range g.OutEdges(n) {
			d := e.Target
			if _, gone := removed[d]; gone {
				continue
			}

			left, seen := remaining[d]
			if !seen {
				left = g.InDegree(d)
				if _, self := g.Edge(d, d); self {
					left--
				}
			}
			left--
			remaining[d] = left

			if left == 0 {
				removed[d] = struct{}{}
				order = append(order, d)
				next = append(next, d)
			}
		}

		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}

	return order
}
