package unpin

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5heu/pinforest/internal/testutil"
	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

func newUnpinner(g *graph.Graph, store *testutil.FakeStore) *Unpinner {
	return New(Config{
		Graph:   graph.NewGuarded(g),
		Remover: store,
		Logger:  testutil.QuietLogger(),
	})
}

func TestUnpin_SingleParentChain(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("B", "C", "c", 1)
	store := testutil.NewFakeStore()

	removed, err := newUnpinner(g, store).Unpin(context.Background(), "A")
	require.NoError(t, err)

	assert.ElementsMatch(t, []types.ContentID{"A", "B", "C"}, removed)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, []testutil.RemoveCall{{ID: "A", Recursive: true}}, store.Removed)
}

func TestUnpin_SharedChildSurvives(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "C", "c", 1)
	g.AddEdge("B", "C", "c", 1)

	removed, err := newUnpinner(g, testutil.NewFakeStore()).Unpin(context.Background(), "A")
	require.NoError(t, err)

	assert.Equal(t, []types.ContentID{"A"}, removed)
	assert.True(t, g.HasNode("C"))
	_, ok := g.Edge("B", "C")
	assert.True(t, ok)
	assert.Equal(t, []types.ContentID{"B"}, g.Sources())
}

func TestUnpin_RemoteFailureLeavesGraph(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("B", "C", "c", 7)
	g.AddEdge("X", "C", "c", 7)
	nodes, edges := g.Nodes(), g.Edges()

	store := testutil.NewFakeStore()
	store.RemoveErr = fmt.Errorf("pin/rm: %w", types.ErrFetch)

	removed, err := newUnpinner(g, store).Unpin(context.Background(), "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFetch)
	assert.Nil(t, removed)
	assert.Equal(t, nodes, g.Nodes())
	assert.Equal(t, edges, g.Edges())
}

func TestUnpin_AbsentRoot(t *testing.T) {
	store := testutil.NewFakeStore()
	_, err := newUnpinner(graph.New(), store).Unpin(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, store.Removed)
}

func TestOrphans_DiamondBelowRoot(t *testing.T) {
	// A -> B -> D, A -> C -> D: D is orphaned once B and C go
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("A", "C", "c", 1)
	g.AddEdge("B", "D", "d", 1)
	g.AddEdge("C", "D", "d", 1)

	assert.Equal(t, []types.ContentID{"A", "B", "C", "D"}, sorted(Orphans(g, "A")))
}

func TestOrphans_LateSiblingParent(t *testing.T) {
	// B -> D is seen before C -> D, and C is itself a child of B.
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("B", "D", "d", 1)
	g.AddEdge("B", "C", "c", 1)
	g.AddEdge("C", "D", "d", 1)

	assert.ElementsMatch(t, []types.ContentID{"A", "B", "C", "D"}, Orphans(g, "A"))
}

func TestOrphans_ExternalParentKeepsSubtree(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("B", "C", "c", 1)
	g.AddEdge("X", "B", "b", 1)

	assert.Equal(t, []types.ContentID{"A"}, Orphans(g, "A"))
}

func TestOrphans_DoesNotMutate(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	Orphans(g, "A")
	assert.Equal(t, 2, g.NodeCount())
}

func TestOrphans_CycleTerminates(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("B", "C", "c", 1)
	g.AddEdge("C", "B", "b", 1)
	g.AddEdge("A", "A", "self", 1)

	// B keeps an inbound edge from C and C from B
	assert.Equal(t, []types.ContentID{"A"}, Orphans(g, "A"))
}

func TestOrphans_SelfLoopChild(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("B", "B", "self", 1)

	assert.ElementsMatch(t, []types.ContentID{"A", "B"}, Orphans(g, "A"))
}

func TestOrphans_AbsentRoot(t *testing.T) {
	assert.Nil(t, Orphans(graph.New(), "A"))
}

func TestOrphans_PreOrder(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 1)
	g.AddEdge("A", "E", "e", 1)
	g.AddEdge("B", "C", "c", 1)
	g.AddEdge("C", "D", "d", 1)

	assert.Equal(t, []types.ContentID{"A", "B", "E", "C", "D"}, Orphans(g, "A"))
}

// After pruning, every remaining node is either a source or still has a parent,
// and every removed node was reachable from the root.
func TestPrune_RandomDAGs(t *testing.T) {
	testutil.RequireLong(t)

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		g := graph.New()
		n := 5 + rng.Intn(30)
		ids := make([]types.ContentID, n)
		for i := range ids {
			ids[i] = types.ContentID(fmt.Sprintf("n%02d", i))
			g.AddNode(ids[i])
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rng.Float64() < 0.15 {
					g.AddEdge(ids[i], ids[j], "l", 1)
				}
			}
		}

		sourcesBefore := map[types.ContentID]bool{}
		for _, s := range g.Sources() {
			sourcesBefore[s] = true
		}

		root := ids[rng.Intn(n)]
		Prune(g, root)

		for _, id := range g.Nodes() {
			if g.InDegree(id) == 0 {
				assert.True(t, sourcesBefore[id], "round %d: %s orphaned by pruning %s", round, id, root)
			}
		}
	}
}

func sorted(ids []types.ContentID) []types.ContentID {
	out := append([]types.ContentID(nil), ids...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
