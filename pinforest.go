// Package pinforest builds a browsable forest out of the pinned objects of a
// content store node and unpins trees without leaving orphans behind.
package pinforest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/internal/snapshot"
	"github.com/i5heu/pinforest/pkg/classifier"
	"github.com/i5heu/pinforest/pkg/dagbuilder"
	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/interfaces"
	"github.com/i5heu/pinforest/pkg/types"
	"github.com/i5heu/pinforest/pkg/unpin"
	workerpool "github.com/i5heu/pinforest/pkg/workerPool"
)

var ErrNoProviderFinder = errors.New("pinforest: no provider finder configured")

// Forest owns the graph, the classification cache and the collaborators.
// Build, Unpin and Import are serialized: one runs at a time and the others
// wait. Read-only projections can run concurrently with them.
type Forest struct {
	log    *logrus.Logger
	config Config

	graph      *graph.Guarded
	cache      *classifier.Cache
	classifier *classifier.Classifier
	builder    *dagbuilder.Builder
	unpinner   *unpin.Unpinner
	pool       *workerpool.WorkerPool

	opMu      sync.Mutex
	statsMu   sync.Mutex
	pinned    int
	closeOnce sync.Once
}

func New(config Config) (*Forest, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.PinLister == nil || config.Fetcher == nil || config.Remover == nil {
		return nil, errors.New("pinforest: pin lister, fetcher and remover are required")
	}
	if config.Durable == nil || config.Session == nil {
		return nil, errors.New("pinforest: durable and session handles are required")
	}

	cache, err := classifier.LoadCache(config.Durable, config.Session)
	if err != nil {
		return nil, fmt.Errorf("error loading classification cache: %w", err)
	}

	g := graph.NewGuarded(nil)
	cl := classifier.New(classifier.Config{
		Fetcher: config.Fetcher,
		Cache:   cache,
		Logger:  config.Logger,
	})

	f := &Forest{
		log:        config.Logger,
		config:     config,
		graph:      g,
		cache:      cache,
		classifier: cl,
		builder: dagbuilder.New(dagbuilder.Config{
			Graph:      g,
			Classifier: cl,
			Cache:      cache,
			Logger:     config.Logger,
		}),
		unpinner: unpin.New(unpin.Config{
			Graph:   g,
			Remover: config.Remover,
			Logger:  config.Logger,
		}),
		pool: workerpool.NewWorkerPool(workerpool.Config{WorkerCount: config.Workers}),
	}
	return f, nil
}

// Refresh lists the pins of the node and builds over them. A pin listing
// failure aborts the pass before any classification.
func (f *Forest) Refresh(ctx context.Context) (dagbuilder.Result, error) {
	f.log.Info("reading all pinned refs")
	pins, err := f.config.PinLister.ListPins(ctx)
	if err != nil {
		f.log.WithFields(logrus.Fields{
			"kind":  types.ErrorKind(err),
			"error": err,
		}).Error("could not list pins")
		return dagbuilder.Result{}, fmt.Errorf("error listing pins: %w", err)
	}
	f.log.Infof("got %d refs", len(pins))

	f.statsMu.Lock()
	f.pinned = len(pins)
	f.statsMu.Unlock()

	return f.Build(ctx, pins)
}

func (f *Forest) Build(ctx context.Context, refs []types.ContentID) (dagbuilder.Result, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	res, err := f.builder.Build(ctx, refs)
	if err != nil {
		return res, fmt.Errorf("error building forest: %w", err)
	}

	f.log.WithFields(logrus.Fields{
		"directories": res.Directories,
		"failed":      res.Failed,
	}).Info("finished reading refs")
	return res, nil
}

// Unpin removes the pin on root and prunes the orphaned part of its tree.
func (f *Forest) Unpin(ctx context.Context, root types.ContentID) ([]types.ContentID, error) {
	f.opMu.Lock()
	defer f.opMu.Unlock()
	return f.unpinner.Unpin(ctx, root)
}

// Classify runs the block classifier directly, for diagnostics.
func (f *Forest) Classify(ctx context.Context, id types.ContentID) types.DirectoryResult {
	return f.classifier.Classify(ctx, id)
}

// Roots returns the nodes nothing links to, in insertion order.
func (f *Forest) Roots() []types.ContentID {
	var roots []types.ContentID
	f.graph.View(func(g *graph.Graph) {
		roots = g.Sources()
	})
	return roots
}

func (f *Forest) NodeCount() int {
	var n int
	f.graph.View(func(g *graph.Graph) { n = g.NodeCount() })
	return n
}

func (f *Forest) EdgeCount() int {
	var n int
	f.graph.View(func(g *graph.Graph) { n = g.EdgeCount() })
	return n
}

func (f *Forest) HasNode(id types.ContentID) bool {
	var ok bool
	f.graph.View(func(g *graph.Graph) { ok = g.HasNode(id) })
	return ok
}

func (f *Forest) OutEdges(id types.ContentID) []graph.Edge {
	var edges []graph.Edge
	f.graph.View(func(g *graph.Graph) { edges = g.OutEdges(id) })
	return edges
}

func (f *Forest) InEdges(id types.ContentID) []graph.Edge {
	var edges []graph.Edge
	f.graph.View(func(g *graph.Graph) { edges = g.InEdges(id) })
	return edges
}

// PinnedCount returns the number of pins seen by the last Refresh.
func (f *Forest) PinnedCount() int {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	return f.pinned
}

type Stats struct {
	PinnedRefs           int
	Nodes                int
	Edges                int
	Roots                int
	CachedDirectories    int
	CachedNonDirectories int
}

func (f *Forest) Stats() Stats {
	var s Stats
	f.graph.View(func(g *graph.Graph) {
		s.Nodes = g.NodeCount()
		s.Edges = g.EdgeCount()
		s.Roots = len(g.Sources())
	})
	s.CachedDirectories, s.CachedNonDirectories = f.cache.Sizes()
	s.PinnedRefs = f.PinnedCount()
	return s
}

type ProviderResult struct {
	ID    types.ContentID
	Peers []types.PeerInfo
	Err   error
}

// Providers looks up providers for ids concurrently. Results follow the
// order of ids; a failed lookup is reported in its result.
func (f *Forest) Providers(ctx context.Context, ids []types.ContentID) ([]ProviderResult, error) {
	if f.config.Providers == nil {
		return nil, ErrNoProviderFinder
	}

	type indexed struct {
		i   int
		res ProviderResult
	}

	room := workerpool.CreateRoom[indexed](f.pool, len(ids))
	for i, id := range ids {
		i, id := i, id
		room.NewTask(func() indexed {
			peers, err := f.config.Providers.FindProviders(ctx, id)
			if err != nil {
				f.log.WithFields(logrus.Fields{
					"ref":   id.String(),
					"kind":  types.ErrorKind(err),
					"error": err,
				}).Warn("provider lookup failed")
			}
			return indexed{i: i, res: ProviderResult{ID: id, Peers: peers, Err: err}}
		})
	}

	collected := room.Collect()
	sort.Slice(collected, func(a, b int) bool { return collected[a].i < collected[b].i })

	results := make([]ProviderResult, len(collected))
	for i, c := range collected {
		results[i] = c.res
	}
	return results, nil
}

// Export writes the current graph as a compressed snapshot.
func (f *Forest) Export(w io.Writer) error {
	var s snapshot.Snapshot
	f.graph.View(func(g *graph.Graph) {
		s = snapshot.FromGraph(g)
	})
	return snapshot.Write(w, s)
}

// Import merges a snapshot into the graph with the regular graph operations.
func (f *Forest) Import(r io.Reader) error {
	s, err := snapshot.Read(r)
	if err != nil {
		return err
	}

	f.opMu.Lock()
	defer f.opMu.Unlock()
	f.graph.Update(func(g *graph.Graph) {
		s.Replay(g)
	})
	f.log.WithFields(logrus.Fields{
		"nodes": len(s.Nodes),
		"edges": len(s.Edges),
	}).Info("imported snapshot")
	return nil
}

// Close stops the provider workers and closes the persistence handles that
// can be closed.
func (f *Forest) Close() error {
	var errs []error
	f.closeOnce.Do(func() {
		f.pool.Close()
		for _, kv := range []interfaces.KeyValue{f.config.Durable, f.config.Session} {
			if c, ok := kv.(io.Closer); ok {
				if err := c.Close(); err != nil {
					errs = append(errs, err)
				}
			}
		}
	})
	return errors.Join(errs...)
}
