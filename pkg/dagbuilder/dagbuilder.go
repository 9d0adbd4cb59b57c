// Package dagbuilder turns pinned references into graph nodes and edges.
package dagbuilder

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

// Classifier is the part of the block classifier the builder needs.
type Classifier interface {
	Classify(ctx context.Context, id types.ContentID) types.DirectoryResult
}

// NonDirectoryCache reports permanent non-directory verdicts.
type NonDirectoryCache interface {
	IsNonDirectory(id types.ContentID) bool
}

type Config struct {
	Graph      *graph.Guarded
	Classifier Classifier
	Cache      NonDirectoryCache
	Logger     *logrus.Logger
}

type Builder struct {
	graph      *graph.Guarded
	classifier Classifier
	cache      NonDirectoryCache
	log        *logrus.Logger
}

// Result counts what one Build pass did.
type Result struct {
	Refs        int
	Skipped     int
	Directories int
	Leaves      int
	Failed      int
}

func New(config Config) *Builder {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Builder{
		graph:      config.Graph,
		classifier: config.Classifier,
		cache:      config.Cache,
		log:        config.Logger,
	}
}

// Build classifies every reference in order and adds directory records to
// the graph. Running it again over the same references converges to the same
// graph. Each record is applied in one exclusive update, so readers never
// see a half added directory. The context is checked between references; on
// cancellation the mutations applied so far are kept.
func (b *Builder) Build(ctx context.Context, refs []types.ContentID) (Result, error) {
	res := Result{Refs: len(refs)}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if b.cache.IsNonDirectory(ref) {
			res.Skipped++
			continue
		}

		dr := b.classifier.Classify(ctx, ref)
		switch dr.State {
		case types.Directory:
			rec := dr.Record
			b.graph.Update(func(g *graph.Graph) {
				addRecord(g, rec)
			})
			res.Directories++
			b.log.WithFields(logrus.Fields{
				"ref":   ref.String(),
				"links": len(rec.Links),
				"kind":  rec.Kind,
			}).Debug("added directory")
		case types.NotDirectory:
			res.Leaves++
		default:
			res.Failed++
			b.log.WithFields(logrus.Fields{
				"ref":   ref.String(),
				"kind":  types.ErrorKind(dr.Err),
				"error": dr.Err,
			}).Warn("could not classify ref")
		}
	}

	return res, nil
}

func addRecord(g *graph.Graph, rec *types.ObjectRecord) {
	g.AddNode(rec.ID)
	for _, l := range rec.Links {
		g.AddNode(l.Target)
		g.AddEdge(rec.ID, l.Target, l.Name, l.Size)
	}
}
