// Package classifier decides whether a block is a directory-like node or an
// opaque leaf, fetching it only when the cache has no verdict yet.
package classifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/pkg/interfaces"
	"github.com/i5heu/pinforest/pkg/types"
)

type Config struct {
	Fetcher interfaces.ObjectFetcher
	Cache   *Cache
	Logger  *logrus.Logger
}

type Classifier struct {
	fetcher interfaces.ObjectFetcher
	cache   *Cache
	log     *logrus.Logger
}

func New(config Config) *Classifier {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &Classifier{
		fetcher: config.Fetcher,
		cache:   config.Cache,
		log:     config.Logger,
	}
}

func (c *Classifier) Cache() *Cache {
	return c.cache
}

// Classify never caches a failed fetch: an Unknown result is retried on the
// next call.
func (c *Classifier) Classify(ctx context.Context, id types.ContentID) types.DirectoryResult {
	if !id.MayBeDirectory() {
		return types.DirectoryResult{State: types.NotDirectory}
	}

	if c.cache.IsNonDirectory(id) {
		return types.DirectoryResult{State: types.NotDirectory}
	}

	if rec, ok := c.cache.Directory(id); ok {
		return types.DirectoryResult{State: types.Directory, Record: &rec}
	}

	c.log.WithField("ref", id.String()).Info("fetching")
	rec, err := c.fetcher.FetchObject(ctx, id)
	if err != nil {
		return types.DirectoryResult{State: types.Unknown, Err: err}
	}
	if rec.ID == "" {
		rec.ID = id
	}

	if !rec.IsDirectoryLike() {
		if err := c.cache.MarkNonDirectory(id); err != nil {
			c.log.WithError(err).WithField("ref", id.String()).Warn("could not persist classification")
		}
		return types.DirectoryResult{State: types.NotDirectory}
	}

	if err := c.cache.MarkDirectory(id, rec); err != nil {
		c.log.WithError(err).WithField("ref", id.String()).Warn("could not persist classification")
	}
	return types.DirectoryResult{State: types.Directory, Record: &rec}
}
