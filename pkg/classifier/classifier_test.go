package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5heu/pinforest/internal/testutil"
	"github.com/i5heu/pinforest/pkg/types"
)

func newTestClassifier(t *testing.T, store *testutil.FakeStore) *Classifier {
	t.Helper()
	cache, err := LoadCache(testutil.MemoryKV(t), testutil.MemoryKV(t))
	require.NoError(t, err)
	return New(Config{Fetcher: store, Cache: cache, Logger: testutil.QuietLogger()})
}

func TestClassify_OtherCodecSkipsFetch(t *testing.T) {
	store := testutil.NewFakeStore()
	c := newTestClassifier(t, store)

	raw := testutil.Raw(t, "leaf")
	res := c.Classify(context.Background(), raw)

	assert.Equal(t, types.NotDirectory, res.State)
	assert.Equal(t, 0, store.FetchCount(raw))
}

func TestClassify_DirectoryPredicate(t *testing.T) {
	store := testutil.NewFakeStore()
	c := newTestClassifier(t, store)

	empty := testutil.DagPB(t, "empty")
	unnamed := testutil.DagPB(t, "unnamed")
	named := testutil.DagPB(t, "named")
	child := testutil.Raw(t, "child")

	store.Put(
		types.ObjectRecord{ID: empty},
		types.ObjectRecord{ID: unnamed, Links: []types.Link{{Target: child, Name: "", Size: 1}}},
		types.ObjectRecord{ID: named, Links: []types.Link{{Target: child, Name: "a", Size: 1}}},
	)

	ctx := context.Background()
	assert.Equal(t, types.NotDirectory, c.Classify(ctx, empty).State)
	assert.Equal(t, types.NotDirectory, c.Classify(ctx, unnamed).State)

	res := c.Classify(ctx, named)
	require.Equal(t, types.Directory, res.State)
	require.NotNil(t, res.Record)
	assert.Equal(t, named, res.Record.ID)
}

func TestClassify_CacheHitsAvoidFetch(t *testing.T) {
	store := testutil.NewFakeStore()
	c := newTestClassifier(t, store)

	dir := testutil.DagPB(t, "dir")
	file := testutil.DagPB(t, "file")
	store.Put(testutil.Dir(dir, testutil.Raw(t, "x")), testutil.Leaf(file, testutil.Raw(t, "chunk")))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.Equal(t, types.Directory, c.Classify(ctx, dir).State)
		assert.Equal(t, types.NotDirectory, c.Classify(ctx, file).State)
	}

	assert.Equal(t, 1, store.FetchCount(dir))
	assert.Equal(t, 1, store.FetchCount(file))
}

func TestClassify_FetchFailureNotCached(t *testing.T) {
	store := testutil.NewFakeStore()
	c := newTestClassifier(t, store)

	dir := testutil.DagPB(t, "flaky")
	store.Put(testutil.Dir(dir, testutil.Raw(t, "x")))
	store.FailFetch(dir, 1)

	ctx := context.Background()
	res := c.Classify(ctx, dir)
	assert.Equal(t, types.Unknown, res.State)
	assert.Error(t, res.Err)
	assert.Equal(t, "fetch", types.ErrorKind(res.Err))
	assert.False(t, c.Cache().IsNonDirectory(dir))

	res = c.Classify(ctx, dir)
	assert.Equal(t, types.Directory, res.State)
	assert.Equal(t, 2, store.FetchCount(dir))
}

func TestCache_Exclusivity(t *testing.T) {
	cache, err := LoadCache(testutil.MemoryKV(t), testutil.MemoryKV(t))
	require.NoError(t, err)

	id := testutil.DagPB(t, "id")
	require.NoError(t, cache.MarkDirectory(id, testutil.Dir(id, "child")))
	require.NoError(t, cache.MarkNonDirectory(id))

	_, isDir := cache.Directory(id)
	assert.False(t, isDir)
	assert.True(t, cache.IsNonDirectory(id))

	// non-directory status is permanent
	require.NoError(t, cache.MarkDirectory(id, testutil.Dir(id, "child")))
	_, isDir = cache.Directory(id)
	assert.False(t, isDir)

	dirs, nonDirs := cache.Sizes()
	assert.Equal(t, 0, dirs)
	assert.Equal(t, 1, nonDirs)
}

func TestCache_ReloadFromHandles(t *testing.T) {
	durable := testutil.MemoryKV(t)
	session := testutil.MemoryKV(t)

	cache, err := LoadCache(durable, session)
	require.NoError(t, err)

	dir := testutil.DagPB(t, "dir")
	leaf := testutil.DagPB(t, "leaf")
	rec := testutil.Dir(dir, "c1", "c2")
	require.NoError(t, cache.MarkDirectory(dir, rec))
	require.NoError(t, cache.MarkNonDirectory(leaf))

	reloaded, err := LoadCache(durable, session)
	require.NoError(t, err)

	got, ok := reloaded.Directory(dir)
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.True(t, reloaded.IsNonDirectory(leaf))
}

func TestCache_NewSessionForgetsDirectories(t *testing.T) {
	durable := testutil.MemoryKV(t)

	cache, err := LoadCache(durable, testutil.MemoryKV(t))
	require.NoError(t, err)
	dir := testutil.DagPB(t, "dir")
	leaf := testutil.DagPB(t, "leaf")
	require.NoError(t, cache.MarkDirectory(dir, testutil.Dir(dir, "c")))
	require.NoError(t, cache.MarkNonDirectory(leaf))

	next, err := LoadCache(durable, testutil.MemoryKV(t))
	require.NoError(t, err)
	_, ok := next.Directory(dir)
	assert.False(t, ok)
	assert.True(t, next.IsNonDirectory(leaf))
}

func TestLoadCache_CorruptMapping(t *testing.T) {
	durable := testutil.MemoryKV(t)
	require.NoError(t, durable.Set(NonDirectoryKey, []byte{0xff, 0xff, 0xff}))

	_, err := LoadCache(durable, testutil.MemoryKV(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDecode)
}
