package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/pinforest/internal/keyValStore"
	"github.com/i5heu/pinforest/pkg/interfaces"
	"github.com/i5heu/pinforest/pkg/types"
)

type RemoveCall struct {
	ID        types.ContentID
	Recursive bool
}

// FakeStore is a scripted content store node.
type FakeStore struct {
	mu sync.Mutex

	Pins      []types.ContentID
	Objects   map[types.ContentID]types.ObjectRecord
	Providers map[types.ContentID][]types.PeerInfo

	ListErr   error
	RemoveErr error
	// FetchFailures makes the next n fetches of an id fail with ErrFetch.
	FetchFailures map[types.ContentID]int

	Fetches map[types.ContentID]int
	Removed []RemoveCall
}

var _ interfaces.ContentStore = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Objects:       make(map[types.ContentID]types.ObjectRecord),
		Providers:     make(map[types.ContentID][]types.PeerInfo),
		FetchFailures: make(map[types.ContentID]int),
		Fetches:       make(map[types.ContentID]int),
	}
}

// Put stores records and pins them.
func (f *FakeStore) Put(recs ...types.ObjectRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range recs {
		f.Objects[r.ID] = r
		f.Pins = append(f.Pins, r.ID)
	}
}

func (f *FakeStore) FailFetch(id types.ContentID, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchFailures[id] = times
}

func (f *FakeStore) FetchCount(id types.ContentID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Fetches[id]
}

func (f *FakeStore) ListPins(ctx context.Context) ([]types.ContentID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]types.ContentID(nil), f.Pins...), nil
}

func (f *FakeStore) FetchObject(ctx context.Context, id types.ContentID) (types.ObjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fetches[id]++

	if n := f.FetchFailures[id]; n > 0 {
		f.FetchFailures[id] = n - 1
		return types.ObjectRecord{}, fmt.Errorf("fetch %s: connection refused: %w", id, types.ErrFetch)
	}
	rec, ok := f.Objects[id]
	if !ok {
		return types.ObjectRecord{}, fmt.Errorf("fetch %s: %w", id, types.ErrNotFound)
	}
	return rec, nil
}

func (f *FakeStore) RemovePin(ctx context.Context, id types.ContentID, recursive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.Removed = append(f.Removed, RemoveCall{ID: id, Recursive: recursive})
	return nil
}

func (f *FakeStore) FindProviders(ctx context.Context, id types.ContentID) ([]types.PeerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	peers, ok := f.Providers[id]
	if !ok {
		return nil, fmt.Errorf("providers %s: %w", id, types.ErrNotFound)
	}
	return peers, nil
}

// MemoryKV returns an in-memory badger handle closed at test cleanup.
func MemoryKV(t testing.TB) *keyValStore.KeyValStore {
	t.Helper()
	kv, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{InMemory: true, Logger: QuietLogger()})
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func QuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}
