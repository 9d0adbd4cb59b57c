// Package interfaces defines the narrow contracts between the forest engine
// and the services it calls: the content store node and key-value persistence.
package interfaces

import (
	"context"

	"github.com/i5heu/pinforest/pkg/types"
)

// PinLister lists the pinned references of the content store.
type PinLister interface {
	// ListPins returns every pinned reference. Failures wrap types.ErrFetch.
	ListPins(ctx context.Context) ([]types.ContentID, error)
}

// ObjectFetcher retrieves and decodes a single block.
type ObjectFetcher interface {
	// FetchObject fails with types.ErrFetch (transport, timeout) or
	// types.ErrDecode (malformed payload).
	FetchObject(ctx context.Context, id types.ContentID) (types.ObjectRecord, error)
}

// PinRemover removes a pin from the content store.
type PinRemover interface {
	RemovePin(ctx context.Context, id types.ContentID, recursive bool) error
}

// ProviderFinder looks up peers providing a block.
type ProviderFinder interface {
	FindProviders(ctx context.Context, id types.ContentID) ([]types.PeerInfo, error)
}

// ContentStore bundles every collaborator a content store node offers.
type ContentStore interface {
	PinLister
	ObjectFetcher
	PinRemover
	ProviderFinder
}

// KeyValue is a persistence handle. Get reports found=false for a missing key.
type KeyValue interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
}
