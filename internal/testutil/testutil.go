package testutil

import (
	"flag"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/i5heu/pinforest/pkg/types"
)

var RunLong = flag.Bool("long", false, "run long/heavy tests")

func RequireLong(t *testing.T) {
	t.Helper()
	if !*RunLong {
		t.Skip("skipping long test (use -long to enable)")
	}
}

func IsLongEnabled() bool {
	return *RunLong
}

const sha2_256 = 0x12

// DagPB returns a deterministic dag-pb CIDv1 derived from seed.
func DagPB(t testing.TB, seed string) types.ContentID {
	return sum(t, cid.DagProtobuf, seed)
}

// DagCBOR returns a deterministic dag-cbor CIDv1 derived from seed.
func DagCBOR(t testing.TB, seed string) types.ContentID {
	return sum(t, cid.DagCBOR, seed)
}

// Raw returns a deterministic raw CIDv1 derived from seed.
func Raw(t testing.TB, seed string) types.ContentID {
	return sum(t, cid.Raw, seed)
}

func sum(t testing.TB, codec uint64, seed string) types.ContentID {
	t.Helper()
	c, err := cid.Prefix{Version: 1, Codec: codec, MhType: sha2_256, MhLength: -1}.Sum([]byte(seed))
	if err != nil {
		t.Fatalf("failed to build cid for %q: %v", seed, err)
	}
	return types.ContentIDFromCid(c)
}

// Dir builds a directory-like record whose links are named after their
// position: "a", "b", ...
func Dir(id types.ContentID, children ...types.ContentID) types.ObjectRecord {
	rec := types.ObjectRecord{ID: id, Kind: "Directory"}
	for i, c := range children {
		rec.Links = append(rec.Links, types.Link{Target: c, Name: string(rune('a' + i)), Size: uint64(10 * (i + 1))})
	}
	return rec
}

// Leaf builds a record with unnamed links, the shape of a chunked file.
func Leaf(id types.ContentID, chunks ...types.ContentID) types.ObjectRecord {
	rec := types.ObjectRecord{ID: id, Kind: "File"}
	for _, c := range chunks {
		rec.Links = append(rec.Links, types.Link{Target: c, Size: 256})
	}
	return rec
}
