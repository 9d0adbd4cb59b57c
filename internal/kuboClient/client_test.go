package kuboClient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dag "github.com/ipfs/boxo/ipld/merkledag"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/boxo/ipld/unixfs"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5heu/pinforest/internal/testutil"
	"github.com/i5heu/pinforest/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{API: srv.URL, Timeout: 2 * time.Second, Logger: testutil.QuietLogger()})
}

func buildDirectory(t *testing.T) *dag.ProtoNode {
	t.Helper()
	dir := unixfs.EmptyDirNode()
	require.NoError(t, dir.AddNodeLink("readme.md", dag.NewRawNode([]byte("hello"))))
	require.NoError(t, dir.AddNodeLink("data.bin", dag.NewRawNode([]byte("0123456789"))))
	return dir
}

func TestListPins(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v0/pin/ls", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("type"))
		fmt.Fprint(w, `{"Keys":{"bafyb":{"Type":"recursive"},"bafya":{"Type":"indirect"}}}`)
	})

	pins, err := c.ListPins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.ContentID{"bafya", "bafyb"}, pins)
}

func TestListPins_NodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"Message":"repo locked","Code":0,"Type":"error"}`)
	})

	_, err := c.ListPins(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFetch)
	assert.Contains(t, err.Error(), "repo locked")
}

func TestListPins_Unreachable(t *testing.T) {
	c := New(Config{API: "http://127.0.0.1:1", Timeout: time.Second, Logger: testutil.QuietLogger()})
	_, err := c.ListPins(context.Background())
	assert.ErrorIs(t, err, types.ErrFetch)
}

func TestFetchObject_DagPBDirectory(t *testing.T) {
	dir := buildDirectory(t)
	id := types.ContentIDFromCid(dir.Cid())

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/block/get", r.URL.Path)
		assert.Equal(t, id.String(), r.URL.Query().Get("arg"))
		w.Write(dir.RawData())
	})

	rec, err := c.FetchObject(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Directory", rec.Kind)
	require.Len(t, rec.Links, 2)
	assert.True(t, rec.IsDirectoryLike())

	names := map[string]uint64{}
	for _, l := range rec.Links {
		names[l.Name] = l.Size
	}
	assert.Equal(t, uint64(5), names["readme.md"])
	assert.Equal(t, uint64(10), names["data.bin"])
}

func TestFetchObject_DagPBFile(t *testing.T) {
	file := dag.NodeWithData(unixfs.FilePBData(nil, 20))
	require.NoError(t, file.AddNodeLink("", dag.NewRawNode([]byte("chunk-one!"))))
	require.NoError(t, file.AddNodeLink("", dag.NewRawNode([]byte("chunk-two!"))))
	id := types.ContentIDFromCid(file.Cid())

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(file.RawData())
	})

	rec, err := c.FetchObject(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "File", rec.Kind)
	assert.Len(t, rec.Links, 2)
	assert.False(t, rec.IsDirectoryLike())
}

func TestFetchObject_Malformed(t *testing.T) {
	id := testutil.DagPB(t, "broken")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0x00, 0x13, 0x37})
	})

	_, err := c.FetchObject(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrDecode)
}

func TestFetchObject_Timeout(t *testing.T) {
	id := testutil.DagPB(t, "slow")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := New(Config{API: srv.URL, Timeout: 50 * time.Millisecond, Logger: testutil.QuietLogger()})

	_, err := c.FetchObject(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrFetch)
}

func TestDecodeBlock_DagCBOR(t *testing.T) {
	target := testutil.Raw(t, "photo")
	nb := basicnode.Prototype.Map.NewBuilder()
	ma, err := nb.BeginMap(2)
	require.NoError(t, err)
	require.NoError(t, ma.AssembleKey().AssignString("photo"))
	require.NoError(t, ma.AssembleValue().AssignLink(cidlink.Link{Cid: mustCid(t, target)}))
	require.NoError(t, ma.AssembleKey().AssignString("title"))
	require.NoError(t, ma.AssembleValue().AssignString("holiday"))
	require.NoError(t, ma.Finish())

	var buf bytes.Buffer
	require.NoError(t, dagcbor.Encode(nb.Build(), &buf))

	id := testutil.DagCBOR(t, "album")
	rec, err := DecodeBlock(id, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rec.Links, 1)
	assert.Equal(t, types.Link{Target: target, Name: "photo"}, rec.Links[0])
	assert.True(t, rec.IsDirectoryLike())
}

func TestDecodeBlock_DagCBORScalar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, dagcbor.Encode(basicnode.NewString("just text"), &buf))

	rec, err := DecodeBlock(testutil.DagCBOR(t, "scalar"), buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, rec.Links)
}

func TestRemovePin(t *testing.T) {
	id := testutil.DagPB(t, "pinned")
	var gotRecursive string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/pin/rm", r.URL.Path)
		gotRecursive = r.URL.Query().Get("recursive")
		fmt.Fprintf(w, `{"Pins":["%s"]}`, id)
	})

	require.NoError(t, c.RemovePin(context.Background(), id, true))
	assert.Equal(t, "true", gotRecursive)
}

func TestRemovePin_NotPinned(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"Message":"not pinned or pinned indirectly","Code":0,"Type":"error"}`)
	})

	err := c.RemovePin(context.Background(), testutil.DagPB(t, "x"), true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFindProviders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/routing/findprovs", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("num-providers"))
		fmt.Fprintln(w, `{"Type":0,"Responses":null}`)
		fmt.Fprintln(w, `{"Type":4,"Responses":[{"ID":"12D3KooA","Addrs":["/ip4/1.2.3.4/tcp/4001"]}]}`)
		fmt.Fprintln(w, `{"Type":4,"Responses":[{"ID":"12D3KooA","Addrs":[]},{"ID":"12D3KooB","Addrs":null}]}`)
	})

	peers, err := c.FindProviders(context.Background(), testutil.DagPB(t, "x"))
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, "12D3KooA", peers[0].ID)
	assert.Equal(t, []string{"/ip4/1.2.3.4/tcp/4001"}, peers[0].Addrs)
	assert.Equal(t, "12D3KooB", peers[1].ID)
}

func mustCid(t *testing.T, id types.ContentID) cid.Cid {
	t.Helper()
	c, err := cid.Decode(id.String())
	require.NoError(t, err)
	return c
}
