package kuboClient

import (
	"bytes"
	"fmt"

	dag "github.com/ipfs/boxo/ipld/merkledag"
	"github.com/ipfs/boxo/ipld/unixfs"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/i5heu/pinforest/pkg/types"
)

// DecodeBlock turns a raw block into an ObjectRecord. dag-pb links keep their
// names and sizes; dag-cbor top-level map entries holding a link become links
// named after their key with size 0. Other codecs have no links.
func DecodeBlock(id types.ContentID, raw []byte) (types.ObjectRecord, error) {
	switch id.Codec() {
	case types.CodecDagPB:
		return decodeDagPB(id, raw)
	case types.CodecDagCBOR:
		return decodeDagCBOR(id, raw)
	default:
		return types.ObjectRecord{ID: id, Kind: id.Codec()}, nil
	}
}

func decodeDagPB(id types.ContentID, raw []byte) (types.ObjectRecord, error) {
	pn, err := dag.DecodeProtobuf(raw)
	if err != nil {
		return types.ObjectRecord{}, fmt.Errorf("error decoding dag-pb block %s: %v: %w", id, err, types.ErrDecode)
	}

	rec := types.ObjectRecord{ID: id, Kind: types.CodecDagPB}
	if fsn, err := unixfs.FSNodeFromBytes(pn.Data()); err == nil {
		rec.Kind = fsn.Type().String()
	}

	for _, l := range pn.Links() {
		rec.Links = append(rec.Links, types.Link{
			Target: types.ContentIDFromCid(l.Cid),
			Name:   l.Name,
			Size:   l.Size,
		})
	}
	return rec, nil
}

func decodeDagCBOR(id types.ContentID, raw []byte) (types.ObjectRecord, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagcbor.Decode(nb, bytes.NewReader(raw)); err != nil {
		return types.ObjectRecord{}, fmt.Errorf("error decoding dag-cbor block %s: %v: %w", id, err, types.ErrDecode)
	}
	n := nb.Build()

	rec := types.ObjectRecord{ID: id, Kind: types.CodecDagCBOR}
	if n.Kind() != datamodel.Kind_Map {
		return rec, nil
	}

	it := n.MapIterator()
	for !it.Done() {
		k, v, err := it.Next()
		if err != nil {
			return types.ObjectRecord{}, fmt.Errorf("error reading dag-cbor block %s: %v: %w", id, err, types.ErrDecode)
		}
		if v.Kind() != datamodel.Kind_Link {
			continue
		}
		name, err := k.AsString()
		if err != nil {
			continue
		}
		lnk, err := v.AsLink()
		if err != nil {
			continue
		}
		cl, ok := lnk.(cidlink.Link)
		if !ok {
			continue
		}
		rec.Links = append(rec.Links, types.Link{
			Target: types.ContentIDFromCid(cl.Cid),
			Name:   name,
		})
	}
	return rec, nil
}
