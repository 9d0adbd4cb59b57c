package types

import (
	"github.com/ipfs/go-cid"
)

const (
	CodecDagPB   = "dag-pb"
	CodecDagCBOR = "dag-cbor"
	CodecRaw     = "raw"
)

var codecNames = map[uint64]string{
	cid.DagProtobuf: CodecDagPB,
	cid.DagCBOR:     CodecDagCBOR,
	cid.Raw:         CodecRaw,
	cid.DagJSON:     "dag-json",
	cid.Libp2pKey:   "libp2p-key",
	cid.GitRaw:      "git-raw",
}

// ContentID is the string form of a content identifier. Equality is string
// equality; the codec tag is derived from the encoded CID.
type ContentID string

func (c ContentID) String() string {
	return string(c)
}

func (c ContentID) Bytes() []byte {
	return []byte(c)
}

// Codec returns the multicodec name of the identifier, or "" when the string
// does not decode as a CID.
func (c ContentID) Codec() string {
	parsed, err := cid.Decode(string(c))
	if err != nil {
		return ""
	}
	name, ok := codecNames[parsed.Type()]
	if !ok {
		return "unknown"
	}
	return name
}

// MayBeDirectory reports whether the codec can carry UnixFS style named links.
func (c ContentID) MayBeDirectory() bool {
	codec := c.Codec()
	return codec == CodecDagPB || codec == CodecDagCBOR
}

func ContentIDFromCid(c cid.Cid) ContentID {
	return ContentID(c.String())
}

// Link is a named, sized reference from a parent object to a child.
type Link struct {
	Target ContentID
	Name   string
	Size   uint64
}

// ObjectRecord is the decoded form of a fetched block.
type ObjectRecord struct {
	ID    ContentID
	Links []Link
	// Kind is a display label such as the UnixFS node type. It never
	// influences classification.
	Kind string
}

// IsDirectoryLike reports whether the first link carries a name. Raw and
// file blocks have unnamed links; UnixFS directories name every link.
func (o ObjectRecord) IsDirectoryLike() bool {
	return len(o.Links) > 0 && o.Links[0].Name != ""
}

type DirectoryState int

const (
	Unknown DirectoryState = iota
	NotDirectory
	Directory
)

func (s DirectoryState) String() string {
	switch s {
	case NotDirectory:
		return "not-directory"
	case Directory:
		return "directory"
	default:
		return "unknown"
	}
}

// DirectoryResult is the outcome of classifying a block. Record is only set
// when State is Directory.
type DirectoryResult struct {
	State  DirectoryState
	Record *ObjectRecord
	// Err holds the fetch or decode failure behind an Unknown result.
	Err error
}

func (r DirectoryResult) IsDirectory() bool {
	return r.State == Directory
}

// PeerInfo describes a provider returned by a provider lookup.
type PeerInfo struct {
	ID    string
	Addrs []string
}
