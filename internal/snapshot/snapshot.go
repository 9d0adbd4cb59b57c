// Package snapshot stores a forest graph as lzma compressed JSON.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz/lzma"

	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

const formatVersion = 1

type Edge struct {
	Source types.ContentID `json:"source"`
	Target types.ContentID `json:"target"`
	Name   string          `json:"name"`
	Size   uint64          `json:"size"`
}

type Snapshot struct {
	Version int               `json:"version"`
	Created time.Time         `json:"created"`
	Nodes   []types.ContentID `json:"nodes"`
	Edges   []Edge            `json:"edges"`
}

// FromGraph captures the nodes and edges of g in insertion order.
func FromGraph(g *graph.Graph) Snapshot {
	s := Snapshot{
		Version: formatVersion,
		Created: time.Now().UTC(),
		Nodes:   g.Nodes(),
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{Source: e.Source, Target: e.Target, Name: e.Name, Size: e.Size})
	}
	return s
}

// Replay adds the snapshot to g through the regular graph operations.
func (s Snapshot) Replay(g *graph.Graph) {
	for _, n := range s.Nodes {
		g.AddNode(n)
	}
	for _, e := range s.Edges {
		g.AddEdge(e.Source, e.Target, e.Name, e.Size)
	}
}

func Write(w io.Writer, s Snapshot) error {
	lw, err := lzma.NewWriter(w)
	if err != nil {
		return fmt.Errorf("error creating lzma writer: %w", err)
	}

	if err := json.NewEncoder(lw).Encode(s); err != nil {
		lw.Close()
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	if err := lw.Close(); err != nil {
		return fmt.Errorf("error closing lzma writer: %w", err)
	}
	return nil
}

func Read(r io.Reader) (Snapshot, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error creating lzma reader: %v: %w", err, types.ErrDecode)
	}

	var s Snapshot
	if err := json.NewDecoder(lr).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("error decoding snapshot: %v: %w", err, types.ErrDecode)
	}
	if s.Version != formatVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d: %w", s.Version, types.ErrDecode)
	}
	return s, nil
}
