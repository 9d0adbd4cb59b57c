// Package graph is an in-memory directed graph keyed by content identifiers.
// Each ordered (source, target) pair carries at most one edge with link
// metadata. Node and edge sets keep insertion order.
//
// A Graph is not safe for concurrent use; callers serialize mutations.
package graph

import (
	"fmt"

	"github.com/i5heu/pinforest/pkg/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Edge struct {
	Source types.ContentID
	Target types.ContentID
	Name   string
	Size   uint64
}

type vertex struct {
	out *orderedmap.OrderedMap[types.ContentID, *Edge]
	in  *orderedmap.OrderedMap[types.ContentID, *Edge]
}

func newVertex() *vertex {
	return &vertex{
		out: orderedmap.New[types.ContentID, *Edge](),
		in:  orderedmap.New[types.ContentID, *Edge](),
	}
}

type Graph struct {
	nodes *orderedmap.OrderedMap[types.ContentID, *vertex]
	edges int
}

func New() *Graph {
	return &Graph{
		nodes: orderedmap.New[types.ContentID, *vertex](),
	}
}

// AddNode is a no-op when id is already present.
func (g *Graph) AddNode(id types.ContentID) {
	if _, ok := g.nodes.Get(id); ok {
		return
	}
	g.nodes.Set(id, newVertex())
}

// AddEdge creates both endpoints if needed and sets the metadata of the
// (source, target) edge. Re-adding an existing pair overwrites its name and
// size in place; the edge keeps its position.
func (g *Graph) AddEdge(source, target types.ContentID, name string, size uint64) {
	g.AddNode(source)
	g.AddNode(target)

	src := g.vertex(source)
	if e, ok := src.out.Get(target); ok {
		e.Name = name
		e.Size = size
		return
	}

	e := &Edge{Source: source, Target: target, Name: name, Size: size}
	src.out.Set(target, e)
	g.vertex(target).in.Set(source, e)
	g.edges++
}

// RemoveNode drops id and every edge touching it. Removing an absent node is
// a no-op. It does not cascade to children.
func (g *Graph) RemoveNode(id types.ContentID) {
	v, ok := g.nodes.Get(id)
	if !ok {
		return
	}

	for p := v.out.Oldest(); p != nil; p = p.Next() {
		g.edges--
		if p.Key == id {
			continue
		}
		g.vertex(p.Key).in.Delete(id)
	}
	for p := v.in.Oldest(); p != nil; p = p.Next() {
		if p.Key == id {
			continue
		}
		g.edges--
		g.vertex(p.Key).out.Delete(id)
	}

	g.nodes.Delete(id)
}

func (g *Graph) HasNode(id types.ContentID) bool {
	_, ok := g.nodes.Get(id)
	return ok
}

// Edge returns the metadata of the (source, target) edge.
func (g *Graph) Edge(source, target types.ContentID) (Edge, bool) {
	v, ok := g.nodes.Get(source)
	if !ok {
		return Edge{}, false
	}
	e, ok := v.out.Get(target)
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// OutEdges returns the edges leaving id in insertion order. Callers that
// need a stable display order sort the result themselves.
func (g *Graph) OutEdges(id types.ContentID) []Edge {
	v, ok := g.nodes.Get(id)
	if !ok {
		return nil
	}
	return collect(v.out)
}

// InEdges returns the edges entering id in insertion order.
func (g *Graph) InEdges(id types.ContentID) []Edge {
	v, ok := g.nodes.Get(id)
	if !ok {
		return nil
	}
	return collect(v.in)
}

func (g *Graph) InDegree(id types.ContentID) int {
	v, ok := g.nodes.Get(id)
	if !ok {
		return 0
	}
	return v.in.Len()
}

// Sources returns the nodes without incoming edges, in insertion order.
func (g *Graph) Sources() []types.ContentID {
	sources := make([]types.ContentID, 0)
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		if p.Value.in.Len() == 0 {
			sources = append(sources, p.Key)
		}
	}
	return sources
}

func (g *Graph) Nodes() []types.ContentID {
	nodes := make([]types.ContentID, 0, g.nodes.Len())
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		nodes = append(nodes, p.Key)
	}
	return nodes
}

// Edges returns every edge, grouped by source in node insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		edges = append(edges, collect(p.Value.out)...)
	}
	return edges
}

func (g *Graph) NodeCount() int {
	return g.nodes.Len()
}

func (g *Graph) EdgeCount() int {
	return g.edges
}

// vertex looks up a node that an edge claims exists. A miss means the edge
// index and the node set disagree.
func (g *Graph) vertex(id types.ContentID) *vertex {
	v, ok := g.nodes.Get(id)
	if !ok {
		panic(fmt.Errorf("edge endpoint %s missing from node set: %w", id, types.ErrConsistency))
	}
	return v
}

func collect(m *orderedmap.OrderedMap[types.ContentID, *Edge]) []Edge {
	edges := make([]Edge, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		edges = append(edges, *p.Value)
	}
	return edges
}
