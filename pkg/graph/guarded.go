package graph

import "sync"

// Guarded serializes access to a Graph: many readers or one writer.
type Guarded struct {
	mu sync.RWMutex
	g  *Graph
}

func NewGuarded(g *Graph) *Guarded {
	if g == nil {
		g = New()
	}
	return &Guarded{g: g}
}

// View runs fn with shared access. fn must not mutate the graph.
func (s *Guarded) View(fn func(g *Graph)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.g)
}

// Update runs fn with exclusive access; its mutations appear at once to
// readers.
func (s *Guarded) Update(fn func(g *Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.g)
}
