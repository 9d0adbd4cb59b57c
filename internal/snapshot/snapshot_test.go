package snapshot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

func TestWriteRead_ReplayRestoresGraph(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", "b", 10)
	g.AddEdge("A", "C", "c", 20)
	g.AddEdge("X", "C", "c", 20)
	g.AddNode("lonely")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromGraph(g)))

	s, err := Read(&buf)
	require.NoError(t, err)

	restored := graph.New()
	s.Replay(restored)

	assert.Equal(t, g.Nodes(), restored.Nodes())
	assert.Equal(t, g.Edges(), restored.Edges())
	assert.Equal(t, []types.ContentID{"A", "X", "lonely"}, restored.Sources())
}

func TestRead_NotCompressed(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte(`{"version":1}`)))
	assert.ErrorIs(t, err, types.ErrDecode)
}

func TestRead_WrongVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Snapshot{Version: 99}))

	_, err := Read(&buf)
	assert.ErrorIs(t, err, types.ErrDecode)
}
