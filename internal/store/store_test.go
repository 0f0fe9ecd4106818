package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efigueira/genre-classification/internal/store"
)

func TestOrderedListsInInsertionOrder(t *testing.T) {
	t.Parallel()

	st := store.NewOrdered[string, string]()
	gra := graph.NewWithStore(graph.StringHash, st, graph.Directed())

	for _, name := range []string{"evaluate", "download", "segregate", "check_data"} {
		require.NoError(t, gra.AddVertex(name))
	}

	require.NoError(t, gra.AddEdge("segregate", "evaluate"))
	require.NoError(t, gra.AddEdge("download", "segregate"))
	require.NoError(t, gra.AddEdge("download", "check_data"))

	vertices, err := st.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"evaluate", "download", "segregate", "check_data"}, vertices)

	edges, err := st.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "segregate", edges[0].Source)
	assert.Equal(t, "evaluate", edges[0].Target)
	assert.Equal(t, "download", edges[2].Source)
	assert.Equal(t, "check_data", edges[2].Target)
}

func TestOrderedRemove(t *testing.T) {
	t.Parallel()

	st := store.NewOrdered[string, string]()
	gra := graph.NewWithStore(graph.StringHash, st, graph.Directed())

	require.NoError(t, gra.AddVertex("a"))
	require.NoError(t, gra.AddVertex("b"))
	require.NoError(t, gra.AddVertex("c"))
	require.NoError(t, gra.AddEdge("a", "b"))

	require.ErrorIs(t, gra.RemoveVertex("a"), graph.ErrVertexHasEdges)
	require.NoError(t, gra.RemoveEdge("a", "b"))
	require.NoError(t, gra.RemoveVertex("a"))

	vertices, err := st.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, vertices)

	edges, err := st.ListEdges()
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestOrderedUpdateVertex(t *testing.T) {
	t.Parallel()

	st := store.NewOrdered[string, string]()
	require.NoError(t, st.AddVertex("download", "download", graph.VertexProperties{}))

	err := st.UpdateVertex("download", func(p *graph.VertexProperties) {
		p.Attributes["color"] = "red"
	})
	require.NoError(t, err)

	_, properties, err := st.Vertex("download")
	require.NoError(t, err)
	assert.Equal(t, "red", properties.Attributes["color"])

	require.ErrorIs(t, st.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestOrderedUpdateEdge(t *testing.T) {
	t.Parallel()

	st := store.NewOrdered[string, string]()
	gra := graph.NewWithStore(graph.StringHash, st, graph.Directed())

	require.NoError(t, gra.AddVertex("a"))
	require.NoError(t, gra.AddVertex("b"))
	require.NoError(t, gra.AddEdge("a", "b", graph.EdgeAttribute("label", "x")))
	require.ErrorIs(t, gra.AddEdge("a", "b"), graph.ErrEdgeAlreadyExists)
	require.NoError(t, gra.UpdateEdge("a", "b", graph.EdgeAttribute("label", "y")))

	edge, err := gra.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "y", edge.Properties.Attributes["label"])
}
