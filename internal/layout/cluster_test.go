package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster_Empty(t *testing.T) {
	c := NewClusterer(0)
	assert.Nil(t, c.Cluster(nil))
	assert.Nil(t, c.Cluster([]TextFragment{}))
}

func TestCluster_SingleRow(t *testing.T) {
	c := NewClusterer(5)
	frags := []TextFragment{
		{Text: "14,5", X: 200, Y: 100, Page: 1},
		{Text: "Dupont", X: 10, Y: 102, Page: 1},
		{Text: "Jean", X: 60, Y: 101, Page: 1},
	}

	rows := c.Cluster(frags)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dupont Jean 14,5", rows[0].Text())
}

func TestCluster_VerticalGapStartsNewRow(t *testing.T) {
	c := NewClusterer(5)
	frags := []TextFragment{
		{Text: "header", X: 10, Y: 50, Page: 1},
		{Text: "data", X: 10, Y: 70, Page: 1},
	}

	rows := c.Cluster(frags)
	require.Len(t, rows, 2)
	assert.Equal(t, "header", rows[0].Text())
	assert.Equal(t, "data", rows[1].Text())
}

func TestCluster_ToleranceBoundaryIsInclusive(t *testing.T) {
	c := NewClusterer(5)
	frags := []TextFragment{
		{Text: "a", X: 10, Y: 100, Page: 1},
		{Text: "b", X: 20, Y: 105, Page: 1}, // exactly on the boundary
		{Text: "c", X: 30, Y: 105.01, Page: 1},
	}

	rows := c.Cluster(frags)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].Fragments, 2)
	assert.Len(t, rows[1].Fragments, 1)
}

func TestCluster_PageChangeStartsNewRow(t *testing.T) {
	c := NewClusterer(5)
	frags := []TextFragment{
		{Text: "page two", X: 10, Y: 100, Page: 2},
		{Text: "page one", X: 10, Y: 100, Page: 1},
	}

	rows := c.Cluster(frags)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Page)
	assert.Equal(t, 2, rows[1].Page)
}

func TestCluster_InputNotModified(t *testing.T) {
	c := NewClusterer(5)
	frags := []TextFragment{
		{Text: "b", X: 50, Y: 100, Page: 1},
		{Text: "a", X: 10, Y: 100, Page: 1},
	}

	_ = c.Cluster(frags)
	assert.Equal(t, "b", frags[0].Text)
	assert.Equal(t, "a", frags[1].Text)
}

func TestNewClusterer_DefaultTolerance(t *testing.T) {
	assert.InDelta(t, DefaultTolerance, NewClusterer(0).Tolerance(), 1e-9)
	assert.InDelta(t, DefaultTolerance, NewClusterer(-1).Tolerance(), 1e-9)
	assert.InDelta(t, 8.0, NewClusterer(8).Tolerance(), 1e-9)
}
