package vac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClosureOfEdge(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	got := Closure(c, []NodeID{tri.e1})
	require.Equal(t, []NodeID{tri.e1, tri.v1, tri.v2}, got)
}

func TestClosureIdempotent(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	sets := [][]NodeID{
		{tri.face},
		{tri.e1, tri.e2},
		{tri.v1},
		{tri.face, tri.v3, tri.e2},
	}
	for _, s := range sets {
		once := Closure(c, s)
		twice := Closure(c, once)
		require.Equal(t, once, twice)
	}
}

func TestClosureAndOpeningContainInput(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	in := []NodeID{tri.e2, tri.v1}
	for _, id := range in {
		require.True(t, containsID(Closure(c, in), id))
		require.True(t, containsID(Opening(c, in), id))
	}
}

func TestStarOfVertex(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	got := Star(c, []NodeID{tri.v1})
	require.ElementsMatch(t, []NodeID{tri.e1, tri.e3, tri.face}, got)
	require.False(t, containsID(got, tri.v1))
}

func TestOpeningOfEdge(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	got := Opening(c, []NodeID{tri.e1})
	require.Equal(t, []NodeID{tri.e1, tri.face}, got)
}

func TestBoundaryOfFaceClosure(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	// The closure of the face is the whole triangle; nothing escapes it, so
	// its boundary is the edges and vertices (everything below the face).
	got := OuterBoundary(c, []NodeID{tri.face})
	require.ElementsMatch(t,
		[]NodeID{tri.v1, tri.v2, tri.v3, tri.e1, tri.e2, tri.e3}, got)
	require.False(t, containsID(got, tri.face))
}

func TestBoundaryOfEdgeSet(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	// {e1}: its star (the face) escapes the closure, so e1 itself is part of
	// the boundary along with its endpoints.
	got := Boundary(c, []NodeID{tri.e1})
	require.ElementsMatch(t, []NodeID{tri.e1, tri.v1, tri.v2}, got)
}

func TestAlgorithmsDeterministicOrder(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	in := []NodeID{tri.face, tri.e2}
	first := Closure(c, in)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Closure(c, in))
	}

	star := Star(c, []NodeID{tri.v2})
	for i := 0; i < 10; i++ {
		require.Equal(t, star, Star(c, []NodeID{tri.v2}))
	}
}

func TestAlgorithmsIgnoreUnknownIDs(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	got := Closure(c, []NodeID{tri.e1, 9999, NoNode})
	require.Equal(t, []NodeID{tri.e1, tri.v1, tri.v2}, got)
	require.Empty(t, Star(c, []NodeID{9999}))
}
