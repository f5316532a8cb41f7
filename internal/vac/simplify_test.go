package vac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vgc/vgc-sub008/internal/geom"
)

// buildPath creates v1 -e1- v2 -e2- v3 along the x axis at frame 0.
func buildPath(t *testing.T, c *Complex) (v1, v2, v3, e1, e2 NodeID) {
	t.Helper()
	err := Transact(c, func(op *Operations) error {
		root := c.Root()
		a, err := op.CreateKeyVertex(root, NoNode, 0, geom.Vec2{X: 0, Y: 0})
		require.NoError(t, err)
		b, err := op.CreateKeyVertex(root, NoNode, 0, geom.Vec2{X: 10, Y: 0})
		require.NoError(t, err)
		d, err := op.CreateKeyVertex(root, NoNode, 0, geom.Vec2{X: 20, Y: 0})
		require.NoError(t, err)
		ab, err := op.CreateKeyEdge(root, a.ID(), b.ID(), NoNode, 0, EdgeGeometry{})
		require.NoError(t, err)
		bd, err := op.CreateKeyEdge(root, b.ID(), d.ID(), NoNode, 0, EdgeGeometry{})
		require.NoError(t, err)
		v1, v2, v3 = a.ID(), b.ID(), d.ID()
		e1, e2 = ab.ID(), bd.ID()
		return nil
	})
	require.NoError(t, err)
	return
}

func TestSimplifyKeepsHighDegreeVertex(t *testing.T) {
	c := NewComplex()

	var hub NodeID
	var spokes []NodeID
	err := Transact(c, func(op *Operations) error {
		root := c.Root()
		h, err := op.CreateKeyVertex(root, NoNode, 0, geom.Vec2{})
		require.NoError(t, err)
		hub = h.ID()
		for _, p := range []geom.Vec2{{X: 10}, {Y: 10}, {X: -10}} {
			v, err := op.CreateKeyVertex(root, NoNode, 0, p)
			require.NoError(t, err)
			e, err := op.CreateKeyEdge(root, hub, v.ID(), NoNode, 0, EdgeGeometry{})
			require.NoError(t, err)
			spokes = append(spokes, e.ID())
		}
		return nil
	})
	require.NoError(t, err)

	err = Transact(c, func(op *Operations) error {
		kept := op.Simplify([]NodeID{hub}, nil, false)
		require.Equal(t, []NodeID{hub}, kept)
		return nil
	})
	require.NoError(t, err)

	// Nothing was touched.
	require.NotNil(t, c.FindKeyVertex(hub))
	for _, e := range spokes {
		require.NotNil(t, c.FindKeyEdge(e))
	}
	require.NoError(t, c.CheckTopology())
}

func TestSimplifyMergesDegreeTwoVertex(t *testing.T) {
	c := NewComplex()
	v1, v2, v3, e1, e2 := buildPath(t, c)

	err := Transact(c, func(op *Operations) error {
		kept := op.Simplify([]NodeID{v2}, nil, false)
		require.Empty(t, kept)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())

	// The junction vertex and both old edges are gone.
	require.Nil(t, c.Find(v2))
	require.Nil(t, c.FindKeyEdge(e1))
	require.Nil(t, c.FindKeyEdge(e2))

	// One merged edge runs from v1 to v3.
	a := c.FindKeyVertex(v1)
	require.Len(t, a.Star(), 1)
	ne := c.FindKeyEdge(a.Star()[0])
	require.NotNil(t, ne)
	require.Equal(t, v1, ne.StartVertex())
	require.Equal(t, v3, ne.EndVertex())

	// The finalize step collapsed the concatenation buffer: one centerline
	// through all three original positions, junction point deduplicated.
	g := ne.Geometry()
	require.Equal(t, []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}}, g.Points)
	require.Equal(t, []float64{1, 1, 1}, g.Widths)
}

func TestSimplifyMergesFacesAcrossEdge(t *testing.T) {
	c := NewComplex()

	// Two triangles sharing the diagonal e31: (v1 v2 v3) and (v1 v3 v4).
	var v1, v2, v3, v4 NodeID
	var e12, e23, e31, e34, e41 NodeID
	var f1, f2 NodeID
	err := Transact(c, func(op *Operations) error {
		root := c.Root()
		mk := func(p geom.Vec2) NodeID {
			v, err := op.CreateKeyVertex(root, NoNode, 0, p)
			require.NoError(t, err)
			return v.ID()
		}
		v1 = mk(geom.Vec2{X: 0, Y: 0})
		v2 = mk(geom.Vec2{X: 10, Y: 0})
		v3 = mk(geom.Vec2{X: 10, Y: 10})
		v4 = mk(geom.Vec2{X: 0, Y: 10})
		edge := func(a, b NodeID) NodeID {
			e, err := op.CreateKeyEdge(root, a, b, NoNode, 0, EdgeGeometry{})
			require.NoError(t, err)
			return e.ID()
		}
		e12 = edge(v1, v2)
		e23 = edge(v2, v3)
		e31 = edge(v3, v1)
		e34 = edge(v3, v4)
		e41 = edge(v4, v1)

		fa, err := op.CreateKeyFace(root, NoNode, 0, CycleFromHalfedges(
			KeyHalfedge{Edge: e12, Forward: true},
			KeyHalfedge{Edge: e23, Forward: true},
			KeyHalfedge{Edge: e31, Forward: true},
		))
		require.NoError(t, err)
		fb, err := op.CreateKeyFace(root, NoNode, 0, CycleFromHalfedges(
			KeyHalfedge{Edge: e31, Forward: false},
			KeyHalfedge{Edge: e34, Forward: true},
			KeyHalfedge{Edge: e41, Forward: true},
		))
		require.NoError(t, err)
		f1, f2 = fa.ID(), fb.ID()
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())

	err = Transact(c, func(op *Operations) error {
		kept := op.Simplify(nil, []NodeID{e31}, false)
		require.Empty(t, kept)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())

	require.Nil(t, c.FindKeyEdge(e31))
	require.Nil(t, c.FindKeyFace(f1))
	require.Nil(t, c.FindKeyFace(f2))

	// Exactly one face remains, its single cycle walking the outer square.
	var merged *KeyFace
	for _, id := range c.CellsAtFrame(0) {
		if f := c.FindKeyFace(id); f != nil {
			require.Nil(t, merged, "more than one face survived")
			merged = f
		}
	}
	require.NotNil(t, merged)
	cycles := merged.Cycles()
	require.Len(t, cycles, 1)
	var walked []NodeID
	for _, h := range cycles[0].Halfedges {
		walked = append(walked, h.Edge)
	}
	require.ElementsMatch(t, []NodeID{e12, e23, e34, e41}, walked)
	require.ElementsMatch(t, []NodeID{e12, e23, e34, e41, v1, v2, v3, v4}, merged.Boundary())
}

func TestSimplifyLeavesUnsimplifiableEdgeAlone(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	// e1 bounds a single face, so uncutting it must fail silently.
	err := Transact(c, func(op *Operations) error {
		kept := op.Simplify(nil, []NodeID{tri.e1}, false)
		require.Equal(t, []NodeID{tri.e1}, kept)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, c.FindKeyEdge(tri.e1))
	require.NotNil(t, c.FindKeyFace(tri.face))
	require.NoError(t, c.CheckTopology())
}

func TestGlueRewritesIncidentFaceCycle(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	var glued NodeID
	err := Transact(c, func(op *Operations) error {
		ne, err := op.Glue(tri.e1, tri.e2, false)
		if err != nil {
			return err
		}
		glued = ne.ID()
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())

	// v2 folded away; the face now walks the glued edge then e3.
	require.Nil(t, c.Find(tri.v2))
	f := c.FindKeyFace(tri.face)
	require.NotNil(t, f)
	cycles := f.Cycles()
	require.Len(t, cycles, 1)
	require.Len(t, cycles[0].Halfedges, 2)
	var edges []NodeID
	for _, h := range cycles[0].Halfedges {
		edges = append(edges, h.Edge)
		if h.Edge == glued {
			require.True(t, h.Forward)
		}
	}
	require.ElementsMatch(t, []NodeID{glued, tri.e3}, edges)

	ne := c.FindKeyEdge(glued)
	require.Equal(t, tri.v1, ne.StartVertex())
	require.Equal(t, tri.v3, ne.EndVertex())
	require.ElementsMatch(t, []NodeID{f.ID()}, ne.Star())
}

func TestGlueRejectsDisjointEdges(t *testing.T) {
	c := NewComplex()

	var e1, e2 NodeID
	err := Transact(c, func(op *Operations) error {
		root := c.Root()
		mk := func(p geom.Vec2) NodeID {
			v, err := op.CreateKeyVertex(root, NoNode, 0, p)
			require.NoError(t, err)
			return v.ID()
		}
		a, b, d, e := mk(geom.Vec2{}), mk(geom.Vec2{X: 1}), mk(geom.Vec2{X: 2}), mk(geom.Vec2{X: 3})
		ab, err := op.CreateKeyEdge(root, a, b, NoNode, 0, EdgeGeometry{})
		require.NoError(t, err)
		de, err := op.CreateKeyEdge(root, d, e, NoNode, 0, EdgeGeometry{})
		require.NoError(t, err)
		e1, e2 = ab.ID(), de.ID()
		return nil
	})
	require.NoError(t, err)

	err = Transact(c, func(op *Operations) error {
		_, err := op.Glue(e1, e2, false)
		require.Error(t, err)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())
}
