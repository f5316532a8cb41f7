package vac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vgc/vgc-sub008/internal/geom"
)

func TestTriangleFaceIncidence(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	e1 := c.FindKeyEdge(tri.e1)
	require.NotNil(t, e1)
	require.ElementsMatch(t, []NodeID{tri.v1, tri.v2}, e1.Boundary())

	v1 := c.FindKeyVertex(tri.v1)
	require.NotNil(t, v1)
	require.True(t, containsID(v1.Star(), tri.e1))
	require.True(t, containsID(v1.Star(), tri.e3))
	require.True(t, containsID(v1.Star(), tri.face))

	face := c.FindKeyFace(tri.face)
	require.NotNil(t, face)
	for _, id := range []NodeID{tri.v1, tri.v2, tri.v3, tri.e1, tri.e2, tri.e3} {
		require.True(t, containsID(face.Boundary(), id), "face boundary missing %d", id)
	}
}

func TestBoundaryStarSymmetryAfterEdits(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	err := Transact(c, func(op *Operations) error {
		if err := op.SetKeyVertexPosition(tri.v1, geom.Vec2{X: -10, Y: -10}); err != nil {
			return err
		}
		return op.RemoveNode(tri.e2, false)
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())
}

func TestRemoveEdgeCascades(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	var got *Diff
	c.OnDiff(func(d *Diff) { got = d })

	err := Transact(c, func(op *Operations) error {
		return op.RemoveNode(tri.e1, false)
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())

	require.Nil(t, c.Find(tri.e1))
	require.False(t, containsID(c.FindKeyVertex(tri.v1).Star(), tri.e1))
	require.False(t, containsID(c.FindKeyVertex(tri.v2).Star(), tri.e1))
	require.False(t, containsID(c.FindKeyFace(tri.face).Boundary(), tri.e1))

	require.NotNil(t, got)
	require.Equal(t, []NodeID{tri.e1}, got.Destroyed())
	require.True(t, got.ModifiedFlagsOf(tri.face).Has(BoundaryChanged))
}

func TestRemoveNodeFreeVertices(t *testing.T) {
	c := NewComplex()
	var v1, v2, e NodeID
	err := Transact(c, func(op *Operations) error {
		a, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{})
		if err != nil {
			return err
		}
		b, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{X: 10})
		if err != nil {
			return err
		}
		ed, err := op.CreateKeyEdge(c.Root(), a.ID(), b.ID(), NoNode, 0, EdgeGeometry{})
		if err != nil {
			return err
		}
		v1, v2, e = a.ID(), b.ID(), ed.ID()
		return nil
	})
	require.NoError(t, err)

	err = Transact(c, func(op *Operations) error {
		return op.RemoveNode(e, true)
	})
	require.NoError(t, err)
	require.Nil(t, c.Find(e))
	require.Nil(t, c.Find(v1))
	require.Nil(t, c.Find(v2))
	require.NoError(t, c.CheckTopology())
}

func TestReparentIntoDescendantRejected(t *testing.T) {
	c := NewComplex()
	var outer, inner NodeID
	err := Transact(c, func(op *Operations) error {
		g1, err := op.CreateGroup(c.Root(), NoNode)
		if err != nil {
			return err
		}
		g2, err := op.CreateGroup(g1.ID(), NoNode)
		if err != nil {
			return err
		}
		outer, inner = g1.ID(), g2.ID()
		return nil
	})
	require.NoError(t, err)

	err = Transact(c, func(op *Operations) error {
		return op.MoveToGroup(outer, inner, NoNode)
	})
	require.ErrorIs(t, err, ErrCycleReparent)

	// The tree is unchanged.
	require.Equal(t, c.Root(), c.Find(outer).ParentGroup())
	require.Equal(t, outer, c.Find(inner).ParentGroup())
	require.NoError(t, c.CheckTopology())
}

func TestMoveToGroupSiblingOrder(t *testing.T) {
	c := NewComplex()
	var g NodeID
	var a, b, x NodeID
	err := Transact(c, func(op *Operations) error {
		grp, err := op.CreateGroup(c.Root(), NoNode)
		if err != nil {
			return err
		}
		g = grp.ID()
		va, err := op.CreateKeyVertex(g, NoNode, 0, geom.Vec2{})
		if err != nil {
			return err
		}
		vb, err := op.CreateKeyVertex(g, NoNode, 0, geom.Vec2{X: 1})
		if err != nil {
			return err
		}
		vx, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{X: 2})
		if err != nil {
			return err
		}
		a, b, x = va.ID(), vb.ID(), vx.ID()
		return nil
	})
	require.NoError(t, err)

	err = Transact(c, func(op *Operations) error {
		return op.MoveToGroup(x, g, b)
	})
	require.NoError(t, err)
	require.Equal(t, []NodeID{a, x, b}, c.FindGroup(g).Children())
	require.NoError(t, c.CheckTopology())
}

func TestNotAChildAnchor(t *testing.T) {
	c := NewComplex()
	var g1, g2 NodeID
	err := Transact(c, func(op *Operations) error {
		a, err := op.CreateGroup(c.Root(), NoNode)
		if err != nil {
			return err
		}
		b, err := op.CreateGroup(c.Root(), NoNode)
		if err != nil {
			return err
		}
		g1, g2 = a.ID(), b.ID()
		return nil
	})
	require.NoError(t, err)

	err = Transact(c, func(op *Operations) error {
		// g2 is a child of root, not of g1: invalid anchor.
		_, err := op.CreateKeyVertex(g1, g2, 0, geom.Vec2{})
		return err
	})
	require.ErrorIs(t, err, ErrNotAChild)
}

func TestVersionMonotonicity(t *testing.T) {
	c := NewComplex()
	require.Equal(t, uint64(1), c.Version()) // root creation

	err := Transact(c, func(op *Operations) error {
		_, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{})
		if err != nil {
			return err
		}
		// A nested scope shares the outer transaction's version bump.
		return Transact(c, func(op *Operations) error {
			before := c.Version()
			_, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{X: 5})
			if err != nil {
				return err
			}
			require.Equal(t, before, c.Version())
			return nil
		})
	})
	require.NoError(t, err)
	require.Equal(t, uint64(2), c.Version())

	err = Transact(c, func(op *Operations) error { return nil })
	require.NoError(t, err)
	require.Equal(t, uint64(3), c.Version())
}

func TestTransactFinalizesOnError(t *testing.T) {
	c := NewComplex()
	sentinel := errors.New("boom")

	var emitted *Diff
	c.OnDiff(func(d *Diff) { emitted = d })

	var created NodeID
	err := Transact(c, func(op *Operations) error {
		v, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{})
		if err != nil {
			return err
		}
		created = v.ID()
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// No rollback: the committed mutation is kept and the diff was emitted.
	require.NotNil(t, c.Find(created))
	require.NotNil(t, emitted)
	require.Equal(t, []NodeID{created}, emitted.Created())
}

func TestTransactNilComplex(t *testing.T) {
	err := Transact(nil, func(op *Operations) error { return nil })
	require.ErrorIs(t, err, ErrNilComplex)
}

func TestGeometryRederivedFromBoundary(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	var got *Diff
	c.OnDiff(func(d *Diff) { got = d })

	err := Transact(c, func(op *Operations) error {
		return op.SetKeyVertexPosition(tri.v1, geom.Vec2{X: -25, Y: 5})
	})
	require.NoError(t, err)

	// The incident edges' endpoints snapped to the new vertex position.
	e1 := c.FindKeyEdge(tri.e1)
	require.Equal(t, geom.Vec2{X: -25, Y: 5}, e1.Geometry().Points[0])
	e3 := c.FindKeyEdge(tri.e3)
	pts := e3.Geometry().Points
	require.Equal(t, geom.Vec2{X: -25, Y: 5}, pts[len(pts)-1])

	require.True(t, got.ModifiedFlagsOf(tri.e1).Has(BoundaryGeometryChanged))
	require.True(t, got.ModifiedFlagsOf(tri.e1).Has(GeometryChanged))
}

func TestSetPropertyRecordsName(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	var got *Diff
	c.OnDiff(func(d *Diff) { got = d })

	err := Transact(c, func(op *Operations) error {
		if err := op.SetProperty(tri.face, "color", "#e94560"); err != nil {
			return err
		}
		return op.SetProperty(tri.face, "color", "#0f3460")
	})
	require.NoError(t, err)
	require.Equal(t, "#0f3460", c.Find(tri.face).Property("color"))

	mods := got.Modified()
	var entry *Modification
	for i := range mods {
		if mods[i].Node == tri.face {
			entry = &mods[i]
		}
	}
	require.NotNil(t, entry)
	require.True(t, entry.Flags.Has(PropertyChanged))
	require.Equal(t, []string{"color"}, entry.Properties)
}

func TestCreateKeyEdgeFrameMismatch(t *testing.T) {
	c := NewComplex()
	err := Transact(c, func(op *Operations) error {
		a, err := op.CreateKeyVertex(c.Root(), NoNode, 0, geom.Vec2{})
		if err != nil {
			return err
		}
		b, err := op.CreateKeyVertex(c.Root(), NoNode, 5, geom.Vec2{X: 1})
		if err != nil {
			return err
		}
		_, err = op.CreateKeyEdge(c.Root(), a.ID(), b.ID(), NoNode, 0, EdgeGeometry{})
		return err
	})
	require.ErrorIs(t, err, ErrFrameMismatch)
}

func TestClosedEdgeHasEmptyBoundary(t *testing.T) {
	c := NewComplex()
	var e NodeID
	err := Transact(c, func(op *Operations) error {
		ed, err := op.CreateKeyClosedEdge(c.Root(), NoNode, 0, EdgeGeometry{
			Points: []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
			Widths: []float64{1, 1, 1},
		})
		if err != nil {
			return err
		}
		e = ed.ID()
		return nil
	})
	require.NoError(t, err)

	edge := c.FindKeyEdge(e)
	require.True(t, edge.IsClosed())
	require.Empty(t, edge.Boundary())

	// A closed edge alone can bound a face.
	err = Transact(c, func(op *Operations) error {
		_, err := op.CreateKeyFace(c.Root(), NoNode, 0, CycleFromHalfedges(
			KeyHalfedge{Edge: e, Forward: true},
		))
		return err
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())
}

func TestRemoveRootRejected(t *testing.T) {
	c := NewComplex()
	err := Transact(c, func(op *Operations) error {
		return op.RemoveNode(c.Root(), false)
	})
	require.ErrorIs(t, err, ErrRootRemoval)
}
