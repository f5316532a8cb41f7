package vac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vgc/vgc-sub008/internal/geom"
)

// triangle is the canonical test fixture: three vertices, three edges and a
// face whose single cycle walks e1, e2, e3 forward.
type triangle struct {
	v1, v2, v3 NodeID
	e1, e2, e3 NodeID
	face       NodeID
}

// buildTriangle creates the triangle fixture at frame f in a single
// transaction and verifies the complex is structurally sound afterwards.
func buildTriangle(t *testing.T, c *Complex, f Frame) triangle {
	t.Helper()

	var tri triangle
	err := Transact(c, func(op *Operations) error {
		root := c.Root()

		v1, err := op.CreateKeyVertex(root, NoNode, f, geom.Vec2{X: 0, Y: 0})
		require.NoError(t, err)
		v2, err := op.CreateKeyVertex(root, NoNode, f, geom.Vec2{X: 100, Y: 0})
		require.NoError(t, err)
		v3, err := op.CreateKeyVertex(root, NoNode, f, geom.Vec2{X: 50, Y: 80})
		require.NoError(t, err)

		e1, err := op.CreateKeyEdge(root, v1.ID(), v2.ID(), NoNode, f, EdgeGeometry{})
		require.NoError(t, err)
		e2, err := op.CreateKeyEdge(root, v2.ID(), v3.ID(), NoNode, f, EdgeGeometry{})
		require.NoError(t, err)
		e3, err := op.CreateKeyEdge(root, v3.ID(), v1.ID(), NoNode, f, EdgeGeometry{})
		require.NoError(t, err)

		face, err := op.CreateKeyFace(root, NoNode, f, CycleFromHalfedges(
			KeyHalfedge{Edge: e1.ID(), Forward: true},
			KeyHalfedge{Edge: e2.ID(), Forward: true},
			KeyHalfedge{Edge: e3.ID(), Forward: true},
		))
		require.NoError(t, err)

		tri = triangle{
			v1: v1.ID(), v2: v2.ID(), v3: v3.ID(),
			e1: e1.ID(), e2: e2.ID(), e3: e3.ID(),
			face: face.ID(),
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, c.CheckTopology())
	return tri
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
