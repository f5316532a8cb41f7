package vac

import (
	"fmt"

	"github.com/vgc/vgc-sub008/internal/geom"
)

// KeyHalfedge is a directed reference to a key edge. Forward means traversal
// from the edge's start vertex to its end vertex.
type KeyHalfedge struct {
	Edge    NodeID `json:"edge"`
	Forward bool   `json:"forward"`
}

// StartVertex returns the vertex the halfedge leaves from, or NoNode for a
// closed edge.
func (h KeyHalfedge) StartVertex(c *Complex) NodeID {
	e := c.FindKeyEdge(h.Edge)
	if e == nil {
		return NoNode
	}
	if h.Forward {
		return e.startVertex
	}
	return e.endVertex
}

// EndVertex returns the vertex the halfedge arrives at, or NoNode for a
// closed edge.
func (h KeyHalfedge) EndVertex(c *Complex) NodeID {
	e := c.FindKeyEdge(h.Edge)
	if e == nil {
		return NoNode
	}
	if h.Forward {
		return e.endVertex
	}
	return e.startVertex
}

// Opposite returns the same edge traversed in the other direction.
func (h KeyHalfedge) Opposite() KeyHalfedge {
	return KeyHalfedge{Edge: h.Edge, Forward: !h.Forward}
}

// samples returns the edge's sampled points in traversal order.
func (h KeyHalfedge) samples(c *Complex) []geom.Vec2 {
	e := c.FindKeyEdge(h.Edge)
	if e == nil {
		return nil
	}
	sampling := e.Sampling()
	pts := make([]geom.Vec2, len(sampling.Samples))
	if h.Forward {
		for i, s := range sampling.Samples {
			pts[i] = s.Position
		}
	} else {
		for i, s := range sampling.Samples {
			pts[len(pts)-1-i] = s.Position
		}
	}
	return pts
}

// KeyPath is an open sequence of halfedges (or a single vertex) describing a
// connected walk along the drawing. It is the intermediate used when building
// a cycle.
type KeyPath struct {
	Vertex    NodeID        `json:"vertex,omitempty"`
	Halfedges []KeyHalfedge `json:"halfedges,omitempty"`
}

// Validate checks that the path is a single vertex or a connected halfedge
// walk whose cells all exist at the same frame.
func (p KeyPath) Validate(c *Complex) error {
	if len(p.Halfedges) == 0 {
		if c.FindKeyVertex(p.Vertex) == nil {
			return fmt.Errorf("%w: path vertex %d", ErrNotFound, p.Vertex)
		}
		return nil
	}
	return validateWalk(c, p.Halfedges, false)
}

// Close turns the path into a cycle, validating that the walk loops back to
// its starting vertex.
func (p KeyPath) Close(c *Complex) (KeyCycle, error) {
	cycle := KeyCycle{Vertex: p.Vertex, Halfedges: p.Halfedges}
	if err := cycle.Validate(c); err != nil {
		return KeyCycle{}, err
	}
	return cycle, nil
}

// KeyCycle is a closed loop bounding a face: either a single Steiner vertex,
// or a halfedge walk whose end returns to its start.
type KeyCycle struct {
	Vertex    NodeID        `json:"vertex,omitempty"`
	Halfedges []KeyHalfedge `json:"halfedges,omitempty"`
}

// SteinerCycle returns the cycle consisting of the single vertex v.
func SteinerCycle(v NodeID) KeyCycle {
	return KeyCycle{Vertex: v}
}

// CycleFromHalfedges returns the cycle traversing the given halfedges in order.
func CycleFromHalfedges(halfedges ...KeyHalfedge) KeyCycle {
	return KeyCycle{Halfedges: halfedges}
}

func (cy KeyCycle) clone() KeyCycle {
	out := KeyCycle{Vertex: cy.Vertex}
	out.Halfedges = make([]KeyHalfedge, len(cy.Halfedges))
	copy(out.Halfedges, cy.Halfedges)
	return out
}

// Validate checks that the cycle is a Steiner vertex, a single closed edge,
// or a halfedge walk that loops.
func (cy KeyCycle) Validate(c *Complex) error {
	if len(cy.Halfedges) == 0 {
		if c.FindKeyVertex(cy.Vertex) == nil {
			return fmt.Errorf("%w: steiner vertex %d", ErrNotFound, cy.Vertex)
		}
		return nil
	}
	return validateWalk(c, cy.Halfedges, true)
}

// frame returns the frame all of the cycle's cells live at.
func (cy KeyCycle) frame(c *Complex) (Frame, bool) {
	if len(cy.Halfedges) == 0 {
		if v := c.FindKeyVertex(cy.Vertex); v != nil {
			return v.frame, true
		}
		return 0, false
	}
	if e := c.FindKeyEdge(cy.Halfedges[0].Edge); e != nil {
		return e.frame, true
	}
	return 0, false
}

// cells returns the ids of every cell the cycle references: one edge per
// halfedge plus the endpoint vertices, in discovery order without duplicates.
func (cy KeyCycle) cells(c *Complex) []NodeID {
	if len(cy.Halfedges) == 0 {
		if cy.Vertex != NoNode {
			return []NodeID{cy.Vertex}
		}
		return nil
	}

	var out []NodeID
	seen := make(map[NodeID]bool)
	add := func(id NodeID) {
		if id != NoNode && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, h := range cy.Halfedges {
		add(h.Edge)
		add(h.StartVertex(c))
		add(h.EndVertex(c))
	}
	return out
}

// samplePolygon concatenates the sampled points of the cycle's halfedges into
// one closed polygon.
func (cy KeyCycle) samplePolygon(c *Complex) []geom.Vec2 {
	var poly []geom.Vec2
	for _, h := range cy.Halfedges {
		pts := h.samples(c)
		if len(poly) > 0 && len(pts) > 0 {
			// Skip the shared junction point.
			pts = pts[1:]
		}
		poly = append(poly, pts...)
	}
	return poly
}

// validateWalk checks halfedge chaining: each halfedge must reference an
// existing key edge at a common frame, consecutive halfedges (and for closed
// walks, last to first) must share their junction vertex, and a closed edge
// may only appear as a lone halfedge.
func validateWalk(c *Complex, halfedges []KeyHalfedge, closed bool) error {
	frame := Frame(0)
	for i, h := range halfedges {
		e := c.FindKeyEdge(h.Edge)
		if e == nil {
			return fmt.Errorf("%w: edge %d", ErrNotFound, h.Edge)
		}
		if e.IsClosed() {
			if len(halfedges) != 1 {
				return fmt.Errorf("%w: closed edge %d in multi-edge walk", ErrBadCycle, h.Edge)
			}
			return nil
		}
		if i == 0 {
			frame = e.frame
		} else if e.frame != frame {
			return fmt.Errorf("%w: edge %d", ErrFrameMismatch, h.Edge)
		}
	}

	for i := 1; i < len(halfedges); i++ {
		if halfedges[i-1].EndVertex(c) != halfedges[i].StartVertex(c) {
			return fmt.Errorf("%w: halfedges %d and %d do not chain", ErrBadCycle, i-1, i)
		}
	}
	if closed {
		last := halfedges[len(halfedges)-1]
		if last.EndVertex(c) != halfedges[0].StartVertex(c) {
			return fmt.Errorf("%w: walk does not loop", ErrBadCycle)
		}
	}
	return nil
}
