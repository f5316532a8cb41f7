package vac

import "github.com/vgc/vgc-sub008/internal/geom"

// Group is a node that owns an ordered list of child nodes and a
// local-to-parent transform.
type Group struct {
	node

	firstChild  NodeID
	lastChild   NodeID
	numChildren int

	transform geom.Mat2D
	inverse   geom.Mat2D
	fromRoot  geom.Mat2D
}

func newGroup(c *Complex, id NodeID) *Group {
	return &Group{
		node:      node{id: id, complex: c},
		transform: geom.Identity(),
		inverse:   geom.Identity(),
		fromRoot:  geom.Identity(),
	}
}

// Transform returns the group's local-to-parent transform.
func (g *Group) Transform() geom.Mat2D { return g.transform }

// InverseTransform returns the cached inverse of the local transform.
func (g *Group) InverseTransform() geom.Mat2D { return g.inverse }

// TransformFromRoot returns the cached product of ancestor transforms,
// mapping group-local coordinates to root coordinates.
func (g *Group) TransformFromRoot() geom.Mat2D { return g.fromRoot }

// FirstChild returns the id of the first child, or NoNode.
func (g *Group) FirstChild() NodeID { return g.firstChild }

// LastChild returns the id of the last child, or NoNode.
func (g *Group) LastChild() NodeID { return g.lastChild }

// NumChildren returns the number of direct children.
func (g *Group) NumChildren() int { return g.numChildren }

// Children returns the ordered ids of the group's direct children.
func (g *Group) Children() []NodeID {
	out := make([]NodeID, 0, g.numChildren)
	for id := g.firstChild; id != NoNode; {
		out = append(out, id)
		child := g.complex.Find(id)
		if child == nil {
			break
		}
		id = child.NextSibling()
	}
	return out
}

// updateFromRoot recomputes the transform-from-root cache for g and every
// descendant group. Called after a transform change or a reparent.
func (g *Group) updateFromRoot() {
	parentFromRoot := geom.Identity()
	if p := g.complex.FindGroup(g.parent); p != nil {
		parentFromRoot = p.fromRoot
	}
	g.fromRoot = parentFromRoot.Multiply(g.transform)
	for _, id := range g.Children() {
		if child := g.complex.FindGroup(id); child != nil {
			child.updateFromRoot()
		}
	}
}
