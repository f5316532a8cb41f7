package vac

import (
	"fmt"
	"sort"

	"github.com/vgc/vgc-sub008/internal/geom"
)

// Operations is the single mutation gateway of a Complex. Instances are only
// handed out by Transact; structural primitives outside a transaction scope
// do not exist.
//
// Nested Transact calls against the same complex share one transaction: the
// version counter bumps once on the outermost entry, and finalization
// (geometry re-derivation, concatenation collapse, diff emission) runs
// exactly once when the outermost scope exits, even if the body returns an
// error or panics.
type Operations struct {
	c *Complex
}

// Transact opens a transaction scope against c and runs fn inside it.
// An error from fn is returned as-is; mutations already committed by fn are
// kept (there is no rollback).
func Transact(c *Complex, fn func(op *Operations) error) error {
	if c == nil {
		return ErrNilComplex
	}
	c.txDepth++
	if c.txDepth == 1 {
		c.version++
		if c.pending == nil {
			c.pending = NewDiff()
		}
	}
	defer func() {
		c.txDepth--
		if c.txDepth == 0 {
			c.finalizeTransaction()
		}
	}()
	return fn(&Operations{c: c})
}

// finalizeTransaction runs the end-of-transaction steps: re-derive geometry
// of cells whose boundary geometry changed (vertices before edges before
// faces, so re-derivation never recurses), collapse pending edge
// concatenations, then emit the diff once and reset the accumulator.
func (c *Complex) finalizeTransaction() {
	diff := c.pending
	c.pending = nil

	var dirty []Cell
	for _, id := range diff.modifiedOrder {
		if diff.modified[id].Flags.Has(BoundaryGeometryChanged) {
			if cell := c.FindCell(id); cell != nil {
				dirty = append(dirty, cell)
			}
		}
	}
	sort.SliceStable(dirty, func(i, j int) bool {
		return dirty[i].SpatialType().Dimension() < dirty[j].SpatialType().Dimension()
	})
	for _, cell := range dirty {
		if c.updateGeometryFromBoundary(cell) {
			diff.onNodeModified(cell.ID(), GeometryChanged)
		}
	}

	for _, id := range c.pendingConcat {
		if e := c.FindKeyEdge(id); e != nil && e.concat != nil {
			e.finalizeConcat()
		}
	}
	c.pendingConcat = nil

	if !diff.IsEmpty() {
		for _, fn := range c.listeners {
			fn(diff)
		}
	}
}

// updateGeometryFromBoundary re-derives a cell's geometry from the geometry
// of its boundary. Reports whether the authored geometry actually changed.
func (c *Complex) updateGeometryFromBoundary(cell Cell) bool {
	switch x := cell.(type) {
	case *KeyEdge:
		changed := false
		if !x.IsClosed() && len(x.geometry.Points) > 0 {
			if v := c.FindKeyVertex(x.startVertex); v != nil && x.geometry.Points[0] != v.position {
				x.geometry.Points[0] = v.position
				changed = true
			}
			last := len(x.geometry.Points) - 1
			if v := c.FindKeyVertex(x.endVertex); v != nil && x.geometry.Points[last] != v.position {
				x.geometry.Points[last] = v.position
				changed = true
			}
		}
		if changed {
			x.invalidateGeometry()
		}
		return changed
	case *KeyFace:
		// Faces carry no authored geometry of their own; only the derived
		// caches need resetting.
		x.invalidateGeometry()
		return false
	default:
		return false
	}
}

// CreateRootGroup creates the root group of an empty complex.
func (op *Operations) CreateRootGroup() (*Group, error) {
	c := op.c
	if c.root != NoNode {
		return nil, fmt.Errorf("vac: complex already has a root group %d", c.root)
	}
	g := newGroup(c, c.allocID())
	c.insertNode(g)
	c.root = g.id
	c.pending.onNodeCreated(g.id)
	c.pending.onNodeInserted(Insertion{Node: g.id})
	return g, nil
}

// CreateGroup creates a group under parent. If nextSibling is not NoNode the
// new group is inserted before it; otherwise it becomes the last child.
func (op *Operations) CreateGroup(parent, nextSibling NodeID) (*Group, error) {
	g := newGroup(op.c, op.c.allocID())
	if err := op.createNode(g, parent, nextSibling); err != nil {
		return nil, err
	}
	g.updateFromRoot()
	return g, nil
}

// CreateKeyVertex creates a key vertex at the given frame and position.
func (op *Operations) CreateKeyVertex(parent, nextSibling NodeID, frame Frame, position geom.Vec2) (*KeyVertex, error) {
	v := &KeyVertex{
		cellData: cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frame:    frame,
		position: position,
	}
	if err := op.createNode(v, parent, nextSibling); err != nil {
		return nil, err
	}
	return v, nil
}

// CreateKeyEdge creates an open key edge from startVertex to endVertex. Both
// vertices must be key vertices of this complex at the given frame. If the
// geometry has no control points, a straight two-point centerline between the
// vertices is authored; otherwise the first and last control points are
// snapped to the vertex positions.
func (op *Operations) CreateKeyEdge(parent, startVertex, endVertex, nextSibling NodeID, frame Frame, g EdgeGeometry) (*KeyEdge, error) {
	sv := op.c.FindKeyVertex(startVertex)
	ev := op.c.FindKeyVertex(endVertex)
	if sv == nil {
		return nil, fmt.Errorf("%w: start vertex %d", ErrNotFound, startVertex)
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: end vertex %d", ErrNotFound, endVertex)
	}
	if sv.frame != frame || ev.frame != frame {
		return nil, fmt.Errorf("%w: edge at frame %d", ErrFrameMismatch, frame)
	}

	g = g.clone()
	g.Closed = false
	if len(g.Points) == 0 {
		g.Points = []geom.Vec2{sv.position, ev.position}
		g.Widths = []float64{1, 1}
	} else {
		g.Points[0] = sv.position
		g.Points[len(g.Points)-1] = ev.position
	}

	e := &KeyEdge{
		cellData:      cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frame:         frame,
		startVertex:   startVertex,
		endVertex:     endVertex,
		geometry:      g,
		samplingDirty: true,
		boundsDirty:   true,
	}
	if err := op.createNode(e, parent, nextSibling); err != nil {
		return nil, err
	}
	op.addToBoundary(e, sv)
	op.addToBoundary(e, ev)
	return e, nil
}

// CreateKeyClosedEdge creates a closed key edge (a loop with no boundary
// vertices) from the given geometry.
func (op *Operations) CreateKeyClosedEdge(parent, nextSibling NodeID, frame Frame, g EdgeGeometry) (*KeyEdge, error) {
	g = g.clone()
	g.Closed = true
	e := &KeyEdge{
		cellData:      cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frame:         frame,
		geometry:      g,
		samplingDirty: true,
		boundsDirty:   true,
	}
	if err := op.createNode(e, parent, nextSibling); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateKeyFace creates a key face bounded by the given cycles. Every cycle
// must validate against the complex and live at the face's frame.
func (op *Operations) CreateKeyFace(parent, nextSibling NodeID, frame Frame, cycles ...KeyCycle) (*KeyFace, error) {
	for _, cy := range cycles {
		if err := cy.Validate(op.c); err != nil {
			return nil, err
		}
		if cf, ok := cy.frame(op.c); !ok || cf != frame {
			return nil, fmt.Errorf("%w: face at frame %d", ErrFrameMismatch, frame)
		}
	}
	f := &KeyFace{
		cellData:    cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frame:       frame,
		boundsDirty: true,
	}
	if err := op.createNode(f, parent, nextSibling); err != nil {
		return nil, err
	}
	for _, cy := range cycles {
		op.appendFaceCycle(f, cy)
	}
	return f, nil
}

// AddFaceCycle appends one more boundary cycle to an existing key face,
// expanding it into the vertex and edge boundary links it implies.
func (op *Operations) AddFaceCycle(face NodeID, cy KeyCycle) error {
	f := op.c.FindKeyFace(face)
	if f == nil {
		return fmt.Errorf("%w: face %d", ErrNotFound, face)
	}
	if err := cy.Validate(op.c); err != nil {
		return err
	}
	if cf, ok := cy.frame(op.c); !ok || cf != f.frame {
		return fmt.Errorf("%w: face %d", ErrFrameMismatch, face)
	}
	op.appendFaceCycle(f, cy)
	return nil
}

// appendFaceCycle stores the cycle and adds one boundary link per implied
// cell: the Steiner vertex for a point cycle, the lone edge for a closed-edge
// cycle, and one edge per halfedge plus one vertex per junction otherwise.
func (op *Operations) appendFaceCycle(f *KeyFace, cy KeyCycle) {
	f.cycles = append(f.cycles, cy.clone())
	f.invalidateGeometry()
	for _, id := range cy.cells(op.c) {
		if cell := op.c.FindCell(id); cell != nil {
			op.addToBoundary(f, cell)
		}
	}
}

// CreateInbetweenVertex creates an inbetween vertex interpolating the two key
// vertices over the open frame range between them.
func (op *Operations) CreateInbetweenVertex(parent, nextSibling, beforeVertex, afterVertex NodeID) (*InbetweenVertex, error) {
	bv := op.c.FindKeyVertex(beforeVertex)
	av := op.c.FindKeyVertex(afterVertex)
	if bv == nil {
		return nil, fmt.Errorf("%w: before vertex %d", ErrNotFound, beforeVertex)
	}
	if av == nil {
		return nil, fmt.Errorf("%w: after vertex %d", ErrNotFound, afterVertex)
	}
	if bv.frame >= av.frame {
		return nil, fmt.Errorf("%w: inbetween range (%d, %d)", ErrFrameMismatch, bv.frame, av.frame)
	}
	v := &InbetweenVertex{
		cellData:   cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frameRange: FrameRange{After: bv.frame, Before: av.frame},
		before:     beforeVertex,
		after:      afterVertex,
	}
	if err := op.createNode(v, parent, nextSibling); err != nil {
		return nil, err
	}
	op.addToBoundary(v, bv)
	op.addToBoundary(v, av)
	return v, nil
}

// CreateInbetweenEdge creates an inbetween edge interpolating the two key
// edges over the open frame range between them.
func (op *Operations) CreateInbetweenEdge(parent, nextSibling, beforeEdge, afterEdge NodeID) (*InbetweenEdge, error) {
	be := op.c.FindKeyEdge(beforeEdge)
	ae := op.c.FindKeyEdge(afterEdge)
	if be == nil {
		return nil, fmt.Errorf("%w: before edge %d", ErrNotFound, beforeEdge)
	}
	if ae == nil {
		return nil, fmt.Errorf("%w: after edge %d", ErrNotFound, afterEdge)
	}
	if be.frame >= ae.frame {
		return nil, fmt.Errorf("%w: inbetween range (%d, %d)", ErrFrameMismatch, be.frame, ae.frame)
	}
	e := &InbetweenEdge{
		cellData:   cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frameRange: FrameRange{After: be.frame, Before: ae.frame},
		before:     beforeEdge,
		after:      afterEdge,
	}
	if err := op.createNode(e, parent, nextSibling); err != nil {
		return nil, err
	}
	op.addToBoundary(e, be)
	op.addToBoundary(e, ae)
	return e, nil
}

// CreateInbetweenFace creates an inbetween face interpolating the two key
// faces over the open frame range between them.
func (op *Operations) CreateInbetweenFace(parent, nextSibling, beforeFace, afterFace NodeID) (*InbetweenFace, error) {
	bf := op.c.FindKeyFace(beforeFace)
	af := op.c.FindKeyFace(afterFace)
	if bf == nil {
		return nil, fmt.Errorf("%w: before face %d", ErrNotFound, beforeFace)
	}
	if af == nil {
		return nil, fmt.Errorf("%w: after face %d", ErrNotFound, afterFace)
	}
	if bf.frame >= af.frame {
		return nil, fmt.Errorf("%w: inbetween range (%d, %d)", ErrFrameMismatch, bf.frame, af.frame)
	}
	f := &InbetweenFace{
		cellData:   cellData{node: node{id: op.c.allocID(), complex: op.c}},
		frameRange: FrameRange{After: bf.frame, Before: af.frame},
		before:     beforeFace,
		after:      afterFace,
	}
	if err := op.createNode(f, parent, nextSibling); err != nil {
		return nil, err
	}
	op.addToBoundary(f, bf)
	op.addToBoundary(f, af)
	return f, nil
}

// RemoveNode detaches and destroys a node. Destroying a cell first removes it
// from the boundary of its star cells and from the star of its boundary
// cells; faces referencing a destroyed edge or vertex drop it from their
// cycles. Destroying a group destroys its subtree. When removeFreeVertices is
// set, boundary vertices left with an empty star are destroyed as well.
func (op *Operations) RemoveNode(id NodeID, removeFreeVertices bool) error {
	n := op.c.Find(id)
	if n == nil {
		return fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	if id == op.c.root {
		return ErrRootRemoval
	}
	op.destroyNode(n, removeFreeVertices)
	return nil
}

// RemoveNodeSmart is the best-effort variant of RemoveNode: a missing node is
// a no-op, and free-vertex cleanup is always attempted. It never reports an
// error.
func (op *Operations) RemoveNodeSmart(id NodeID) {
	n := op.c.Find(id)
	if n == nil || id == op.c.root {
		return
	}
	op.destroyNode(n, true)
}

func (op *Operations) destroyNode(n Node, removeFreeVertices bool) {
	c := op.c

	if g, ok := n.(*Group); ok {
		for _, child := range g.Children() {
			if cn := c.Find(child); cn != nil {
				op.destroyNode(cn, removeFreeVertices)
			}
		}
	}

	var freeCandidates []NodeID
	if cell, ok := n.(Cell); ok {
		cd := cell.cell()
		for _, sid := range append([]NodeID(nil), cd.star...) {
			if s := c.FindCell(sid); s != nil {
				if f, ok := s.(*KeyFace); ok {
					op.dropFromCycles(f, cell.ID())
				}
				op.removeFromBoundary(s, cell)
			}
		}
		for _, bid := range append([]NodeID(nil), cd.boundary...) {
			if b := c.FindCell(bid); b != nil {
				op.removeFromBoundary(cell, b)
				freeCandidates = append(freeCandidates, bid)
			}
		}
	}

	op.detach(n)
	c.eraseNode(n.ID())
	c.pending.onNodeDestroyed(n.ID())

	if removeFreeVertices {
		for _, id := range freeCandidates {
			if v := c.FindKeyVertex(id); v != nil && len(v.star) == 0 {
				op.destroyNode(v, false)
			}
		}
	}
}

// dropFromCycles removes every halfedge referencing the given edge id (or the
// Steiner cycle for the given vertex id) from the face's cycles.
func (op *Operations) dropFromCycles(f *KeyFace, id NodeID) {
	changed := false
	out := f.cycles[:0]
	for _, cy := range f.cycles {
		if len(cy.Halfedges) == 0 {
			if cy.Vertex == id {
				changed = true
				continue
			}
			out = append(out, cy)
			continue
		}
		kept := cy.Halfedges[:0]
		for _, h := range cy.Halfedges {
			if h.Edge == id {
				changed = true
				continue
			}
			kept = append(kept, h)
		}
		cy.Halfedges = kept
		if len(cy.Halfedges) > 0 {
			out = append(out, cy)
		} else {
			changed = true
		}
	}
	f.cycles = out
	if changed {
		f.invalidateGeometry()
		op.c.pending.onNodeModified(f.id, GeometryChanged)
	}
}

// MoveToGroup reparents a node under newParent, before nextSibling (or as
// last child). Moving a group into its own descendant subtree is rejected.
func (op *Operations) MoveToGroup(id, newParent, nextSibling NodeID) error {
	c := op.c
	n := c.Find(id)
	if n == nil {
		return fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	if id == c.root {
		return ErrRootRemoval
	}
	parent := c.FindGroup(newParent)
	if parent == nil {
		return fmt.Errorf("%w: parent %d", ErrNotAGroup, newParent)
	}
	for a := newParent; a != NoNode; {
		if a == id {
			return ErrCycleReparent
		}
		an := c.Find(a)
		if an == nil {
			break
		}
		a = an.ParentGroup()
	}
	if nextSibling != NoNode {
		anchor := c.Find(nextSibling)
		if anchor == nil || anchor.ParentGroup() != newParent {
			return fmt.Errorf("%w: anchor %d under parent %d", ErrNotAChild, nextSibling, newParent)
		}
	}

	oldParent := n.ParentGroup()
	op.detach(n)
	op.insert(n, parent, nextSibling)

	c.pending.onNodeInserted(Insertion{
		Node:      id,
		OldParent: oldParent,
		Parent:    newParent,
		Anchor:    nextSibling,
		Before:    nextSibling != NoNode,
	})
	if oldParent != newParent {
		c.pending.onNodeModified(id, Reparented)
	}
	if g, ok := n.(*Group); ok {
		g.updateFromRoot()
	}
	return nil
}

// SetKeyVertexPosition moves a key vertex. The vertex records a geometry
// change and every cell of its star records a boundary-geometry change, to be
// re-derived at transaction finalize.
func (op *Operations) SetKeyVertexPosition(id NodeID, position geom.Vec2) error {
	v := op.c.FindKeyVertex(id)
	if v == nil {
		return fmt.Errorf("%w: vertex %d", ErrNotFound, id)
	}
	if v.position == position {
		return nil
	}
	v.position = position
	op.c.pending.onNodeModified(id, GeometryChanged)
	op.markStarBoundaryGeometry(v)
	return nil
}

// SetKeyEdgeCurvePoints replaces an edge's authored control points. Endpoints
// of an open edge are snapped back to the boundary vertex positions.
func (op *Operations) SetKeyEdgeCurvePoints(id NodeID, points []geom.Vec2) error {
	e := op.c.FindKeyEdge(id)
	if e == nil {
		return fmt.Errorf("%w: edge %d", ErrNotFound, id)
	}
	e.geometry.Points = append([]geom.Vec2(nil), points...)
	e.invalidateGeometry()
	op.c.updateGeometryFromBoundary(e)
	op.c.pending.onNodeModified(id, GeometryChanged)
	op.markStarBoundaryGeometry(e)
	return nil
}

// SetKeyEdgeCurveWidths replaces an edge's authored widths.
func (op *Operations) SetKeyEdgeCurveWidths(id NodeID, widths []float64) error {
	e := op.c.FindKeyEdge(id)
	if e == nil {
		return fmt.Errorf("%w: edge %d", ErrNotFound, id)
	}
	e.geometry.Widths = append([]float64(nil), widths...)
	e.invalidateGeometry()
	op.c.pending.onNodeModified(id, GeometryChanged)
	op.markStarBoundaryGeometry(e)
	return nil
}

// SetGroupTransform replaces a group's local transform and refreshes the
// transform-from-root caches of its subtree.
func (op *Operations) SetGroupTransform(id NodeID, m geom.Mat2D) error {
	g := op.c.FindGroup(id)
	if g == nil {
		return fmt.Errorf("%w: group %d", ErrNotAGroup, id)
	}
	g.transform = m
	g.inverse = m.Invert()
	g.updateFromRoot()
	op.c.pending.onNodeModified(id, GeometryChanged)
	return nil
}

// SetProperty sets an authored property on any node and records the property
// name in the diff.
func (op *Operations) SetProperty(id NodeID, name, value string) error {
	n := op.c.Find(id)
	if n == nil {
		return fmt.Errorf("%w: node %d", ErrNotFound, id)
	}
	n.base().setProperty(name, value)
	op.c.pending.onNodePropertyModified(id, name)
	return nil
}

// markStarBoundaryGeometry flags every star cell of c for geometry
// re-derivation at finalize, and drops their stale caches right away.
func (op *Operations) markStarBoundaryGeometry(cell Cell) {
	for _, sid := range cell.cell().star {
		op.c.pending.onNodeModified(sid, BoundaryGeometryChanged)
		switch s := op.c.Find(sid).(type) {
		case *KeyEdge:
			s.invalidateGeometry()
		case *KeyFace:
			s.invalidateGeometry()
		}
	}
}

// addToBoundary and removeFromBoundary are the only code allowed to touch the
// boundary/star slices. Both sides are always updated together and the
// BoundaryChanged/StarChanged diff pair is recorded atomically.

func (op *Operations) addToBoundary(bounded, bounding Cell) {
	bd := bounded.cell()
	if bd.boundaryContains(bounding.ID()) {
		return
	}
	bd.boundary = append(bd.boundary, bounding.ID())
	bounding.cell().star = append(bounding.cell().star, bounded.ID())
	op.c.pending.onNodeModified(bounded.ID(), BoundaryChanged)
	op.c.pending.onNodeModified(bounding.ID(), StarChanged)
}

func (op *Operations) removeFromBoundary(bounded, bounding Cell) {
	bd := bounded.cell()
	if !bd.boundaryContains(bounding.ID()) {
		return
	}
	bd.boundary = removeID(bd.boundary, bounding.ID())
	bounding.cell().star = removeID(bounding.cell().star, bounded.ID())
	op.c.pending.onNodeModified(bounded.ID(), BoundaryChanged)
	op.c.pending.onNodeModified(bounding.ID(), StarChanged)
}

// createNode inserts a freshly constructed node into the id map and the tree.
// On a rejected insert the just-allocated id is released, so a failed create
// does not perturb the id sequence (operation logs replay to identical ids).
func (op *Operations) createNode(n Node, parent, nextSibling NodeID) error {
	c := op.c
	pg := c.FindGroup(parent)
	if pg == nil {
		c.releaseID(n.ID())
		return fmt.Errorf("%w: parent %d", ErrNotAGroup, parent)
	}
	if nextSibling != NoNode {
		anchor := c.Find(nextSibling)
		if anchor == nil || anchor.ParentGroup() != parent {
			c.releaseID(n.ID())
			return fmt.Errorf("%w: anchor %d under parent %d", ErrNotAChild, nextSibling, parent)
		}
	}
	c.insertNode(n)
	op.insert(n, pg, nextSibling)
	c.pending.onNodeCreated(n.ID())
	c.pending.onNodeInserted(Insertion{
		Node:   n.ID(),
		Parent: parent,
		Anchor: nextSibling,
		Before: nextSibling != NoNode,
	})
	return nil
}

// insert wires n into parent's child list before nextSibling (or at the end).
// The caller has already validated the anchor.
func (op *Operations) insert(n Node, parent *Group, nextSibling NodeID) {
	nb := n.base()
	nb.parent = parent.id
	if nextSibling == NoNode {
		nb.prev = parent.lastChild
		nb.next = NoNode
		if parent.lastChild != NoNode {
			op.c.Find(parent.lastChild).base().next = nb.id
		} else {
			parent.firstChild = nb.id
		}
		parent.lastChild = nb.id
	} else {
		anchor := op.c.Find(nextSibling).base()
		nb.prev = anchor.prev
		nb.next = anchor.id
		if anchor.prev != NoNode {
			op.c.Find(anchor.prev).base().next = nb.id
		} else {
			parent.firstChild = nb.id
		}
		anchor.prev = nb.id
	}
	parent.numChildren++
	op.c.pending.onNodeModified(parent.id, ChildrenChanged)
}

// detach unlinks n from its parent's child list.
func (op *Operations) detach(n Node) {
	nb := n.base()
	parent := op.c.FindGroup(nb.parent)
	if parent == nil {
		return
	}
	if nb.prev != NoNode {
		op.c.Find(nb.prev).base().next = nb.next
	} else {
		parent.firstChild = nb.next
	}
	if nb.next != NoNode {
		op.c.Find(nb.next).base().prev = nb.prev
	} else {
		parent.lastChild = nb.prev
	}
	parent.numChildren--
	nb.parent = NoNode
	nb.prev = NoNode
	nb.next = NoNode
	op.c.pending.onNodeModified(parent.id, ChildrenChanged)
}

// destroyAll erases every node, recording a destroyed entry for each, in
// reverse tree order so children are reported before their groups.
func (op *Operations) destroyAll() {
	c := op.c
	var order []NodeID
	c.Walk(func(n Node) bool {
		order = append(order, n.ID())
		return true
	})
	// Nodes detached from the tree (should not happen) are still owned; make
	// sure they are destroyed too.
	if len(order) != len(c.nodes) {
		seen := make(map[NodeID]bool, len(order))
		for _, id := range order {
			seen[id] = true
		}
		for id := range c.nodes {
			if !seen[id] {
				order = append(order, id)
			}
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		c.eraseNode(order[i])
		c.pending.onNodeDestroyed(order[i])
	}
	c.root = NoNode
}
