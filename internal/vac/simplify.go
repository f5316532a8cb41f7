package vac

import "fmt"

// Simplify is the best-effort inverse of topological cutting. Every given
// edge is a candidate for merging the two faces it separates; every given
// vertex is a candidate for merging its two incident edges. Each attempt is
// independent: a cell that cannot be uncut is left untouched and reported
// back. Edges are processed before vertices so that face merges can expose
// new degree-2 vertices within the same call.
func (op *Operations) Simplify(vertices, edges []NodeID, smoothJoins bool) []NodeID {
	var kept []NodeID
	for _, id := range edges {
		if err := op.uncutEdge(id); err != nil {
			kept = append(kept, id)
		}
	}
	for _, id := range vertices {
		if err := op.uncutVertex(id, smoothJoins); err != nil {
			kept = append(kept, id)
		}
	}
	return kept
}

// Glue concatenates two open key edges meeting at a shared degree-2 vertex
// into a single new edge. The new edge carries a concatenation buffer that
// the transaction's finalize step collapses into final authored data.
func (op *Operations) Glue(first, second NodeID, smoothJoin bool) (*KeyEdge, error) {
	e1 := op.c.FindKeyEdge(first)
	e2 := op.c.FindKeyEdge(second)
	if e1 == nil {
		return nil, fmt.Errorf("%w: edge %d", ErrNotFound, first)
	}
	if e2 == nil {
		return nil, fmt.Errorf("%w: edge %d", ErrNotFound, second)
	}
	v, err := sharedJunction(op.c, e1, e2)
	if err != nil {
		return nil, err
	}
	return op.concatAtVertex(e1, e2, v, smoothJoin)
}

// uncutVertex merges the two edges joined at a degree-2 vertex, folding the
// vertex away.
func (op *Operations) uncutVertex(id NodeID, smoothJoin bool) error {
	v := op.c.FindKeyVertex(id)
	if v == nil {
		return fmt.Errorf("%w: vertex %d", ErrNotFound, id)
	}

	var edges []*KeyEdge
	for _, sid := range v.star {
		switch s := op.c.Find(sid).(type) {
		case *KeyEdge:
			edges = append(edges, s)
		case *KeyFace:
			// Faces touch the vertex through its edges; checked below.
		default:
			return fmt.Errorf("vac: vertex %d has non-key star cell %d", id, sid)
		}
	}
	if len(edges) != 2 {
		return fmt.Errorf("vac: vertex %d has degree %d, want 2", id, len(edges))
	}
	e1, e2 := edges[0], edges[1]
	if countEndpointUses(e1, id) != 1 || countEndpointUses(e2, id) != 1 {
		return fmt.Errorf("vac: vertex %d is a loop endpoint", id)
	}
	_, err := op.concatAtVertex(e1, e2, v, smoothJoin)
	return err
}

// uncutEdge merges the two faces separated only by the given edge, folding
// the edge away.
func (op *Operations) uncutEdge(id NodeID) error {
	e := op.c.FindKeyEdge(id)
	if e == nil {
		return fmt.Errorf("%w: edge %d", ErrNotFound, id)
	}

	var faces []*KeyFace
	for _, sid := range e.star {
		f, ok := op.c.Find(sid).(*KeyFace)
		if !ok {
			return fmt.Errorf("vac: edge %d has non-face star cell %d", id, sid)
		}
		faces = append(faces, f)
	}
	if len(faces) != 2 {
		return fmt.Errorf("vac: edge %d separates %d faces, want 2", id, len(faces))
	}
	f1, f2 := faces[0], faces[1]

	i1, c1, err := soleCycleUse(f1, id)
	if err != nil {
		return err
	}
	i2, c2, err := soleCycleUse(f2, id)
	if err != nil {
		return err
	}

	merged, ok := spliceCycles(f1.cycles[c1], i1, f2.cycles[c2], i2)
	if !ok {
		return fmt.Errorf("vac: cannot splice faces %d and %d across edge %d", f1.id, f2.id, id)
	}

	var cycles []KeyCycle
	if len(merged.Halfedges) > 0 {
		cycles = append(cycles, merged)
	}
	for i, cy := range f1.cycles {
		if i != c1 {
			cycles = append(cycles, cy.clone())
		}
	}
	for i, cy := range f2.cycles {
		if i != c2 {
			cycles = append(cycles, cy.clone())
		}
	}
	if len(cycles) == 0 {
		return fmt.Errorf("vac: merging faces %d and %d would leave no boundary", f1.id, f2.id)
	}

	if _, err := op.CreateKeyFace(f1.parent, f1.id, f1.frame, cycles...); err != nil {
		return err
	}
	op.destroyNode(f1, false)
	op.destroyNode(f2, false)
	op.destroyNode(e, true)
	return nil
}

// concatAtVertex builds the edge obtained by traversing e1 into v and e2 out
// of v, rewires every incident face, then removes e1, e2 and v.
func (op *Operations) concatAtVertex(e1, e2 *KeyEdge, v *KeyVertex, smoothJoin bool) (*KeyEdge, error) {
	c := op.c
	if e1 == e2 {
		return nil, fmt.Errorf("vac: cannot glue edge %d to itself", e1.id)
	}
	if e1.IsClosed() || e2.IsClosed() {
		return nil, fmt.Errorf("vac: cannot glue closed edges")
	}
	if e1.frame != e2.frame {
		return nil, fmt.Errorf("%w: edges %d and %d", ErrFrameMismatch, e1.id, e2.id)
	}

	// h1 traverses e1 arriving at v; h2 traverses e2 leaving v.
	h1 := KeyHalfedge{Edge: e1.id, Forward: e1.endVertex == v.id}
	h2 := KeyHalfedge{Edge: e2.id, Forward: e2.startVertex == v.id}
	newStart := h1.StartVertex(c)
	newEnd := h2.EndVertex(c)
	if newStart == NoNode || newEnd == NoNode {
		return nil, fmt.Errorf("vac: edges %d and %d do not meet at vertex %d", e1.id, e2.id, v.id)
	}

	// Plan the cycle rewrites for every incident face before mutating.
	type rewrite struct {
		face       *KeyFace
		cycles     []KeyCycle
		vStillUsed bool
	}
	var rewrites []rewrite
	planned := make(map[NodeID]bool)
	newEdgeID := c.nextID + 1 // allocated below; only used inside the plan
	for _, eid := range []NodeID{e1.id, e2.id} {
		e := c.FindKeyEdge(eid)
		for _, sid := range e.star {
			if planned[sid] {
				continue
			}
			f, ok := c.Find(sid).(*KeyFace)
			if !ok {
				return nil, fmt.Errorf("vac: edge %d has non-face star cell %d", eid, sid)
			}
			planned[sid] = true
			cycles, ok := rewriteConcat(c, f.cycles, e1.id, e2.id, v.id, newEdgeID, h1.Forward, h2.Forward)
			if !ok {
				return nil, fmt.Errorf("vac: face %d does not traverse edges %d and %d as a pair", sid, e1.id, e2.id)
			}
			r := rewrite{face: f, cycles: cycles}
			for _, cy := range cycles {
				for _, id := range cy.cells(c) {
					if id == v.id {
						r.vStillUsed = true
					}
				}
				if cy.Vertex == v.id {
					r.vStillUsed = true
				}
			}
			rewrites = append(rewrites, r)
		}
	}
	for _, sid := range v.star {
		if sid != e1.id && sid != e2.id && !planned[sid] {
			return nil, fmt.Errorf("vac: vertex %d still bounds cell %d", v.id, sid)
		}
	}

	g1 := orientGeometry(e1.geometry, h1.Forward)
	g2 := orientGeometry(e2.geometry, h2.Forward)

	ne := &KeyEdge{
		cellData:      cellData{node: node{id: c.allocID(), complex: c}},
		frame:         e1.frame,
		startVertex:   newStart,
		endVertex:     newEnd,
		geometry:      concatGeometry([]EdgeGeometry{g1, g2}, smoothJoin),
		samplingDirty: true,
		boundsDirty:   true,
		concat:        &concatBuffer{parts: []EdgeGeometry{g1, g2}},
	}
	if ne.id != newEdgeID {
		return nil, fmt.Errorf("vac: internal id allocation mismatch during glue")
	}
	if err := op.createNode(ne, e1.parent, e1.id); err != nil {
		return nil, err
	}
	c.pendingConcat = append(c.pendingConcat, ne.id)

	sv := c.FindKeyVertex(newStart)
	ev := c.FindKeyVertex(newEnd)
	op.addToBoundary(ne, sv)
	op.addToBoundary(ne, ev)

	for _, r := range rewrites {
		r.face.cycles = r.cycles
		r.face.invalidateGeometry()
		op.removeFromBoundary(r.face, e1)
		op.removeFromBoundary(r.face, e2)
		if !r.vStillUsed {
			op.removeFromBoundary(r.face, v)
		}
		op.addToBoundary(r.face, ne)
	}

	op.destroyNode(e1, false)
	op.destroyNode(e2, false)
	if vv := c.FindKeyVertex(v.id); vv != nil && len(vv.star) == 0 {
		op.destroyNode(vv, false)
	}
	return ne, nil
}

// finalizeConcat collapses the concatenation buffer into final authored data.
func (e *KeyEdge) finalizeConcat() {
	buf := e.concat
	e.concat = nil
	if buf == nil {
		return
	}
	e.geometry = concatGeometry(buf.parts, false)
	e.invalidateGeometry()
}

// sharedJunction returns the vertex shared by both open edges. Exactly one
// shared endpoint is required.
func sharedJunction(c *Complex, e1, e2 *KeyEdge) (*KeyVertex, error) {
	var shared []NodeID
	for _, a := range []NodeID{e1.startVertex, e1.endVertex} {
		if a == NoNode {
			continue
		}
		if a == e2.startVertex || a == e2.endVertex {
			found := false
			for _, s := range shared {
				if s == a {
					found = true
				}
			}
			if !found {
				shared = append(shared, a)
			}
		}
	}
	if len(shared) != 1 {
		return nil, fmt.Errorf("vac: edges %d and %d share %d vertices, want 1", e1.id, e2.id, len(shared))
	}
	v := c.FindKeyVertex(shared[0])
	if v == nil {
		return nil, fmt.Errorf("%w: vertex %d", ErrNotFound, shared[0])
	}
	return v, nil
}

// countEndpointUses counts how many of the edge's two endpoints equal v.
func countEndpointUses(e *KeyEdge, v NodeID) int {
	n := 0
	if e.startVertex == v {
		n++
	}
	if e.endVertex == v {
		n++
	}
	return n
}

// soleCycleUse finds the single halfedge referencing edge id across the
// face's cycles, returning its halfedge index and cycle index.
func soleCycleUse(f *KeyFace, id NodeID) (halfedge, cycle int, err error) {
	halfedge, cycle = -1, -1
	uses := 0
	for ci, cy := range f.cycles {
		for hi, h := range cy.Halfedges {
			if h.Edge == id {
				uses++
				halfedge, cycle = hi, ci
			}
		}
	}
	if uses != 1 {
		return -1, -1, fmt.Errorf("vac: face %d uses edge %d %d times, want 1", f.id, id, uses)
	}
	return halfedge, cycle, nil
}

// spliceCycles merges two cycles across the shared edge at c1[i1] / c2[i2],
// producing the walk around the union of the two faces.
func spliceCycles(c1 KeyCycle, i1 int, c2 KeyCycle, i2 int) (KeyCycle, bool) {
	h1 := c1.Halfedges[i1]
	h2 := c2.Halfedges[i2]

	// Segment of c2 that replaces the shared halfedge in c1: c2 rotated so
	// its shared halfedge comes first, with that halfedge dropped.
	seg := make([]KeyHalfedge, 0, len(c2.Halfedges)-1)
	for k := 1; k < len(c2.Halfedges); k++ {
		seg = append(seg, c2.Halfedges[(i2+k)%len(c2.Halfedges)])
	}
	if h1.Forward == h2.Forward {
		// Both faces traverse the edge in the same direction; the second
		// boundary must be walked backwards.
		rev := make([]KeyHalfedge, len(seg))
		for k, h := range seg {
			rev[len(seg)-1-k] = h.Opposite()
		}
		seg = rev
	}

	merged := KeyCycle{}
	merged.Halfedges = append(merged.Halfedges, c1.Halfedges[:i1]...)
	merged.Halfedges = append(merged.Halfedges, seg...)
	merged.Halfedges = append(merged.Halfedges, c1.Halfedges[i1+1:]...)
	return merged, true
}

// rewriteConcat rewrites a face's cycles, replacing each adjacent halfedge
// pair traversing e1 and e2 through v with a single halfedge over the new
// edge. Fails if the face references either edge outside such a pair.
func rewriteConcat(c *Complex, cycles []KeyCycle, e1, e2, v, newEdge NodeID, fwd1, fwd2 bool) ([]KeyCycle, bool) {
	out := make([]KeyCycle, 0, len(cycles))
	for _, cy := range cycles {
		if len(cy.Halfedges) == 0 {
			out = append(out, cy.clone())
			continue
		}
		n := len(cy.Halfedges)

		// Rotate so the walk does not start in the middle of a junction
		// pair; pairs then never straddle the slice boundary.
		start := 0
		for s, h := range cy.Halfedges {
			if h.Edge != e1 && h.Edge != e2 {
				start = s
				break
			}
		}
		walk := make([]KeyHalfedge, 0, n)
		for k := 0; k < n; k++ {
			walk = append(walk, cy.Halfedges[(start+k)%n])
		}

		replaced := make([]KeyHalfedge, 0, n)
		for i := 0; i < n; i++ {
			h := walk[i]
			if h.Edge != e1 && h.Edge != e2 {
				replaced = append(replaced, h)
				continue
			}
			if i+1 >= n {
				return nil, false
			}
			next := walk[i+1]
			if pairMatches(h, next, e1, e2, fwd1, fwd2) {
				replaced = append(replaced, KeyHalfedge{Edge: newEdge, Forward: true})
			} else if pairMatches(next.Opposite(), h.Opposite(), e1, e2, fwd1, fwd2) {
				replaced = append(replaced, KeyHalfedge{Edge: newEdge, Forward: false})
			} else {
				return nil, false
			}
			i++ // the pair consumed two halfedges
		}
		if len(replaced) == 0 {
			return nil, false
		}
		out = append(out, KeyCycle{Vertex: cy.Vertex, Halfedges: replaced})
	}
	return out, true
}

// pairMatches reports whether the ordered halfedge pair (a, b) traverses e1
// into the junction and e2 out of it, matching the new edge's forward
// direction.
func pairMatches(a, b KeyHalfedge, e1, e2 NodeID, fwd1, fwd2 bool) bool {
	return a.Edge == e1 && b.Edge == e2 && a.Forward == fwd1 && b.Forward == fwd2
}

// orientGeometry returns the geometry as traversed in the given direction.
func orientGeometry(g EdgeGeometry, forward bool) EdgeGeometry {
	g = g.clone()
	if forward {
		return g
	}
	for i, j := 0, len(g.Points)-1; i < j; i, j = i+1, j-1 {
		g.Points[i], g.Points[j] = g.Points[j], g.Points[i]
	}
	for i, j := 0, len(g.Widths)-1; i < j; i, j = i+1, j-1 {
		g.Widths[i], g.Widths[j] = g.Widths[j], g.Widths[i]
	}
	return g
}

// concatGeometry joins oriented geometry parts end to end, deduplicating the
// junction point. The surviving junction width is the average of the two
// sides; with smoothJoin the junction point itself is averaged with its
// neighbors.
func concatGeometry(parts []EdgeGeometry, smoothJoin bool) EdgeGeometry {
	var out EdgeGeometry
	for _, p := range parts {
		pts := p.Points
		widths := p.Widths
		if len(out.Points) > 0 && len(pts) > 0 && out.Points[len(out.Points)-1] == pts[0] {
			if len(widths) > 0 && len(out.Widths) > 0 {
				out.Widths[len(out.Widths)-1] = (out.Widths[len(out.Widths)-1] + widths[0]) / 2
			}
			junction := len(out.Points) - 1
			pts = pts[1:]
			if len(widths) > 0 {
				widths = widths[1:]
			}
			if smoothJoin && junction > 0 && len(pts) > 0 {
				out.Points[junction] = out.Points[junction-1].Lerp(pts[0], 0.5)
			}
		}
		out.Points = append(out.Points, pts...)
		out.Widths = append(out.Widths, widths...)
	}
	return out
}
