package vac

// Pure set-valued queries over the incidence relation. None of them mutates
// the complex. Output order is deterministic for identical input order: an
// explicit worklist with a visited set preserves discovery order instead of
// leaking map iteration order.

// Closure returns S unioned with the boundary of every member, recursively,
// until no new cells are added. Group ids pass through unchanged.
func Closure(c *Complex, ids []NodeID) []NodeID {
	visited := make(map[NodeID]bool, len(ids))
	var out []NodeID
	var queue []NodeID

	push := func(id NodeID) {
		if id != NoNode && !visited[id] && c.Find(id) != nil {
			visited[id] = true
			queue = append(queue, id)
		}
	}
	for _, id := range ids {
		push(id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		if cell := c.FindCell(id); cell != nil {
			for _, b := range cell.cell().boundary {
				push(b)
			}
		}
	}
	return out
}

// Star returns the cells that topologically depend on members of S,
// recursively. Members of S themselves are excluded unless reached through
// another member's star.
func Star(c *Complex, ids []NodeID) []NodeID {
	visited := make(map[NodeID]bool, len(ids))
	var out []NodeID
	var queue []NodeID

	for _, id := range ids {
		visited[id] = true
	}
	push := func(id NodeID) {
		if id != NoNode && !visited[id] && c.Find(id) != nil {
			visited[id] = true
			queue = append(queue, id)
		}
	}
	for _, id := range ids {
		if cell := c.FindCell(id); cell != nil {
			for _, s := range cell.cell().star {
				push(s)
			}
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		if cell := c.FindCell(id); cell != nil {
			for _, s := range cell.cell().star {
				push(s)
			}
		}
	}
	return out
}

// Opening returns S unioned with Star(S), preserving input order and
// removing duplicates.
func Opening(c *Complex, ids []NodeID) []NodeID {
	seen := make(map[NodeID]bool, len(ids))
	var out []NodeID
	for _, id := range ids {
		if id != NoNode && !seen[id] && c.Find(id) != nil {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range Star(c, ids) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Boundary returns the topological boundary of S: cells of Closure(S) seeded
// from the boundary of each member of S plus any closure cell whose star
// escapes the closure, expanded with their own boundaries until fixed point.
func Boundary(c *Complex, ids []NodeID) []NodeID {
	cl := Closure(c, ids)
	inCl := make(map[NodeID]bool, len(cl))
	for _, id := range cl {
		inCl[id] = true
	}
	return boundaryWithin(c, ids, cl, inCl)
}

// OuterBoundary returns Boundary(Closure(S)). It is provided as a distinct
// entry point so the closure is computed once, not twice.
func OuterBoundary(c *Complex, ids []NodeID) []NodeID {
	cl := Closure(c, ids)
	inCl := make(map[NodeID]bool, len(cl))
	for _, id := range cl {
		inCl[id] = true
	}
	return boundaryWithin(c, cl, cl, inCl)
}

// boundaryWithin seeds the boundary computation from the direct boundaries of
// members plus every closure cell whose star is not contained in the closure,
// then takes the boundary-closure of the seeds.
func boundaryWithin(c *Complex, members, cl []NodeID, inCl map[NodeID]bool) []NodeID {
	visited := make(map[NodeID]bool)
	var out []NodeID
	var queue []NodeID

	push := func(id NodeID) {
		if id != NoNode && !visited[id] && c.Find(id) != nil {
			visited[id] = true
			queue = append(queue, id)
		}
	}

	for _, id := range members {
		if cell := c.FindCell(id); cell != nil {
			for _, b := range cell.cell().boundary {
				push(b)
			}
		}
	}
	for _, id := range cl {
		cell := c.FindCell(id)
		if cell == nil {
			continue
		}
		for _, s := range cell.cell().star {
			if !inCl[s] {
				push(id)
				break
			}
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		if cell := c.FindCell(id); cell != nil {
			for _, b := range cell.cell().boundary {
				push(b)
			}
		}
	}
	return out
}
