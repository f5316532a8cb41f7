package vac

import "fmt"

// CheckTopology verifies the structural invariants of the complex: a single
// root, consistent parent/sibling links, no dangling ids, and boundary/star
// symmetry. It is a development aid; any reported violation is a bug in the
// operations layer, not a recoverable condition.
func (c *Complex) CheckTopology() error {
	if c.root != NoNode {
		root := c.FindGroup(c.root)
		if root == nil {
			return fmt.Errorf("vac: root %d is not a group", c.root)
		}
		if root.parent != NoNode {
			return fmt.Errorf("vac: root %d has parent %d", c.root, root.parent)
		}
	}

	reached := 0
	c.Walk(func(n Node) bool {
		reached++
		return true
	})
	if reached != len(c.nodes) {
		return fmt.Errorf("vac: %d nodes in map, %d reachable from root", len(c.nodes), reached)
	}

	for id, n := range c.nodes {
		if n.ID() != id {
			return fmt.Errorf("vac: node %d stored under id %d", n.ID(), id)
		}
		if id != c.root {
			parent := c.FindGroup(n.ParentGroup())
			if parent == nil {
				return fmt.Errorf("vac: node %d has no parent group", id)
			}
			found := false
			for _, child := range parent.Children() {
				if child == id {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("vac: node %d missing from parent %d child list", id, parent.id)
			}
		}

		cell, ok := n.(Cell)
		if !ok {
			continue
		}
		cd := cell.cell()
		for _, bid := range cd.boundary {
			b := c.FindCell(bid)
			if b == nil {
				return fmt.Errorf("vac: cell %d has dangling boundary id %d", id, bid)
			}
			if !b.cell().starContains(id) {
				return fmt.Errorf("vac: cell %d in boundary of %d but %d not in its star", bid, id, id)
			}
		}
		for _, sid := range cd.star {
			s := c.FindCell(sid)
			if s == nil {
				return fmt.Errorf("vac: cell %d has dangling star id %d", id, sid)
			}
			if !s.cell().boundaryContains(id) {
				return fmt.Errorf("vac: cell %d in star of %d but %d not in its boundary", sid, id, id)
			}
		}
	}
	return nil
}
