package vac

// ModifiedFlags is a bitset of modification kinds recorded for one node
// during a transaction.
type ModifiedFlags uint8

const (
	BoundaryChanged ModifiedFlags = 1 << iota
	StarChanged
	GeometryChanged
	BoundaryGeometryChanged
	ChildrenChanged
	Reparented
	PropertyChanged
)

// Has reports whether every flag in want is set.
func (f ModifiedFlags) Has(want ModifiedFlags) bool {
	return f&want == want
}

// Insertion records that a node was attached under a parent, next to an
// optional sibling anchor.
type Insertion struct {
	Node      NodeID `json:"node"`
	OldParent NodeID `json:"oldParent"` // NoNode for fresh creations
	Parent    NodeID `json:"parent"`
	Anchor    NodeID `json:"anchor"` // NoNode means "as last child"
	Before    bool   `json:"before"` // inserted before (not after) the anchor
}

// Modification is the accumulated modification record for one node.
type Modification struct {
	Node       NodeID        `json:"node"`
	Flags      ModifiedFlags `json:"flags"`
	Properties []string      `json:"properties,omitempty"`
}

func (m *Modification) addProperty(name string) {
	for _, p := range m.Properties {
		if p == name {
			return
		}
	}
	m.Properties = append(m.Properties, name)
}

// Diff is the append-only record of a single transaction's effects, emitted
// to listeners once per outermost transaction. Entry order is the order the
// events occurred in.
type Diff struct {
	created   []NodeID
	destroyed []NodeID
	transient []NodeID

	modified      map[NodeID]*Modification
	modifiedOrder []NodeID

	insertions []Insertion

	createdSet map[NodeID]bool
}

// NewDiff returns an empty diff.
func NewDiff() *Diff {
	return &Diff{
		modified:   make(map[NodeID]*Modification),
		createdSet: make(map[NodeID]bool),
	}
}

// IsEmpty reports whether the diff records no events at all.
func (d *Diff) IsEmpty() bool {
	return len(d.created) == 0 && len(d.destroyed) == 0 &&
		len(d.modified) == 0 && len(d.insertions) == 0 && len(d.transient) == 0
}

// Created returns the ids of nodes created during the transaction, in
// creation order.
func (d *Diff) Created() []NodeID { return d.created }

// Destroyed returns the ids of nodes destroyed during the transaction.
func (d *Diff) Destroyed() []NodeID { return d.destroyed }

// Transient returns the ids of nodes that were both created and destroyed
// inside the same transaction and therefore never externally existed.
func (d *Diff) Transient() []NodeID { return d.transient }

// Modified returns the per-node modification records, in first-modification
// order.
func (d *Diff) Modified() []Modification {
	out := make([]Modification, 0, len(d.modifiedOrder))
	for _, id := range d.modifiedOrder {
		out = append(out, *d.modified[id])
	}
	return out
}

// ModifiedFlagsOf returns the accumulated flags for one node.
func (d *Diff) ModifiedFlagsOf(id NodeID) ModifiedFlags {
	if m, ok := d.modified[id]; ok {
		return m.Flags
	}
	return 0
}

// Insertions returns the insertion events, in event order.
func (d *Diff) Insertions() []Insertion { return d.insertions }

// onNodeCreated records a creation. Called only by the operations layer.
func (d *Diff) onNodeCreated(id NodeID) {
	d.created = append(d.created, id)
	d.createdSet[id] = true
}

// onNodeDestroyed records a destruction, folding away nodes created in the
// same transaction: those are removed from every other list and recorded as
// transient instead.
func (d *Diff) onNodeDestroyed(id NodeID) {
	if d.createdSet[id] {
		delete(d.createdSet, id)
		d.created = removeID(d.created, id)
		d.dropModified(id)
		d.dropInsertions(id)
		d.transient = append(d.transient, id)
		return
	}
	d.dropModified(id)
	d.dropInsertions(id)
	d.destroyed = append(d.destroyed, id)
}

// onNodeModified records a modification. Modifying a node created in the same
// transaction is a no-op: creation already implies full-state notification.
func (d *Diff) onNodeModified(id NodeID, flags ModifiedFlags) {
	if d.createdSet[id] {
		return
	}
	m, ok := d.modified[id]
	if !ok {
		m = &Modification{Node: id}
		d.modified[id] = m
		d.modifiedOrder = append(d.modifiedOrder, id)
	}
	m.Flags |= flags
}

// onNodePropertyModified records an authored-property change by name.
func (d *Diff) onNodePropertyModified(id NodeID, name string) {
	if d.createdSet[id] {
		return
	}
	d.onNodeModified(id, PropertyChanged)
	d.modified[id].addProperty(name)
}

// onNodeInserted records an insertion event.
func (d *Diff) onNodeInserted(ins Insertion) {
	d.insertions = append(d.insertions, ins)
}

func (d *Diff) dropModified(id NodeID) {
	if _, ok := d.modified[id]; ok {
		delete(d.modified, id)
		d.modifiedOrder = removeID(d.modifiedOrder, id)
	}
}

func (d *Diff) dropInsertions(id NodeID) {
	out := d.insertions[:0]
	for _, ins := range d.insertions {
		if ins.Node != id {
			out = append(out, ins)
		}
	}
	d.insertions = out
}

// Merge replays the events of other through d's folding rules. Used when a
// composed operation accumulates sub-operations against a temporary diff.
func (d *Diff) Merge(other *Diff) {
	if other == nil {
		return
	}
	for _, id := range other.created {
		d.onNodeCreated(id)
	}
	for _, ins := range other.insertions {
		d.onNodeInserted(ins)
	}
	for _, id := range other.modifiedOrder {
		m := other.modified[id]
		d.onNodeModified(id, m.Flags)
		for _, p := range m.Properties {
			d.onNodePropertyModified(id, p)
		}
	}
	for _, id := range other.destroyed {
		d.onNodeDestroyed(id)
	}
	for _, id := range other.transient {
		d.transient = append(d.transient, id)
	}
}
