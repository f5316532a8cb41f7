package vac

// NodeID identifies a node within its owning Complex. IDs are allocated by a
// per-complex counter, are stable for the node's lifetime and are never
// reused. The zero value means "no node".
type NodeID uint64

// NoNode is the zero NodeID, used for absent parents, siblings and anchors.
const NoNode NodeID = 0

// Node is an entity owned by a Complex: either a Group or one of the cell
// kinds. All cross-node references are NodeIDs resolved through the owning
// complex, never long-lived pointers.
type Node interface {
	ID() NodeID
	ParentGroup() NodeID
	PrevSibling() NodeID
	NextSibling() NodeID

	// Property returns the authored property value for name, or "".
	Property(name string) string

	base() *node
}

// node carries the identity and tree linkage shared by every node kind.
type node struct {
	id      NodeID
	complex *Complex
	parent  NodeID
	prev    NodeID
	next    NodeID
	props   map[string]string
}

func (n *node) ID() NodeID          { return n.id }
func (n *node) ParentGroup() NodeID { return n.parent }
func (n *node) PrevSibling() NodeID { return n.prev }
func (n *node) NextSibling() NodeID { return n.next }
func (n *node) base() *node         { return n }

func (n *node) Property(name string) string {
	return n.props[name]
}

func (n *node) setProperty(name, value string) {
	if n.props == nil {
		n.props = make(map[string]string)
	}
	n.props[name] = value
}
