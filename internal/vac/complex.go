package vac

// Complex is the sole owner of a set of nodes forming one vector animation
// complex: a grouping tree of cells whose boundary/star links are kept
// mutually consistent by the operations layer.
//
// A Complex is not safe for concurrent use; callers serialize access
// externally (the collab layer holds one complex per room behind its own
// lock).
type Complex struct {
	nodes  map[NodeID]Node
	root   NodeID
	nextID NodeID

	version uint64

	sampler        Sampler
	samplingParams SamplingParams

	// Transaction state, managed by Transact.
	txDepth       int
	pending       *Diff
	pendingConcat []NodeID

	listeners []func(*Diff)
	clearing  bool
}

// NewComplex creates a complex containing only a fresh root group. Creating
// the root counts as the complex's first transaction, so Version starts at 1.
func NewComplex() *Complex {
	c := &Complex{
		nodes:          make(map[NodeID]Node),
		sampler:        PolylineSampler{},
		samplingParams: DefaultSamplingParams(),
	}
	// Cannot fail on a fresh complex.
	_ = Transact(c, func(op *Operations) error {
		_, err := op.CreateRootGroup()
		return err
	})
	return c
}

// SetSampler replaces the curve sampler and its quality parameters, and
// invalidates every cached edge sampling.
func (c *Complex) SetSampler(s Sampler, params SamplingParams) {
	if s == nil {
		s = PolylineSampler{}
	}
	c.sampler = s
	c.samplingParams = params
	for _, n := range c.nodes {
		if e, ok := n.(*KeyEdge); ok {
			e.invalidateGeometry()
		}
	}
}

// OnDiff registers a listener invoked once per outermost transaction with the
// accumulated diff. Listeners must not start new transactions reentrantly.
func (c *Complex) OnDiff(fn func(*Diff)) {
	c.listeners = append(c.listeners, fn)
}

// Version returns the complex's version counter. It increases by exactly one
// per outermost transaction.
func (c *Complex) Version() uint64 { return c.version }

// Root returns the id of the root group.
func (c *Complex) Root() NodeID { return c.root }

// RootGroup returns the root group.
func (c *Complex) RootGroup() *Group { return c.FindGroup(c.root) }

// NodeCount returns the number of live nodes, including the root group.
func (c *Complex) NodeCount() int { return len(c.nodes) }

// Find returns the node with the given id, or nil.
func (c *Complex) Find(id NodeID) Node {
	if id == NoNode {
		return nil
	}
	return c.nodes[id]
}

// FindCell returns the cell with the given id, or nil if the id is absent or
// names a group.
func (c *Complex) FindCell(id NodeID) Cell {
	cell, _ := c.Find(id).(Cell)
	return cell
}

// FindGroup returns the group with the given id, or nil.
func (c *Complex) FindGroup(id NodeID) *Group {
	g, _ := c.Find(id).(*Group)
	return g
}

// FindKeyVertex returns the key vertex with the given id, or nil.
func (c *Complex) FindKeyVertex(id NodeID) *KeyVertex {
	v, _ := c.Find(id).(*KeyVertex)
	return v
}

// FindKeyEdge returns the key edge with the given id, or nil.
func (c *Complex) FindKeyEdge(id NodeID) *KeyEdge {
	e, _ := c.Find(id).(*KeyEdge)
	return e
}

// FindKeyFace returns the key face with the given id, or nil.
func (c *Complex) FindKeyFace(id NodeID) *KeyFace {
	f, _ := c.Find(id).(*KeyFace)
	return f
}

// Walk visits every node in depth-first tree order starting at the root.
// Returning false from fn stops the walk.
func (c *Complex) Walk(fn func(Node) bool) {
	c.walkFrom(c.root, fn)
}

func (c *Complex) walkFrom(id NodeID, fn func(Node) bool) bool {
	n := c.Find(id)
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	if g, ok := n.(*Group); ok {
		for _, child := range g.Children() {
			if !c.walkFrom(child, fn) {
				return false
			}
		}
	}
	return true
}

// CellsAtFrame returns the ids of all cells that exist at frame f, in
// tree order.
func (c *Complex) CellsAtFrame(f Frame) []NodeID {
	var out []NodeID
	c.Walk(func(n Node) bool {
		if cell, ok := n.(Cell); ok && cell.ExistsAt(f) {
			out = append(out, cell.ID())
		}
		return true
	})
	return out
}

// Clear destroys every node, recording a destroyed entry for each, and emits
// the diff. A clear triggered from within another clear is a no-op.
func (c *Complex) Clear() {
	if c.clearing {
		return
	}
	c.clearing = true
	defer func() { c.clearing = false }()

	_ = Transact(c, func(op *Operations) error {
		op.destroyAll()
		return nil
	})
}

// ResetRoot destroys all existing nodes and creates a fresh root group in one
// transaction. No-op while the complex is already being cleared.
func (c *Complex) ResetRoot() {
	if c.clearing {
		return
	}
	c.clearing = true
	defer func() { c.clearing = false }()

	_ = Transact(c, func(op *Operations) error {
		op.destroyAll()
		_, err := op.CreateRootGroup()
		return err
	})
}

func (c *Complex) allocID() NodeID {
	c.nextID++
	return c.nextID
}

// releaseID returns the most recently allocated id to the generator. Only the
// newest id can be released; anything older is already published.
func (c *Complex) releaseID(id NodeID) {
	if id == c.nextID {
		c.nextID--
	}
}

func (c *Complex) insertNode(n Node) {
	c.nodes[n.ID()] = n
}

func (c *Complex) eraseNode(id NodeID) {
	delete(c.nodes, id)
}
