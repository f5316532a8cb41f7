package collab

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vgc/vgc-sub008/internal/vac"
)

// RoomState holds the authoritative complex for one room, the operation log
// that produced it, and the last transaction's diff.
type RoomState struct {
	mu        sync.Mutex
	complex   *vac.Complex
	serverSeq int64
	opLog     []Operation
	lastDiff  *vac.Diff
	dirty     bool
}

func NewRoomState() *RoomState {
	rs := &RoomState{complex: vac.NewComplex()}
	rs.complex.OnDiff(func(d *vac.Diff) { rs.lastDiff = d })
	return rs
}

// LoadRoomState rebuilds a room from a persisted snapshot payload by replaying
// its operation log. Node id allocation is sequential, so the replayed complex
// is identical to the one that produced the log.
func LoadRoomState(payload []byte) (*RoomState, error) {
	var snap DocSyncPayload
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	rs := NewRoomState()
	for i, op := range snap.Ops {
		if _, err := rs.Apply(op); err != nil {
			return nil, fmt.Errorf("replay op %d (%s): %w", i, op.Type, err)
		}
	}
	if rs.serverSeq != snap.ServerSeq {
		return nil, fmt.Errorf("snapshot seq %d, replayed %d", snap.ServerSeq, rs.serverSeq)
	}
	return rs, nil
}

// ServerSeq returns the sequence number of the last accepted operation.
func (rs *RoomState) ServerSeq() int64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.serverSeq
}

// SyncPayload returns the full operation log for a late joiner.
func (rs *RoomState) SyncPayload() DocSyncPayload {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	ops := make([]Operation, len(rs.opLog))
	copy(ops, rs.opLog)
	return DocSyncPayload{ServerSeq: rs.serverSeq, Root: rs.complex.Root(), Ops: ops}
}

// SnapshotPayload serializes the operation log for persistence. The returned
// seq identifies the snapshot; Flush marks the state clean.
func (rs *RoomState) SnapshotPayload() ([]byte, int64, error) {
	payload := rs.SyncPayload()
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal snapshot: %w", err)
	}
	return buf, payload.ServerSeq, nil
}

// Dirty reports whether operations were accepted since the last Flush.
func (rs *RoomState) Dirty() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.dirty
}

// Flush marks the state as persisted.
func (rs *RoomState) Flush() {
	rs.mu.Lock()
	rs.dirty = false
	rs.mu.Unlock()
}

// ApplyResult is the outcome of one accepted operation.
type ApplyResult struct {
	ServerSeq int64
	Diff      *DiffPayload
	// Created holds the ids of nodes the operation directly created, in
	// creation order (the diff may contain more, e.g. from glue rewiring).
	Created []vac.NodeID
	// Kept holds the cells a simplify could not fold away.
	Kept []vac.NodeID
}

// Apply runs one operation against the complex in a single transaction.
// On success it returns the new server sequence and the transaction's diff,
// already shaped for broadcast.
func (rs *RoomState) Apply(op Operation) (*ApplyResult, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	// An accepted operation that commits nothing emits no diff; without this
	// reset the broadcast would replay the previous transaction's diff.
	rs.lastDiff = nil

	created, kept, err := rs.applyLocked(op)
	if err != nil {
		return nil, err
	}

	rs.serverSeq++
	rs.opLog = append(rs.opLog, op)
	rs.dirty = true

	payload := rs.diffPayload(rs.lastDiff)
	payload.ServerSeq = rs.serverSeq
	return &ApplyResult{
		ServerSeq: rs.serverSeq,
		Diff:      payload,
		Created:   created,
		Kept:      kept,
	}, nil
}

// applyLocked maps the wire operation onto the operations layer.
func (rs *RoomState) applyLocked(op Operation) (created []vac.NodeID, kept []vac.NodeID, err error) {
	c := rs.complex
	err = vac.Transact(c, func(ops *vac.Operations) error {
		switch op.Type {
		case OpGroupCreate:
			g, err := ops.CreateGroup(op.Parent, op.Anchor)
			if err != nil {
				return err
			}
			created = append(created, g.ID())
			return nil

		case OpVertexCreate:
			if op.Position == nil {
				return fmt.Errorf("vertex.create: missing position")
			}
			v, err := ops.CreateKeyVertex(op.Parent, op.Anchor, op.Frame, *op.Position)
			if err != nil {
				return err
			}
			created = append(created, v.ID())
			return nil

		case OpEdgeCreate:
			e, err := ops.CreateKeyEdge(op.Parent, op.StartVertex, op.EndVertex, op.Anchor, op.Frame,
				vac.EdgeGeometry{Points: op.Points, Widths: op.Widths})
			if err != nil {
				return err
			}
			created = append(created, e.ID())
			return nil

		case OpClosedEdgeCreate:
			e, err := ops.CreateKeyClosedEdge(op.Parent, op.Anchor, op.Frame,
				vac.EdgeGeometry{Points: op.Points, Widths: op.Widths})
			if err != nil {
				return err
			}
			created = append(created, e.ID())
			return nil

		case OpFaceCreate:
			f, err := ops.CreateKeyFace(op.Parent, op.Anchor, op.Frame, op.Cycles...)
			if err != nil {
				return err
			}
			created = append(created, f.ID())
			return nil

		case OpFaceAddCycle:
			if len(op.Cycles) != 1 {
				return fmt.Errorf("face.addCycle: want exactly one cycle, got %d", len(op.Cycles))
			}
			return ops.AddFaceCycle(op.Node, op.Cycles[0])

		case OpInbetweenVertex:
			v, err := ops.CreateInbetweenVertex(op.Parent, op.Anchor, op.Before, op.After)
			if err != nil {
				return err
			}
			created = append(created, v.ID())
			return nil

		case OpInbetweenEdge:
			e, err := ops.CreateInbetweenEdge(op.Parent, op.Anchor, op.Before, op.After)
			if err != nil {
				return err
			}
			created = append(created, e.ID())
			return nil

		case OpInbetweenFace:
			f, err := ops.CreateInbetweenFace(op.Parent, op.Anchor, op.Before, op.After)
			if err != nil {
				return err
			}
			created = append(created, f.ID())
			return nil

		case OpNodeRemove:
			return ops.RemoveNode(op.Node, op.RemoveFreeVertices)

		case OpNodeMove:
			return ops.MoveToGroup(op.Node, op.Parent, op.Anchor)

		case OpVertexSetPosition:
			if op.Position == nil {
				return fmt.Errorf("vertex.setPosition: missing position")
			}
			return ops.SetKeyVertexPosition(op.Node, *op.Position)

		case OpEdgeSetPoints:
			return ops.SetKeyEdgeCurvePoints(op.Node, op.Points)

		case OpEdgeSetWidths:
			return ops.SetKeyEdgeCurveWidths(op.Node, op.Widths)

		case OpGroupSetTransform:
			if op.Transform == nil {
				return fmt.Errorf("group.setTransform: missing transform")
			}
			return ops.SetGroupTransform(op.Node, *op.Transform)

		case OpNodeSetProperty:
			return ops.SetProperty(op.Node, op.Property, op.Value)

		case OpEdgeGlue:
			if len(op.Edges) != 2 {
				return fmt.Errorf("edge.glue: want exactly two edges, got %d", len(op.Edges))
			}
			e, err := ops.Glue(op.Edges[0], op.Edges[1], op.SmoothJoins)
			if err != nil {
				return err
			}
			created = append(created, e.ID())
			return nil

		case OpSimplify:
			kept = ops.Simplify(op.Vertices, op.Edges, op.SmoothJoins)
			return nil

		default:
			return fmt.Errorf("unknown operation type: %s", op.Type)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return created, kept, nil
}

// diffPayload shapes a transaction diff for the wire, describing every
// created node in full.
func (rs *RoomState) diffPayload(d *vac.Diff) *DiffPayload {
	out := &DiffPayload{Version: rs.complex.Version()}
	if d == nil {
		return out
	}
	for _, id := range d.Created() {
		out.Created = append(out.Created, describeNode(rs.complex, id))
	}
	out.Destroyed = d.Destroyed()
	out.Transient = d.Transient()
	out.Modified = d.Modified()
	out.Insertions = d.Insertions()
	return out
}

// describeNode builds the wire description of one live node.
func describeNode(c *vac.Complex, id vac.NodeID) NodePayload {
	n := c.Find(id)
	p := NodePayload{ID: id}
	if n == nil {
		p.Kind = "unknown"
		return p
	}
	p.Parent = n.ParentGroup()

	switch v := n.(type) {
	case *vac.Group:
		p.Kind = "group"
		m := v.Transform()
		p.Transform = &m
	case *vac.KeyVertex:
		p.Kind = "keyVertex"
		f := v.Frame()
		p.Frame = &f
		pos := v.Position()
		p.Position = &pos
	case *vac.KeyEdge:
		p.Kind = "keyEdge"
		f := v.Frame()
		p.Frame = &f
		p.StartVertex = v.StartVertex()
		p.EndVertex = v.EndVertex()
		g := v.Geometry()
		p.Points = g.Points
		p.Widths = g.Widths
		p.Closed = g.Closed
	case *vac.KeyFace:
		p.Kind = "keyFace"
		f := v.Frame()
		p.Frame = &f
		p.Cycles = v.Cycles()
	case *vac.InbetweenVertex:
		p.Kind = "inbetweenVertex"
		r := v.FrameRange()
		p.Range = &r
		p.Before = v.BeforeVertex()
		p.After = v.AfterVertex()
	case *vac.InbetweenEdge:
		p.Kind = "inbetweenEdge"
		r := v.FrameRange()
		p.Range = &r
		p.Before = v.BeforeEdge()
		p.After = v.AfterEdge()
	case *vac.InbetweenFace:
		p.Kind = "inbetweenFace"
		r := v.FrameRange()
		p.Range = &r
		p.Before = v.BeforeFace()
		p.After = v.AfterFace()
	default:
		p.Kind = "unknown"
	}
	return p
}

// ServerTimestamp is the timestamp stamped on acks.
func ServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
