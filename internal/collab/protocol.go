package collab

import (
	"encoding/json"

	"github.com/vgc/vgc-sub008/internal/geom"
	"github.com/vgc/vgc-sub008/internal/vac"
)

type Message struct {
	Type      string          `json:"type"`
	DocID     string          `json:"docId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync: full operation log replay for late joiners
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit      = "op.submit"
	TypeOpAck         = "op.ack"
	TypeOpNack        = "op.nack"
	TypeDiffBroadcast = "diff.broadcast"
)

type PresencePayload struct {
	Cursor      *CursorPos   `json:"cursor,omitempty"`
	Selection   []vac.NodeID `json:"selection,omitempty"`
	Frame       int          `json:"frame,omitempty"`
	DisplayName string       `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	SessionID string `json:"sessionId"`
}

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId"`
	DocID     string `json:"docId"`
	ServerSeq int64  `json:"serverSeq"`
}

// --- Operations ---

// Operation type names, one per structural edit the room accepts.
const (
	OpGroupCreate       = "group.create"
	OpVertexCreate      = "vertex.create"
	OpEdgeCreate        = "edge.create"
	OpClosedEdgeCreate  = "edge.createClosed"
	OpFaceCreate        = "face.create"
	OpFaceAddCycle      = "face.addCycle"
	OpInbetweenVertex   = "inbetween.vertexCreate"
	OpInbetweenEdge     = "inbetween.edgeCreate"
	OpInbetweenFace     = "inbetween.faceCreate"
	OpNodeRemove        = "node.remove"
	OpNodeMove          = "node.move"
	OpVertexSetPosition = "vertex.setPosition"
	OpEdgeSetPoints     = "edge.setPoints"
	OpEdgeSetWidths     = "edge.setWidths"
	OpGroupSetTransform = "group.setTransform"
	OpNodeSetProperty   = "node.setProperty"
	OpEdgeGlue          = "edge.glue"
	OpSimplify          = "simplify"
)

// Operation is one structural edit submitted by a client. Type selects which
// of the optional fields are read.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ClientSeq int64  `json:"clientSeq,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// Common targets
	Node   vac.NodeID `json:"node,omitempty"`
	Parent vac.NodeID `json:"parent,omitempty"`
	Anchor vac.NodeID `json:"anchor,omitempty"`
	Frame  vac.Frame  `json:"frame,omitempty"`

	// vertex.create / vertex.setPosition
	Position *geom.Vec2 `json:"position,omitempty"`

	// edge.create
	StartVertex vac.NodeID `json:"startVertex,omitempty"`
	EndVertex   vac.NodeID `json:"endVertex,omitempty"`

	// edge geometry
	Points []geom.Vec2 `json:"points,omitempty"`
	Widths []float64   `json:"widths,omitempty"`

	// face.create / face.addCycle
	Cycles []vac.KeyCycle `json:"cycles,omitempty"`

	// inbetween.*Create
	Before vac.NodeID `json:"before,omitempty"`
	After  vac.NodeID `json:"after,omitempty"`

	// node.remove
	RemoveFreeVertices bool `json:"removeFreeVertices,omitempty"`

	// group.setTransform
	Transform *geom.Mat2D `json:"transform,omitempty"`

	// node.setProperty
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`

	// edge.glue / simplify
	Edges       []vac.NodeID `json:"edges,omitempty"`
	Vertices    []vac.NodeID `json:"vertices,omitempty"`
	SmoothJoins bool         `json:"smoothJoins,omitempty"`
}

type OpSubmitPayload struct {
	Operation Operation `json:"operation"`
}

type OpAckPayload struct {
	OperationID string `json:"operationId"`
	ServerSeq   int64  `json:"serverSeq"`
	// Cells the operation created but did not finish with (simplify) keep
	// their result in the diff broadcast; direct creations echo the new id.
	CreatedNodes []vac.NodeID `json:"createdNodes,omitempty"`
	// Simplify: cells that could not be simplified.
	KeptNodes []vac.NodeID `json:"keptNodes,omitempty"`
}

type OpNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// --- Diff broadcast ---

// NodePayload describes one created node for observers.
type NodePayload struct {
	ID     vac.NodeID `json:"id"`
	Kind   string     `json:"kind"`
	Parent vac.NodeID `json:"parent,omitempty"`

	Frame *vac.Frame      `json:"frame,omitempty"`
	Range *vac.FrameRange `json:"range,omitempty"`

	Position *geom.Vec2 `json:"position,omitempty"`

	StartVertex vac.NodeID  `json:"startVertex,omitempty"`
	EndVertex   vac.NodeID  `json:"endVertex,omitempty"`
	Points      []geom.Vec2 `json:"points,omitempty"`
	Widths      []float64   `json:"widths,omitempty"`
	Closed      bool        `json:"closed,omitempty"`

	Cycles []vac.KeyCycle `json:"cycles,omitempty"`

	Before vac.NodeID `json:"before,omitempty"`
	After  vac.NodeID `json:"after,omitempty"`

	Transform *geom.Mat2D `json:"transform,omitempty"`
}

// DiffPayload is the serialized form of one transaction's diff, broadcast to
// every client in the room after an accepted operation.
type DiffPayload struct {
	Version    uint64             `json:"version"`
	ServerSeq  int64              `json:"serverSeq"`
	Created    []NodePayload      `json:"created,omitempty"`
	Destroyed  []vac.NodeID       `json:"destroyed,omitempty"`
	Transient  []vac.NodeID       `json:"transient,omitempty"`
	Modified   []vac.Modification `json:"modified,omitempty"`
	Insertions []vac.Insertion    `json:"insertions,omitempty"`
}

// DocSyncPayload carries the full operation log; replaying it against a fresh
// complex reproduces the document, ids included.
type DocSyncPayload struct {
	ServerSeq int64       `json:"serverSeq"`
	Root      vac.NodeID  `json:"root"`
	Ops       []Operation `json:"ops"`
}
