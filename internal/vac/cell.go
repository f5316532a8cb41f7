package vac

// SpatialType classifies a cell by dimension.
type SpatialType int

const (
	SpatialVertex SpatialType = iota // dimension 0
	SpatialEdge                      // dimension 1
	SpatialFace                      // dimension 2
)

func (t SpatialType) String() string {
	switch t {
	case SpatialVertex:
		return "vertex"
	case SpatialEdge:
		return "edge"
	case SpatialFace:
		return "face"
	default:
		return "unknown"
	}
}

// Dimension returns the topological dimension of the spatial type.
func (t SpatialType) Dimension() int { return int(t) }

// TemporalType classifies a cell by its extent in time.
type TemporalType int

const (
	TemporalKey       TemporalType = iota // exists at a single frame
	TemporalInbetween                     // exists over an open frame range
)

func (t TemporalType) String() string {
	switch t {
	case TemporalKey:
		return "key"
	case TemporalInbetween:
		return "inbetween"
	default:
		return "unknown"
	}
}

// Frame is an opaque instant on the timeline. The core only ever compares
// frames for equality and range containment; it does not interpret units.
type Frame int

// FrameRange is the open interval (After, Before) over which an inbetween
// cell exists. Neither endpoint is contained.
type FrameRange struct {
	After  Frame `json:"after"`
	Before Frame `json:"before"`
}

// Contains reports whether f lies strictly inside the range.
func (r FrameRange) Contains(f Frame) bool {
	return f > r.After && f < r.Before
}

// Cell is a topological element of the complex: a vertex, edge or face,
// either key (instantaneous) or inbetween (time-ranged).
type Cell interface {
	Node

	SpatialType() SpatialType
	TemporalType() TemporalType

	// Boundary returns the ordered ids of the cells this cell topologically
	// depends on. The returned slice is a copy.
	Boundary() []NodeID

	// Star returns the ordered ids of the cells that depend on this cell.
	// The returned slice is a copy.
	Star() []NodeID

	// ExistsAt reports whether the cell is part of the drawing at frame f.
	ExistsAt(f Frame) bool

	cell() *cellData
}

// cellData carries the incidence links shared by every cell kind. The two
// slices are mutually consistent: b is in a.boundary exactly when a is in
// b.star. Only the operations layer may touch them.
type cellData struct {
	node
	boundary []NodeID
	star     []NodeID
}

func (d *cellData) Boundary() []NodeID {
	out := make([]NodeID, len(d.boundary))
	copy(out, d.boundary)
	return out
}

func (d *cellData) Star() []NodeID {
	out := make([]NodeID, len(d.star))
	copy(out, d.star)
	return out
}

func (d *cellData) cell() *cellData { return d }

func (d *cellData) boundaryContains(id NodeID) bool {
	for _, b := range d.boundary {
		if b == id {
			return true
		}
	}
	return false
}

func (d *cellData) starContains(id NodeID) bool {
	for _, s := range d.star {
		if s == id {
			return true
		}
	}
	return false
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
