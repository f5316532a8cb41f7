package vac

import "github.com/vgc/vgc-sub008/internal/geom"

// InbetweenVertex interpolates between two key vertices over the open frame
// range separating them.
type InbetweenVertex struct {
	cellData
	frameRange FrameRange
	before     NodeID // key vertex at frameRange.After
	after      NodeID // key vertex at frameRange.Before
}

func (v *InbetweenVertex) SpatialType() SpatialType   { return SpatialVertex }
func (v *InbetweenVertex) TemporalType() TemporalType { return TemporalInbetween }
func (v *InbetweenVertex) FrameRange() FrameRange     { return v.frameRange }
func (v *InbetweenVertex) ExistsAt(f Frame) bool      { return v.frameRange.Contains(f) }

// BeforeVertex returns the key vertex at the start of the range.
func (v *InbetweenVertex) BeforeVertex() NodeID { return v.before }

// AfterVertex returns the key vertex at the end of the range.
func (v *InbetweenVertex) AfterVertex() NodeID { return v.after }

// PositionAt returns the linearly interpolated position at frame f. The
// result is only meaningful when f is inside the frame range.
func (v *InbetweenVertex) PositionAt(f Frame) geom.Vec2 {
	b := v.complex.FindKeyVertex(v.before)
	a := v.complex.FindKeyVertex(v.after)
	if b == nil || a == nil {
		return geom.Vec2{}
	}
	span := v.frameRange.Before - v.frameRange.After
	if span == 0 {
		return b.position
	}
	t := float64(f-v.frameRange.After) / float64(span)
	return b.position.Lerp(a.position, t)
}

// InbetweenEdge interpolates between two key edges over the open frame range
// separating them.
type InbetweenEdge struct {
	cellData
	frameRange FrameRange
	before     NodeID // key edge at frameRange.After
	after      NodeID // key edge at frameRange.Before
}

func (e *InbetweenEdge) SpatialType() SpatialType   { return SpatialEdge }
func (e *InbetweenEdge) TemporalType() TemporalType { return TemporalInbetween }
func (e *InbetweenEdge) FrameRange() FrameRange     { return e.frameRange }
func (e *InbetweenEdge) ExistsAt(f Frame) bool      { return e.frameRange.Contains(f) }

// BeforeEdge returns the key edge at the start of the range.
func (e *InbetweenEdge) BeforeEdge() NodeID { return e.before }

// AfterEdge returns the key edge at the end of the range.
func (e *InbetweenEdge) AfterEdge() NodeID { return e.after }

// InbetweenFace interpolates between two key faces over the open frame range
// separating them.
type InbetweenFace struct {
	cellData
	frameRange FrameRange
	before     NodeID // key face at frameRange.After
	after      NodeID // key face at frameRange.Before
}

func (f *InbetweenFace) SpatialType() SpatialType   { return SpatialFace }
func (f *InbetweenFace) TemporalType() TemporalType { return TemporalInbetween }
func (f *InbetweenFace) FrameRange() FrameRange     { return f.frameRange }
func (f *InbetweenFace) ExistsAt(t Frame) bool      { return f.frameRange.Contains(t) }

// BeforeFace returns the key face at the start of the range.
func (f *InbetweenFace) BeforeFace() NodeID { return f.before }

// AfterFace returns the key face at the end of the range.
func (f *InbetweenFace) AfterFace() NodeID { return f.after }
