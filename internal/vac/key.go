package vac

import "github.com/vgc/vgc-sub008/internal/geom"

// KeyVertex is a vertex cell existing at a single frame.
type KeyVertex struct {
	cellData
	frame    Frame
	position geom.Vec2
}

func (v *KeyVertex) SpatialType() SpatialType   { return SpatialVertex }
func (v *KeyVertex) TemporalType() TemporalType { return TemporalKey }
func (v *KeyVertex) Frame() Frame               { return v.frame }
func (v *KeyVertex) ExistsAt(f Frame) bool      { return f == v.frame }

// Position returns the vertex position in its group's local coordinates.
func (v *KeyVertex) Position() geom.Vec2 { return v.position }

// Degree returns the number of distinct edges incident to the vertex.
func (v *KeyVertex) Degree() int {
	n := 0
	for _, id := range v.star {
		if _, ok := v.complex.Find(id).(*KeyEdge); ok {
			n++
		}
	}
	return n
}

// KeyEdge is an edge cell existing at a single frame. An open edge is bounded
// by its start and end vertices; a closed edge has an empty boundary.
type KeyEdge struct {
	cellData
	frame       Frame
	startVertex NodeID
	endVertex   NodeID
	geometry    EdgeGeometry

	sampling      EdgeSampling
	samplingDirty bool
	bounds        geom.Rect
	boundsDirty   bool

	// concat is non-nil while a glue is pending; the transaction's finalize
	// step collapses it into the authored geometry.
	concat *concatBuffer
}

type concatBuffer struct {
	parts []EdgeGeometry
}

func (e *KeyEdge) SpatialType() SpatialType   { return SpatialEdge }
func (e *KeyEdge) TemporalType() TemporalType { return TemporalKey }
func (e *KeyEdge) Frame() Frame               { return e.frame }
func (e *KeyEdge) ExistsAt(f Frame) bool      { return f == e.frame }

// IsClosed reports whether the edge is a closed loop with no boundary vertices.
func (e *KeyEdge) IsClosed() bool { return e.geometry.Closed }

// StartVertex returns the id of the start vertex, or NoNode for closed edges.
func (e *KeyEdge) StartVertex() NodeID { return e.startVertex }

// EndVertex returns the id of the end vertex, or NoNode for closed edges.
func (e *KeyEdge) EndVertex() NodeID { return e.endVertex }

// Geometry returns a copy of the authored control data.
func (e *KeyEdge) Geometry() EdgeGeometry { return e.geometry.clone() }

// Sampling returns the cached polyline approximation of the edge, recomputing
// it through the complex's sampler if the cache is dirty.
func (e *KeyEdge) Sampling() EdgeSampling {
	if e.samplingDirty {
		e.sampling = e.complex.sampler.SampleEdge(e.geometry, e.complex.samplingParams)
		e.samplingDirty = false
	}
	return e.sampling
}

// Bounds returns the axis-aligned bounding box of the sampled edge.
func (e *KeyEdge) Bounds() geom.Rect {
	if e.boundsDirty || e.samplingDirty {
		sampling := e.Sampling()
		pts := make([]geom.Vec2, len(sampling.Samples))
		for i, s := range sampling.Samples {
			pts[i] = s.Position
		}
		e.bounds = geom.BoundingRect(pts)
		e.boundsDirty = false
	}
	return e.bounds
}

func (e *KeyEdge) invalidateGeometry() {
	e.samplingDirty = true
	e.boundsDirty = true
}

// KeyFace is a face cell existing at a single frame, bounded by one or more
// cycles.
type KeyFace struct {
	cellData
	frame  Frame
	cycles []KeyCycle

	bounds      geom.Rect
	boundsDirty bool
}

func (f *KeyFace) SpatialType() SpatialType   { return SpatialFace }
func (f *KeyFace) TemporalType() TemporalType { return TemporalKey }
func (f *KeyFace) Frame() Frame               { return f.frame }
func (f *KeyFace) ExistsAt(t Frame) bool      { return t == f.frame }

// Cycles returns a copy of the face's boundary cycles.
func (f *KeyFace) Cycles() []KeyCycle {
	out := make([]KeyCycle, len(f.cycles))
	for i, c := range f.cycles {
		out[i] = c.clone()
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the face's sampled cycles.
func (f *KeyFace) Bounds() geom.Rect {
	if f.boundsDirty {
		var pts []geom.Vec2
		for _, c := range f.cycles {
			pts = append(pts, c.samplePolygon(f.complex)...)
		}
		f.bounds = geom.BoundingRect(pts)
		f.boundsDirty = false
	}
	return f.bounds
}

// ContainsPoint reports whether p lies inside the face, using the nonzero
// winding rule over the sampled boundary cycles.
func (f *KeyFace) ContainsPoint(p geom.Vec2) bool {
	winding := 0
	for _, c := range f.cycles {
		winding += windingNumber(c.samplePolygon(f.complex), p)
	}
	return winding != 0
}

func (f *KeyFace) invalidateGeometry() {
	f.boundsDirty = true
}

// windingNumber computes the winding number of a closed polygon around p.
func windingNumber(poly []geom.Vec2, p geom.Vec2) int {
	if len(poly) < 3 {
		return 0
	}
	w := 0
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		if a.Y <= p.Y {
			if b.Y > p.Y && b.Sub(a).Cross(p.Sub(a)) > 0 {
				w++
			}
		} else {
			if b.Y <= p.Y && b.Sub(a).Cross(p.Sub(a)) < 0 {
				w--
			}
		}
	}
	return w
}
