package vac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vgc/vgc-sub008/internal/geom"
)

func TestPolylineSamplerArclength(t *testing.T) {
	g := EdgeGeometry{
		Points: []geom.Vec2{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}},
		Widths: []float64{1, 2, 3},
	}
	s := PolylineSampler{}.SampleEdge(g, SamplingParams{MaxSegmentLength: 100, MaxSamples: 100})

	require.Len(t, s.Samples, 3)
	require.InDelta(t, 7, s.Length, 1e-9)
	require.InDelta(t, 0, s.Samples[0].S, 1e-9)
	require.InDelta(t, 3, s.Samples[1].S, 1e-9)
	require.InDelta(t, 7, s.Samples[2].S, 1e-9)
	require.InDelta(t, 2, s.Samples[1].Width, 1e-9)
}

func TestPolylineSamplerSubdividesLongSegments(t *testing.T) {
	g := EdgeGeometry{
		Points: []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Widths: []float64{0, 10},
	}
	s := PolylineSampler{}.SampleEdge(g, SamplingParams{MaxSegmentLength: 4, MaxSamples: 100})

	// 10 / 4 forces three subdivisions.
	require.Len(t, s.Samples, 4)
	require.InDelta(t, 10, s.Length, 1e-9)
	for i := 1; i < len(s.Samples); i++ {
		seg := s.Samples[i].Position.Sub(s.Samples[i-1].Position).Length()
		require.LessOrEqual(t, seg, 4.0+1e-9)
	}
	// Widths interpolate with the subdivisions.
	require.InDelta(t, 10.0/3, s.Samples[1].Width, 1e-9)
}

func TestPolylineSamplerClosesLoops(t *testing.T) {
	g := EdgeGeometry{
		Points: []geom.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}},
		Widths: []float64{1, 1, 1},
		Closed: true,
	}
	s := PolylineSampler{}.SampleEdge(g, SamplingParams{MaxSegmentLength: 100, MaxSamples: 100})

	require.NotEmpty(t, s.Samples)
	first := s.Samples[0].Position
	last := s.Samples[len(s.Samples)-1].Position
	require.Equal(t, first, last)
}

func TestPolylineSamplerCapsSampleCount(t *testing.T) {
	g := EdgeGeometry{
		Points: []geom.Vec2{{X: 0, Y: 0}, {X: 1000, Y: 0}},
		Widths: []float64{1, 1},
	}
	s := PolylineSampler{}.SampleEdge(g, SamplingParams{MaxSegmentLength: 1, MaxSamples: 16})
	require.Len(t, s.Samples, 16)
}

func TestEdgeSamplingIsCachedUntilGeometryChanges(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	e := c.FindKeyEdge(tri.e1)
	before := e.Sampling()
	require.NotEmpty(t, before.Samples)
	require.Equal(t, geom.Vec2{X: 0, Y: 0}, before.Samples[0].Position)

	// Moving an endpoint re-derives the edge geometry at finalize, which must
	// drop the cached sampling.
	err := Transact(c, func(op *Operations) error {
		return op.SetKeyVertexPosition(tri.v1, geom.Vec2{X: -50, Y: 0})
	})
	require.NoError(t, err)

	after := e.Sampling()
	require.Equal(t, geom.Vec2{X: -50, Y: 0}, after.Samples[0].Position)
	require.Greater(t, after.Length, before.Length)
}

// countingSampler wraps PolylineSampler and counts invocations.
type countingSampler struct {
	calls *int
}

func (s countingSampler) SampleEdge(g EdgeGeometry, params SamplingParams) EdgeSampling {
	*s.calls++
	return PolylineSampler{}.SampleEdge(g, params)
}

func TestSetSamplerInvalidatesCaches(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	e := c.FindKeyEdge(tri.e1)
	_ = e.Sampling()

	calls := 0
	c.SetSampler(countingSampler{calls: &calls}, SamplingParams{MaxSegmentLength: 2, MaxSamples: 64})

	_ = e.Sampling()
	_ = e.Sampling()
	require.Equal(t, 1, calls, "sampling cached after the first call")

	_ = c.FindKeyEdge(tri.e2).Sampling()
	require.Equal(t, 2, calls)
}

func TestEdgeBoundsCoverSampledPoints(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	e := c.FindKeyEdge(tri.e2) // (100,0) to (50,80)
	b := e.Bounds()
	require.True(t, b.Contains(geom.Vec2{X: 100, Y: 0}))
	require.True(t, b.Contains(geom.Vec2{X: 50, Y: 80}))
	require.True(t, b.Contains(geom.Vec2{X: 75, Y: 40}))
}

func TestFaceBoundsCoverSampledCycles(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	f := c.FindKeyFace(tri.face)
	b := f.Bounds()
	require.Equal(t, geom.Rect{X: 0, Y: 0, Width: 100, Height: 80}, b)
	require.True(t, b.Contains(geom.Vec2{X: 100, Y: 0}))
	require.True(t, b.Contains(geom.Vec2{X: 50, Y: 80}))

	err := Transact(c, func(op *Operations) error {
		return op.SetKeyVertexPosition(tri.v3, geom.Vec2{X: 50, Y: 200})
	})
	require.NoError(t, err)
	require.Equal(t, geom.Rect{X: 0, Y: 0, Width: 100, Height: 200}, f.Bounds())
}

func TestFaceContainsPointByWinding(t *testing.T) {
	c := NewComplex()
	tri := buildTriangle(t, c, 0)

	f := c.FindKeyFace(tri.face)
	require.True(t, f.ContainsPoint(geom.Vec2{X: 50, Y: 30}))
	require.False(t, f.ContainsPoint(geom.Vec2{X: -10, Y: -10}))
	require.False(t, f.ContainsPoint(geom.Vec2{X: 50, Y: 200}))
}
