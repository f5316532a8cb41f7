package vac

import "github.com/vgc/vgc-sub008/internal/geom"

// EdgeGeometry is the authored control data of a key edge: a sequence of
// centerline control points with a half-width at each point.
type EdgeGeometry struct {
	Points []geom.Vec2 `json:"points"`
	Widths []float64   `json:"widths"`
	Closed bool        `json:"closed"`
}

func (g EdgeGeometry) clone() EdgeGeometry {
	out := EdgeGeometry{
		Points: make([]geom.Vec2, len(g.Points)),
		Widths: make([]float64, len(g.Widths)),
		Closed: g.Closed,
	}
	copy(out.Points, g.Points)
	copy(out.Widths, g.Widths)
	return out
}

// widthAt returns the authored width for point index i, defaulting to 1.
func (g EdgeGeometry) widthAt(i int) float64 {
	if i < len(g.Widths) {
		return g.Widths[i]
	}
	return 1
}

// EdgeSample is one point of a sampled edge centerline.
type EdgeSample struct {
	Position geom.Vec2 `json:"position"`
	Width    float64   `json:"width"`
	S        float64   `json:"s"` // cumulative arclength from the edge start
}

// EdgeSampling is the derived polyline approximation of an edge, with
// arclength parameterization.
type EdgeSampling struct {
	Samples []EdgeSample `json:"samples"`
	Length  float64      `json:"length"`
}

// SamplingParams is the opaque quality configuration handed to the sampler.
type SamplingParams struct {
	// MaxSegmentLength is the target upper bound on the distance between two
	// consecutive samples.
	MaxSegmentLength float64

	// MaxSamples caps the total number of samples per edge.
	MaxSamples int
}

// DefaultSamplingParams returns the parameters used when the caller does not
// supply any.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{MaxSegmentLength: 4, MaxSamples: 4096}
}

// Sampler turns authored edge geometry into a sampled polyline. The core
// treats it as a black box; callers may plug in their own curve library.
type Sampler interface {
	SampleEdge(g EdgeGeometry, params SamplingParams) EdgeSampling
}

// PolylineSampler is the default sampler: piecewise-linear interpolation of
// the control points, subdivided so no segment exceeds MaxSegmentLength.
type PolylineSampler struct{}

func (PolylineSampler) SampleEdge(g EdgeGeometry, params SamplingParams) EdgeSampling {
	pts := g.Points
	if g.Closed && len(pts) > 1 {
		pts = append(append([]geom.Vec2{}, pts...), pts[0])
	}
	if len(pts) == 0 {
		return EdgeSampling{}
	}

	maxLen := params.MaxSegmentLength
	if maxLen <= 0 {
		maxLen = DefaultSamplingParams().MaxSegmentLength
	}
	maxSamples := params.MaxSamples
	if maxSamples <= 0 {
		maxSamples = DefaultSamplingParams().MaxSamples
	}

	widthFor := func(i int) float64 {
		if g.Closed && i == len(pts)-1 {
			return g.widthAt(0)
		}
		return g.widthAt(i)
	}

	samples := []EdgeSample{{Position: pts[0], Width: widthFor(0), S: 0}}
	s := 0.0
	for i := 1; i < len(pts) && len(samples) < maxSamples; i++ {
		prev := pts[i-1]
		next := pts[i]
		segLen := next.Sub(prev).Length()

		subdiv := 1
		if segLen > maxLen {
			subdiv = int(segLen/maxLen) + 1
		}
		w0 := widthFor(i - 1)
		w1 := widthFor(i)
		for k := 1; k <= subdiv && len(samples) < maxSamples; k++ {
			t := float64(k) / float64(subdiv)
			p := prev.Lerp(next, t)
			s += p.Sub(samples[len(samples)-1].Position).Length()
			samples = append(samples, EdgeSample{
				Position: p,
				Width:    w0 + (w1-w0)*t,
				S:        s,
			})
		}
	}

	return EdgeSampling{Samples: samples, Length: s}
}
