package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec2) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func matNear(a, b Mat2D) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= eps {
			return false
		}
	}
	return true
}

func TestIdentityTransform(t *testing.T) {
	p := Vec2{X: 3, Y: -7}
	if got := Identity().Transform(p); got != p {
		t.Errorf("Identity().Transform(%v) = %v", p, got)
	}
}

func TestTranslateThenScale(t *testing.T) {
	// Multiply applies the right operand first.
	m := Scale(2, 2).Multiply(Translate(1, 0))
	got := m.Transform(Vec2{X: 1, Y: 1})
	want := Vec2{X: 4, Y: 2}
	if !vecNear(got, want) {
		t.Errorf("Transform = %v, want %v", got, want)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	m := Rotate(math.Pi / 2)
	got := m.Transform(Vec2{X: 1, Y: 0})
	if !vecNear(got, Vec2{X: 0, Y: 1}) {
		t.Errorf("quarter turn of (1,0) = %v", got)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Translate(5, -3).Multiply(Rotate(0.7)).Multiply(Scale(2, 0.5))
	if !matNear(m.Multiply(m.Invert()), Identity()) {
		t.Errorf("m * m^-1 = %v, want identity", m.Multiply(m.Invert()))
	}
	if !matNear(m.Invert().Multiply(m), Identity()) {
		t.Errorf("m^-1 * m = %v, want identity", m.Invert().Multiply(m))
	}
}

func TestInvertSingularFallsBackToIdentity(t *testing.T) {
	if got := Scale(0, 1).Invert(); got != Identity() {
		t.Errorf("Invert of singular matrix = %v", got)
	}
}

func TestDeterminant(t *testing.T) {
	if got := Scale(2, 3).Determinant(); math.Abs(got-6) >= eps {
		t.Errorf("Determinant = %v, want 6", got)
	}
	if got := Rotate(1.3).Determinant(); math.Abs(got-1) >= eps {
		t.Errorf("rotation determinant = %v, want 1", got)
	}
}

func TestTransformRectIsBoundingBox(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 2, Height: 2}
	got := Rotate(math.Pi / 4).TransformRect(r)

	d := 2 * math.Sqrt2
	if math.Abs(got.Width-d) >= eps || math.Abs(got.Height-d) >= eps {
		t.Errorf("rotated unit square bbox = %+v", got)
	}
}
