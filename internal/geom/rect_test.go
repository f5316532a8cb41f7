package geom

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 5}
	cases := []struct {
		p    Vec2
		want bool
	}{
		{Vec2{X: 5, Y: 2}, true},
		{Vec2{X: 0, Y: 0}, true},
		{Vec2{X: 10, Y: 5}, true},
		{Vec2{X: 11, Y: 2}, false},
		{Vec2{X: 5, Y: -1}, false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 2, Height: 2}
	b := Rect{X: 5, Y: 1, Width: 2, Height: 4}
	got := a.Union(b)
	want := Rect{X: 0, Y: 0, Width: 7, Height: 5}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}

	// Empty rects do not contribute.
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %+v", got)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union = %+v", got)
	}
}

func TestBoundingRect(t *testing.T) {
	pts := []Vec2{{X: 1, Y: 4}, {X: -2, Y: 0}, {X: 3, Y: 2}}
	got := BoundingRect(pts)
	want := Rect{X: -2, Y: 0, Width: 5, Height: 4}
	if got != want {
		t.Errorf("BoundingRect = %+v, want %+v", got, want)
	}

	if got := BoundingRect(nil); got != (Rect{}) {
		t.Errorf("BoundingRect(nil) = %+v", got)
	}
}

func TestVecOps(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: -2}

	if got := a.Add(b); got != (Vec2{X: 4, Y: 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec2{X: 2, Y: 6}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Cross(b); got != -10 {
		t.Errorf("Cross = %v", got)
	}
	if got := a.Length(); got != 5 {
		t.Errorf("Length = %v", got)
	}
	if got := a.Lerp(b, 0.5); got != (Vec2{X: 2, Y: 1}) {
		t.Errorf("Lerp = %v", got)
	}
}
