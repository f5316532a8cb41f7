package geom

import "math"

// Mat2D is a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where a, d carry scale, b, c carry skew/rotation and e, f carry translation.
type Mat2D [6]float64

// Identity returns the identity matrix.
func Identity() Mat2D {
	return Mat2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Mat2D {
	return Mat2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Mat2D {
	return Mat2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Mat2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Mat2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other.
// This applies 'other' first, then 'm'.
func (m Mat2D) Multiply(other Mat2D) Mat2D {
	return Mat2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Transform applies the matrix to a point.
func (m Mat2D) Transform(p Vec2) Vec2 {
	return Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Mat2D) TransformRect(r Rect) Rect {
	p0 := m.Transform(Vec2{r.X, r.Y})
	p1 := m.Transform(Vec2{r.X + r.Width, r.Y})
	p2 := m.Transform(Vec2{r.X + r.Width, r.Y + r.Height})
	p3 := m.Transform(Vec2{r.X, r.Y + r.Height})

	minX := min(p0.X, min(p1.X, min(p2.X, p3.X)))
	minY := min(p0.Y, min(p1.Y, min(p2.Y, p3.Y)))
	maxX := max(p0.X, max(p1.X, max(p2.X, p3.X)))
	maxY := max(p0.Y, max(p1.Y, max(p2.Y, p3.Y)))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Determinant returns the determinant of the matrix.
func (m Mat2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Mat2D) Invert() Mat2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}

	invDet := 1.0 / det
	return Mat2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}
}
