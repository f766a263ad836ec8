package engine

import (
	"math"

	"github.com/inamate/sketch/internal/document"
)

type Point = document.Point

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Indices 4 and 5 carry the translation; the viewport pans by writing them.
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// RotateDegrees returns a clockwise rotation matrix in screen coordinates (y down).
func RotateDegrees(degrees float64) Matrix2D {
	rad := degrees * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * other, i.e. other is applied first.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// TransformPoint applies the matrix to p.
func (m Matrix2D) TransformPoint(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if it is singular.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}
	inv := 1.0 / det
	return Matrix2D{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

// TransformPoint applies an affine matrix to a point. It is the free-function
// form of Matrix2D.TransformPoint.
func TransformPoint(p Point, m Matrix2D) Point {
	return m.TransformPoint(p)
}

// LayerMatrix maps a layer's local coordinates (origin at the box center, unscaled
// units) to scene space:
//
//	T(center) * R(angle) * S(scaleX * flipX, scaleY * flipY)
func LayerMatrix(l *document.Layer) Matrix2D {
	sx, sy := scaleOf(l)
	if l.FlipX {
		sx = -sx
	}
	if l.FlipY {
		sy = -sy
	}
	c := LayerCenter(l)
	return Translate(c.X, c.Y).Multiply(RotateDegrees(l.Angle)).Multiply(Scale(sx, sy))
}

// RotatePoint rotates p about center by degrees (clockwise on screen).
func RotatePoint(p, center Point, degrees float64) Point {
	if degrees == 0 {
		return p
	}
	m := Translate(center.X, center.Y).Multiply(RotateDegrees(degrees)).Multiply(Translate(-center.X, -center.Y))
	return m.TransformPoint(p)
}
