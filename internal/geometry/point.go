// Package geometry provides the small value types shared across the
// detection, tracking, and validation stages: points and rectangles in
// normalized frame coordinates.
//
// All coordinates are fractions of the frame dimensions in [0,1], with
// x growing right and y growing DOWN the image (video convention). A
// ball in free flight therefore accelerates toward larger y.
package geometry

import "math"

// Point is a position in normalized frame coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns the displacement vector p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Norm returns the vector magnitude of p treated as a displacement.
func (p Point) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Dot returns the dot product of p and q treated as vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// AngleBetween returns the angle in radians between displacement
// vectors p and q, in [0, π]. Zero-length vectors yield 0.
func (p Point) AngleBetween(q Point) float64 {
	np := p.Norm()
	nq := q.Norm()
	if np == 0 || nq == 0 {
		return 0
	}
	cos := p.Dot(q) / (np * nq)
	// Guard rounding before acos.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
