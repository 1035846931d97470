package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointDistanceTo(t *testing.T) {
	t.Parallel()

	a := Point{X: 0, Y: 0}
	b := Point{X: 0.3, Y: 0.4}
	assert.InDelta(t, 0.5, a.DistanceTo(b), 1e-12)
	assert.InDelta(t, 0.5, b.DistanceTo(a), 1e-12)
	assert.Zero(t, a.DistanceTo(a))
}

func TestPointAngleBetween(t *testing.T) {
	t.Parallel()

	right := Point{X: 1, Y: 0}
	up := Point{X: 0, Y: 1}
	left := Point{X: -1, Y: 0}

	assert.InDelta(t, math.Pi/2, right.AngleBetween(up), 1e-12)
	assert.InDelta(t, math.Pi, right.AngleBetween(left), 1e-12)
	assert.InDelta(t, 0, right.AngleBetween(right), 1e-12)

	// Zero-length displacement has no defined angle; treated as 0.
	assert.Zero(t, right.AngleBetween(Point{}))
}

func TestPointIsFinite(t *testing.T) {
	t.Parallel()

	assert.True(t, Point{X: 0.5, Y: 0.5}.IsFinite())
	assert.False(t, Point{X: math.NaN(), Y: 0}.IsFinite())
	assert.False(t, Point{X: 0, Y: math.Inf(1)}.IsFinite())
}

func TestRectCenter(t *testing.T) {
	t.Parallel()

	r := Rect{X: 0.2, Y: 0.4, W: 0.2, H: 0.1}
	c := r.Center()
	assert.InDelta(t, 0.3, c.X, 1e-12)
	assert.InDelta(t, 0.45, c.Y, 1e-12)
}

