package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParabolicArcMatchesPolynomial(t *testing.T) {
	t.Parallel()

	samples := ParabolicArc(10, 0.1, 4.9, 2, 1, 0.1, 0.3)
	require.Len(t, samples, 10)

	for _, s := range samples {
		assert.InDelta(t, 4.9*s.T*s.T+2*s.T+1, s.Y, 1e-12)
		assert.InDelta(t, 0.1+0.3*s.T, s.X, 1e-12)
	}
}

func TestZigZagIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	a := ZigZag(20, 1.0/30, 0.5, 0.5, 0.02, 0.01, 4, 7)
	b := ZigZag(20, 1.0/30, 0.5, 0.5, 0.02, 0.01, 4, 7)
	c := ZigZag(20, 1.0/30, 0.5, 0.5, 0.02, 0.01, 4, 8)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestHoverStaysInsideRadius(t *testing.T) {
	t.Parallel()

	for _, s := range Hover(50, 1.0/30, 0.4, 0.6, 0.005, 3) {
		dx, dy := s.X-0.4, s.Y-0.6
		assert.LessOrEqual(t, dx*dx+dy*dy, 0.005*0.005+1e-15)
	}
}
