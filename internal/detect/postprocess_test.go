package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/geometry"
)

func det(x, y, conf, t float64) Detection {
	return Detection{
		Box:        geometry.Rect{X: x - 0.01, Y: y - 0.01, W: 0.02, H: 0.02},
		Confidence: conf,
		T:          t,
	}
}

func TestMergeKeepsHighestConfidenceDuplicate(t *testing.T) {
	t.Parallel()

	p := NewPostProcessor(config.Default())
	got := p.Process([]Detection{
		det(0.500, 0.500, 0.60, 0),
		det(0.505, 0.502, 0.90, 0), // same object, better box
		det(0.800, 0.300, 0.70, 0), // distinct object
	}, 0)

	require.Len(t, got, 2)
	assert.InDelta(t, 0.90, got[0].Confidence, 1e-12)
	assert.InDelta(t, 0.70, got[1].Confidence, 1e-12)
}

func TestMergeOrderIsDeterministic(t *testing.T) {
	t.Parallel()

	// Equal confidence: ties break on center x, so input order must
	// not matter.
	a := det(0.2, 0.5, 0.8, 0)
	b := det(0.7, 0.5, 0.8, 0)

	p1 := NewPostProcessor(config.Default())
	p2 := NewPostProcessor(config.Default())
	got1 := p1.Process([]Detection{a, b}, 0)
	got2 := p2.Process([]Detection{b, a}, 0)

	require.Len(t, got1, 2)
	require.Equal(t, got1, got2)
	assert.InDelta(t, 0.2, got1[0].Center().X, 1e-9)
}

func TestMergeRadiusBoundary(t *testing.T) {
	t.Parallel()

	cfg := config.Default() // merge radius 0.02
	p := NewPostProcessor(cfg)

	// Just inside the radius merges; beyond it survives. The inside
	// coordinate is dyadic so the 0.02 comparison is not left to one
	// ulp of rounding.
	got := p.Process([]Detection{
		det(0.500, 0.500, 0.9, 0),
		det(0.51953125, 0.500, 0.8, 0), // distance 0.01953125
		det(0.521, 0.500, 0.7, 0),      // distance 0.021 from first
	}, 0)

	require.Len(t, got, 2)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-12)
	assert.InDelta(t, 0.7, got[1].Confidence, 1e-12)
}

func TestProcessEmptyFrame(t *testing.T) {
	t.Parallel()

	p := NewPostProcessor(config.Default())
	assert.Empty(t, p.Process(nil, 0))
	assert.Empty(t, p.Process([]Detection{}, 1.0/30))
}

func TestProcessMetrics(t *testing.T) {
	t.Parallel()

	p := NewPostProcessor(config.Default())
	p.Process([]Detection{
		det(0.500, 0.500, 0.6, 0),
		det(0.505, 0.500, 0.9, 0),
	}, 0)
	p.Process([]Detection{det(0.3, 0.3, 0.8, 1.0/30)}, 1.0/30)

	m := p.Metrics()
	assert.Equal(t, 2, m.Frames)
	assert.Equal(t, 3, m.In)
	assert.Equal(t, 1, m.MergedOut)
	assert.Equal(t, 0, m.Suppressed)
	assert.Equal(t, 2, m.Kept)
}
