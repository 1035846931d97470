package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
)

// shortCooldownConfig shrinks the cooldown so suppression cycles fit
// in a handful of simulated frames.
func shortCooldownConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default().With(&config.Overrides{
		StaticStreakMin:   config.Int(3),
		StaticCooldownSec: config.Float(0.5),
	})
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestStaticSuppressionCycle(t *testing.T) {
	t.Parallel()

	cfg := shortCooldownConfig(t)
	p := NewPostProcessor(cfg)

	const dt = 1.0 / 30
	frame := 0
	feed := func() bool {
		frameT := float64(frame) * dt
		frame++
		out := p.Process([]Detection{det(0.400, 0.600, 0.9, frameT)}, frameT)
		return len(out) == 1
	}

	// Sighting 1 sets the baseline; 2 and 3 build the streak.
	assert.True(t, feed())
	assert.True(t, feed())
	assert.True(t, feed())

	// Sighting 4 reaches the streak minimum: dropped along with
	// everything else until the cooldown lapses.
	assert.False(t, feed())
	suppressedAt := float64(frame-1) * dt
	for float64(frame)*dt < suppressedAt+0.5 {
		assert.False(t, feed(), "frame %d should be suppressed", frame)
	}

	// First frame at or past expiry readmits immediately, even though
	// the detection never moved.
	assert.True(t, feed())

	// The recount starts fresh: streak must rebuild before the next
	// suppression.
	assert.True(t, feed())
	assert.True(t, feed())
	assert.False(t, feed())
}

func TestStaticSuppressionMovementResetsStreak(t *testing.T) {
	t.Parallel()

	cfg := shortCooldownConfig(t)
	p := NewPostProcessor(cfg)

	// Alternate between two positions farther apart than epsilon but
	// within one grid cell (cell width 1/96 ≈ 0.0104, cell spanning
	// [0.39583, 0.40625)): the cell sees real movement every frame and
	// the streak never builds. Oscillation across a cell boundary is a
	// different case: each cell then sees a stationary point.
	const dt = 1.0 / 30
	for frame := 0; frame < 60; frame++ {
		frameT := float64(frame) * dt
		x := 0.396
		if frame%2 == 1 {
			x = 0.4062 // 0.0102 away, beyond epsilon 0.01, same cell
		}
		out := p.Process([]Detection{det(x, 0.600, 0.9, frameT)}, frameT)
		require.Len(t, out, 1, "moving detection dropped at frame %d", frame)
	}
}

func TestStaticSuppressionIndependentCells(t *testing.T) {
	t.Parallel()

	cfg := shortCooldownConfig(t)
	p := NewPostProcessor(cfg)

	// A stationary object in one cell must not suppress a mover
	// elsewhere.
	const dt = 1.0 / 30
	var keptMoving int
	for frame := 0; frame < 12; frame++ {
		frameT := float64(frame) * dt
		mover := det(0.1+float64(frame)*0.03, 0.2, 0.8, frameT)
		parked := det(0.700, 0.700, 0.9, frameT)
		out := p.Process([]Detection{parked, mover}, frameT)
		for _, d := range out {
			if d.Confidence == 0.8 {
				keptMoving++
			}
		}
	}
	assert.Equal(t, 12, keptMoving)

	m := p.Metrics()
	assert.Positive(t, m.Suppressed)
}

func TestStaticCellPruneBoundsMap(t *testing.T) {
	t.Parallel()

	cfg := config.Default().With(&config.Overrides{
		StaticCooldownSec: config.Float(0.2),
		StaticCellTTLSec:  config.Float(1.0),
	})
	require.NoError(t, cfg.Validate())
	p := NewPostProcessor(cfg)

	// Touch many cells once, then advance time past the TTL with
	// activity in a single cell.
	for i := 0; i < 50; i++ {
		x := 0.01 + float64(i)*0.019
		p.Process([]Detection{det(x, 0.5, 0.9, 0)}, 0)
	}
	require.NotEmpty(t, p.static.cells)

	p.Process([]Detection{det(0.5, 0.9, 0.9, 2.0)}, 2.0)
	assert.Len(t, p.static.cells, 1)
}
