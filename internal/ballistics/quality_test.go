package ballistics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/testutil"
)

func TestQualityHighForCleanArc(t *testing.T) {
	t.Parallel()

	s := NewScorer(config.Default())
	samples := toSamples(testutil.ParabolicArc(31, 1.0/30, 0.375, -0.75, 0.8, 0.1, 0.5))

	q := s.Score(samples)
	assert.Greater(t, q.Smoothness, 0.9, "constant acceleration has near-zero accel stddev")
	assert.Greater(t, q.PhysicsScore, 0.95)
	assert.Less(t, q.VelocityConsistency, 0.3)
	assert.Greater(t, q.Overall, 0.8)
}

func TestQualityFlatLineScoresNoPhysics(t *testing.T) {
	t.Parallel()

	s := NewScorer(config.Default())
	samples := toSamples(testutil.StraightLine(31, 1.0/30, 0.1, 0.8, 0.3, 0.0))

	q := s.Score(samples)
	assert.InDelta(t, 1.0, q.Smoothness, 1e-9)
	assert.Zero(t, q.PhysicsScore)
	// Overall = (1 + (1-0) + 0) / 3 under default equal weights.
	assert.InDelta(t, 2.0/3, q.Overall, 0.02)
}

func TestQualityZeroOnTooFewSamples(t *testing.T) {
	t.Parallel()

	s := NewScorer(config.Default())
	q := s.Score(toSamples(testutil.StraightLine(2, 1.0/30, 0.1, 0.8, 0.3, 0.0)))
	assert.Zero(t, q)
}

func TestQualityWeightsShiftOverall(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.QualityWeightSmoothness = 0.0
	cfg.QualityWeightVelocity = 0.0
	cfg.QualityWeightPhysics = 1.0

	s := NewScorer(cfg)
	samples := toSamples(testutil.StraightLine(31, 1.0/30, 0.1, 0.8, 0.3, 0.0))

	q := s.Score(samples)
	assert.Zero(t, q.Overall, "physics-only weighting of a flat line")
}
