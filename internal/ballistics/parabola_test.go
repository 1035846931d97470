package ballistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/geometry"
	"github.com/bwierzbo/bumpsetcut-core/internal/testutil"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

func toSamples(in []testutil.Sample) []track.Sample {
	out := make([]track.Sample, len(in))
	for i, s := range in {
		out[i] = track.Sample{P: geometry.Point{X: s.X, Y: s.Y}, T: s.T}
	}
	return out
}

func TestParabolicFitRoundTrip(t *testing.T) {
	t.Parallel()

	v := NewValidator(config.Default())

	// 10 exact points of y = 4.9t² + 2t + 1, gravity-down convention.
	samples := toSamples(testutil.ParabolicArc(10, 1.0/30, 4.9, 2, 1, 0.1, 1.0))
	res := v.Validate(samples)

	assert.Greater(t, res.R2, 0.98)
	assert.Equal(t, CurvatureUpward, res.Curvature)
	assert.True(t, res.Valid)
	assert.InDelta(t, 4.9, res.A, 1e-6)
	assert.InDelta(t, 2.0, res.B, 1e-6)
	assert.InDelta(t, 1.0, res.C, 1e-6)
	assert.GreaterOrEqual(t, res.VelocityConsistency, 0.5)
}

func TestFlatLineFailsValidation(t *testing.T) {
	t.Parallel()

	v := NewValidator(config.Default())

	// Constant vertical position: the degenerate-variance rule scores
	// R² = 0, not the trivially-perfect 1.
	samples := toSamples(testutil.StraightLine(10, 1.0/30, 0.1, 0.5, 0.3, 0.0))
	res := v.Validate(samples)

	assert.Less(t, res.R2, 0.7)
	assert.False(t, res.Valid)
	assert.Equal(t, CurvatureInvalid, res.Curvature)
}

func TestSlopedLineFailsOnCurvature(t *testing.T) {
	t.Parallel()

	v := NewValidator(config.Default())

	// A sloped line fits a quadratic exactly (a ≈ 0), so it must be
	// rejected on curvature magnitude, not fit quality.
	samples := toSamples(testutil.StraightLine(10, 1.0/30, 0.1, 0.2, 0.3, 0.4))
	res := v.Validate(samples)

	assert.False(t, res.Valid)
	assert.Equal(t, CurvatureInvalid, res.Curvature)
}

func TestGravityUpFlipsWantedCurvature(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.GravityDirection = config.GravityUp
	v := NewValidator(cfg)

	// Positive-a parabola matches gravity down, so under gravity up it
	// must fail; its mirror must pass.
	down := toSamples(testutil.ParabolicArc(10, 1.0/30, 4.9, 2, 1, 0.1, 1.0))
	assert.False(t, v.Validate(down).Valid)

	up := toSamples(testutil.ParabolicArc(10, 1.0/30, -4.9, -2, 5, 0.1, 1.0))
	res := v.Validate(up)
	assert.Equal(t, CurvatureDownward, res.Curvature)
	assert.True(t, res.Valid)
}

func TestValidatorNeutralOnTooFewSamples(t *testing.T) {
	t.Parallel()

	v := NewValidator(config.Default())
	samples := toSamples(testutil.ParabolicArc(5, 1.0/30, 4.9, 2, 1, 0.1, 1.0))

	res := v.Validate(samples)
	require.False(t, res.Valid)
	assert.Zero(t, res.R2)
	assert.Equal(t, CurvatureInvalid, res.Curvature)
}

func TestFitQuadraticDegenerateTimestamps(t *testing.T) {
	t.Parallel()

	// All samples at one instant: rank-deficient design matrix must
	// report no fit, not NaN coefficients.
	samples := []track.Sample{
		{P: geometry.Point{X: 0.1, Y: 0.2}, T: 1},
		{P: geometry.Point{X: 0.2, Y: 0.3}, T: 1},
		{P: geometry.Point{X: 0.3, Y: 0.4}, T: 1},
		{P: geometry.Point{X: 0.4, Y: 0.5}, T: 1},
	}
	_, _, _, ok := fitQuadratic(samples)
	assert.False(t, ok)
}
