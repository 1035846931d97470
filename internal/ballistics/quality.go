package ballistics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// QualityMetrics is the trajectory quality scorer's output.
//
// VelocityConsistency stores the raw coefficient of variation
// (un-inverted, like ClassificationDetails); Overall folds in its
// complement, so higher Overall is always better.
type QualityMetrics struct {
	Smoothness          float64 // 1 - stddev(accel magnitude)/scale, floored at 0
	VelocityConsistency float64 // CV of consecutive speeds, capped at 1
	PhysicsScore        float64 // R² of vertical position vs time under a quadratic
	Overall             float64 // weighted composite
}

// Scorer produces the smoothness/consistency/physics composite score.
type Scorer struct {
	cfg *config.Config
}

// NewScorer builds a scorer using a validated configuration.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the composite quality of a sample history. Too few
// samples yield the zero value.
func (s *Scorer) Score(samples []track.Sample) QualityMetrics {
	var q QualityMetrics
	if len(samples) < 3 {
		return q
	}

	if accels := accelMagnitudes(samples); len(accels) >= 2 {
		_, std := stat.MeanStdDev(accels, nil)
		q.Smoothness = clamp01(1 - std/s.cfg.QualityAccelScale)
	}

	if cv := coefficientOfVariation(consecutiveSpeeds(samples)); cv >= 0 {
		if cv > 1 {
			cv = 1
		}
		q.VelocityConsistency = cv
	}

	q.PhysicsScore = verticalPhysicsScore(samples)

	q.Overall = s.cfg.QualityWeightSmoothness*q.Smoothness +
		s.cfg.QualityWeightVelocity*(1-q.VelocityConsistency) +
		s.cfg.QualityWeightPhysics*q.PhysicsScore
	return q
}
