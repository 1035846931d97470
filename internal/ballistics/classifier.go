package ballistics

import (
	"math"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// MovementType is the classifier's motion variant.
type MovementType string

const (
	MovementAirborne MovementType = "airborne" // free flight under gravity
	MovementCarried  MovementType = "carried"  // held, erratic motion
	MovementRolling  MovementType = "rolling"  // smooth ground-contact motion
	MovementUnknown  MovementType = "unknown"
)

// ClassificationDetails holds the five descriptive metrics the
// classifier derives from a track's history.
//
// VelocityConsistency stores the RAW coefficient of variation capped
// at 1 — higher means LESS consistent. This is the opposite
// convention from ValidationResult.VelocityConsistency, which stores
// 1−CV; callers must track which convention each record uses.
type ClassificationDetails struct {
	VelocityConsistency float64 // CV of consecutive speeds, capped at 1
	AccelPattern        float64 // 1 - normalized CV of accel magnitudes, floored at 0
	Smoothness          float64 // 1 - mean turning angle / π
	VerticalRatio       float64 // 2·|Δy| / net displacement, capped at 1
	TimeSpanSec         float64 // elapsed time over the history
}

// MovementClassification is the classifier's output. The zero value
// is the neutral unknown/zero-confidence result.
type MovementClassification struct {
	Type       MovementType
	Confidence float64
	Details    ClassificationDetails
}

// IsValidProjectile reports whether the classification alone
// qualifies the track as an airborne ball at the given confidence
// floor (Config.MinProjectileConfidence).
func (m MovementClassification) IsValidProjectile(minConfidence float64) bool {
	return m.Type == MovementAirborne && m.Confidence >= minConfidence
}

// Classifier derives motion metrics over a track's full history and
// classifies it airborne / carried / rolling / unknown by priority
// rules.
type Classifier struct {
	cfg *config.Config
}

// NewClassifier builds a classifier using a validated configuration.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify runs the rule chain; the first matching rule wins.
// Confidence combines the rule's supporting metrics, then is scaled
// down for trajectories shorter than the optimal time span, because a
// handful of frames cannot distinguish a serve from a wobble.
func (c *Classifier) Classify(samples []track.Sample) MovementClassification {
	out := MovementClassification{Type: MovementUnknown}
	if len(samples) < c.cfg.ClassifyMinPoints {
		return out
	}

	d := c.details(samples)
	out.Details = d

	physics := verticalPhysicsScore(samples)
	timeScale := 1.0
	if d.TimeSpanSec < c.cfg.OptimalTimeSpanSec {
		timeScale = d.TimeSpanSec / c.cfg.OptimalTimeSpanSec
	}

	switch {
	case physics >= c.cfg.AirbornePhysicsMin &&
		d.AccelPattern >= c.cfg.AirborneAccelMin &&
		d.Smoothness >= c.cfg.AirborneSmoothnessMin:
		out.Type = MovementAirborne
		out.Confidence = (physics + d.AccelPattern + d.Smoothness) / 3

	case d.VerticalRatio < c.cfg.RollingVerticalMax &&
		d.Smoothness >= c.cfg.RollingSmoothnessMin &&
		d.AccelPattern < c.cfg.RollingAccelMax:
		out.Type = MovementRolling
		out.Confidence = (d.Smoothness + (1 - d.VerticalRatio)) / 2

	case d.VelocityConsistency >= c.cfg.CarriedInconsistencyMin ||
		d.Smoothness < c.cfg.CarriedSmoothnessMax:
		out.Type = MovementCarried
		out.Confidence = (d.VelocityConsistency + (1 - d.Smoothness)) / 2

	default:
		out.Confidence = 0.2
	}

	out.Confidence = clamp01(out.Confidence * timeScale)
	return out
}

// details computes the five descriptive metrics.
func (c *Classifier) details(samples []track.Sample) ClassificationDetails {
	var d ClassificationDetails

	if cv := coefficientOfVariation(consecutiveSpeeds(samples)); cv >= 0 {
		d.VelocityConsistency = math.Min(cv, 1)
	}

	d.AccelPattern = c.accelPattern(samples)

	if angle := meanTurningAngle(samples); angle >= 0 {
		d.Smoothness = clamp01(1 - angle/math.Pi)
	}

	first, last := samples[0], samples[len(samples)-1]
	disp := last.P.Sub(first.P)
	if net := disp.Norm(); net > zeroEps {
		d.VerticalRatio = math.Min(2*math.Abs(disp.Y)/net, 1)
	}

	d.TimeSpanSec = last.T - first.T
	return d
}

// accelPattern scores how constant the acceleration magnitude is: a
// projectile holds steady gravity, so its accel CV sits near zero. A
// track with effectively no acceleration (constant velocity) scores
// 0 — there is no acceleration pattern to credit.
func (c *Classifier) accelPattern(samples []track.Sample) float64 {
	accels := accelMagnitudes(samples)
	cv := coefficientOfVariation(accels)
	if cv < 0 {
		return 0
	}
	return clamp01(1 - cv/c.cfg.AccelCVScale)
}
