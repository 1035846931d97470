package ballistics

import (
	"math"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// GateDecision is the on-demand validation output for one track. The
// intermediate records are nil when the evaluating mode never reached
// the stage that produces them.
type GateDecision struct {
	Accept     bool
	Confidence float64
	Reason     string // which check rejected; "accepted" otherwise

	Validation     *ValidationResult
	Classification *MovementClassification
	Quality        *QualityMetrics
}

func rejected(reason string) GateDecision {
	return GateDecision{Reason: reason}
}

// Gate orchestrates the validator, classifier, and quality scorer
// into one accept/reject decision. The mode (legacy direct-fit or
// enhanced multi-stage) is chosen once at construction from the
// configuration; Evaluate never re-checks the flag.
type Gate struct {
	cfg       *config.Config
	validator *Validator
	classify  *Classifier
	scorer    *Scorer
	evaluate  func(samples []track.Sample) GateDecision
}

// NewGate builds a gate using a validated configuration.
func NewGate(cfg *config.Config) *Gate {
	g := &Gate{
		cfg:       cfg,
		validator: NewValidator(cfg),
		classify:  NewClassifier(cfg),
		scorer:    NewScorer(cfg),
	}
	if cfg.UseEnhanced {
		g.evaluate = g.enhanced
	} else {
		g.evaluate = g.legacy
	}
	return g
}

// Evaluate decides whether the sample history looks like a projectile
// right now. Pure function of (samples, configuration); safe to call
// concurrently against different histories.
func (g *Gate) Evaluate(samples []track.Sample) GateDecision {
	return g.evaluate(samples)
}

// legacy is the direct-fit mode: a quadratic over the windowed
// vertical series plus hard physical checks, no classifier.
func (g *Gate) legacy(samples []track.Sample) GateDecision {
	window := windowTail(samples, g.cfg.WindowSec)
	if len(window) < g.cfg.ParabolaMinPoints {
		return rejected("too few points in window")
	}

	res := g.validator.Validate(window)
	d := GateDecision{Validation: &res}

	if res.R2 < g.cfg.ParabolaMinR2 {
		d.Reason = "insufficient fit quality"
		return d
	}
	if res.Curvature != g.wantedCurvature() {
		d.Reason = "curvature inconsistent with gravity"
		return d
	}
	if verticalSpan(window) < g.cfg.MinVerticalSpan {
		d.Reason = "insufficient vertical span"
		return d
	}
	if !hasApex(window) {
		d.Reason = "no apex in window"
		return d
	}
	if peakSpeed(window) < g.cfg.MinPeakSpeed {
		d.Reason = "peak speed below minimum"
		return d
	}
	if jump, ok := lastJump(window); ok && jump > g.cfg.MaxSpatialJump {
		d.Reason = "spatial jump between last samples"
		return d
	}
	if dev, ok := lastDeviation(window); ok && dev > g.cfg.ROIRadius {
		d.Reason = "last sample outside predicted region"
		return d
	}

	d.Accept = true
	d.Confidence = res.R2
	d.Reason = "accepted"
	return d
}

// enhanced is the multi-stage mode: movement classification, quality
// scoring, and the parabolic validator must all pass, then the
// combined confidence must clear the configured floor.
func (g *Gate) enhanced(samples []track.Sample) GateDecision {
	window := windowTail(samples, g.cfg.WindowSec)
	if len(window) < g.cfg.EnhancedMinPoints {
		return rejected("too few points in window")
	}

	class := g.classify.Classify(samples)
	d := GateDecision{Classification: &class}
	if !class.IsValidProjectile(g.cfg.MinProjectileConfidence) {
		d.Reason = "movement not classified as airborne"
		return d
	}

	quality := g.scorer.Score(samples)
	d.Quality = &quality
	if quality.Overall < g.cfg.MinQuality {
		d.Reason = "trajectory quality below minimum"
		return d
	}

	res := g.validator.Validate(window)
	d.Validation = &res
	if !res.Valid {
		d.Reason = "parabolic validation failed"
		return d
	}

	if jump, ok := lastJump(window); ok && jump > g.cfg.MaxSpatialJump {
		d.Reason = "spatial jump between last samples"
		return d
	}

	combined := (class.Confidence + quality.Overall + res.R2) / 3
	if combined < g.cfg.MinCombinedConfidence {
		d.Reason = "combined confidence below minimum"
		d.Confidence = combined
		return d
	}

	d.Accept = true
	d.Confidence = combined
	d.Reason = "accepted"
	return d
}

func (g *Gate) wantedCurvature() CurvatureDirection {
	if g.cfg.GravityDirection == config.GravityUp {
		return CurvatureDownward
	}
	return CurvatureUpward
}

// verticalSpan returns the range of vertical positions in the window.
func verticalSpan(samples []track.Sample) float64 {
	minY, maxY := samples[0].P.Y, samples[0].P.Y
	for _, s := range samples[1:] {
		minY = math.Min(minY, s.P.Y)
		maxY = math.Max(maxY, s.P.Y)
	}
	return maxY - minY
}

// hasApex reports whether the discrete vertical velocity changes sign
// anywhere in the window — the ball went up and came back down.
func hasApex(samples []track.Sample) bool {
	var prev float64
	seen := false
	for i := 1; i < len(samples); i++ {
		dt := samples[i].T - samples[i-1].T
		if dt <= 0 {
			continue
		}
		vy := (samples[i].P.Y - samples[i-1].P.Y) / dt
		if math.Abs(vy) < zeroEps {
			continue
		}
		if seen && vy*prev < 0 {
			return true
		}
		prev = vy
		seen = true
	}
	return false
}

// peakSpeed returns the maximum consecutive-sample speed.
func peakSpeed(samples []track.Sample) float64 {
	var peak float64
	for _, sp := range consecutiveSpeeds(samples) {
		peak = math.Max(peak, sp)
	}
	return peak
}

// lastJump returns the displacement between the last two samples.
func lastJump(samples []track.Sample) (float64, bool) {
	n := len(samples)
	if n < 2 {
		return 0, false
	}
	return samples[n-1].P.DistanceTo(samples[n-2].P), true
}

// lastDeviation fits a quadratic to everything but the last sample
// and returns how far the last sample's vertical position falls from
// that fit's prediction. A ball that teleports out of its own
// trajectory is a detector glitch, not flight.
func lastDeviation(samples []track.Sample) (float64, bool) {
	n := len(samples)
	if n < 4 {
		return 0, false
	}
	head := samples[:n-1]
	a, b, c, ok := fitQuadratic(head)
	if !ok {
		return 0, false
	}
	dt := samples[n-1].T - head[0].T
	predicted := a*dt*dt + b*dt + c
	return math.Abs(samples[n-1].P.Y - predicted), true
}
