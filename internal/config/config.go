// Package config defines the session configuration record shared by
// the detection, tracking, and validation stages.
//
// A Config is created once at session start, validated once before any
// frame is processed, and never mutated afterwards. Parameter sweeps
// derive variants through With, which copies the record and applies a
// sparse Overrides set, so the base Config stays immutable.
package config

import (
	"errors"
	"fmt"
)

// Gravity direction values for Config.GravityDirection. Image
// coordinates grow down the frame, so "down" means vertical position
// increases under gravity.
const (
	GravityDown = "down"
	GravityUp   = "up"
)

// ErrInvalid is wrapped by every validation failure so callers can
// classify configuration errors with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every tunable threshold of the analytical core, grouped
// by concern. All distances are normalized frame units in [0,1], all
// speeds are units/second, and all fields suffixed Sec are seconds.
type Config struct {
	// Detection post-processing.
	MergeRadius       float64 `json:"merge_radius"`        // same-frame dedup radius
	StaticGridSize    int     `json:"static_grid_size"`    // suppression grid cells per axis
	StaticEpsilon     float64 `json:"static_epsilon"`      // max movement still counted as stationary
	StaticStreakMin   int     `json:"static_streak_min"`   // stationary sightings before cooldown
	StaticCooldownSec float64 `json:"static_cooldown_sec"`
	StaticCellTTLSec  float64 `json:"static_cell_ttl_sec"` // idle cells older than this are pruned
	SamplingRate      float64 `json:"sampling_rate"`       // fraction of frames run through detection

	// Tracking association.
	GateSigma          float64 `json:"gate_sigma"` // Mahalanobis gate, standard deviations
	ProcessNoisePos    float64 `json:"process_noise_pos"`
	ProcessNoiseVel    float64 `json:"process_noise_vel"`
	MeasurementNoise   float64 `json:"measurement_noise"` // position observation variance
	InitPosVariance    float64 `json:"init_pos_variance"`
	InitVelVariance    float64 `json:"init_vel_variance"`
	MaxPredictionDtSec float64 `json:"max_prediction_dt_sec"`
	MaxSpeed           float64 `json:"max_speed"`
	MaxCovarianceDiag  float64 `json:"max_covariance_diag"`
	HistoryCap         int     `json:"history_cap"` // sliding-window sample capacity per track
	IdleTimeoutSec     float64 `json:"idle_timeout_sec"`
	SpawnRadius        float64 `json:"spawn_radius"`  // no new track inside this radius of an aged track
	SpawnMinAge        int     `json:"spawn_min_age"` // samples before a track suppresses spawns

	// Legacy physics gating.
	WindowSec         float64 `json:"window_sec"` // gate evaluates the last WindowSec of samples
	ParabolaMinPoints int     `json:"parabola_min_points"`
	ParabolaMinR2     float64 `json:"parabola_min_r2"`
	CurvatureMin      float64 `json:"curvature_min"` // min |a| of the quadratic, units/s^2
	GravityDirection  string  `json:"gravity_direction"`
	MinVerticalSpan   float64 `json:"min_vertical_span"`
	MinPeakSpeed      float64 `json:"min_peak_speed"`
	MaxSpatialJump    float64 `json:"max_spatial_jump"` // max last-two-sample displacement
	ROIRadius         float64 `json:"roi_radius"`       // max last-sample deviation from prior fit

	// Enhanced physics.
	UseEnhanced             bool    `json:"use_enhanced"`
	EnhancedMinPoints       int     `json:"enhanced_min_points"`
	MinQuality              float64 `json:"min_quality"`
	MinCombinedConfidence   float64 `json:"min_combined_confidence"`
	MinProjectileConfidence float64 `json:"min_projectile_confidence"`

	// Classification thresholds.
	ClassifyMinPoints       int     `json:"classify_min_points"`
	AirbornePhysicsMin      float64 `json:"airborne_physics_min"`
	AirborneAccelMin        float64 `json:"airborne_accel_min"`
	AirborneSmoothnessMin   float64 `json:"airborne_smoothness_min"`
	RollingVerticalMax      float64 `json:"rolling_vertical_max"`
	RollingSmoothnessMin    float64 `json:"rolling_smoothness_min"`
	RollingAccelMax         float64 `json:"rolling_accel_max"`
	CarriedInconsistencyMin float64 `json:"carried_inconsistency_min"`
	CarriedSmoothnessMax    float64 `json:"carried_smoothness_max"`
	OptimalTimeSpanSec      float64 `json:"optimal_time_span_sec"`
	AccelCVScale            float64 `json:"accel_cv_scale"` // CV normalization for the acceleration pattern

	// Quality scoring.
	QualityWeightSmoothness float64 `json:"quality_weight_smoothness"`
	QualityWeightVelocity   float64 `json:"quality_weight_velocity"`
	QualityWeightPhysics    float64 `json:"quality_weight_physics"`
	QualityAccelScale       float64 `json:"quality_accel_scale"` // accel-stddev to smoothness scale

	// Rally timing. Consumed by the rally-boundary machine outside
	// this core; carried here so one record configures a session.
	RallyStartConfidence float64 `json:"rally_start_confidence"`
	RallyConfirmFrames   int     `json:"rally_confirm_frames"`
	RallyEndTimeoutSec   float64 `json:"rally_end_timeout_sec"`
	RallyPrePadSec       float64 `json:"rally_pre_pad_sec"`
	RallyPostPadSec      float64 `json:"rally_post_pad_sec"`
	RallyMinDurationSec  float64 `json:"rally_min_duration_sec"`
	RallyMergeGapSec     float64 `json:"rally_merge_gap_sec"`
}

// Default returns the baseline configuration tuned for 30 Hz broadcast
// volleyball footage in normalized coordinates.
func Default() *Config {
	return &Config{
		MergeRadius:       0.02,
		StaticGridSize:    96,
		StaticEpsilon:     0.01,
		StaticStreakMin:   8,
		StaticCooldownSec: 10,
		StaticCellTTLSec:  30,
		SamplingRate:      1.0,

		GateSigma:          3.0,
		ProcessNoisePos:    0.005,
		ProcessNoiseVel:    0.05,
		MeasurementNoise:   0.0001,
		InitPosVariance:    0.001,
		InitVelVariance:    1.0,
		MaxPredictionDtSec: 0.5,
		MaxSpeed:           5.0,
		MaxCovarianceDiag:  10.0,
		HistoryCap:         120,
		IdleTimeoutSec:     2.0,
		SpawnRadius:        0.05,
		SpawnMinAge:        3,

		WindowSec:         1.2,
		ParabolaMinPoints: 8,
		ParabolaMinR2:     0.80,
		CurvatureMin:      0.2,
		GravityDirection:  GravityDown,
		MinVerticalSpan:   0.04,
		MinPeakSpeed:      0.5,
		MaxSpatialJump:    0.12,
		ROIRadius:         0.08,

		UseEnhanced:             true,
		EnhancedMinPoints:       10,
		MinQuality:              0.5,
		MinCombinedConfidence:   0.65,
		MinProjectileConfidence: 0.7,

		ClassifyMinPoints:       5,
		AirbornePhysicsMin:      0.60,
		AirborneAccelMin:        0.45,
		AirborneSmoothnessMin:   0.55,
		RollingVerticalMax:      0.30,
		RollingSmoothnessMin:    0.60,
		RollingAccelMax:         0.45,
		CarriedInconsistencyMin: 0.55,
		CarriedSmoothnessMax:    0.55,
		OptimalTimeSpanSec:      1.0,
		AccelCVScale:            2.0,

		QualityWeightSmoothness: 1.0 / 3,
		QualityWeightVelocity:   1.0 / 3,
		QualityWeightPhysics:    1.0 / 3,
		QualityAccelScale:       1.5,

		RallyStartConfidence: 0.6,
		RallyConfirmFrames:   4,
		RallyEndTimeoutSec:   1.5,
		RallyPrePadSec:       2.0,
		RallyPostPadSec:      1.5,
		RallyMinDurationSec:  3.0,
		RallyMergeGapSec:     2.0,
	}
}

// Validate checks every threshold once at session start. It returns a
// descriptive error wrapping ErrInvalid on the first violation; the
// hot path assumes a validated Config and never re-checks.
func (c *Config) Validate() error {
	if c.MergeRadius <= 0 || c.MergeRadius >= 0.5 {
		return fmt.Errorf("merge_radius must be in (0, 0.5), got %g: %w", c.MergeRadius, ErrInvalid)
	}
	if c.StaticGridSize < 2 {
		return fmt.Errorf("static_grid_size must be at least 2, got %d: %w", c.StaticGridSize, ErrInvalid)
	}
	if c.StaticEpsilon <= 0 || c.StaticEpsilon >= 0.5 {
		return fmt.Errorf("static_epsilon must be in (0, 0.5), got %g: %w", c.StaticEpsilon, ErrInvalid)
	}
	if c.StaticStreakMin < 1 {
		return fmt.Errorf("static_streak_min must be at least 1, got %d: %w", c.StaticStreakMin, ErrInvalid)
	}
	if c.StaticCooldownSec <= 0 {
		return fmt.Errorf("static_cooldown_sec must be positive, got %g: %w", c.StaticCooldownSec, ErrInvalid)
	}
	if c.StaticCellTTLSec < c.StaticCooldownSec {
		return fmt.Errorf("static_cell_ttl_sec (%g) must be at least static_cooldown_sec (%g): %w",
			c.StaticCellTTLSec, c.StaticCooldownSec, ErrInvalid)
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("sampling rate must be in [0,1], got %g: %w", c.SamplingRate, ErrInvalid)
	}

	if c.GateSigma <= 0 {
		return fmt.Errorf("gate_sigma must be positive, got %g: %w", c.GateSigma, ErrInvalid)
	}
	if c.ProcessNoisePos <= 0 || c.ProcessNoiseVel <= 0 {
		return fmt.Errorf("process noise terms must be positive, got pos %g vel %g: %w",
			c.ProcessNoisePos, c.ProcessNoiseVel, ErrInvalid)
	}
	if c.MeasurementNoise <= 0 {
		return fmt.Errorf("measurement_noise must be positive, got %g: %w", c.MeasurementNoise, ErrInvalid)
	}
	if c.InitPosVariance <= 0 || c.InitVelVariance <= 0 {
		return fmt.Errorf("initial variances must be positive, got pos %g vel %g: %w",
			c.InitPosVariance, c.InitVelVariance, ErrInvalid)
	}
	if c.MaxPredictionDtSec <= 0 {
		return fmt.Errorf("max_prediction_dt_sec must be positive, got %g: %w", c.MaxPredictionDtSec, ErrInvalid)
	}
	if c.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %g: %w", c.MaxSpeed, ErrInvalid)
	}
	if c.MaxCovarianceDiag <= 0 {
		return fmt.Errorf("max_covariance_diag must be positive, got %g: %w", c.MaxCovarianceDiag, ErrInvalid)
	}
	if c.HistoryCap < 3 {
		return fmt.Errorf("history_cap must be at least 3, got %d: %w", c.HistoryCap, ErrInvalid)
	}
	if c.HistoryCap < c.ParabolaMinPoints {
		return fmt.Errorf("history_cap (%d) must hold at least parabola_min_points (%d): %w",
			c.HistoryCap, c.ParabolaMinPoints, ErrInvalid)
	}
	if c.IdleTimeoutSec <= 0 {
		return fmt.Errorf("idle_timeout_sec must be positive, got %g: %w", c.IdleTimeoutSec, ErrInvalid)
	}
	if c.SpawnRadius < 0 {
		return fmt.Errorf("spawn_radius must be non-negative, got %g: %w", c.SpawnRadius, ErrInvalid)
	}
	if c.SpawnMinAge < 1 {
		return fmt.Errorf("spawn_min_age must be at least 1, got %d: %w", c.SpawnMinAge, ErrInvalid)
	}

	if c.WindowSec <= 0 {
		return fmt.Errorf("window_sec must be positive, got %g: %w", c.WindowSec, ErrInvalid)
	}
	if c.ParabolaMinPoints < 3 {
		return fmt.Errorf("parabola_min_points must be at least 3, got %d: %w", c.ParabolaMinPoints, ErrInvalid)
	}
	if c.ParabolaMinR2 < 0 || c.ParabolaMinR2 > 1 {
		return fmt.Errorf("parabola_min_r2 must be in [0,1], got %g: %w", c.ParabolaMinR2, ErrInvalid)
	}
	if c.CurvatureMin <= 0 {
		return fmt.Errorf("curvature_min must be positive, got %g: %w", c.CurvatureMin, ErrInvalid)
	}
	if c.GravityDirection != GravityDown && c.GravityDirection != GravityUp {
		return fmt.Errorf("gravity_direction must be %q or %q, got %q: %w",
			GravityDown, GravityUp, c.GravityDirection, ErrInvalid)
	}
	if c.MinVerticalSpan < 0 {
		return fmt.Errorf("min_vertical_span must be non-negative, got %g: %w", c.MinVerticalSpan, ErrInvalid)
	}
	if c.MinPeakSpeed < 0 {
		return fmt.Errorf("min_peak_speed must be non-negative, got %g: %w", c.MinPeakSpeed, ErrInvalid)
	}
	if c.MaxSpatialJump <= 0 {
		return fmt.Errorf("max_spatial_jump must be positive, got %g: %w", c.MaxSpatialJump, ErrInvalid)
	}
	if c.ROIRadius <= 0 {
		return fmt.Errorf("roi_radius must be positive, got %g: %w", c.ROIRadius, ErrInvalid)
	}

	if c.EnhancedMinPoints < 3 {
		return fmt.Errorf("enhanced_min_points must be at least 3, got %d: %w", c.EnhancedMinPoints, ErrInvalid)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"min_quality", c.MinQuality},
		{"min_combined_confidence", c.MinCombinedConfidence},
		{"min_projectile_confidence", c.MinProjectileConfidence},
		{"airborne_physics_min", c.AirbornePhysicsMin},
		{"airborne_accel_min", c.AirborneAccelMin},
		{"airborne_smoothness_min", c.AirborneSmoothnessMin},
		{"rolling_vertical_max", c.RollingVerticalMax},
		{"rolling_smoothness_min", c.RollingSmoothnessMin},
		{"rolling_accel_max", c.RollingAccelMax},
		{"carried_inconsistency_min", c.CarriedInconsistencyMin},
		{"carried_smoothness_max", c.CarriedSmoothnessMax},
		{"rally_start_confidence", c.RallyStartConfidence},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g: %w", f.name, f.value, ErrInvalid)
		}
	}
	if c.ClassifyMinPoints < 3 {
		return fmt.Errorf("classify_min_points must be at least 3, got %d: %w", c.ClassifyMinPoints, ErrInvalid)
	}
	if c.OptimalTimeSpanSec <= 0 {
		return fmt.Errorf("optimal_time_span_sec must be positive, got %g: %w", c.OptimalTimeSpanSec, ErrInvalid)
	}
	if c.AccelCVScale <= 0 {
		return fmt.Errorf("accel_cv_scale must be positive, got %g: %w", c.AccelCVScale, ErrInvalid)
	}

	if c.QualityWeightSmoothness < 0 || c.QualityWeightVelocity < 0 || c.QualityWeightPhysics < 0 {
		return fmt.Errorf("quality weights must be non-negative, got %g/%g/%g: %w",
			c.QualityWeightSmoothness, c.QualityWeightVelocity, c.QualityWeightPhysics, ErrInvalid)
	}
	weightSum := c.QualityWeightSmoothness + c.QualityWeightVelocity + c.QualityWeightPhysics
	if weightSum < 0.99 || weightSum > 1.01 {
		return fmt.Errorf("quality weights must sum to 1.0, got %.3f: %w", weightSum, ErrInvalid)
	}
	if c.QualityAccelScale <= 0 {
		return fmt.Errorf("quality_accel_scale must be positive, got %g: %w", c.QualityAccelScale, ErrInvalid)
	}

	if c.RallyConfirmFrames < 1 {
		return fmt.Errorf("rally_confirm_frames must be at least 1, got %d: %w", c.RallyConfirmFrames, ErrInvalid)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"rally_end_timeout_sec", c.RallyEndTimeoutSec},
		{"rally_pre_pad_sec", c.RallyPrePadSec},
		{"rally_post_pad_sec", c.RallyPostPadSec},
		{"rally_min_duration_sec", c.RallyMinDurationSec},
		{"rally_merge_gap_sec", c.RallyMergeGapSec},
	} {
		if f.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %g: %w", f.name, f.value, ErrInvalid)
		}
	}

	return nil
}
