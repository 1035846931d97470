package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Overrides is a sparse mirror of Config. Every field is a pointer so
// a JSON file (or a sweep axis) can override any subset of thresholds
// while distinguishing "absent" from "zero".
type Overrides struct {
	MergeRadius       *float64 `json:"merge_radius,omitempty"`
	StaticGridSize    *int     `json:"static_grid_size,omitempty"`
	StaticEpsilon     *float64 `json:"static_epsilon,omitempty"`
	StaticStreakMin   *int     `json:"static_streak_min,omitempty"`
	StaticCooldownSec *float64 `json:"static_cooldown_sec,omitempty"`
	StaticCellTTLSec  *float64 `json:"static_cell_ttl_sec,omitempty"`
	SamplingRate      *float64 `json:"sampling_rate,omitempty"`

	GateSigma          *float64 `json:"gate_sigma,omitempty"`
	ProcessNoisePos    *float64 `json:"process_noise_pos,omitempty"`
	ProcessNoiseVel    *float64 `json:"process_noise_vel,omitempty"`
	MeasurementNoise   *float64 `json:"measurement_noise,omitempty"`
	InitPosVariance    *float64 `json:"init_pos_variance,omitempty"`
	InitVelVariance    *float64 `json:"init_vel_variance,omitempty"`
	MaxPredictionDtSec *float64 `json:"max_prediction_dt_sec,omitempty"`
	MaxSpeed           *float64 `json:"max_speed,omitempty"`
	MaxCovarianceDiag  *float64 `json:"max_covariance_diag,omitempty"`
	HistoryCap         *int     `json:"history_cap,omitempty"`
	IdleTimeoutSec     *float64 `json:"idle_timeout_sec,omitempty"`
	SpawnRadius        *float64 `json:"spawn_radius,omitempty"`
	SpawnMinAge        *int     `json:"spawn_min_age,omitempty"`

	WindowSec         *float64 `json:"window_sec,omitempty"`
	ParabolaMinPoints *int     `json:"parabola_min_points,omitempty"`
	ParabolaMinR2     *float64 `json:"parabola_min_r2,omitempty"`
	CurvatureMin      *float64 `json:"curvature_min,omitempty"`
	GravityDirection  *string  `json:"gravity_direction,omitempty"`
	MinVerticalSpan   *float64 `json:"min_vertical_span,omitempty"`
	MinPeakSpeed      *float64 `json:"min_peak_speed,omitempty"`
	MaxSpatialJump    *float64 `json:"max_spatial_jump,omitempty"`
	ROIRadius         *float64 `json:"roi_radius,omitempty"`

	UseEnhanced             *bool    `json:"use_enhanced,omitempty"`
	EnhancedMinPoints       *int     `json:"enhanced_min_points,omitempty"`
	MinQuality              *float64 `json:"min_quality,omitempty"`
	MinCombinedConfidence   *float64 `json:"min_combined_confidence,omitempty"`
	MinProjectileConfidence *float64 `json:"min_projectile_confidence,omitempty"`

	ClassifyMinPoints       *int     `json:"classify_min_points,omitempty"`
	AirbornePhysicsMin      *float64 `json:"airborne_physics_min,omitempty"`
	AirborneAccelMin        *float64 `json:"airborne_accel_min,omitempty"`
	AirborneSmoothnessMin   *float64 `json:"airborne_smoothness_min,omitempty"`
	RollingVerticalMax      *float64 `json:"rolling_vertical_max,omitempty"`
	RollingSmoothnessMin    *float64 `json:"rolling_smoothness_min,omitempty"`
	RollingAccelMax         *float64 `json:"rolling_accel_max,omitempty"`
	CarriedInconsistencyMin *float64 `json:"carried_inconsistency_min,omitempty"`
	CarriedSmoothnessMax    *float64 `json:"carried_smoothness_max,omitempty"`
	OptimalTimeSpanSec      *float64 `json:"optimal_time_span_sec,omitempty"`
	AccelCVScale            *float64 `json:"accel_cv_scale,omitempty"`

	QualityWeightSmoothness *float64 `json:"quality_weight_smoothness,omitempty"`
	QualityWeightVelocity   *float64 `json:"quality_weight_velocity,omitempty"`
	QualityWeightPhysics    *float64 `json:"quality_weight_physics,omitempty"`
	QualityAccelScale       *float64 `json:"quality_accel_scale,omitempty"`

	RallyStartConfidence *float64 `json:"rally_start_confidence,omitempty"`
	RallyConfirmFrames   *int     `json:"rally_confirm_frames,omitempty"`
	RallyEndTimeoutSec   *float64 `json:"rally_end_timeout_sec,omitempty"`
	RallyPrePadSec       *float64 `json:"rally_pre_pad_sec,omitempty"`
	RallyPostPadSec      *float64 `json:"rally_post_pad_sec,omitempty"`
	RallyMinDurationSec  *float64 `json:"rally_min_duration_sec,omitempty"`
	RallyMergeGapSec     *float64 `json:"rally_merge_gap_sec,omitempty"`
}

// Pointer constructors for building Overrides literals in sweeps and
// tests.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func Bool(v bool) *bool        { return &v }
func String(v string) *string  { return &v }

// LoadOverrides reads a sparse Overrides set from a JSON file. The
// path must end in .json and the file is capped at 1 MB. Fields absent
// from the JSON stay nil, so partial files are safe.
func LoadOverrides(path string) (*Overrides, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("overrides file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat overrides file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("overrides file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse overrides JSON: %w", err)
	}
	return &o, nil
}

// With returns a copy of c with every non-nil override applied. The
// receiver is left untouched; the caller validates the result before
// use.
func (c *Config) With(o *Overrides) *Config {
	out := *c
	if o == nil {
		return &out
	}

	setFloat(&out.MergeRadius, o.MergeRadius)
	setInt(&out.StaticGridSize, o.StaticGridSize)
	setFloat(&out.StaticEpsilon, o.StaticEpsilon)
	setInt(&out.StaticStreakMin, o.StaticStreakMin)
	setFloat(&out.StaticCooldownSec, o.StaticCooldownSec)
	setFloat(&out.StaticCellTTLSec, o.StaticCellTTLSec)
	setFloat(&out.SamplingRate, o.SamplingRate)

	setFloat(&out.GateSigma, o.GateSigma)
	setFloat(&out.ProcessNoisePos, o.ProcessNoisePos)
	setFloat(&out.ProcessNoiseVel, o.ProcessNoiseVel)
	setFloat(&out.MeasurementNoise, o.MeasurementNoise)
	setFloat(&out.InitPosVariance, o.InitPosVariance)
	setFloat(&out.InitVelVariance, o.InitVelVariance)
	setFloat(&out.MaxPredictionDtSec, o.MaxPredictionDtSec)
	setFloat(&out.MaxSpeed, o.MaxSpeed)
	setFloat(&out.MaxCovarianceDiag, o.MaxCovarianceDiag)
	setInt(&out.HistoryCap, o.HistoryCap)
	setFloat(&out.IdleTimeoutSec, o.IdleTimeoutSec)
	setFloat(&out.SpawnRadius, o.SpawnRadius)
	setInt(&out.SpawnMinAge, o.SpawnMinAge)

	setFloat(&out.WindowSec, o.WindowSec)
	setInt(&out.ParabolaMinPoints, o.ParabolaMinPoints)
	setFloat(&out.ParabolaMinR2, o.ParabolaMinR2)
	setFloat(&out.CurvatureMin, o.CurvatureMin)
	setString(&out.GravityDirection, o.GravityDirection)
	setFloat(&out.MinVerticalSpan, o.MinVerticalSpan)
	setFloat(&out.MinPeakSpeed, o.MinPeakSpeed)
	setFloat(&out.MaxSpatialJump, o.MaxSpatialJump)
	setFloat(&out.ROIRadius, o.ROIRadius)

	setBool(&out.UseEnhanced, o.UseEnhanced)
	setInt(&out.EnhancedMinPoints, o.EnhancedMinPoints)
	setFloat(&out.MinQuality, o.MinQuality)
	setFloat(&out.MinCombinedConfidence, o.MinCombinedConfidence)
	setFloat(&out.MinProjectileConfidence, o.MinProjectileConfidence)

	setInt(&out.ClassifyMinPoints, o.ClassifyMinPoints)
	setFloat(&out.AirbornePhysicsMin, o.AirbornePhysicsMin)
	setFloat(&out.AirborneAccelMin, o.AirborneAccelMin)
	setFloat(&out.AirborneSmoothnessMin, o.AirborneSmoothnessMin)
	setFloat(&out.RollingVerticalMax, o.RollingVerticalMax)
	setFloat(&out.RollingSmoothnessMin, o.RollingSmoothnessMin)
	setFloat(&out.RollingAccelMax, o.RollingAccelMax)
	setFloat(&out.CarriedInconsistencyMin, o.CarriedInconsistencyMin)
	setFloat(&out.CarriedSmoothnessMax, o.CarriedSmoothnessMax)
	setFloat(&out.OptimalTimeSpanSec, o.OptimalTimeSpanSec)
	setFloat(&out.AccelCVScale, o.AccelCVScale)

	setFloat(&out.QualityWeightSmoothness, o.QualityWeightSmoothness)
	setFloat(&out.QualityWeightVelocity, o.QualityWeightVelocity)
	setFloat(&out.QualityWeightPhysics, o.QualityWeightPhysics)
	setFloat(&out.QualityAccelScale, o.QualityAccelScale)

	setFloat(&out.RallyStartConfidence, o.RallyStartConfidence)
	setInt(&out.RallyConfirmFrames, o.RallyConfirmFrames)
	setFloat(&out.RallyEndTimeoutSec, o.RallyEndTimeoutSec)
	setFloat(&out.RallyPrePadSec, o.RallyPrePadSec)
	setFloat(&out.RallyPostPadSec, o.RallyPostPadSec)
	setFloat(&out.RallyMinDurationSec, o.RallyMinDurationSec)
	setFloat(&out.RallyMergeGapSec, o.RallyMergeGapSec)

	return &out
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
