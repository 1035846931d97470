package sweep

import (
	"fmt"
	"strings"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
)

// Axis is one swept parameter: a config field name (the JSON override
// key) and the values to try.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis parses "name=spec" where spec is a range or CSV list.
func ParseAxis(s string) (Axis, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("invalid axis %q: expected name=min:max:step or name=v1,v2,...", s)
	}
	values, err := ParseParamList(spec)
	if err != nil {
		return Axis{}, fmt.Errorf("axis %q: %w", name, err)
	}
	if len(values) == 0 {
		return Axis{}, fmt.Errorf("axis %q produced no values", name)
	}
	if err := setOverride(&config.Overrides{}, name, values[0]); err != nil {
		return Axis{}, err
	}
	return Axis{Name: name, Values: values}, nil
}

// Combination is one point of the sweep grid: the overrides to apply
// plus the axis values that produced them, in axis order.
type Combination struct {
	Overrides *config.Overrides
	Values    []float64
}

// Expand builds the cartesian product of the axes. One axis with 3
// values and one with 4 yields 12 combinations.
func Expand(axes []Axis) ([]Combination, error) {
	if len(axes) == 0 {
		return nil, nil
	}

	const maxCombos = 10000
	total := 1
	for _, a := range axes {
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("axis %q has no values", a.Name)
		}
		total *= len(a.Values)
		if total > maxCombos {
			return nil, fmt.Errorf("sweep would exceed %d combinations", maxCombos)
		}
	}

	out := make([]Combination, 0, total)
	idx := make([]int, len(axes))
	for {
		o := &config.Overrides{}
		values := make([]float64, len(axes))
		for i, a := range axes {
			v := a.Values[idx[i]]
			values[i] = v
			if err := setOverride(o, a.Name, v); err != nil {
				return nil, err
			}
		}
		out = append(out, Combination{Overrides: o, Values: values})

		// Odometer increment, last axis fastest.
		i := len(axes) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// setOverride maps an axis name to the matching Overrides field.
// Integer-valued fields are rounded from the float axis value.
func setOverride(o *config.Overrides, name string, v float64) error {
	switch name {
	case "merge_radius":
		o.MergeRadius = config.Float(v)
	case "static_epsilon":
		o.StaticEpsilon = config.Float(v)
	case "static_streak_min":
		o.StaticStreakMin = config.Int(int(v + 0.5))
	case "static_cooldown_sec":
		o.StaticCooldownSec = config.Float(v)
	case "gate_sigma":
		o.GateSigma = config.Float(v)
	case "process_noise_pos":
		o.ProcessNoisePos = config.Float(v)
	case "process_noise_vel":
		o.ProcessNoiseVel = config.Float(v)
	case "measurement_noise":
		o.MeasurementNoise = config.Float(v)
	case "history_cap":
		o.HistoryCap = config.Int(int(v + 0.5))
	case "idle_timeout_sec":
		o.IdleTimeoutSec = config.Float(v)
	case "spawn_radius":
		o.SpawnRadius = config.Float(v)
	case "window_sec":
		o.WindowSec = config.Float(v)
	case "parabola_min_points":
		o.ParabolaMinPoints = config.Int(int(v + 0.5))
	case "parabola_min_r2":
		o.ParabolaMinR2 = config.Float(v)
	case "curvature_min":
		o.CurvatureMin = config.Float(v)
	case "min_vertical_span":
		o.MinVerticalSpan = config.Float(v)
	case "min_peak_speed":
		o.MinPeakSpeed = config.Float(v)
	case "max_spatial_jump":
		o.MaxSpatialJump = config.Float(v)
	case "roi_radius":
		o.ROIRadius = config.Float(v)
	case "enhanced_min_points":
		o.EnhancedMinPoints = config.Int(int(v + 0.5))
	case "min_quality":
		o.MinQuality = config.Float(v)
	case "min_combined_confidence":
		o.MinCombinedConfidence = config.Float(v)
	case "airborne_physics_min":
		o.AirbornePhysicsMin = config.Float(v)
	case "airborne_accel_min":
		o.AirborneAccelMin = config.Float(v)
	case "airborne_smoothness_min":
		o.AirborneSmoothnessMin = config.Float(v)
	case "optimal_time_span_sec":
		o.OptimalTimeSpanSec = config.Float(v)
	case "accel_cv_scale":
		o.AccelCVScale = config.Float(v)
	case "quality_accel_scale":
		o.QualityAccelScale = config.Float(v)
	default:
		return fmt.Errorf("unknown sweep parameter %q", name)
	}
	return nil
}
