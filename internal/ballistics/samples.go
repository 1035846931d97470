// Package ballistics decides whether a track's recent motion is
// physically consistent with a projectile. It contains the parabolic
// validator, the movement classifier, the trajectory quality scorer,
// and the gate that orchestrates them into one accept/reject decision.
//
// Everything here is a pure function of (sample history,
// configuration): no state survives between calls, no errors are
// returned, and degenerate inputs (too few samples, zero elapsed
// time) yield neutral results rather than failures.
package ballistics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// zeroEps is the magnitude below which a mean or variance is treated
// as degenerate rather than divided by.
const zeroEps = 1e-9

// windowTail returns the samples whose timestamps fall within
// windowSec of the last sample.
func windowTail(samples []track.Sample, windowSec float64) []track.Sample {
	if len(samples) == 0 {
		return nil
	}
	cutoff := samples[len(samples)-1].T - windowSec
	for i, s := range samples {
		if s.T >= cutoff {
			return samples[i:]
		}
	}
	return samples[len(samples)-1:]
}

// consecutiveSpeeds returns the speed between each adjacent sample
// pair, skipping pairs with non-positive elapsed time.
func consecutiveSpeeds(samples []track.Sample) []float64 {
	if len(samples) < 2 {
		return nil
	}
	speeds := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dt := samples[i].T - samples[i-1].T
		if dt <= 0 {
			continue
		}
		speeds = append(speeds, samples[i].P.DistanceTo(samples[i-1].P)/dt)
	}
	return speeds
}

// accelMagnitudes returns the magnitude of the acceleration between
// each adjacent velocity pair.
func accelMagnitudes(samples []track.Sample) []float64 {
	if len(samples) < 3 {
		return nil
	}
	type vel struct {
		vx, vy, t float64
	}
	vels := make([]vel, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dt := samples[i].T - samples[i-1].T
		if dt <= 0 {
			continue
		}
		d := samples[i].P.Sub(samples[i-1].P)
		vels = append(vels, vel{vx: d.X / dt, vy: d.Y / dt, t: (samples[i].T + samples[i-1].T) / 2})
	}
	if len(vels) < 2 {
		return nil
	}
	accels := make([]float64, 0, len(vels)-1)
	for i := 1; i < len(vels); i++ {
		dt := vels[i].t - vels[i-1].t
		if dt <= 0 {
			continue
		}
		ax := (vels[i].vx - vels[i-1].vx) / dt
		ay := (vels[i].vy - vels[i-1].vy) / dt
		accels = append(accels, math.Sqrt(ax*ax+ay*ay))
	}
	return accels
}

// coefficientOfVariation returns stddev/mean for the values, or -1
// when the mean is degenerate (too few values or near-zero mean).
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return -1
	}
	mean, std := stat.MeanStdDev(values, nil)
	if math.Abs(mean) < zeroEps {
		return -1
	}
	return std / mean
}

// meanTurningAngle returns the mean angle in radians between
// consecutive displacement vectors, in [0, π]. Returns -1 with fewer
// than three samples.
func meanTurningAngle(samples []track.Sample) float64 {
	if len(samples) < 3 {
		return -1
	}
	var sum float64
	var n int
	for i := 2; i < len(samples); i++ {
		prev := samples[i-1].P.Sub(samples[i-2].P)
		cur := samples[i].P.Sub(samples[i-1].P)
		if prev.Norm() < zeroEps || cur.Norm() < zeroEps {
			continue
		}
		sum += prev.AngleBetween(cur)
		n++
	}
	if n == 0 {
		return -1
	}
	return sum / float64(n)
}

// verticalPhysicsScore is the simplified goodness-of-fit of the
// vertical-position-vs-time series under a quadratic: the R² of the
// least-squares parabola. A series whose vertical variance is
// near-zero scores 0 — a flat trajectory carries no projectile
// evidence, even though a quadratic reproduces it exactly.
//
// Shared by the movement classifier (airborne rule) and the quality
// scorer.
func verticalPhysicsScore(samples []track.Sample) float64 {
	if len(samples) < 3 {
		return 0
	}
	a, b, c, ok := fitQuadratic(samples)
	if !ok {
		return 0
	}
	t0 := samples[0].T
	est := make([]float64, len(samples))
	obs := make([]float64, len(samples))
	for i, s := range samples {
		dt := s.T - t0
		est[i] = a*dt*dt + b*dt + c
		obs[i] = s.P.Y
	}
	return rSquared(est, obs)
}

// rSquared computes the coefficient of determination of estimates
// against observations, clamped to [0,1]. Near-zero observation
// variance is degenerate and scores 0.
func rSquared(estimates, observations []float64) float64 {
	mean := stat.Mean(observations, nil)
	var ssTot, ssRes float64
	for i, o := range observations {
		ssTot += (o - mean) * (o - mean)
		ssRes += (o - estimates[i]) * (o - estimates[i])
	}
	if ssTot < zeroEps {
		return 0
	}
	r2 := 1 - ssRes/ssTot
	return clamp01(r2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
