// Package testutil provides shared test fixtures: synthetic
// trajectory generators used by the tracking and validation tests.
//
// Generators return plain (x, y, t) samples so the package stays
// importable from every internal test without cycles; each test
// converts to its own sample type.
package testutil

import (
	"math"
	"math/rand"
)

// Sample is one synthetic (position, timestamp) point in normalized
// frame coordinates.
type Sample struct {
	X float64
	Y float64
	T float64
}

// ParabolicArc generates n samples of exact projectile motion:
// y = c2·t² + c1·t + c0 with constant horizontal velocity vx from x0,
// sampled every dt seconds.
func ParabolicArc(n int, dt, c2, c1, c0, x0, vx float64) []Sample {
	out := make([]Sample, n)
	for i := range out {
		t := float64(i) * dt
		out[i] = Sample{
			X: x0 + vx*t,
			Y: c2*t*t + c1*t + c0,
			T: t,
		}
	}
	return out
}

// StraightLine generates n samples of exact constant-velocity motion.
func StraightLine(n int, dt, x0, y0, vx, vy float64) []Sample {
	out := make([]Sample, n)
	for i := range out {
		t := float64(i) * dt
		out[i] = Sample{X: x0 + vx*t, Y: y0 + vy*t, T: t}
	}
	return out
}

// ZigZag generates n samples that reverse horizontal direction every
// period samples with per-sample jitter, the signature of a carried
// object. Deterministic for a given seed.
func ZigZag(n int, dt, x0, y0, step, jitter float64, period int, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Sample, n)
	x, y := x0, y0
	dir := 1.0
	for i := range out {
		out[i] = Sample{X: x, Y: y, T: float64(i) * dt}
		if period > 0 && (i+1)%period == 0 {
			dir = -dir
		}
		x += dir*step + (rng.Float64()-0.5)*jitter
		y += (rng.Float64() - 0.5) * jitter
	}
	return out
}

// Hover generates n samples jittering inside a tiny radius around a
// fixed point, the signature of a stationary false positive.
func Hover(n int, dt, x0, y0, radius float64, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Sample, n)
	for i := range out {
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * radius
		out[i] = Sample{
			X: x0 + r*math.Cos(angle),
			Y: y0 + r*math.Sin(angle),
			T: float64(i) * dt,
		}
	}
	return out
}
