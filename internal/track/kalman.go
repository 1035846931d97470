package track

import (
	"math"

	"github.com/bwierzbo/bumpsetcut-core/internal/geometry"
)

// Numeric guards for the filter math.
const (
	// minDeterminant is the smallest innovation-covariance determinant
	// the filter will invert. Covariances in normalized units are
	// small, so the cutoff sits far below any healthy value.
	minDeterminant = 1e-16

	// singularDistance is the gating distance reported when the
	// innovation covariance cannot be inverted. It exceeds every
	// plausible gate, so the detection is never associated.
	singularDistance = 1e9
)

// KalmanState is the per-track estimator state under a constant-
// velocity model: position and velocity in normalized units, plus the
// 4x4 covariance over [x, y, vx, vy], stored row-major. The
// covariance stays symmetric positive semi-definite by construction
// of the predict/update formulas.
type KalmanState struct {
	X  float64
	Y  float64
	VX float64
	VY float64
	P  [16]float64
}

// Position returns the estimated position.
func (k *KalmanState) Position() geometry.Point {
	return geometry.Point{X: k.X, Y: k.Y}
}

// Speed returns the estimated speed magnitude in units/second.
func (k *KalmanState) Speed() float64 {
	return math.Sqrt(k.VX*k.VX + k.VY*k.VY)
}

// isFinite reports whether the state vector and the covariance
// diagonal contain only finite values. Used as a post-predict and
// post-update guard against degenerate arithmetic.
func (k *KalmanState) isFinite() bool {
	for _, v := range [4]float64{k.X, k.Y, k.VX, k.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for i := 0; i < 4; i++ {
		v := k.P[i*4+i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// predict propagates a track's state to frameT under constant
// velocity and inflates the covariance with process noise. dt is
// clamped so frame gaps cannot balloon the gating ellipse.
func (t *Tracker) predict(tr *Track, frameT float64) {
	dt := frameT - tr.stateT
	if dt < 0 {
		dt = 0
	}
	if dt > t.cfg.MaxPredictionDtSec {
		dt = t.cfg.MaxPredictionDtSec
	}
	tr.stateT = frameT

	k := &tr.State

	// State transition for constant velocity:
	// F = [1 0 dt 0; 0 1 0 dt; 0 0 1 0; 0 0 0 1]
	k.X += k.VX * dt
	k.Y += k.VY * dt

	// Covariance: P' = F P F^T + Q, computed directly.
	// F*P rows: row0 = P0 + dt*P2, row1 = P1 + dt*P3, rows 2,3 copy.
	P := k.P
	var FP [16]float64
	for j := 0; j < 4; j++ {
		FP[0*4+j] = P[0*4+j] + dt*P[2*4+j]
		FP[1*4+j] = P[1*4+j] + dt*P[3*4+j]
		FP[2*4+j] = P[2*4+j]
		FP[3*4+j] = P[3*4+j]
	}
	// (F*P)*F^T columns: col0 = c0 + dt*c2, col1 = c1 + dt*c3.
	for i := 0; i < 4; i++ {
		k.P[i*4+0] = FP[i*4+0] + dt*FP[i*4+2]
		k.P[i*4+1] = FP[i*4+1] + dt*FP[i*4+3]
		k.P[i*4+2] = FP[i*4+2]
		k.P[i*4+3] = FP[i*4+3]
	}

	// Process noise, dt-scaled so uncertainty growth is frame-rate
	// independent.
	k.P[0*4+0] += t.cfg.ProcessNoisePos * dt
	k.P[1*4+1] += t.cfg.ProcessNoisePos * dt
	k.P[2*4+2] += t.cfg.ProcessNoiseVel * dt
	k.P[3*4+3] += t.cfg.ProcessNoiseVel * dt

	// Cap the diagonal so coasting tracks cannot grow an unbounded
	// gating ellipse.
	for i := 0; i < 4; i++ {
		if k.P[i*4+i] > t.cfg.MaxCovarianceDiag {
			k.P[i*4+i] = t.cfg.MaxCovarianceDiag
		}
	}

	if !k.isFinite() {
		tr.defunct = true
		return
	}

	t.clampSpeed(k)
}

// clampSpeed scales the velocity so its magnitude never exceeds the
// configured maximum, preventing teleport-like extrapolation after a
// degenerate update.
func (t *Tracker) clampSpeed(k *KalmanState) {
	speed := k.Speed()
	if speed > t.cfg.MaxSpeed {
		scale := t.cfg.MaxSpeed / speed
		k.VX *= scale
		k.VY *= scale
	}
}

// gatingDistance2 returns the squared Mahalanobis distance from a
// measured center to the track's predicted position, using the
// position sub-block of the covariance plus measurement noise as the
// innovation covariance. A near-singular innovation covariance
// reports singularDistance so the pair is never associated.
func (t *Tracker) gatingDistance2(tr *Track, z geometry.Point) float64 {
	k := &tr.State
	dx := z.X - k.X
	dy := z.Y - k.Y

	// S = P[0:2,0:2] + R, with H = [1 0 0 0; 0 1 0 0].
	s00 := k.P[0*4+0] + t.cfg.MeasurementNoise
	s01 := k.P[0*4+1]
	s10 := k.P[1*4+0]
	s11 := k.P[1*4+1] + t.cfg.MeasurementNoise

	det := s00*s11 - s01*s10
	if det < minDeterminant {
		return singularDistance
	}

	inv00 := s11 / det
	inv01 := -s01 / det
	inv10 := -s10 / det
	inv11 := s00 / det

	return dx*dx*inv00 + dx*dy*(inv01+inv10) + dy*dy*inv11
}

// fuse applies the Kalman update for a matched measurement. It
// reports false without touching the state when the innovation
// covariance is near singular or the update would produce non-finite
// values; the caller then treats the detection as unassociated.
func (t *Tracker) fuse(tr *Track, z geometry.Point) bool {
	k := &tr.State

	yX := z.X - k.X
	yY := z.Y - k.Y

	s00 := k.P[0*4+0] + t.cfg.MeasurementNoise
	s01 := k.P[0*4+1]
	s10 := k.P[1*4+0]
	s11 := k.P[1*4+1] + t.cfg.MeasurementNoise

	det := s00*s11 - s01*s10
	if det < minDeterminant {
		return false
	}

	inv00 := s11 / det
	inv01 := -s01 / det
	inv10 := -s10 / det
	inv11 := s00 / det

	// Gain K = P H^T S^-1, a 4x2 matrix.
	var K [8]float64
	for i := 0; i < 4; i++ {
		K[i*2+0] = k.P[i*4+0]*inv00 + k.P[i*4+1]*inv10
		K[i*2+1] = k.P[i*4+0]*inv01 + k.P[i*4+1]*inv11
	}

	prev := *k

	k.X += K[0*2+0]*yX + K[0*2+1]*yY
	k.Y += K[1*2+0]*yX + K[1*2+1]*yY
	k.VX += K[2*2+0]*yX + K[2*2+1]*yY
	k.VY += K[3*2+0]*yX + K[3*2+1]*yY

	// Covariance: P' = (I - K H) P. With H selecting position,
	// (K H)[i][j] is K[i][0] for j==0, K[i][1] for j==1, else 0.
	var ikh [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var id float64
			if i == j {
				id = 1
			}
			var kh float64
			switch j {
			case 0:
				kh = K[i*2+0]
			case 1:
				kh = K[i*2+1]
			}
			ikh[i*4+j] = id - kh
		}
	}
	var newP [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for m := 0; m < 4; m++ {
				sum += ikh[i*4+m] * prev.P[m*4+j]
			}
			newP[i*4+j] = sum
		}
	}
	k.P = newP

	if !k.isFinite() {
		*k = prev
		return false
	}

	t.clampSpeed(k)
	return true
}

// initialState builds the estimator state for a brand-new track: the
// measurement as position, zero velocity, and loose diagonal
// covariance so the first few updates can pull velocity into line.
func (t *Tracker) initialState(z geometry.Point) KalmanState {
	return KalmanState{
		X: z.X,
		Y: z.Y,
		P: [16]float64{
			t.cfg.InitPosVariance, 0, 0, 0,
			0, t.cfg.InitPosVariance, 0, 0,
			0, 0, t.cfg.InitVelVariance, 0,
			0, 0, 0, t.cfg.InitVelVariance,
		},
	}
}
