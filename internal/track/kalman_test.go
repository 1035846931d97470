package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/detect"
	"github.com/bwierzbo/bumpsetcut-core/internal/geometry"
	"github.com/bwierzbo/bumpsetcut-core/internal/testutil"
)

func detAt(x, y, t float64) detect.Detection {
	return detect.Detection{
		Box:        geometry.Rect{X: x - 0.01, Y: y - 0.01, W: 0.02, H: 0.02},
		Confidence: 0.9,
		T:          t,
	}
}

func feedSamples(tk *Tracker, samples []testutil.Sample) {
	for _, s := range samples {
		tk.Observe([]detect.Detection{detAt(s.X, s.Y, s.T)}, s.T)
	}
}

// positionTrace returns the trace of the position sub-block of the
// covariance.
func positionTrace(k *KalmanState) float64 {
	return k.P[0*4+0] + k.P[1*4+1]
}

func TestKalmanConvergesOnConstantVelocity(t *testing.T) {
	t.Parallel()

	// Zero-noise synthetic input, so the filter's noise terms are set
	// to match: near-exact measurements and minimal process noise.
	cfg := config.Default()
	cfg.MeasurementNoise = 1e-6
	cfg.ProcessNoisePos = 1e-5

	tk := NewTracker(cfg)
	samples := testutil.StraightLine(10, 1.0/30, 0.1, 0.1, 0.05, 0.0)

	var traces []float64
	for _, s := range samples {
		tk.Observe([]detect.Detection{detAt(s.X, s.Y, s.T)}, s.T)
		live := tk.LiveTracks()
		require.Len(t, live, 1)
		traces = append(traces, positionTrace(&live[0].State))
	}

	live := tk.LiveTracks()
	require.Len(t, live, 1)
	st := live[0].State

	// Velocity within 1% of truth by frame 10.
	assert.InDelta(t, 0.05, st.VX, 0.05*0.01)
	assert.InDelta(t, 0.0, st.VY, 0.05*0.01)

	// Position-covariance trace non-increasing once updates begin.
	for i := 2; i < len(traces); i++ {
		assert.LessOrEqual(t, traces[i], traces[i-1]+1e-15,
			"position covariance trace grew at frame %d", i)
	}
}

func TestCovarianceStaysSymmetricPSD(t *testing.T) {
	t.Parallel()

	tk := NewTracker(config.Default())
	feedSamples(tk, testutil.ParabolicArc(45, 1.0/30, 0.375, -0.75, 0.8, 0.1, 0.3))

	live := tk.LiveTracks()
	require.Len(t, live, 1)
	P := live[0].State.P

	// Symmetric by construction of the predict/update formulas.
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			assert.InDelta(t, P[i*4+j], P[j*4+i], 1e-9,
				"covariance asymmetric at (%d,%d)", i, j)
		}
		assert.Greater(t, P[i*4+i], 0.0)
	}

	// Positive definite: Cholesky must succeed on the symmetrized
	// matrix.
	sym := mat.NewSymDense(4, nil)
	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			sym.SetSym(i, j, (P[i*4+j]+P[j*4+i])/2)
		}
	}
	var chol mat.Cholesky
	assert.True(t, chol.Factorize(sym), "covariance is not positive definite")
}

func TestAssociationUsesMahalanobisNotEuclidean(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	tk := NewTracker(cfg)

	// Track A: tight covariance, Euclidean-nearest to the detection.
	// Track B: wide x-covariance, farther in Euclidean terms but far
	// closer statistically.
	a := &Track{
		ID:     "tk_a",
		State:  KalmanState{X: 0.5, Y: 0.5},
		FirstT: 0, LastT: 1, stateT: 1, Age: 5,
	}
	a.State.P = [16]float64{
		1e-6, 0, 0, 0,
		0, 1e-6, 0, 0,
		0, 0, 0.1, 0,
		0, 0, 0, 0.1,
	}
	a.History = []Sample{{P: geometry.Point{X: 0.5, Y: 0.5}, T: 1}}

	b := &Track{
		ID:     "tk_b",
		State:  KalmanState{X: 0.56, Y: 0.5},
		FirstT: 0, LastT: 1, stateT: 1, Age: 5,
	}
	b.State.P = [16]float64{
		0.01, 0, 0, 0,
		0, 0.01, 0, 0,
		0, 0, 0.1, 0,
		0, 0, 0, 0.1,
	}
	b.History = []Sample{{P: geometry.Point{X: 0.56, Y: 0.5}, T: 1}}

	tk.tracks[a.ID] = a
	tk.tracks[b.ID] = b

	// Euclidean: 0.025 to A vs 0.035 to B. Mahalanobis: A's tight
	// covariance makes 0.025 a huge deviation; B's wide one absorbs
	// 0.035 easily.
	tk.Observe([]detect.Detection{detAt(0.525, 0.5, 1.0)}, 1.0)

	gotB, ok := tk.TrackByID("tk_b")
	require.True(t, ok)
	assert.Len(t, gotB.History, 2, "detection should associate to the Mahalanobis-nearest track")

	gotA, ok := tk.TrackByID("tk_a")
	require.True(t, ok)
	assert.Len(t, gotA.History, 1)
}

func TestFuseSkipsSingularCovariance(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	tk := NewTracker(cfg)

	tr := &Track{ID: "tk_s", State: KalmanState{X: 0.5, Y: 0.5}, stateT: 0}
	ok := tk.fuse(tr, geometry.Point{X: 0.5, Y: 0.5})

	// Zero covariance plus measurement noise is still invertible; force
	// a genuinely singular innovation by cancelling the noise.
	assert.True(t, ok)

	tr2 := &Track{ID: "tk_t", State: KalmanState{X: 0.5, Y: 0.5}, stateT: 0}
	tr2.State.P[0*4+0] = -cfg.MeasurementNoise
	tr2.State.P[1*4+1] = -cfg.MeasurementNoise
	before := tr2.State
	assert.False(t, tk.fuse(tr2, geometry.Point{X: 0.6, Y: 0.6}))
	assert.Equal(t, before, tr2.State, "failed fuse must not touch the state")
}
