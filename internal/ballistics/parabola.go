package ballistics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// CurvatureDirection is the tri-state sign of the fitted quadratic
// coefficient. Image coordinates grow down the frame, so free flight
// under gravity-down bends the vertical series toward larger y — a
// positive coefficient, named CurvatureUpward after the opening
// direction of the parabola.
type CurvatureDirection string

const (
	CurvatureUpward   CurvatureDirection = "upward"   // a > 0
	CurvatureDownward CurvatureDirection = "downward" // a < 0
	CurvatureInvalid  CurvatureDirection = "invalid"  // |a| below minimum or no fit
)

// ValidationResult is the parabolic validator's output. Zero value is
// the neutral "no fit" result.
type ValidationResult struct {
	Valid               bool
	R2                  float64
	Curvature           CurvatureDirection
	VelocityConsistency float64 // 1 - CV of consecutive speeds, in [0,1]
	A, B, C             float64 // fit coefficients of y = a·t² + b·t + c
}

// Validator fits and scores the quadratic motion hypothesis against a
// window of samples.
type Validator struct {
	cfg *config.Config
}

// NewValidator builds a validator using a validated configuration.
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate fits y = a·t² + b·t + c over the samples' vertical series
// and scores the fit. Validity requires all of: enough samples, R² at
// or above the configured minimum, curvature direction matching the
// configured gravity, curvature magnitude at or above the minimum,
// and velocity consistency ≥ 0.5.
func (v *Validator) Validate(samples []track.Sample) ValidationResult {
	res := ValidationResult{Curvature: CurvatureInvalid}
	if len(samples) < v.cfg.ParabolaMinPoints {
		return res
	}

	a, b, c, ok := fitQuadratic(samples)
	if !ok {
		return res
	}
	res.A, res.B, res.C = a, b, c

	t0 := samples[0].T
	est := make([]float64, len(samples))
	obs := make([]float64, len(samples))
	for i, s := range samples {
		dt := s.T - t0
		est[i] = a*dt*dt + b*dt + c
		obs[i] = s.P.Y
	}
	res.R2 = rSquared(est, obs)

	if a >= v.cfg.CurvatureMin {
		res.Curvature = CurvatureUpward
	} else if a <= -v.cfg.CurvatureMin {
		res.Curvature = CurvatureDownward
	}

	cv := coefficientOfVariation(consecutiveSpeeds(samples))
	if cv >= 0 {
		res.VelocityConsistency = clamp01(1 - cv)
	}

	wanted := CurvatureUpward
	if v.cfg.GravityDirection == config.GravityUp {
		wanted = CurvatureDownward
	}

	res.Valid = res.R2 >= v.cfg.ParabolaMinR2 &&
		res.Curvature == wanted &&
		res.VelocityConsistency >= 0.5
	return res
}

// fitQuadratic solves the ordinary least-squares fit of the vertical
// series against elapsed time since the first sample. Reports false
// when the design matrix is rank deficient (fewer than three distinct
// timestamps) or the solve degenerates.
func fitQuadratic(samples []track.Sample) (a, b, c float64, ok bool) {
	n := len(samples)
	if n < 3 {
		return 0, 0, 0, false
	}

	t0 := samples[0].T
	design := mat.NewDense(n, 3, nil)
	rhs := mat.NewVecDense(n, nil)
	for i, s := range samples {
		dt := s.T - t0
		design.Set(i, 0, dt*dt)
		design.Set(i, 1, dt)
		design.Set(i, 2, 1)
		rhs.SetVec(i, s.P.Y)
	}

	var qr mat.QR
	qr.Factorize(design)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, rhs); err != nil {
		return 0, 0, 0, false
	}

	a, b, c = coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
	for _, v := range []float64{a, b, c} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, false
		}
	}
	return a, b, c, true
}
