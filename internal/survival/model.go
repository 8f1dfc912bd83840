package survival

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model is a fitted Cox proportional-hazards model. It is immutable once
// returned by Fit and is used only for reporting and prediction.
type Model struct {
	covariates []string
	ties       Ties
	level      float64

	coef []float64
	se   []float64
	cov  *mat.SymDense
	mean []float64

	logLik     float64
	iterations int
	scoreNorm  float64

	baseline []hazardStep
}

// hazardStep is one point of the baseline cumulative-hazard step function.
type hazardStep struct {
	time float64
	cum  float64
}

// Covariates returns the fitted covariate names in coefficient order.
func (m *Model) Covariates() []string {
	return append([]string(nil), m.covariates...)
}

// Coefficients returns the estimated log-hazard-ratio vector.
func (m *Model) Coefficients() []float64 {
	return append([]float64(nil), m.coef...)
}

// StandardErrors returns the coefficient standard errors from the inverse
// observed information.
func (m *Model) StandardErrors() []float64 {
	return append([]float64(nil), m.se...)
}

// HazardRatios returns exp(beta_j) per covariate.
func (m *Model) HazardRatios() []float64 {
	hr := make([]float64, len(m.coef))
	for j, b := range m.coef {
		hr[j] = math.Exp(b)
	}
	return hr
}

// WaldZ returns the Wald statistics beta_j / se_j.
func (m *Model) WaldZ() []float64 {
	z := make([]float64, len(m.coef))
	for j := range m.coef {
		z[j] = m.coef[j] / m.se[j]
	}
	return z
}

// PValues returns two-sided Wald p-values.
func (m *Model) PValues() []float64 {
	pv := make([]float64, len(m.coef))
	for j, z := range m.WaldZ() {
		pv[j] = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	}
	return pv
}

// ConfidenceLevel returns the interval level the model was fit with.
func (m *Model) ConfidenceLevel() float64 { return m.level }

// TieMethod returns the tie adjustment used during fitting.
func (m *Model) TieMethod() Ties { return m.ties }

// LogPartialLikelihood returns the maximized log partial likelihood.
func (m *Model) LogPartialLikelihood() float64 { return m.logLik }

// Iterations returns the Newton-Raphson iteration count at convergence.
func (m *Model) Iterations() int { return m.iterations }

// ScoreNorm returns the final score-vector norm (a convergence diagnostic).
func (m *Model) ScoreNorm() float64 { return m.scoreNorm }

// SummaryRow is one covariate line of the model report.
type SummaryRow struct {
	Covariate string  `json:"covariate"`
	Coef      float64 `json:"coef"`
	SE        float64 `json:"se"`
	HR        float64 `json:"hazard_ratio"`
	HRLower   float64 `json:"hr_lower"`
	HRUpper   float64 `json:"hr_upper"`
	Z         float64 `json:"z"`
	P         float64 `json:"p"`
}

// Summary returns per-covariate estimates with hazard ratios, Wald tests and
// confidence bounds at the model's level.
func (m *Model) Summary() []SummaryRow {
	zq := distuv.UnitNormal.Quantile(1 - (1-m.level)/2)
	pv := m.PValues()
	rows := make([]SummaryRow, len(m.coef))
	for j := range m.coef {
		b, s := m.coef[j], m.se[j]
		rows[j] = SummaryRow{
			Covariate: m.covariates[j],
			Coef:      b,
			SE:        s,
			HR:        math.Exp(b),
			HRLower:   math.Exp(b - zq*s),
			HRUpper:   math.Exp(b + zq*s),
			Z:         b / s,
			P:         pv[j],
		}
	}
	return rows
}
