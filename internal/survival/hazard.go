package survival

import (
	"math"
	"sort"

	"hfsurv/internal/dataset"
)

// baselineAt evaluates the baseline cumulative hazard at time t. Times beyond
// the last observed event extrapolate flat from the final step; this is a
// modeling approximation inherent to the Breslow estimator, not an error.
// Times before the first event have zero cumulative hazard.
func (m *Model) baselineAt(t float64) float64 {
	idx := sort.Search(len(m.baseline), func(i int) bool { return m.baseline[i].time > t })
	if idx == 0 {
		return 0
	}
	return m.baseline[idx-1].cum
}

// linearPredictor computes beta.(x - mean) for one subject row, matching the
// centering used during fitting so that the baseline applies unchanged.
func (m *Model) linearPredictor(cols [][]float64, i int) float64 {
	lp := 0.0
	for j := range m.coef {
		lp += m.coef[j] * (cols[j][i] - m.mean[j])
	}
	return lp
}

// CumulativeHazard predicts H(t|x) = H0(t) * exp(beta.x) for every subject of
// t at every requested time. The result is indexed [subject][time]. The model
// and table are not modified; the call is a pure function of its inputs.
func (m *Model) CumulativeHazard(t *dataset.Table, times []float64) ([][]float64, error) {
	cols := make([][]float64, len(m.covariates))
	for j, name := range m.covariates {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}

	base := make([]float64, len(times))
	for k, tt := range times {
		base[k] = m.baselineAt(tt)
	}

	out := make([][]float64, t.N())
	for i := 0; i < t.N(); i++ {
		risk := math.Exp(m.linearPredictor(cols, i))
		row := make([]float64, len(times))
		for k := range times {
			row[k] = base[k] * risk
		}
		out[i] = row
	}
	return out, nil
}

// RiskAt returns the predicted cumulative hazard at a single horizon for every
// subject, the score used for ROC evaluation.
func (m *Model) RiskAt(t *dataset.Table, horizon float64) ([]float64, error) {
	grid, err := m.CumulativeHazard(t, []float64{horizon})
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(grid))
	for i, row := range grid {
		scores[i] = row[0]
	}
	return scores, nil
}
