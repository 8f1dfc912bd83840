// Package survival fits Cox proportional-hazards models by maximum partial
// likelihood and predicts cumulative hazards from the fitted baseline. The
// model assumes hazard(t|x) = h0(t) * exp(beta.x); estimation is
// Newton-Raphson on the ties-adjusted partial likelihood.
package survival

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"hfsurv/internal/dataset"
)

// Ties selects the tie-handling adjustment for the partial likelihood.
type Ties int

const (
	// Efron is the default and the better approximation under heavy ties.
	Efron Ties = iota
	// Breslow treats all tied events as sharing the full risk-set denominator.
	Breslow
)

func (t Ties) String() string {
	if t == Breslow {
		return "breslow"
	}
	return "efron"
}

// ParseTies maps a flag/config value to a Ties method.
func ParseTies(s string) (Ties, error) {
	switch s {
	case "", "efron":
		return Efron, nil
	case "breslow":
		return Breslow, nil
	}
	return Efron, fmt.Errorf("survival: unknown tie method %q", s)
}

// Options tune the fit. Zero values select the defaults.
type Options struct {
	Ties    Ties
	MaxIter int     // iteration budget, default 100
	Tol     float64 // score-norm convergence tolerance, default 1e-9
	Level   float64 // confidence level for intervals, default 0.95
}

func (o Options) withDefaults() Options {
	if o.MaxIter == 0 {
		o.MaxIter = 100
	}
	if o.Tol == 0 {
		o.Tol = 1e-9
	}
	if o.Level == 0 {
		o.Level = 0.95
	}
	return o
}

// timeGroup is one distinct follow-up time: the subjects reaching it and the
// subset that died there.
type timeGroup struct {
	time    float64
	members []int // subject indices with this exact time
	events  []int // subset of members with an observed event
}

// coxData is the fitting view of a table: centered design matrix rows plus
// distinct times in ascending order.
type coxData struct {
	p      int
	x      [][]float64 // centered covariate rows, one per subject
	mean   []float64
	groups []timeGroup // ascending by time
}

// Fit estimates a Cox model over the named covariates of t. The input is
// validated first; degenerate input (zero events, constant or collinear
// covariates) is rejected, and exceeding the iteration budget returns a
// ConvergenceError rather than a partial model. The input table is not
// modified.
func Fit(t *dataset.Table, covariates []string, opts Options) (*Model, error) {
	opts = opts.withDefaults()

	if len(covariates) == 0 {
		return nil, &DegenerateInputError{Reason: "no covariates"}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.EventCount() == 0 {
		return nil, &DegenerateInputError{Reason: "no observed events (all subjects censored)"}
	}

	data, err := prepare(t, covariates)
	if err != nil {
		return nil, err
	}

	p := data.p
	beta := make([]float64, p)
	score := make([]float64, p)
	info := mat.NewSymDense(p, nil)
	step := mat.NewVecDense(p, nil)
	var chol mat.Cholesky

	ll := data.eval(beta, opts.Ties, score, info)
	var norm float64
	converged := false
	iter := 0
	for iter = 1; iter <= opts.MaxIter; iter++ {
		norm = floats.Norm(score, 2)
		if norm < opts.Tol {
			converged = true
			break
		}
		if ok := chol.Factorize(info); !ok {
			return nil, &DegenerateInputError{Reason: "rank-deficient covariate design (singular information matrix)"}
		}
		if err := chol.SolveVecTo(step, mat.NewVecDense(p, score)); err != nil {
			return nil, &DegenerateInputError{Reason: "rank-deficient covariate design (singular information matrix)"}
		}

		trial, _ := data.lineSearch(beta, step, ll, opts.Ties)
		copy(beta, trial)
		ll = data.eval(beta, opts.Ties, score, info)
	}
	if !converged {
		return nil, &ConvergenceError{Iterations: opts.MaxIter, ScoreNorm: norm, Tol: opts.Tol}
	}

	if ok := chol.Factorize(info); !ok {
		return nil, &DegenerateInputError{Reason: "rank-deficient covariate design (singular information matrix)"}
	}
	cov := mat.NewSymDense(p, nil)
	if err := chol.InverseTo(cov); err != nil {
		return nil, &DegenerateInputError{Reason: "information matrix is not invertible"}
	}
	se := make([]float64, p)
	for j := 0; j < p; j++ {
		se[j] = math.Sqrt(cov.At(j, j))
	}

	return &Model{
		covariates: append([]string(nil), covariates...),
		ties:       opts.Ties,
		level:      opts.Level,
		coef:       beta,
		se:         se,
		cov:        cov,
		mean:       data.mean,
		logLik:     ll,
		iterations: iter - 1,
		scoreNorm:  norm,
		baseline:   data.baselineHazard(beta),
	}, nil
}

// prepare builds the centered design matrix and the ascending time groups.
// Covariates are centered for conditioning only; the partial likelihood and
// the coefficient estimates are invariant to the shift.
func prepare(t *dataset.Table, covariates []string) (*coxData, error) {
	n := t.N()
	p := len(covariates)

	cols := make([][]float64, p)
	mean := make([]float64, p)
	for j, name := range covariates {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		lo, hi := floats.Min(col), floats.Max(col)
		if lo == hi {
			return nil, &DegenerateInputError{Reason: fmt.Sprintf("covariate %q is constant", name)}
		}
		cols[j] = col
		mean[j] = floats.Sum(col) / float64(n)
	}

	x := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, p)
		for j := 0; j < p; j++ {
			row[j] = cols[j][i] - mean[j]
		}
		x[i] = row
	}

	times := t.Times()
	events := t.Events()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	var groups []timeGroup
	for _, i := range order {
		if len(groups) == 0 || groups[len(groups)-1].time != times[i] {
			groups = append(groups, timeGroup{time: times[i]})
		}
		g := &groups[len(groups)-1]
		g.members = append(g.members, i)
		if events[i] == 1 {
			g.events = append(g.events, i)
		}
	}

	return &coxData{p: p, x: x, mean: mean, groups: groups}, nil
}

// lineSearch tries the Newton step with halving: the partial likelihood is
// concave, so a full step occasionally overshoots on ill-scaled covariates,
// and an overshoot far enough to overflow exp(beta.x) yields a non-finite
// likelihood. Only a finite improvement is accepted; once the halving budget
// is spent the previous iterate is returned unchanged, so a fit that cannot
// make progress reports non-convergence instead of corrupting beta.
func (d *coxData) lineSearch(beta []float64, step *mat.VecDense, ll float64, ties Ties) ([]float64, float64) {
	trial := make([]float64, d.p)
	scale := 1.0
	for h := 0; h <= 30; h++ {
		for j := 0; j < d.p; j++ {
			trial[j] = beta[j] + scale*step.AtVec(j)
		}
		newLL := d.eval(trial, ties, nil, nil)
		if !math.IsNaN(newLL) && newLL >= ll {
			return trial, newLL
		}
		scale /= 2
	}
	return append([]float64(nil), beta...), ll
}

// eval computes the log partial likelihood at beta, and, when score/info are
// non-nil, the score vector and observed information. Risk sums accumulate
// from the latest time backwards so each subject enters exactly once.
func (d *coxData) eval(beta []float64, ties Ties, score []float64, info *mat.SymDense) float64 {
	p := d.p
	wantDeriv := score != nil
	if wantDeriv {
		for j := range score {
			score[j] = 0
		}
		info.Zero()
	}

	sumW := 0.0
	sumWX := make([]float64, p)
	sumWXX := make([]float64, p*p)

	// Tied-set accumulators, reused per group.
	aD := make([]float64, p)
	bD := make([]float64, p*p)
	m := make([]float64, p)

	ll := 0.0
	for gi := len(d.groups) - 1; gi >= 0; gi-- {
		g := &d.groups[gi]
		for _, i := range g.members {
			xi := d.x[i]
			w := math.Exp(floats.Dot(beta, xi))
			sumW += w
			for j := 0; j < p; j++ {
				sumWX[j] += w * xi[j]
				if wantDeriv {
					for k := j; k < p; k++ {
						sumWXX[j*p+k] += w * xi[j] * xi[k]
					}
				}
			}
		}

		nd := len(g.events)
		if nd == 0 {
			continue
		}

		sD := 0.0
		for j := range aD {
			aD[j] = 0
		}
		for j := range bD {
			bD[j] = 0
		}
		for _, i := range g.events {
			xi := d.x[i]
			lp := floats.Dot(beta, xi)
			ll += lp
			if wantDeriv {
				floats.Add(score, xi)
			}
			w := math.Exp(lp)
			sD += w
			for j := 0; j < p; j++ {
				aD[j] += w * xi[j]
				if wantDeriv {
					for k := j; k < p; k++ {
						bD[j*p+k] += w * xi[j] * xi[k]
					}
				}
			}
		}

		for l := 0; l < nd; l++ {
			frac := 0.0
			if ties == Efron {
				frac = float64(l) / float64(nd)
			}
			phi := sumW - frac*sD
			ll -= math.Log(phi)
			if !wantDeriv {
				continue
			}
			for j := 0; j < p; j++ {
				m[j] = (sumWX[j] - frac*aD[j]) / phi
			}
			floats.Sub(score, m)
			for j := 0; j < p; j++ {
				for k := j; k < p; k++ {
					v := (sumWXX[j*p+k]-frac*bD[j*p+k])/phi - m[j]*m[k]
					info.SetSym(j, k, info.At(j, k)+v)
				}
			}
		}
	}
	return ll
}

// baselineHazard computes the Breslow estimate of the baseline cumulative
// hazard at the covariate means, as a nondecreasing step function over the
// distinct event times.
func (d *coxData) baselineHazard(beta []float64) []hazardStep {
	sumW := 0.0
	var steps []hazardStep
	for gi := len(d.groups) - 1; gi >= 0; gi-- {
		g := &d.groups[gi]
		for _, i := range g.members {
			sumW += math.Exp(floats.Dot(beta, d.x[i]))
		}
		if len(g.events) > 0 {
			steps = append(steps, hazardStep{time: g.time, cum: float64(len(g.events)) / sumW})
		}
	}
	// steps were collected in descending time order; reverse and prefix-sum.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	for i := 1; i < len(steps); i++ {
		steps[i].cum += steps[i-1].cum
	}
	return steps
}
